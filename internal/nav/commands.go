package nav

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/config"
	"github.com/bundledoc/bundledoc/internal/encode"
	"github.com/bundledoc/bundledoc/internal/fileutil"
	"github.com/bundledoc/bundledoc/internal/search"
)

func RunSymbol(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	fuzzy, err := OptionalBoolFlag(cmd, "fuzzy", false)
	if err != nil {
		return err
	}
	limit, err := OptionalIntFlag(cmd, "limit", 10)
	if err != nil {
		return err
	}

	lookup, err := loadForCommand(cmd)
	if err != nil {
		return err
	}
	var searchIndex *search.Index
	if fuzzy {
		searchIndex = search.Build(lookup.Entries)
	}
	records := ResolveWithOptions(lookup, searchIndex, args[0], ResolveOptions{Fuzzy: fuzzy, Limit: limit})
	if len(records) == 0 {
		return errors.Errorf("%w: %q", ErrSymbolNotFound, args[0])
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"query":   args[0],
			"matches": records,
		})
	}

	fmt.Fprintf(out, "symbol matches for %q (%d)\n", args[0], len(records))
	for _, record := range records {
		fmt.Fprintf(out, "- %s [%d]", record.Name, record.Index)
		if record.Base != nil {
			fmt.Fprintf(out, " base=%d", *record.Base)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func RunBases(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	lookup, err := loadForCommand(cmd)
	if err != nil {
		return err
	}
	entry, err := ResolveSingle(lookup, args[0])
	if err != nil {
		return err
	}
	chain, err := BaseChain(lookup, entry)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"query":  args[0],
			"symbol": recordFromEntry(entry),
			"bases":  chain,
		})
	}

	fmt.Fprintf(out, "bases of %s [%d] (%d)\n", entry.Name, entry.Index, len(chain))
	printEntries(out, chain, "no base classes")
	return nil
}

func RunSubclasses(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	lookup, err := loadForCommand(cmd)
	if err != nil {
		return err
	}
	entry, err := ResolveSingle(lookup, args[0])
	if err != nil {
		return err
	}

	subclasses := Subclasses(lookup, entry)
	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"query":      args[0],
			"symbol":     recordFromEntry(entry),
			"subclasses": subclasses,
		})
	}

	fmt.Fprintf(out, "subclasses of %s [%d] (%d)\n", entry.Name, entry.Index, len(subclasses))
	printEntries(out, subclasses, "no subclasses found")
	return nil
}

func printEntries(out io.Writer, entries []encode.Reference, empty string) {
	if len(entries) == 0 {
		fmt.Fprintln(out, empty)
		return
	}
	for _, entry := range entries {
		fmt.Fprintf(out, "- %s [%d]\n", entry.Name, entry.Index)
	}
}

// loadForCommand reads the index from --dir, or the configured output directory.
func loadForCommand(cmd *cobra.Command) (*Lookup, error) {
	dir, err := OptionalStringFlag(cmd, "dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = config.FromContext(cmd.Context()).Output.Dir
	}
	return LoadLookup(dir)
}

func OptionalBoolFlag(cmd *cobra.Command, name string, defaultValue bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, errors.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalIntFlag(cmd *cobra.Command, name string, defaultValue int) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, errors.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", errors.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}
