package cli

import (
	"strconv"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/config"
	"github.com/bundledoc/bundledoc/internal/encode"
	"github.com/bundledoc/bundledoc/internal/nav"
	"github.com/bundledoc/bundledoc/internal/output"
	"github.com/bundledoc/bundledoc/internal/pool"
	"github.com/bundledoc/bundledoc/internal/schema"
)

// RunEncode prints the document for a single pool index. Unlike generate it
// accepts any encodable kind, so nested types and fields can be inspected.
func RunEncode(cmd *cobra.Command, args []string) error {
	idx, err := parsePoolIndex(args[1])
	if err != nil {
		return err
	}
	p, err := pool.Load(args[0])
	if err != nil {
		return err
	}
	value, err := encode.New(p).EncodeIndex(idx)
	if err != nil {
		return errors.Errorf("encode %d: %w", idx, err)
	}
	return printValue(cmd, value, true)
}

func RunIndex(cmd *cobra.Command, args []string) error {
	p, err := pool.Load(args[0])
	if err != nil {
		return err
	}
	index, err := nav.BuildIndex(p)
	if err != nil {
		return err
	}
	return printValue(cmd, index, true)
}

func RunSchema(cmd *cobra.Command, args []string) error {
	doc := schema.Document()
	if err := doc.Validate(commandContext(cmd)); err != nil {
		return errors.Errorf("invalid schema: %w", err)
	}
	return printValue(cmd, doc, false)
}

// printValue writes value to stdout in the selected format. Indentation
// follows --indent and the config when honorIndent is set and is always on
// otherwise.
func printValue(cmd *cobra.Command, value any, honorIndent bool) error {
	cfg := config.FromContext(commandContext(cmd))
	format, err := ParseOutputFormat(cmd, cfg)
	if err != nil {
		return err
	}
	indent := true
	if honorIndent {
		if indent, err = boolSetting(cmd, "indent", cfg.Output.Indent); err != nil {
			return err
		}
	}
	data, err := output.Marshal(format, value, indent)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return errors.WithStack(err)
}

func parsePoolIndex(value string) (pool.Index[pool.Definition], error) {
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, errors.Errorf("invalid pool index %q: %w", value, err)
	}
	if n == 0 {
		return 0, errors.Errorf("invalid pool index %q: 0 is the undefined index", value)
	}
	return pool.Index[pool.Definition](n), nil
}
