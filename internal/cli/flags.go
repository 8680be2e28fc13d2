package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/config"
	"github.com/bundledoc/bundledoc/internal/output"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", errors.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

// The *Setting helpers return the flag value when it was set on the command
// line and fallback (usually from config) otherwise.

func flagChanged(cmd *cobra.Command, name string) bool {
	return cmd != nil && cmd.Flags().Lookup(name) != nil && cmd.Flags().Changed(name)
}

func stringSetting(cmd *cobra.Command, name, fallback string) (string, error) {
	if !flagChanged(cmd, name) {
		return fallback, nil
	}
	return OptionalStringFlag(cmd, name)
}

func boolSetting(cmd *cobra.Command, name string, fallback bool) (bool, error) {
	if !flagChanged(cmd, name) {
		return fallback, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, errors.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func intSetting(cmd *cobra.Command, name string, fallback int) (int, error) {
	if !flagChanged(cmd, name) {
		return fallback, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, errors.Errorf("failed to read --%s flag: %w", name, err)
	}
	if value < 0 {
		return 0, errors.Errorf("--%s must be >= 0, got %d", name, value)
	}
	return value, nil
}

func ParseOutputFormat(cmd *cobra.Command, cfg *config.Config) (output.Format, error) {
	value, err := stringSetting(cmd, "format", cfg.Output.Format)
	if err != nil {
		return "", err
	}
	return output.ParseFormat(value)
}

// ResolveOutputOptions merges output flags over cfg.
func ResolveOutputOptions(cmd *cobra.Command, cfg *config.Config) (output.Options, error) {
	dir, err := stringSetting(cmd, "output", cfg.Output.Dir)
	if err != nil {
		return output.Options{}, err
	}
	if dir == "" {
		return output.Options{}, errors.New("output directory must not be empty")
	}
	format, err := ParseOutputFormat(cmd, cfg)
	if err != nil {
		return output.Options{}, err
	}
	layoutValue, err := stringSetting(cmd, "layout", cfg.Output.Layout)
	if err != nil {
		return output.Options{}, err
	}
	layout, err := output.ParseLayout(layoutValue)
	if err != nil {
		return output.Options{}, err
	}
	indent, err := boolSetting(cmd, "indent", cfg.Output.Indent)
	if err != nil {
		return output.Options{}, err
	}
	return output.Options{Dir: dir, Format: format, Layout: layout, Indent: indent}, nil
}
