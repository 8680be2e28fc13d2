package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/bundledoc/bundledoc/internal/config"
	"github.com/bundledoc/bundledoc/internal/logging"
	"github.com/bundledoc/bundledoc/internal/nav"
	"github.com/bundledoc/bundledoc/internal/schema"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bundledoc",
		Short: "Export script bundle definitions as JSON or YAML documents",
		Long: `Bundledoc reads the constant pool of a compiled script bundle and writes
every class, function, and enum as a self-contained document, plus a flat
index of names and pool indices for navigation.

Output is written to ./out by default and can be version-controlled.
Settings are read from .bundledoc.yaml in the working directory when present.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupCommand,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./"+config.FileName+" when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored log output")

	// Export Commands
	generateCmd := &cobra.Command{
		Use:   "generate <pool-file>",
		Short: "Encode every exported definition and write documents plus the index",
		Args:  cobra.ExactArgs(1),
		RunE:  RunGenerate,
	}
	addOutputFlags(generateCmd)
	generateCmd.Flags().StringP("output", "o", "", "Output directory (default from config: out)")
	generateCmd.Flags().String("layout", "", "Output layout: split|combined")
	generateCmd.Flags().Int("workers", 0, "Parallel encoders (default: GOMAXPROCS)")
	generateCmd.Flags().Bool("check", false, "Compare with the output directory instead of writing; fail when stale")
	generateCmd.Flags().Bool("keep-going", false, "Exit zero even when some definitions fail to encode")
	generateCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	encodeCmd := &cobra.Command{
		Use:   "encode <pool-file> <index>",
		Short: "Print the document for one pool index",
		Args:  cobra.ExactArgs(2),
		RunE:  RunEncode,
	}
	addOutputFlags(encodeCmd)

	indexCmd := &cobra.Command{
		Use:   "index <pool-file>",
		Short: "Print the reference index of a pool",
		Args:  cobra.ExactArgs(1),
		RunE:  RunIndex,
	}
	addOutputFlags(indexCmd)

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the document schema as an OpenAPI component set",
		Args:  cobra.NoArgs,
		RunE:  RunSchema,
	}
	schemaCmd.Flags().String("format", "", "Output format: json|yaml")

	// Navigate Commands
	symbolCmd := &cobra.Command{
		Use:   "symbol <name|index>",
		Short: "Lookup definitions by name or pool index",
		Args:  cobra.ExactArgs(1),
		RunE:  nav.RunSymbol,
	}
	symbolCmd.Flags().String("dir", "", "Output directory holding the index (default from config)")
	symbolCmd.Flags().Bool("json", false, "Print machine-readable symbol matches")
	symbolCmd.Flags().Bool("fuzzy", false, "Enable BM25 fuzzy fallback when exact lookup misses")
	symbolCmd.Flags().Int("limit", 10, "Maximum number of symbol matches to return")

	basesCmd := &cobra.Command{
		Use:   "bases <name|index>",
		Short: "Show the base class chain of a class, nearest first",
		Args:  cobra.ExactArgs(1),
		RunE:  nav.RunBases,
	}
	basesCmd.Flags().String("dir", "", "Output directory holding the index (default from config)")
	basesCmd.Flags().Bool("json", false, "Print machine-readable base chain")

	subclassesCmd := &cobra.Command{
		Use:   "subclasses <name|index>",
		Short: "Show classes that directly extend a class",
		Args:  cobra.ExactArgs(1),
		RunE:  nav.RunSubclasses,
	}
	subclassesCmd.Flags().String("dir", "", "Output directory holding the index (default from config)")
	subclassesCmd.Flags().Bool("json", false, "Print machine-readable subclass results")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bundledoc %s (%s)\n", version, schema.Version)
		},
	}

	rootCmd.AddCommand(
		generateCmd,
		encodeCmd,
		indexCmd,
		schemaCmd,
		symbolCmd,
		basesCmd,
		subclassesCmd,
		versionCmd,
	)

	return rootCmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "Output format: json|yaml")
	cmd.Flags().Bool("indent", false, "Pretty-print JSON output")
}

// setupCommand loads the config, applies global flag overrides, and installs
// the logger before any subcommand runs.
func setupCommand(cmd *cobra.Command, args []string) error {
	workingDir, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(workingDir, configPath)
	if err != nil {
		return err
	}

	if cfg.Log.Level, err = stringSetting(cmd, "log-level", cfg.Log.Level); err != nil {
		return err
	}
	noColor, err := boolSetting(cmd, "no-color", false)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	color := cfg.Log.Color && !noColor && isTerminal(cmd.ErrOrStderr())

	ctx := logging.Setup(commandContext(cmd), cmd.ErrOrStderr(), level, color)
	ctx = config.WithContext(ctx, cfg)
	cmd.SetContext(ctx)
	if cfg.Path != "" {
		slogctx.Debug(ctx, "loaded config", "path", cfg.Path)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
