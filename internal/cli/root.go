// Package cli implements the transmogrify command line.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ahl/transmogrify/internal/config"
	"github.com/ahl/transmogrify/internal/logger"
)

// ErrDiagnostics is returned by a command that reported error diagnostics.
var ErrDiagnostics = errors.New("errors were reported")

// app holds the state shared by the subcommands of one invocation.
type app struct {
	cfg *config.Config

	dir     string
	verbose int
	json    bool
	color   string
}

// path resolves p against the working directory given with -C.
func (a *app) path(p string) string {
	if a.dir == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(a.dir, p)
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "transmogrify",
		Short: "Generate code that rebuilds Go values as Go source",
		Long: color.CyanString(`transmogrify - values as Go source

transmogrify derives methods that turn a value into the Go expression that
builds it, and rewrites hand-written skeletons into their generated form.

Commands:
  • derive   generate methods for types marked //transmogrify:derive
  • rewrite  expand //transmogrify:template skeleton files
  • check    report diagnostics and stale output without writing`),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.dir, "dir", "C", "", "run as if started in `dir`")
	flags.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity (-v, -vv)")
	flags.BoolVar(&a.json, "json", false, "write log lines as JSON")
	flags.StringVar(&a.color, "color", "", "colorize output: auto, always or never")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newDeriveCommand(a))
	rootCmd.AddCommand(newRewriteCommand(a))
	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newInspectCommand(a))

	return rootCmd
}

// setup loads the configuration, lets flags override it and starts the
// logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	root, err := config.FindRoot(a.path("."))
	if err != nil {
		return fmt.Errorf("find project root: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Log.Verbosity = a.verbose
	}

	if flags.Changed("json") {
		cfg.Log.Format = config.FormatText
		if a.json {
			cfg.Log.Format = config.FormatJSON
		}
	}

	if flags.Changed("color") {
		cfg.Color = a.color
	}

	switch cfg.Color {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	case config.ColorAuto:
	default:
		return fmt.Errorf("--color must be one of auto, always, never, got: %s", cfg.Color)
	}

	if err := logger.Initialize(cfg.Log.JSON(), cfg.Log.Verbosity); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	logger.Logger.Debugw("loaded configuration", "root", root, "config", cfg)

	a.cfg = cfg

	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	defer logger.Sync()

	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		red := color.New(color.FgRed, color.Bold)
		red.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)

		return 1
	}

	return 0
}
