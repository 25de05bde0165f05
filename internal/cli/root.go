package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/Prompter/internal/config"
	"github.com/unalkalkan/Prompter/internal/logging"
	"github.com/unalkalkan/Prompter/internal/segmentation"
	"github.com/unalkalkan/Prompter/pkg/types"
)

var Version = "dev"

// app carries state shared by every subcommand once the root has run
type app struct {
	configPath string
	logLevel   string

	cfg    *types.Config
	logger *slog.Logger
}

// thresholdFlags are the word-budget flags shared by build, segment, preview and watch
type thresholdFlags struct {
	preset  string
	ideal   int
	maximum int
}

func (f *thresholdFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.preset, "preset", "", "Font-size preset (50pt, 60pt); defaults to the configured preset")
	cmd.Flags().IntVar(&f.ideal, "ideal", 0, "Ideal words per slide (overrides the preset)")
	cmd.Flags().IntVar(&f.maximum, "max", 0, "Maximum words per slide (overrides the preset)")
}

// resolve applies the flags on top of the configured budget
func (f *thresholdFlags) resolve(cfg *types.Config) (types.Thresholds, error) {
	override := types.Thresholds{Ideal: f.ideal, Maximum: f.maximum}
	if f.preset != "" {
		return segmentation.Resolve(f.preset, override)
	}
	return segmentation.Override(cfg.Segmentation.Thresholds, override)
}

// NewRootCommand builds the prompter command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "prompter",
		Short:         "Turn scripts into teleprompter slide decks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Configuration file (.yaml or .toml); defaults plus PR_ environment overrides when empty")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(
		newBuildCmd(a),
		newSegmentCmd(a),
		newPreviewCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI with ctx as the command context
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	// The CLI always logs human-readable text to stderr
	logger, err := logging.New(cfg.Log.Level, "text", os.Stderr)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "prompter %s\n", Version)
		},
	}
}
