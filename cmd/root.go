package cmd

import (
	"context"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/stylist/internal/config"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	model      string
	timeout    time.Duration
	verbose    bool
}

// Execute runs the stylist command line with args. SIGINT and SIGTERM cancel
// the command context, which is what lets serve drain in-flight edits.
func Execute(ctx context.Context, version string, args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	return fang.Execute(
		ctx,
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
}

func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "stylist",
		Short: "AI virtual stylist: restyle the outfit in a photo with a text prompt",
		Long: `Stylist edits the clothing in a photo from a natural-language description
using Google Gemini image generation.

Run it as a web studio with "serve", or edit a single file with "edit".
The Gemini API key is read from GEMINI_API_KEY (or API_KEY); a .env file
in the working directory is loaded if present.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if flags.verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flags.model, "model", "", "Gemini model (defaults to gemini-2.5-flash-image)")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "Limit for a single edit call, e.g. 90s (0 means no limit)")
	cmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newEditCmd(flags))
	cmd.AddCommand(newExamplesCmd(flags))

	return cmd
}

// load reads the config file and applies flag overrides.
func (f *globalFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	if f.model != "" {
		cfg.Model = f.model
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = f.timeout
	}

	return cfg, cfg.Validate()
}
