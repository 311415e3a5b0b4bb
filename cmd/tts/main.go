// Command tts synthesizes speech locally without running the REST server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"github.com/adrianliechti/tts-playground/config"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "tts",
		Short: "Synthesize speech with local and hosted TTS engines",

		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogger()

			c, err := loadConfig(cmd.Context(), configFile)

			if err != nil {
				return err
			}

			cfg = c
			return nil
		},

		PersistentPostRunE: func(*cobra.Command, []string) error {
			if cfg == nil {
				return nil
			}

			return cfg.Close()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "configuration file, all engines on a local worker when missing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(synthesizeCmd, batchCmd, conversationCmd, enginesCmd, speakersCmd)
}

func setupLogger() {
	level := log.InfoLevel

	if verbose {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})

	slog.SetDefault(slog.New(logger))
}

func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(ctx)
	}

	return config.Parse(ctx, path)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
