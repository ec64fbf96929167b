// Package cli provides the command-line interface for chatlens.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/Chatlens/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	verbose bool

	cfg         *config.Config
	logger      *slog.Logger
	closeLogger func() error
)

// rootCmd runs the server when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chatlens",
	Short: "Local chat assistant with OCR-grounded prompts",
	Long: `Chatlens serves a chat API backed by a local language model.

An uploaded image is run through OCR and its text grounds the next prompt.
Chats live in memory for the lifetime of the process.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, closeLogger = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLogger != nil {
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
	RunE: runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ocrCmd)
	rootCmd.AddCommand(tokenCmd)
}
