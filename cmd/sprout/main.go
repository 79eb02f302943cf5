package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var debug bool

	rootCommand := &cobra.Command{
		Use:           "sprout",
		Short:         "Exchange flashcards between a markdown vault and Anki archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(debug)
		},
	}

	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "Path to the configuration file")
	rootCommand.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCommand.AddCommand(newExportCommand())
	rootCommand.AddCommand(newImportCommand())
	rootCommand.AddCommand(newPreviewCommand())

	return rootCommand
}

func setupLogger(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
