package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ctrlaltwill/Sprout-sub003/internal/export"
)

func newExportCommand() *cobra.Command {
	var (
		output            string
		deck              string
		branch            string
		groups            []string
		source            string
		choice            string
		includeScheduling bool
	)

	command := &cobra.Command{
		Use:   "export",
		Short: "Export vault cards to an Anki archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			scope, err := buildScope(branch, groups, source)
			if err != nil {
				return err
			}

			if deck == "" {
				deck = cfg.Export.DefaultDeck
			}
			if choice == "" {
				choice = cfg.Export.ChoiceStrategy
			}
			var choiceStrategy export.ChoiceStrategy
			if err := choiceStrategy.UnmarshalText([]byte(choice)); err != nil {
				return err
			}
			if !cmd.Flags().Changed("include-scheduling") {
				includeScheduling = cfg.Export.IncludeScheduling
			}

			exporter, cleanup, err := newExporter(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			data, stats, err := exporter.Export(cmd.Context(), export.Options{
				Scope:             scope,
				Choice:            choiceStrategy,
				DefaultDeck:       deck,
				IncludeScheduling: includeScheduling,
			})
			if err != nil {
				return fmt.Errorf("exporter.Export() > %w", err)
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			displayExportStats(output, stats)
			return nil
		},
	}

	command.Flags().StringVarP(&output, "output", "o", "export.apkg", "Destination archive file")
	command.Flags().StringVar(&deck, "deck", "", "Deck name for cards without folders or groups")
	command.Flags().StringVar(&branch, "branch", "", "Limit the export to one folder branch")
	command.Flags().StringSliceVar(&groups, "groups", nil, "Limit the export to cards in the given groups")
	command.Flags().StringVar(&source, "source", "", "Limit the export to one card file")
	command.Flags().StringVar(&choice, "choice", "", "Multiple-choice handling: convert or skip")
	command.Flags().BoolVar(&includeScheduling, "include-scheduling", false, "Carry scheduling state into the archive")

	return command
}

// buildScope turns the scope flags into a scope, rejecting combinations.
func buildScope(branch string, groups []string, source string) (export.Scope, error) {
	set := 0
	scope := export.Scope{Kind: export.ScopeAll}
	if branch != "" {
		set++
		scope = export.Scope{Kind: export.ScopeBranch, Branch: branch}
	}
	if len(groups) > 0 {
		set++
		scope = export.Scope{Kind: export.ScopeGroups, Groups: groups}
	}
	if source != "" {
		set++
		scope = export.Scope{Kind: export.ScopeSource, Source: source}
	}
	if set > 1 {
		return export.Scope{}, fmt.Errorf("--branch, --groups and --source are mutually exclusive")
	}
	return scope, nil
}

func displayExportStats(output string, stats export.Stats) {
	bold := color.New(color.Bold)

	bold.Printf("Exported %s\n", output)
	fmt.Printf("  Notes: %d\n", stats.Notes)
	fmt.Printf("  Cards: %d\n", stats.Cards)
	if stats.RevlogEntries > 0 {
		fmt.Printf("  Review history entries: %d\n", stats.RevlogEntries)
	}
	if stats.MediaFiles > 0 {
		fmt.Printf("  Media files: %d\n", stats.MediaFiles)
	}
	if len(stats.Decks) > 0 {
		fmt.Printf("  Decks: %s\n", strings.Join(stats.Decks, ", "))
	}

	if stats.ChoiceConverted > 0 {
		fmt.Printf("  Choice cards converted: %d\n", stats.ChoiceConverted)
	}
	if stats.ChoiceSkipped > 0 {
		color.Yellow("  Choice cards skipped: %d", stats.ChoiceSkipped)
	}
	if stats.ExcludedOcclusion > 0 {
		color.Yellow("  Occlusion cards excluded: %d", stats.ExcludedOcclusion)
	}
	if stats.MissingMedia > 0 {
		color.Yellow("  Missing media files: %d", stats.MissingMedia)
	}
}
