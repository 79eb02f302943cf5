package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ctrlaltwill/Sprout-sub003/internal/importer"
	"github.com/ctrlaltwill/Sprout-sub003/internal/mapper"
)

func newImportCommand() *cobra.Command {
	var (
		skipDuplicates  bool
		applyScheduling bool
		mappings        []string
	)

	command := &cobra.Command{
		Use:   "import <archive>",
		Short: "Import an Anki archive into the vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("skip-duplicates") {
				skipDuplicates = cfg.Import.SkipDuplicates
			}
			if !cmd.Flags().Changed("apply-scheduling") {
				applyScheduling = cfg.Import.ApplyScheduling
			}

			explicit, err := parseMappingFlags(mappings)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			imp, err := newImporter(cfg)
			if err != nil {
				return err
			}

			result, err := imp.Import(cmd.Context(), data, importer.Options{
				VaultDir:        cfg.Vault.Directory,
				MediaDir:        cfg.Vault.MediaDirectory,
				SkipDuplicates:  skipDuplicates,
				ApplyScheduling: applyScheduling,
				Mappings:        explicit,
				OnProgress: func(percent int, phase string) {
					fmt.Printf("\r[%3d%%] %-40s", percent, phase)
				},
			})
			fmt.Println()
			if err != nil {
				return fmt.Errorf("importer.Import() > %w", err)
			}

			displayImportResult(result)
			return nil
		},
	}

	command.Flags().BoolVar(&skipDuplicates, "skip-duplicates", true, "Skip cards whose content already exists in the vault")
	command.Flags().BoolVar(&applyScheduling, "apply-scheduling", false, "Apply scheduling state from the archive")
	command.Flags().StringSliceVar(&mappings, "map", nil,
		"Explicit field mapping for a note type, e.g. 1234:q=0,a=1,i=2 or 1234:q=0,as=cloze")

	return command
}

func newPreviewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "preview <archive>",
		Short: "Summarize an Anki archive without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			imp, err := newImporter(cfg)
			if err != nil {
				return err
			}

			result, err := imp.Preview(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("importer.Preview() > %w", err)
			}

			displayPreview(args[0], result)
			return nil
		},
	}

	return command
}

// parseMappingFlags parses --map values of the form
// "<modelID>:q=<idx>,a=<idx>,i=<idx>,as=<basic|cloze>". Omitted slots
// stay unmapped.
func parseMappingFlags(values []string) (map[int64]mapper.FieldMapping, error) {
	if len(values) == 0 {
		return nil, nil
	}

	mappings := make(map[int64]mapper.FieldMapping, len(values))
	for _, value := range values {
		id, spec, found := strings.Cut(value, ":")
		if !found {
			return nil, fmt.Errorf("invalid --map value %q: expected <modelID>:<spec>", value)
		}
		modelID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --map note type id %q: %w", id, err)
		}

		mapping := mapper.FieldMapping{
			Kind:          mapper.MappingExplicit,
			QuestionIndex: -1,
			AnswerIndex:   -1,
			InfoIndex:     -1,
			ImportAs:      mapper.FlavorBasic,
		}
		for _, part := range strings.Split(spec, ",") {
			key, raw, found := strings.Cut(part, "=")
			if !found {
				return nil, fmt.Errorf("invalid --map entry %q: expected key=value", part)
			}
			switch key {
			case "q", "a", "i":
				index, err := strconv.Atoi(raw)
				if err != nil || index < 0 {
					return nil, fmt.Errorf("invalid --map field index %q", raw)
				}
				switch key {
				case "q":
					mapping.QuestionIndex = index
				case "a":
					mapping.AnswerIndex = index
				case "i":
					mapping.InfoIndex = index
				}
			case "as":
				switch raw {
				case "basic":
					mapping.ImportAs = mapper.FlavorBasic
				case "cloze":
					mapping.ImportAs = mapper.FlavorCloze
				default:
					return nil, fmt.Errorf("invalid --map flavor %q: expected basic or cloze", raw)
				}
			default:
				return nil, fmt.Errorf("invalid --map key %q: expected q, a, i or as", key)
			}
		}
		if mapping.QuestionIndex < 0 {
			return nil, fmt.Errorf("--map value %q does not map a question field", value)
		}
		mappings[modelID] = mapping
	}
	return mappings, nil
}

func displayImportResult(result importer.Result) {
	bold := color.New(color.Bold)

	bold.Println("Import finished")
	fmt.Printf("  Cards imported: %d\n", result.Imported)
	if result.DuplicatesSkipped > 0 {
		fmt.Printf("  Duplicates skipped: %d\n", result.DuplicatesSkipped)
	}
	if result.MediaSaved > 0 {
		fmt.Printf("  Media files saved: %d\n", result.MediaSaved)
	}
	if result.SchedulingPatched > 0 {
		fmt.Printf("  Scheduling states applied: %d\n", result.SchedulingPatched)
	}
	if result.ReviewLogEntries > 0 {
		fmt.Printf("  Review history entries applied: %d\n", result.ReviewLogEntries)
	}
	if result.MissingMedia > 0 {
		color.Yellow("  Media references without archive files: %d", result.MissingMedia)
	}
	if result.ExcludedOcclusion > 0 {
		color.Yellow("  Occlusion notes excluded: %d", result.ExcludedOcclusion)
	}
	if result.ExcludedNonStandard > 0 {
		color.Yellow("  Unrecognized notes excluded: %d (run preview to build a --map)", result.ExcludedNonStandard)
	}
	for _, file := range result.Files {
		fmt.Printf("  Wrote %s\n", file)
	}
	for _, warning := range result.Warnings {
		color.Red("  Warning: %s", warning)
	}
}

func displayPreview(path string, result importer.PreviewResult) {
	bold := color.New(color.Bold)

	bold.Printf("Archive %s\n", path)
	fmt.Printf("  Notes: %d (%d standard, %d cloze, %d occlusion, %d unrecognized)\n",
		result.Notes, result.Standard, result.Cloze, result.Occlusion, result.NonStandard)
	fmt.Printf("  Media files: %d\n", result.MediaCount)
	if len(result.Decks) > 0 {
		fmt.Printf("  Decks: %s\n", strings.Join(result.Decks, ", "))
	}

	if len(result.NonStandardModels) > 0 {
		fmt.Println()
		bold.Println("Unrecognized note types")
		for _, model := range result.NonStandardModels {
			fmt.Printf("  %d %s (%d notes)\n", model.ID, model.Name, model.NoteCount)
			for n, field := range model.Fields {
				fmt.Printf("    field %d: %s\n", n, field)
			}
		}
		fmt.Println()
		fmt.Println("Import these with --map <id>:q=<idx>,a=<idx> after checking the fields above.")
	}
}
