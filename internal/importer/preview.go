// Package importer unpacks .apkg archives into the native vault: a
// non-mutating preview that classifies the archive's note types, and the
// full import that writes card files, saves media, and patches scheduling
// state back into the host store.
package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/archive"
	"github.com/ctrlaltwill/Sprout-sub003/internal/mapper"
)

// ModelDescriptor describes a non-standard note type so the user can
// supply an explicit field mapping before the full import.
type ModelDescriptor struct {
	ID        int64
	Name      string
	Fields    []string
	NoteCount int
}

// PreviewResult summarizes an archive without mutating anything.
type PreviewResult struct {
	Notes             int
	Occlusion         int
	Cloze             int
	Standard          int
	NonStandard       int
	Decks             []string
	MediaCount        int
	NonStandardModels []ModelDescriptor
}

// Preview unpacks the archive, reads every table and classifies each note
// by its note type.
func (i *Importer) Preview(ctx context.Context, data []byte) (PreviewResult, error) {
	result := PreviewResult{}

	eng, err := i.loader.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("loader.Load > %w", err)
	}
	pkg, err := archive.Unpack(data)
	if err != nil {
		return result, fmt.Errorf("archive.Unpack > %w", err)
	}
	result.MediaCount = len(pkg.Media)

	col, err := eng.OpenCollection(pkg.Database)
	if err != nil {
		return result, fmt.Errorf("engine.OpenCollection > %w", err)
	}
	defer func() {
		_ = col.Close()
	}()

	models, err := col.ReadModels(ctx)
	if err != nil {
		return result, fmt.Errorf("col.ReadModels > %w", err)
	}
	decks, err := col.ReadDecks(ctx)
	if err != nil {
		return result, fmt.Errorf("col.ReadDecks > %w", err)
	}
	notes, err := col.ReadAllNotes(ctx)
	if err != nil {
		return result, fmt.Errorf("col.ReadAllNotes > %w", err)
	}

	for _, d := range decks {
		result.Decks = append(result.Decks, d.Name)
	}
	sort.Strings(result.Decks)

	nonStandardCounts := map[int64]int{}
	for _, note := range notes {
		result.Notes++
		model, ok := models[note.ModelID]
		switch {
		case ok && isOcclusionModel(model):
			result.Occlusion++
		case ok && model.Kind == anki.ModelKindCloze:
			result.Cloze++
		case ok && mapper.IsStandardModel(model):
			result.Standard++
		default:
			result.NonStandard++
			nonStandardCounts[note.ModelID]++
		}
	}

	for id, count := range nonStandardCounts {
		descriptor := ModelDescriptor{ID: id, Name: "(missing note type)", NoteCount: count}
		if model, ok := models[id]; ok {
			descriptor.Name = model.Name
			descriptor.Fields = model.FieldNames()
		}
		result.NonStandardModels = append(result.NonStandardModels, descriptor)
	}
	sort.Slice(result.NonStandardModels, func(a, b int) bool {
		return result.NonStandardModels[a].ID < result.NonStandardModels[b].ID
	})
	return result, nil
}

// isOcclusionModel spots image-occlusion note types, which have no native
// counterpart and are excluded from imports.
func isOcclusionModel(model anki.Model) bool {
	return strings.Contains(strings.ToLower(model.Name), "occlusion")
}
