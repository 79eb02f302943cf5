package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/archive"
	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
	"github.com/ctrlaltwill/Sprout-sub003/internal/engine"
	"github.com/ctrlaltwill/Sprout-sub003/internal/mapper"
	"github.com/ctrlaltwill/Sprout-sub003/internal/media"
	"github.com/ctrlaltwill/Sprout-sub003/internal/store"
)

// Progress reports import progress as a percentage plus a phase label.
type Progress func(percent int, phase string)

// Options configures one import batch.
type Options struct {
	// VaultDir is the destination root for card files.
	VaultDir string
	// MediaDir is the destination for archive media files.
	MediaDir string
	// SkipDuplicates drops cards whose content hash is already registered.
	SkipDuplicates bool
	// ApplyScheduling patches scheduling state from the archive back into
	// the host store, matched by content hash.
	ApplyScheduling bool
	// Mappings supplies explicit field mappings per note-type id, for note
	// types the standard name lists cannot resolve.
	Mappings map[int64]mapper.FieldMapping
	// OnProgress is called at fixed milestones; nil disables reporting.
	OnProgress Progress
}

// Result accumulates the counts of one import batch.
type Result struct {
	Imported            int
	DuplicatesSkipped   int
	ExcludedOcclusion   int
	ExcludedNonStandard int
	MediaSaved          int
	// MissingMedia counts references to media files absent from the
	// archive; their embeds point at files that were never saved.
	MissingMedia      int
	SchedulingPatched int
	ReviewLogEntries  int
	Files             []string
	Warnings          []string
}

// Importer runs preview and import batches against a card store.
type Importer struct {
	cards  store.CardStore
	loader *engine.Loader
}

func NewImporter(cards store.CardStore, loader *engine.Loader) *Importer {
	return &Importer{
		cards:  cards,
		loader: loader,
	}
}

// bucket groups the notes of one deck together with the rows needed to
// reconstruct scheduling state.
type bucket struct {
	deckName string
	notes    []anki.Note
}

// Import unpacks an archive and writes its cards into the vault, one file
// per deck. A failure in one deck bucket is recorded as a warning and
// does not abort the remaining buckets.
func (i *Importer) Import(ctx context.Context, data []byte, opts Options) (Result, error) {
	result := Result{}
	progress := opts.OnProgress
	if progress == nil {
		progress = func(int, string) {}
	}
	progress(0, "reading archive")

	eng, err := i.loader.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("loader.Load > %w", err)
	}
	pkg, err := archive.Unpack(data)
	if err != nil {
		return result, fmt.Errorf("archive.Unpack > %w", err)
	}

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
	creationSeconds, err := col.ReadCreationTime(ctx)
	if err != nil {
		return result, fmt.Errorf("col.ReadCreationTime > %w", err)
	}
	notes, err := col.ReadAllNotes(ctx)
	if err != nil {
		return result, fmt.Errorf("col.ReadAllNotes > %w", err)
	}
	rows, err := col.ReadAllCards(ctx)
	if err != nil {
		return result, fmt.Errorf("col.ReadAllCards > %w", err)
	}
	revlog, err := col.ReadAllRevlog(ctx)
	if err != nil {
		return result, fmt.Errorf("col.ReadAllRevlog > %w", err)
	}

	progress(10, "saving media")
	renames, err := media.SaveAll(opts.MediaDir, pkg.Media)
	if err != nil {
		return result, fmt.Errorf("media.SaveAll > %w", err)
	}
	result.MediaSaved = len(renames)
	progress(20, "mapping notes")

	rowsByNote := map[int64][]anki.Card{}
	for _, row := range rows {
		rowsByNote[row.NoteID] = append(rowsByNote[row.NoteID], row)
	}
	revlogByCard := map[int64][]anki.Revlog{}
	for _, rev := range revlog {
		revlogByCard[rev.CardID] = append(revlogByCard[rev.CardID], rev)
	}
	buckets := bucketByDeck(notes, rowsByNote, decks)

	seen := map[string]bool{}
	for n, b := range buckets {
		path := destinationPath(opts.VaultDir, b.deckName)
		wrote, err := i.importBucket(ctx, b, bucketContext{
			path:            path,
			models:          models,
			rowsByNote:      rowsByNote,
			revlogByCard:    revlogByCard,
			renames:         renames,
			creationSeconds: creationSeconds,
			seen:            seen,
			opts:            opts,
		}, &result)
		if err != nil {
			slog.Default().Warn("deck bucket failed",
				"deck", b.deckName,
				"error", err,
			)
			result.Warnings = append(result.Warnings, fmt.Sprintf("deck %q: %v", b.deckName, err))
			continue
		}
		if wrote {
			result.Files = append(result.Files, path)
		}
		progress(20+75*(n+1)/len(buckets), "writing "+b.deckName)
	}

	progress(100, "done")
	return result, nil
}

// bucketByDeck groups notes by the deck of their first card row, sorted
// by deck name so runs are deterministic.
func bucketByDeck(notes []anki.Note, rowsByNote map[int64][]anki.Card, decks map[int64]anki.Deck) []bucket {
	byName := map[string][]anki.Note{}
	for _, note := range notes {
		name := "Imported"
		if rows := rowsByNote[note.ID]; len(rows) > 0 {
			if d, ok := decks[rows[0].DeckID]; ok {
				name = d.Name
			}
		}
		byName[name] = append(byName[name], note)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	buckets := make([]bucket, 0, len(names))
	for _, name := range names {
		buckets = append(buckets, bucket{deckName: name, notes: byName[name]})
	}
	return buckets
}

// destinationPath maps a deck path onto a vault file: every segment but
// the last becomes a folder, the last becomes the file name.
func destinationPath(vaultDir, deckName string) string {
	segments := strings.Split(deckName, anki.DeckSeparator)
	for n, segment := range segments {
		segments[n] = sanitizeSegment(segment)
	}
	segments[len(segments)-1] += ".md"
	return filepath.Join(append([]string{vaultDir}, segments...)...)
}

var segmentReplacer = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", `"`, "-", "<", "-", ">", "-", "|", "-",
)

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segmentReplacer.Replace(segment))
	if segment == "" {
		return "Untitled"
	}
	return segment
}

type bucketContext struct {
	path            string
	models          map[int64]anki.Model
	rowsByNote      map[int64][]anki.Card
	revlogByCard    map[int64][]anki.Revlog
	renames         map[string]string
	creationSeconds int64
	seen            map[string]bool
	opts            Options
}

func (i *Importer) importBucket(ctx context.Context, b bucket, bc bucketContext, result *Result) (bool, error) {
	var (
		blocks  []string
		patches []schedulingPatch
	)
	for _, note := range b.notes {
		card, skip := i.mapBucketNote(note, b.deckName, bc, result)
		if skip {
			continue
		}

		hash := domain.ContentHash(card)
		if bc.opts.SkipDuplicates {
			if bc.seen[hash] {
				result.DuplicatesSkipped++
				continue
			}
			if _, exists := i.cards.Scheduling(hash); exists {
				result.DuplicatesSkipped++
				continue
			}
			bc.seen[hash] = true
		}

		block, err := store.FormatBlock(card)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("note %d: %v", note.ID, err))
			continue
		}
		blocks = append(blocks, block)
		result.Imported++

		if bc.opts.ApplyScheduling {
			if rows := bc.rowsByNote[note.ID]; len(rows) > 0 {
				patch := schedulingPatch{
					hash:  hash,
					state: mapper.FromAnkiCard(rows[0], bc.creationSeconds),
				}
				for _, rev := range bc.revlogByCard[rows[0].ID] {
					patch.log = append(patch.log, mapper.FromRevlog(rev))
				}
				patches = append(patches, patch)
			}
		}
	}

	if len(blocks) == 0 {
		return false, nil
	}
	if err := store.AppendBlocks(bc.path, blocks); err != nil {
		return false, fmt.Errorf("store.AppendBlocks > %w", err)
	}

	// Registration must succeed before scheduling patches are applied, so
	// patches never point at cards the host does not know yet.
	registered, err := i.cards.RegisterFile(ctx, bc.path)
	if err != nil {
		return false, fmt.Errorf("cards.RegisterFile > %w", err)
	}
	if registered.Failed > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("deck %q: %d blocks failed to register", b.deckName, registered.Failed))
	}

	for _, patch := range patches {
		if err := i.cards.PutScheduling(patch.hash, patch.state); err != nil {
			return true, fmt.Errorf("cards.PutScheduling > %w", err)
		}
		result.SchedulingPatched++
		for _, entry := range patch.log {
			if err := i.cards.AppendReviewLog(patch.hash, entry); err != nil {
				return true, fmt.Errorf("cards.AppendReviewLog > %w", err)
			}
			result.ReviewLogEntries++
		}
	}
	return true, nil
}

type schedulingPatch struct {
	hash  string
	state domain.SchedulingState
	log   []domain.ReviewLog
}

// mapBucketNote converts one notes row to a native card, counting
// exclusions instead of dropping silently. Media references are rewritten
// before the HTML-to-markdown conversion strips tags.
func (i *Importer) mapBucketNote(note anki.Note, deckName string, bc bucketContext, result *Result) (domain.Card, bool) {
	model, ok := bc.models[note.ModelID]
	if !ok {
		model = anki.NewFallbackModel(note.ModelID, time.Now().Unix())
	}
	if isOcclusionModel(model) {
		result.ExcludedOcclusion++
		return domain.Card{}, true
	}

	mapping := mapper.StandardMapping
	if explicit, ok := bc.opts.Mappings[note.ModelID]; ok {
		mapping = explicit
	} else if !mapper.IsStandardModel(model) {
		result.ExcludedNonStandard++
		return domain.Card{}, true
	}

	for _, name := range media.References(note.Fields) {
		if _, ok := bc.renames[name]; !ok {
			result.MissingMedia++
		}
	}
	note.Fields = media.RewriteInbound(note.Fields, bc.renames)
	card, err := mapper.MapNote(note, model, mapper.DeckGroups(deckName), mapping)
	if err != nil {
		result.ExcludedNonStandard++
		return domain.Card{}, true
	}
	return card, false
}
