// Package export turns a set of native cards into a complete .apkg
// archive: scope filtering, deck resolution, media collection, collection
// metadata, row generation and packaging, in that order.
package export

import (
	"context"
	"encoding"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/archive"
	"github.com/ctrlaltwill/Sprout-sub003/internal/database"
	"github.com/ctrlaltwill/Sprout-sub003/internal/deck"
	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
	"github.com/ctrlaltwill/Sprout-sub003/internal/engine"
	"github.com/ctrlaltwill/Sprout-sub003/internal/idgen"
	"github.com/ctrlaltwill/Sprout-sub003/internal/mapper"
	"github.com/ctrlaltwill/Sprout-sub003/internal/media"
	"github.com/ctrlaltwill/Sprout-sub003/internal/store"
)

// ScopeKind selects which part of the collection an export covers.
type ScopeKind int

const (
	ScopeAll ScopeKind = iota + 1
	ScopeBranch
	ScopeGroups
	ScopeSource
)

var scopeKindNames = [...]string{
	ScopeAll:    "all",
	ScopeBranch: "branch",
	ScopeGroups: "groups",
	ScopeSource: "source",
}

var _ fmt.Stringer = ScopeKind(0)

func (k ScopeKind) String() string {
	if k >= ScopeAll && k <= ScopeSource {
		return scopeKindNames[k]
	}
	return fmt.Sprintf("ScopeKind(%d)", int(k))
}

// Scope narrows an export to a folder branch, named groups, or a single
// source file.
type Scope struct {
	Kind ScopeKind
	// Branch is a folder path like "Medicine/Anatomy"; the scope covers
	// the folder and everything below it.
	Branch string
	Groups []string
	// Source is the path of a single card file.
	Source string
}

// ChoiceStrategy decides what happens to multiple-choice cards, which
// have no native note type on the target side.
type ChoiceStrategy int

const (
	ChoiceConvert ChoiceStrategy = iota + 1
	ChoiceSkip
)

var choiceStrategyNames = [...]string{
	ChoiceConvert: "convert",
	ChoiceSkip:    "skip",
}

var (
	_ fmt.Stringer             = ChoiceStrategy(0)
	_ encoding.TextUnmarshaler = (*ChoiceStrategy)(nil)
)

func (s ChoiceStrategy) String() string {
	if s == ChoiceConvert || s == ChoiceSkip {
		return choiceStrategyNames[s]
	}
	return fmt.Sprintf("ChoiceStrategy(%d)", int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ChoiceStrategy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "convert":
		*s = ChoiceConvert
	case "skip":
		*s = ChoiceSkip
	default:
		return fmt.Errorf("invalid choice strategy: %q", text)
	}
	return nil
}

// Options configures one export batch.
type Options struct {
	Scope  Scope
	Choice ChoiceStrategy
	// DefaultDeck overrides the deck name for cards with no folder
	// hierarchy and no groups.
	DefaultDeck string
	// IncludeScheduling carries scheduling state and review history into
	// the archive; without it every card exports as new.
	IncludeScheduling bool
}

// Stats summarizes what one export batch produced and dropped.
type Stats struct {
	Notes             int
	Cards             int
	RevlogEntries     int
	MediaFiles        int
	MissingMedia      int
	ChoiceConverted   int
	ChoiceSkipped     int
	ExcludedOcclusion int
	ExcludedChildren  int
	Decks             []string
}

// Exporter runs export batches against a card store.
type Exporter struct {
	cards        store.CardStore
	settings     store.SchedulerSettings
	loader       *engine.Loader
	gen          *idgen.Generator
	newCollector func() *media.Collector
}

func NewExporter(
	cards store.CardStore,
	settings store.SchedulerSettings,
	loader *engine.Loader,
	gen *idgen.Generator,
	newCollector func() *media.Collector,
) *Exporter {
	return &Exporter{
		cards:        cards,
		settings:     settings,
		loader:       loader,
		gen:          gen,
		newCollector: newCollector,
	}
}

// Export runs one batch end to end and returns the archive bytes.
func (e *Exporter) Export(ctx context.Context, opts Options) ([]byte, Stats, error) {
	stats := Stats{}
	if opts.Choice == 0 {
		opts.Choice = ChoiceConvert
	}

	eng, err := e.loader.Load(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("loader.Load > %w", err)
	}

	e.gen.Reset()

	all, err := e.cards.AllCards(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("cards.AllCards > %w", err)
	}
	batch := e.filter(all, opts, &stats)

	now := time.Now()
	modified := now.Unix()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	creationSeconds := dayStart.Unix()

	// Deck pre-pass so the full deck set exists before the col row is
	// written.
	resolver := deck.NewResolver(e.gen, modified)
	deckIDs := make([]int64, len(batch))
	for i, card := range batch {
		deckIDs[i] = resolver.EnsureDeck(deckNameFor(card, opts.DefaultDeck))
	}
	// Every referenced deck id must exist in the deck map before the col
	// row is written; orphans become placeholder decks.
	resolver.Recover(deckIDs)
	stats.Decks = resolver.Names()

	collector := e.newCollector()
	for i := range batch {
		batch[i] = rewriteMedia(ctx, collector, batch[i])
	}
	stats.MediaFiles = len(collector.Files())
	stats.MissingMedia = len(collector.Missing())

	col, err := eng.CreateCollection()
	if err != nil {
		return nil, stats, fmt.Errorf("engine.CreateCollection > %w", err)
	}
	defer func() {
		_ = col.Close()
	}()

	meta := database.Meta{
		CreatedAt: creationSeconds,
		Models: map[int64]anki.Model{
			anki.BasicModelID: anki.NewBasicModel(anki.BasicModelID, modified),
			anki.ClozeModelID: anki.NewClozeModel(anki.ClozeModelID, modified),
		},
		Decks:       resolver.Decks(),
		DeckConfigs: map[int64]anki.DeckConfig{1: e.deckConfig()},
	}
	if err := col.WriteCollection(ctx, meta); err != nil {
		return nil, stats, fmt.Errorf("col.WriteCollection > %w", err)
	}

	// Revlog ids are review timestamps, so they get their own generator:
	// seeding from e.gen would push them past the note and card ids issued
	// above instead of keeping the recorded times.
	revlogGen := idgen.New()
	for i, card := range batch {
		if err := e.writeCard(ctx, col, card, deckIDs[i], creationSeconds, modified, revlogGen, opts, &stats); err != nil {
			return nil, stats, err
		}
	}

	data, err := col.Bytes()
	if err != nil {
		return nil, stats, fmt.Errorf("col.Bytes > %w", err)
	}
	packed, err := archive.Pack(data, collector.Files())
	if err != nil {
		return nil, stats, fmt.Errorf("archive.Pack > %w", err)
	}

	slog.Default().Info("export finished",
		"notes", stats.Notes,
		"cards", stats.Cards,
		"revlog", stats.RevlogEntries,
		"media", stats.MediaFiles,
		"decks", len(stats.Decks),
	)
	return packed, stats, nil
}

// filter applies scope and exclusion rules. Occlusion cards and cloze
// child cards never export standalone; multiple-choice cards follow the
// configured strategy.
func (e *Exporter) filter(cards []domain.Card, opts Options, stats *Stats) []domain.Card {
	var batch []domain.Card
	for _, card := range cards {
		if !inScope(card, opts.Scope) {
			continue
		}
		switch {
		case card.Type == domain.TypeOcclusion:
			stats.ExcludedOcclusion++
			continue
		case card.ParentID != "":
			stats.ExcludedChildren++
			continue
		case card.Type == domain.TypeChoice && opts.Choice == ChoiceSkip:
			stats.ChoiceSkipped++
			continue
		case card.Type == domain.TypeChoice:
			stats.ChoiceConverted++
		}
		batch = append(batch, card)
	}
	return batch
}

func inScope(card domain.Card, scope Scope) bool {
	switch scope.Kind {
	case ScopeBranch:
		folder := strings.Join(card.Source.FolderSegments, "/")
		return folder == scope.Branch || strings.HasPrefix(folder, scope.Branch+"/")
	case ScopeGroups:
		for _, want := range scope.Groups {
			for _, got := range card.Groups {
				if got == want {
					return true
				}
			}
		}
		return false
	case ScopeSource:
		return card.Source.FilePath == scope.Source
	default:
		return true
	}
}

func deckNameFor(card domain.Card, defaultDeck string) string {
	name := deck.DeckNameFor(card)
	if name == deck.DefaultDeckName && defaultDeck != "" {
		return defaultDeck
	}
	return name
}

// rewriteMedia runs the collector over every text field of a card.
func rewriteMedia(ctx context.Context, collector *media.Collector, card domain.Card) domain.Card {
	card.Question = collector.Rewrite(ctx, card.Question)
	card.Answer = collector.Rewrite(ctx, card.Answer)
	card.Stem = collector.Rewrite(ctx, card.Stem)
	card.ClozeText = collector.Rewrite(ctx, card.ClozeText)
	card.Explanation = collector.Rewrite(ctx, card.Explanation)
	for i := range card.Options {
		card.Options[i] = collector.Rewrite(ctx, card.Options[i])
	}
	return card
}

// deckConfig maps the host scheduler settings onto deck options.
// Retention clamping and FSRS slot layout happen in the database layer.
func (e *Exporter) deckConfig() anki.DeckConfig {
	conf := database.DefaultDeckConfig(1)
	if steps := e.settings.LearningSteps(); len(steps) > 0 {
		conf.New.Delays = steps
	}
	if steps := e.settings.RelearningSteps(); len(steps) > 0 {
		conf.Lapse.Delays = steps
	}
	if retention := e.settings.DesiredRetention(); retention > 0 {
		conf.DesiredRetention = retention
	}
	conf.FSRSParams6 = e.settings.Weights()
	return conf
}

func (e *Exporter) writeCard(
	ctx context.Context,
	col *database.Collection,
	card domain.Card,
	deckID int64,
	creationSeconds, modified int64,
	revlogGen *idgen.Generator,
	opts Options,
	stats *Stats,
) error {
	hash := domain.ContentHash(card)
	state := domain.SchedulingState{Stage: domain.StageNew}
	if opts.IncludeScheduling {
		if stored, ok := e.cards.Scheduling(hash); ok {
			state = stored
		}
	}

	note, err := mapper.BuildNote(e.gen, card, tagsFor(card), modified)
	if err != nil {
		return fmt.Errorf("mapper.BuildNote > %w", err)
	}
	if err := col.InsertNote(ctx, note); err != nil {
		return fmt.Errorf("col.InsertNote > %w", err)
	}
	stats.Notes++

	rows, err := mapper.BuildCards(e.gen, note, card, state, deckID, creationSeconds, modified)
	if err != nil {
		return fmt.Errorf("mapper.BuildCards > %w", err)
	}
	for _, row := range rows {
		if err := col.InsertCard(ctx, row); err != nil {
			return fmt.Errorf("col.InsertCard > %w", err)
		}
		stats.Cards++
	}

	if !opts.IncludeScheduling || len(rows) == 0 {
		return nil
	}
	lastInterval := 0
	for _, entry := range e.cards.ReviewLog(hash) {
		rev := mapper.BuildRevlog(revlogGen, rows[0].ID, entry, lastInterval, state.Difficulty)
		if err := col.InsertRevlog(ctx, rev); err != nil {
			return fmt.Errorf("col.InsertRevlog > %w", err)
		}
		lastInterval = rev.Interval
		stats.RevlogEntries++
	}
	return nil
}

// tagsFor renders a card's groups as target-format tags: hierarchy
// separators become "::" and spaces become underscores, since tags are
// space-delimited on the wire.
func tagsFor(card domain.Card) []string {
	if len(card.Groups) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var tags []string
	for _, group := range card.Groups {
		tag := strings.ReplaceAll(group, "/", "::")
		tag = strings.ReplaceAll(tag, " ", "_")
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
