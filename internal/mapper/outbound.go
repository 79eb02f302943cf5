package mapper

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
	"github.com/ctrlaltwill/Sprout-sub003/internal/idgen"
	"github.com/ctrlaltwill/Sprout-sub003/internal/markup"
)

var clozePattern = regexp.MustCompile(`\{\{c(\d+)::`)

// ClozeOrdinals returns the zero-based card ordinals for a cloze text:
// one per distinct deletion index, ascending. Text without any deletion
// still yields one card (ordinal 0), matching the target's behavior of
// defaulting to c1.
func ClozeOrdinals(text string) []int {
	seen := map[int]bool{}
	for _, m := range clozePattern.FindAllStringSubmatch(text, -1) {
		var idx int
		if _, err := fmt.Sscanf(m[1], "%d", &idx); err == nil && idx > 0 {
			seen[idx] = true
		}
	}
	if len(seen) == 0 {
		return []int{0}
	}
	ords := make([]int, 0, len(seen))
	for idx := range seen {
		ords = append(ords, idx-1)
	}
	sort.Ints(ords)
	return ords
}

// optionLetter renders the 1-based option position as A, B, C, ...
func optionLetter(position int) string {
	return string(rune('A' + position - 1))
}

// PackFields selects the note type for a card and packs its type-specific
// fields, already converted to the target's HTML dialect. Multiple-choice
// cards are flattened into the two-field basic layout with lettered
// options and the correct answer spelled out.
func PackFields(card domain.Card) (fields []string, modelID int64, err error) {
	switch card.Type {
	case domain.TypeBasic, domain.TypeBasicReversed, domain.TypeTypeIn:
		return []string{markup.ToHTML(card.Question), markup.ToHTML(card.Answer)}, anki.BasicModelID, nil
	case domain.TypeChoice:
		var b strings.Builder
		b.WriteString(card.Stem)
		for i, opt := range card.Options {
			b.WriteString("\n")
			b.WriteString(optionLetter(i + 1))
			b.WriteString(". ")
			b.WriteString(opt)
		}
		answer := ""
		if card.CorrectIdx >= 1 && card.CorrectIdx <= len(card.Options) {
			answer = optionLetter(card.CorrectIdx) + ". " + card.Options[card.CorrectIdx-1]
		}
		if card.Explanation != "" {
			if answer != "" {
				answer += "\n\n"
			}
			answer += card.Explanation
		}
		return []string{markup.ToHTML(b.String()), markup.ToHTML(answer)}, anki.BasicModelID, nil
	case domain.TypeCloze:
		return []string{markup.ToHTML(card.ClozeText), markup.ToHTML(card.Explanation)}, anki.ClozeModelID, nil
	default:
		return nil, 0, fmt.Errorf("card type %s cannot be exported", card.Type)
	}
}

// BuildNote assembles a notes row for a card. The sort field is always
// the first packed field.
func BuildNote(gen *idgen.Generator, card domain.Card, tags []string, modified int64) (anki.Note, error) {
	fields, modelID, err := PackFields(card)
	if err != nil {
		return anki.Note{}, err
	}
	guid, err := idgen.NewGUID()
	if err != nil {
		return anki.Note{}, fmt.Errorf("idgen.NewGUID() > %w", err)
	}

	tagStr := ""
	if len(tags) > 0 {
		tagStr = " " + strings.Join(tags, " ") + " "
	}
	sortField := fields[0]
	return anki.Note{
		ID:       gen.NextID(),
		GUID:     guid,
		ModelID:  modelID,
		Modified: modified,
		Tags:     tagStr,
		Fields:   strings.Join(fields, anki.FieldSeparator),
		SortFld:  sortField,
		Checksum: Checksum(sortField),
	}, nil
}

// BuildCards assembles the cards rows for a note. Cloze notes emit one
// row per deletion ordinal; everything else emits a single row with
// ordinal 0.
func BuildCards(gen *idgen.Generator, note anki.Note, card domain.Card, state domain.SchedulingState, deckID, creationSeconds, modified int64) ([]anki.Card, error) {
	ordinals := []int{0}
	if card.Type == domain.TypeCloze {
		ordinals = ClozeOrdinals(card.ClozeText)
	}

	cardType, queue := StageToTypeQueue(state.Stage, state.PrevStage)
	due := DueValue(state, creationSeconds)
	factor := 0
	data := ""
	if state.Stage != domain.StageNew {
		factor = DifficultyToFactor(state.Difficulty)
		blob, err := json.Marshal(anki.CardData{Stability: state.Stability, Difficulty: state.Difficulty})
		if err != nil {
			return nil, fmt.Errorf("marshal card data > %w", err)
		}
		data = string(blob)
	}

	rows := make([]anki.Card, 0, len(ordinals))
	for _, ord := range ordinals {
		rows = append(rows, anki.Card{
			ID:       gen.NextID(),
			NoteID:   note.ID,
			DeckID:   deckID,
			Ordinal:  ord,
			Modified: modified,
			Type:     cardType,
			Queue:    queue,
			Due:      due,
			Interval: state.ScheduledDays,
			Factor:   factor,
			Reps:     state.Reps,
			Lapses:   state.Lapses,
			Data:     data,
		})
	}
	return rows, nil
}

// BuildRevlog assembles a revlog row from a native review entry. The row
// id doubles as the review timestamp, so gen must be a generator
// dedicated to the revlog table: ids stay anchored to review times and
// same-millisecond reviews are bumped past each other instead of
// colliding on the primary key.
func BuildRevlog(gen *idgen.Generator, cardID int64, entry domain.ReviewLog, lastIntervalDays int, difficulty float64) anki.Revlog {
	interval := IntervalDays(entry.PrevDueMillis, entry.NextDueMillis)
	revType := anki.RevlogReview
	if interval == 0 {
		revType = anki.RevlogLearning
	}
	return anki.Revlog{
		ID:           gen.NextIDAt(entry.ReviewedAtMillis),
		CardID:       cardID,
		Ease:         ResultToEase(entry.Result),
		Interval:     interval,
		LastInterval: lastIntervalDays,
		Factor:       DifficultyToFactor(difficulty),
		TakenMillis:  entry.ElapsedMillis,
		Type:         revType,
	}
}
