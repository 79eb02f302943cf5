package mapper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
	"github.com/ctrlaltwill/Sprout-sub003/internal/markup"
)

// ImportFlavor is how an imported note maps onto a native card type.
type ImportFlavor int

const (
	FlavorBasic ImportFlavor = iota + 1
	FlavorCloze
)

// MappingKind discriminates the field-mapping variants.
type MappingKind int

const (
	// MappingStandard resolves fields by the built-in name preference
	// lists.
	MappingStandard MappingKind = iota + 1
	// MappingExplicit resolves fields by user-supplied indices; used for
	// note types whose field names the standard lists cannot resolve.
	MappingExplicit
)

// FieldMapping tells the inbound mapper where to find card content in a
// note's fields. The zero value is invalid; use StandardMapping or an
// explicit mapping built from user input.
type FieldMapping struct {
	Kind MappingKind
	// Explicit indices, used only when Kind is MappingExplicit. An index
	// of -1 means "not mapped".
	QuestionIndex int
	AnswerIndex   int
	InfoIndex     int
	ImportAs      ImportFlavor
}

// StandardMapping resolves fields by name preference.
var StandardMapping = FieldMapping{Kind: MappingStandard}

// Field-name preference lists per target slot. Order is load-bearing:
// third-party decks rely on it, so it mirrors the original priorities
// rather than any re-derivation. Matches are case-insensitive; the first
// non-empty field wins.
var (
	questionCandidates = []string{"front", "question", "q", "prompt", "expression", "term", "word"}
	answerCandidates   = []string{"back", "answer", "a", "response", "definition", "extra"}
	infoCandidates     = []string{"extra", "note", "notes", "info", "comment", "source"}
	clozeCandidates    = []string{"text", "front", "question"}
)

// SplitFields splits a notes row's field blob.
func SplitFields(flds string) []string {
	return strings.Split(flds, anki.FieldSeparator)
}

// fieldByName returns the first non-empty field whose name matches the
// preference list, scanning candidates in priority order.
func fieldByName(fields []string, names []string, candidates []string) string {
	lower := make([]string, len(names))
	for i, n := range names {
		lower[i] = strings.ToLower(strings.TrimSpace(n))
	}
	for _, candidate := range candidates {
		for i, name := range lower {
			if name == candidate && i < len(fields) && strings.TrimSpace(fields[i]) != "" {
				return fields[i]
			}
		}
	}
	return ""
}

func fieldByIndex(fields []string, index int) string {
	if index < 0 || index >= len(fields) {
		return ""
	}
	return fields[index]
}

// DetectFlavor classifies a note: cloze when the note type declares
// cloze, when any field text carries a cloze-deletion pattern, or when an
// explicit mapping says so.
func DetectFlavor(model anki.Model, fields []string, mapping FieldMapping) ImportFlavor {
	if mapping.Kind == MappingExplicit && mapping.ImportAs != 0 {
		return mapping.ImportAs
	}
	if model.Kind == anki.ModelKindCloze {
		return FlavorCloze
	}
	for _, f := range fields {
		if clozePattern.MatchString(f) {
			return FlavorCloze
		}
	}
	return FlavorBasic
}

// IsStandardModel reports whether the standard name preference lists can
// resolve content from this model without an explicit mapping.
func IsStandardModel(model anki.Model) bool {
	if model.Kind == anki.ModelKindCloze {
		return true
	}
	names := model.FieldNames()
	filled := make([]string, len(names))
	for i := range filled {
		filled[i] = "x"
	}
	return fieldByName(filled, names, questionCandidates) != "" &&
		fieldByName(filled, names, answerCandidates) != ""
}

// ErrUnmappable reports a note whose fields could not be located.
type ErrUnmappable struct {
	ModelName string
}

func (e *ErrUnmappable) Error() string {
	return fmt.Sprintf("note type %q has no mappable fields and no explicit mapping was supplied", e.ModelName)
}

// MapNote converts a notes row to a native card. deckGroups is the
// already-derived native group path of the note's deck; tag groups are
// appended, de-duplicated, order preserved.
func MapNote(note anki.Note, model anki.Model, deckGroups []string, mapping FieldMapping) (domain.Card, error) {
	fields := SplitFields(note.Fields)
	names := model.FieldNames()
	flavor := DetectFlavor(model, fields, mapping)

	card := domain.Card{
		Groups: mergeGroups(deckGroups, TagGroups(note.Tags)),
	}

	switch flavor {
	case FlavorCloze:
		var text, info string
		if mapping.Kind == MappingExplicit {
			text = fieldByIndex(fields, mapping.QuestionIndex)
			info = fieldByIndex(fields, mapping.InfoIndex)
		} else {
			text = fieldByName(fields, names, clozeCandidates)
			if text == "" && len(fields) > 0 {
				text = fields[0]
			}
			info = fieldByName(fields, names, infoCandidates)
		}
		if strings.TrimSpace(text) == "" {
			return domain.Card{}, &ErrUnmappable{ModelName: model.Name}
		}
		card.Type = domain.TypeCloze
		card.ClozeText = markup.ToMarkdown(text)
		card.Explanation = markup.ToMarkdown(info)
		return card, nil

	default:
		var question, answer string
		if mapping.Kind == MappingExplicit {
			question = fieldByIndex(fields, mapping.QuestionIndex)
			answer = fieldByIndex(fields, mapping.AnswerIndex)
			card.Explanation = markup.ToMarkdown(fieldByIndex(fields, mapping.InfoIndex))
		} else {
			question = fieldByName(fields, names, questionCandidates)
			answer = fieldByName(fields, names, answerCandidates)
		}
		if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
			return domain.Card{}, &ErrUnmappable{ModelName: model.Name}
		}
		card.Type = domain.TypeBasic
		card.Question = markup.ToMarkdown(question)
		card.Answer = markup.ToMarkdown(answer)
		return card, nil
	}
}

// DeckGroups converts an Anki deck path to the native group path form.
func DeckGroups(deckName string) []string {
	if strings.TrimSpace(deckName) == "" {
		return nil
	}
	return []string{strings.ReplaceAll(deckName, anki.DeckSeparator, "/")}
}

// TagGroups derives group paths from a notes row's tag string. Anki tag
// hierarchy separators are converted to the native path form.
func TagGroups(tags string) []string {
	var out []string
	for _, tag := range strings.Fields(tags) {
		out = append(out, strings.ReplaceAll(tag, anki.DeckSeparator, "/"))
	}
	return out
}

func mergeGroups(groups ...[]string) []string {
	var out []string
	seen := map[string]bool{}
	for _, list := range groups {
		for _, g := range list {
			if g == "" || seen[g] {
				continue
			}
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// FromAnkiCard reconstructs a native scheduling state from a cards row.
// Memory-model fields ride in the row's free-form data JSON; difficulty
// falls back to the factor conversion when the JSON is absent or broken.
func FromAnkiCard(card anki.Card, creationSeconds int64) domain.SchedulingState {
	stage, prev := TypeQueueToStage(card.Type, card.Queue)
	state := domain.SchedulingState{
		Stage:         stage,
		PrevStage:     prev,
		DueMillis:     AbsoluteDue(card.Type, card.Queue, card.Due, creationSeconds),
		Reps:          card.Reps,
		Lapses:        card.Lapses,
		Difficulty:    FactorToDifficulty(card.Factor),
		ScheduledDays: card.Interval,
	}
	if card.Data != "" {
		var data anki.CardData
		if err := json.Unmarshal([]byte(card.Data), &data); err == nil {
			state.Stability = data.Stability
			if data.Difficulty > 0 {
				state.Difficulty = data.Difficulty
			}
		}
	}
	return state
}

// FromRevlog reconstructs a native review entry from a revlog row.
func FromRevlog(rev anki.Revlog) domain.ReviewLog {
	return domain.ReviewLog{
		Result:           EaseToResult(rev.Ease),
		ReviewedAtMillis: rev.ID,
		ElapsedMillis:    rev.TakenMillis,
	}
}
