package mapper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
)

func modelWithFields(kind int, names ...string) anki.Model {
	m := anki.Model{Name: "Test", Kind: kind}
	for i, name := range names {
		m.Fields = append(m.Fields, anki.ModelField{Name: name, Ord: i})
	}
	return m
}

func noteWithFields(fields ...string) anki.Note {
	return anki.Note{Fields: strings.Join(fields, anki.FieldSeparator)}
}

func TestDetectFlavor(t *testing.T) {
	basic := modelWithFields(anki.ModelKindStandard, "Front", "Back")

	t.Run("cloze model kind wins", func(t *testing.T) {
		cloze := modelWithFields(anki.ModelKindCloze, "Text", "Extra")
		assert.Equal(t, FlavorCloze, DetectFlavor(cloze, []string{"plain"}, StandardMapping))
	})
	t.Run("cloze pattern in field text", func(t *testing.T) {
		assert.Equal(t, FlavorCloze, DetectFlavor(basic, []string{"The {{c1::heart}}"}, StandardMapping))
	})
	t.Run("explicit mapping overrides", func(t *testing.T) {
		mapping := FieldMapping{Kind: MappingExplicit, ImportAs: FlavorCloze}
		assert.Equal(t, FlavorCloze, DetectFlavor(basic, []string{"plain"}, mapping))
	})
	t.Run("default is basic", func(t *testing.T) {
		assert.Equal(t, FlavorBasic, DetectFlavor(basic, []string{"plain"}, StandardMapping))
	})
}

func TestMapNote_Standard(t *testing.T) {
	t.Run("front and back resolve case-insensitively", func(t *testing.T) {
		model := modelWithFields(anki.ModelKindStandard, "FRONT", "BACK")
		card, err := MapNote(noteWithFields("<b>Q</b>", "A"), model, []string{"Deck/Sub"}, StandardMapping)
		require.NoError(t, err)
		assert.Equal(t, domain.TypeBasic, card.Type)
		assert.Equal(t, "**Q**", card.Question)
		assert.Equal(t, "A", card.Answer)
		assert.Equal(t, []string{"Deck/Sub"}, card.Groups)
	})

	t.Run("answer preference order: back wins over extra", func(t *testing.T) {
		model := modelWithFields(anki.ModelKindStandard, "Question", "Extra", "Back")
		card, err := MapNote(noteWithFields("q", "extra text", "back text"), model, nil, StandardMapping)
		require.NoError(t, err)
		assert.Equal(t, "back text", card.Answer)
	})

	t.Run("first non-empty candidate wins", func(t *testing.T) {
		model := modelWithFields(anki.ModelKindStandard, "Front", "Back", "Answer")
		card, err := MapNote(noteWithFields("q", "", "fallback answer"), model, nil, StandardMapping)
		require.NoError(t, err)
		assert.Equal(t, "fallback answer", card.Answer)
	})

	t.Run("unmappable model errors", func(t *testing.T) {
		model := modelWithFields(anki.ModelKindStandard, "Kanji", "Onyomi")
		_, err := MapNote(noteWithFields("x", "y"), model, nil, StandardMapping)
		var unmappable *ErrUnmappable
		require.ErrorAs(t, err, &unmappable)
	})
}

func TestMapNote_Explicit(t *testing.T) {
	model := modelWithFields(anki.ModelKindStandard, "Kanji", "Onyomi", "Meaning")
	mapping := FieldMapping{
		Kind:          MappingExplicit,
		QuestionIndex: 0,
		AnswerIndex:   2,
		InfoIndex:     -1,
		ImportAs:      FlavorBasic,
	}
	card, err := MapNote(noteWithFields("水", "スイ", "water"), model, nil, mapping)
	require.NoError(t, err)
	assert.Equal(t, "水", card.Question)
	assert.Equal(t, "water", card.Answer)
}

func TestMapNote_Cloze(t *testing.T) {
	model := modelWithFields(anki.ModelKindCloze, "Text", "Extra")
	card, err := MapNote(noteWithFields("The {{c1::aorta}}", "largest artery"), model, nil, StandardMapping)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeCloze, card.Type)
	assert.Equal(t, "The {{c1::aorta}}", card.ClozeText)
	assert.Equal(t, "largest artery", card.Explanation)
}

func TestMapNote_Groups(t *testing.T) {
	model := modelWithFields(anki.ModelKindStandard, "Front", "Back")
	note := noteWithFields("q", "a")
	note.Tags = " anatomy::heart anatomy::heart extra "
	card, err := MapNote(note, model, DeckGroups("Medicine::Cardio"), StandardMapping)
	require.NoError(t, err)
	assert.Equal(t, []string{"Medicine/Cardio", "anatomy/heart", "extra"}, card.Groups,
		"deck path first, then tag groups, de-duplicated and order-preserving")
}

func TestIsStandardModel(t *testing.T) {
	assert.True(t, IsStandardModel(modelWithFields(anki.ModelKindStandard, "Front", "Back")))
	assert.True(t, IsStandardModel(modelWithFields(anki.ModelKindCloze, "Text")))
	assert.False(t, IsStandardModel(modelWithFields(anki.ModelKindStandard, "Kanji", "Onyomi")))
}

func TestFromAnkiCard(t *testing.T) {
	crt := int64(1700000000)

	t.Run("review card", func(t *testing.T) {
		state := FromAnkiCard(anki.Card{
			Type:     anki.CardTypeReview,
			Queue:    anki.QueueReview,
			Due:      12,
			Factor:   2500,
			Interval: 12,
			Reps:     7,
			Lapses:   1,
			Data:     `{"s":20.5,"d":4.2}`,
		}, crt)
		assert.Equal(t, domain.StageReview, state.Stage)
		assert.Equal(t, ReviewDueToAbsolute(12, crt), state.DueMillis)
		assert.Equal(t, 20.5, state.Stability)
		assert.Equal(t, 4.2, state.Difficulty)
		assert.Equal(t, 12, state.ScheduledDays)
	})

	t.Run("suspended flag dominates", func(t *testing.T) {
		state := FromAnkiCard(anki.Card{Type: anki.CardTypeReview, Queue: anki.QueueSuspended, Factor: 2500}, crt)
		assert.Equal(t, domain.StageSuspended, state.Stage)
		assert.Equal(t, domain.StageReview, state.PrevStage)
	})

	t.Run("broken data JSON falls back to factor", func(t *testing.T) {
		state := FromAnkiCard(anki.Card{Type: anki.CardTypeReview, Queue: anki.QueueReview, Factor: 520, Data: "{"}, crt)
		assert.InDelta(t, 4.2, state.Difficulty, 1e-9)
	})
}

func TestFromRevlog(t *testing.T) {
	entry := FromRevlog(anki.Revlog{ID: 1700000500000, Ease: 4, TakenMillis: 3100})
	assert.Equal(t, domain.ResultEasy, entry.Result)
	assert.Equal(t, int64(1700000500000), entry.ReviewedAtMillis)
	assert.Equal(t, int64(3100), entry.ElapsedMillis)
}
