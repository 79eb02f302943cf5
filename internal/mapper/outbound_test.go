package mapper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
	"github.com/ctrlaltwill/Sprout-sub003/internal/idgen"
)

func TestClozeOrdinals(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{name: "two deletions", text: "The {{c1::heart}} pumps {{c2::blood}}", want: []int{0, 1}},
		{name: "repeated index collapses", text: "{{c1::a}} and {{c1::b}}", want: []int{0}},
		{name: "no deletion defaults to one card", text: "plain text", want: []int{0}},
		{name: "gap in indices preserved", text: "{{c1::a}} {{c3::c}}", want: []int{0, 2}},
		{name: "unsorted input sorted", text: "{{c2::b}} {{c1::a}}", want: []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClozeOrdinals(tt.text))
		})
	}
}

func TestPackFields(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		fields, modelID, err := PackFields(domain.Card{
			Type:     domain.TypeBasic,
			Question: "What is **this**?",
			Answer:   "An answer",
		})
		require.NoError(t, err)
		assert.Equal(t, anki.BasicModelID, modelID)
		assert.Equal(t, []string{"What is <b>this</b>?", "An answer"}, fields)
	})

	t.Run("choice renders lettered options", func(t *testing.T) {
		fields, modelID, err := PackFields(domain.Card{
			Type:        domain.TypeChoice,
			Stem:        "Largest chamber?",
			Options:     []string{"Left atrium", "Left ventricle", "Right atrium"},
			CorrectIdx:  2,
			Explanation: "It does the systemic work.",
		})
		require.NoError(t, err)
		assert.Equal(t, anki.BasicModelID, modelID)
		assert.Contains(t, fields[0], "A. Left atrium")
		assert.Contains(t, fields[0], "B. Left ventricle")
		assert.Contains(t, fields[0], "C. Right atrium")
		assert.Contains(t, fields[1], "B. Left ventricle")
		assert.Contains(t, fields[1], "It does the systemic work.")
	})

	t.Run("cloze", func(t *testing.T) {
		fields, modelID, err := PackFields(domain.Card{
			Type:      domain.TypeCloze,
			ClozeText: "The {{c1::heart}} pumps",
		})
		require.NoError(t, err)
		assert.Equal(t, anki.ClozeModelID, modelID)
		assert.Equal(t, "The {{c1::heart}} pumps", fields[0])
	})

	t.Run("occlusion is not exportable", func(t *testing.T) {
		_, _, err := PackFields(domain.Card{Type: domain.TypeOcclusion})
		require.Error(t, err)
	})
}

func TestBuildNote(t *testing.T) {
	gen := idgen.New()
	note, err := BuildNote(gen, domain.Card{
		Type:     domain.TypeBasic,
		Question: "Q text",
		Answer:   "A text",
	}, []string{"anatomy", "heart"}, 1700000001)
	require.NoError(t, err)

	assert.Equal(t, anki.BasicModelID, note.ModelID)
	assert.Equal(t, " anatomy heart ", note.Tags)
	assert.Equal(t, "Q text"+anki.FieldSeparator+"A text", note.Fields)
	assert.Equal(t, "Q text", note.SortFld, "sort field is always the first field")
	assert.Equal(t, Checksum("Q text"), note.Checksum)
	assert.Len(t, note.GUID, 10)
}

func TestBuildCards(t *testing.T) {
	crt := int64(1700000000)

	t.Run("cloze emits one row per ordinal", func(t *testing.T) {
		gen := idgen.New()
		card := domain.Card{Type: domain.TypeCloze, ClozeText: "{{c1::a}} and {{c2::b}}"}
		note, err := BuildNote(gen, card, nil, 0)
		require.NoError(t, err)
		rows, err := BuildCards(gen, note, card, domain.SchedulingState{Stage: domain.StageNew}, 1, crt, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 0, rows[0].Ordinal)
		assert.Equal(t, 1, rows[1].Ordinal)
		assert.Less(t, rows[0].ID, rows[1].ID)
	})

	t.Run("new card has zero due and factor", func(t *testing.T) {
		gen := idgen.New()
		card := domain.Card{Type: domain.TypeBasic, Question: "q", Answer: "a"}
		note, err := BuildNote(gen, card, nil, 0)
		require.NoError(t, err)
		rows, err := BuildCards(gen, note, card, domain.SchedulingState{Stage: domain.StageNew}, 1, crt, 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(0), rows[0].Due)
		assert.Equal(t, 0, rows[0].Factor)
		assert.Equal(t, anki.CardTypeNew, rows[0].Type)
		assert.Empty(t, rows[0].Data)
	})

	t.Run("review card carries day-based due and memory state", func(t *testing.T) {
		gen := idgen.New()
		card := domain.Card{Type: domain.TypeBasic, Question: "q", Answer: "a"}
		note, err := BuildNote(gen, card, nil, 0)
		require.NoError(t, err)
		state := domain.SchedulingState{
			Stage:         domain.StageReview,
			DueMillis:     ReviewDueToAbsolute(12, crt),
			Stability:     20.5,
			Difficulty:    4.2,
			Reps:          7,
			Lapses:        1,
			ScheduledDays: 12,
		}
		rows, err := BuildCards(gen, note, card, state, 1, crt, 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		row := rows[0]
		assert.Equal(t, int64(12), row.Due)
		assert.Equal(t, anki.CardTypeReview, row.Type)
		assert.Equal(t, anki.QueueReview, row.Queue)
		assert.Equal(t, DifficultyToFactor(4.2), row.Factor)
		assert.Equal(t, 12, row.Interval)
		assert.Contains(t, row.Data, `"s":20.5`)
	})
}

func TestBuildRevlog(t *testing.T) {
	gen := idgen.New()
	day := int64(86400000)
	entry := domain.ReviewLog{
		Result:           domain.ResultGood,
		ReviewedAtMillis: 1700000500000,
		PrevDueMillis:    0,
		NextDueMillis:    6 * day,
		ElapsedMillis:    4200,
	}
	rev := BuildRevlog(gen, 42, entry, 3, 4.0)
	assert.Equal(t, int64(1700000500000), rev.ID)
	assert.Equal(t, int64(42), rev.CardID)
	assert.Equal(t, 3, rev.Ease)
	assert.Equal(t, 6, rev.Interval)
	assert.Equal(t, 3, rev.LastInterval)
	assert.Equal(t, DifficultyToFactor(4.0), rev.Factor)
	assert.Equal(t, int64(4200), rev.TakenMillis)
	assert.Equal(t, anki.RevlogReview, rev.Type)

	same := BuildRevlog(gen, 42, entry, 3, 4.0)
	assert.Equal(t, int64(1700000500001), same.ID, "colliding review timestamps stay unique")
}

func TestBuildNote_TagsEmpty(t *testing.T) {
	gen := idgen.New()
	note, err := BuildNote(gen, domain.Card{Type: domain.TypeBasic, Question: "q", Answer: "a"}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "", note.Tags)
	assert.False(t, strings.Contains(note.Fields, "\n\n"))
}
