package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
)

func newTestCollection(t *testing.T) *Collection {
	t.Helper()
	col, err := Create(filepath.Join(t.TempDir(), "collection.anki2"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = col.Close()
	})
	return col
}

func TestCollection_WriteCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults are deterministic", func(t *testing.T) {
		col := newTestCollection(t)
		require.NoError(t, col.WriteCollection(ctx, Meta{CreatedAt: 1700000000}))

		crt, err := col.ReadCreationTime(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000), crt)

		configs, err := col.ReadDeckConfigs(ctx)
		require.NoError(t, err)
		require.Contains(t, configs, int64(1))
		assert.Equal(t, "Default", configs[1].Name)
	})

	t.Run("desired retention is clamped", func(t *testing.T) {
		tests := []struct {
			name string
			in   float64
			want float64
		}{
			{name: "below minimum", in: 0.5, want: MinDesiredRetention},
			{name: "above maximum", in: 0.99, want: MaxDesiredRetention},
			{name: "in range", in: 0.9, want: 0.9},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				col := newTestCollection(t)
				conf := DefaultDeckConfig(1)
				conf.DesiredRetention = tt.in
				require.NoError(t, col.WriteCollection(ctx, Meta{
					DeckConfigs: map[int64]anki.DeckConfig{1: conf},
				}))

				configs, err := col.ReadDeckConfigs(ctx)
				require.NoError(t, err)
				assert.InDelta(t, tt.want, configs[1].DesiredRetention, 1e-9)
			})
		}
	})

	t.Run("FSRS weights land in the current version slot only", func(t *testing.T) {
		col := newTestCollection(t)
		conf := DefaultDeckConfig(1)
		conf.FSRSParams6 = []float64{0.4, 0.6, 2.4, 5.8}
		require.NoError(t, col.WriteCollection(ctx, Meta{
			DeckConfigs: map[int64]anki.DeckConfig{1: conf},
		}))

		configs, err := col.ReadDeckConfigs(ctx)
		require.NoError(t, err)
		got := configs[1]
		assert.Equal(t, []float64{0.4, 0.6, 2.4, 5.8}, got.FSRSParams6)
		assert.Empty(t, got.FSRSWeights)
		assert.NotNil(t, got.FSRSWeights)
		assert.Empty(t, got.FSRSParams5)
	})
}

func TestCollection_RoundTripRows(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t)

	model := anki.NewBasicModel(anki.BasicModelID, 1700000000)
	deck := DefaultDeck(1698000000100, "Anatomy::Heart", 1700000000)
	require.NoError(t, col.WriteCollection(ctx, Meta{
		CreatedAt: 1700000000,
		Models:    map[int64]anki.Model{model.ID: model},
		Decks:     map[int64]anki.Deck{deck.ID: deck},
	}))

	note := anki.Note{
		ID:       1698000000200,
		GUID:     "q7Fz(x!~Ab",
		ModelID:  model.ID,
		Modified: 1700000001,
		Fields:   "front" + anki.FieldSeparator + "back",
		SortFld:  "front",
		Checksum: 123456,
		Data:     "",
	}
	require.NoError(t, col.InsertNote(ctx, note))

	card := anki.Card{
		ID:      1698000000300,
		NoteID:  note.ID,
		DeckID:  deck.ID,
		Type:    anki.CardTypeReview,
		Queue:   anki.QueueReview,
		Due:     12,
		Factor:  2500,
		Reps:    3,
		Data:    `{"s":12.5,"d":4.2}`,
	}
	require.NoError(t, col.InsertCard(ctx, card))

	rev := anki.Revlog{
		ID:       1698000000400,
		CardID:   card.ID,
		Ease:     3,
		Interval: 12,
		Factor:   2500,
		Type:     anki.RevlogReview,
	}
	require.NoError(t, col.InsertRevlog(ctx, rev))

	notes, err := col.ReadAllNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, note, notes[0])

	cards, err := col.ReadAllCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, card, cards[0])

	logs, err := col.ReadAllRevlog(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, rev, logs[0])

	models, err := col.ReadModels(ctx)
	require.NoError(t, err)
	require.Contains(t, models, model.ID)
	assert.Equal(t, "Basic", models[model.ID].Name)
	assert.Equal(t, []string{"Front", "Back"}, models[model.ID].FieldNames())

	decks, err := col.ReadDecks(ctx)
	require.NoError(t, err)
	require.Contains(t, decks, deck.ID)
	assert.Equal(t, "Anatomy::Heart", decks[deck.ID].Name)
}

func TestCollection_BytesRoundTrip(t *testing.T) {
	ctx := context.Background()

	col, err := CreateTemp()
	require.NoError(t, err)
	require.NoError(t, col.WriteCollection(ctx, Meta{CreatedAt: 1700000000}))

	data, err := col.Bytes()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	reopened, err := OpenBytes(data)
	require.NoError(t, err)
	defer func() {
		_ = reopened.Close()
	}()

	crt, err := reopened.ReadCreationTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), crt)
}
