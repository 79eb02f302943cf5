// Package testutil provides shared test helpers for building archive
// fixtures and vault directories.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/archive"
	"github.com/ctrlaltwill/Sprout-sub003/internal/database"
)

// ArchiveFixture describes the content of a test .apkg archive. Nil maps
// fall back to the built-in Basic and Cloze models and a single deck
// named "Default".
type ArchiveFixture struct {
	Models map[int64]anki.Model
	Decks  map[int64]anki.Deck
	Notes  []anki.Note
	Cards  []anki.Card
	Revlog []anki.Revlog
	Media  map[string][]byte
}

// BuildArchive assembles archive bytes from a fixture, going through the
// real database and packaging layers.
func BuildArchive(t *testing.T, fixture ArchiveFixture) []byte {
	t.Helper()
	ctx := context.Background()

	modified := time.Now().Unix()
	if fixture.Models == nil {
		fixture.Models = map[int64]anki.Model{
			anki.BasicModelID: anki.NewBasicModel(anki.BasicModelID, modified),
			anki.ClozeModelID: anki.NewClozeModel(anki.ClozeModelID, modified),
		}
	}
	if fixture.Decks == nil {
		fixture.Decks = map[int64]anki.Deck{1: database.DefaultDeck(1, "Default", modified)}
	}

	col, err := database.CreateTemp()
	require.NoError(t, err)
	require.NoError(t, col.WriteCollection(ctx, database.Meta{
		Models: fixture.Models,
		Decks:  fixture.Decks,
	}))
	for _, note := range fixture.Notes {
		require.NoError(t, col.InsertNote(ctx, note))
	}
	for _, card := range fixture.Cards {
		require.NoError(t, col.InsertCard(ctx, card))
	}
	for _, rev := range fixture.Revlog {
		require.NoError(t, col.InsertRevlog(ctx, rev))
	}

	data, err := col.Bytes()
	require.NoError(t, err)
	packed, err := archive.Pack(data, fixture.Media)
	require.NoError(t, err)
	return packed
}

// Note builds a notes row from plain field values, filling the derived
// columns the way the exporter would.
func Note(id, modelID int64, fields ...string) anki.Note {
	sortField := ""
	if len(fields) > 0 {
		sortField = fields[0]
	}
	return anki.Note{
		ID:       id,
		GUID:     "guid-" + strings.Repeat("x", 4),
		ModelID:  modelID,
		Modified: time.Now().Unix(),
		Fields:   strings.Join(fields, anki.FieldSeparator),
		SortFld:  sortField,
	}
}

// NewCardRow builds a cards row in the new state.
func NewCardRow(id, noteID, deckID int64) anki.Card {
	return anki.Card{
		ID:       id,
		NoteID:   noteID,
		DeckID:   deckID,
		Modified: time.Now().Unix(),
		Type:     anki.CardTypeNew,
		Queue:    anki.QueueNew,
	}
}

// SetupVault writes card files under a fresh temp directory. Keys are
// vault-relative paths, values file contents.
func SetupVault(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}
