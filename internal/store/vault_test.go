package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
)

type vaultEnv struct {
	root     string
	schedule *ScheduleStore
	store    *VaultStore
}

func newVaultEnv(t *testing.T) vaultEnv {
	t.Helper()
	root := t.TempDir()
	schedule, err := OpenScheduleStore(filepath.Join(root, ".sprout", "schedule.yml"))
	require.NoError(t, err)
	return vaultEnv{
		root:     root,
		schedule: schedule,
		store:    NewVaultStore(root, schedule),
	}
}

func (env vaultEnv) writeFile(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(env.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVaultStore_AllCards(t *testing.T) {
	env := newVaultEnv(t)
	env.writeFile(t, "Medicine/Anatomy/heart.md", "basic | Q1? | A1\n\nbasic | Q2? | A2")
	env.writeFile(t, "root.md", "cloze | The {{c1::x}}")
	env.writeFile(t, "notes.txt", "basic | not | parsed")

	cards, err := env.store.AllCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 3)

	byQuestion := map[string]domain.Card{}
	for _, card := range cards {
		byQuestion[card.PrimaryField()] = card
	}
	assert.Equal(t, []string{"Medicine", "Anatomy"}, byQuestion["Q1?"].Source.FolderSegments)
	assert.Nil(t, byQuestion["The {{c1::x}}"].Source.FolderSegments)
}

func TestVaultStore_RegisterFile(t *testing.T) {
	env := newVaultEnv(t)
	path := env.writeFile(t, "deck.md", "basic | Q? | A\n\nbad-block | x | y\n\ncloze | {{c1::y}}")

	result, err := env.store.RegisterFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, RegisterResult{Parsed: 2, Failed: 1}, result)

	hash := domain.ContentHash(domain.Card{Type: domain.TypeBasic, Question: "Q?"})
	state, ok := env.store.Scheduling(hash)
	require.True(t, ok, "registered card gets a new scheduling entry")
	assert.Equal(t, domain.StageNew, state.Stage)

	// Registration persists across a reopen.
	reopened, err := OpenScheduleStore(filepath.Join(env.root, ".sprout", "schedule.yml"))
	require.NoError(t, err)
	assert.True(t, reopened.Known(hash))
}

func TestVaultStore_Scheduling(t *testing.T) {
	env := newVaultEnv(t)
	state := domain.SchedulingState{
		Stage:         domain.StageReview,
		DueMillis:     1700000000000,
		Reps:          3,
		Stability:     12.5,
		Difficulty:    4.5,
		ScheduledDays: 10,
	}
	require.NoError(t, env.store.PutScheduling("hash-1", state))

	got, ok := env.store.Scheduling("hash-1")
	require.True(t, ok)
	assert.Equal(t, state, got)

	_, ok = env.store.Scheduling("missing")
	assert.False(t, ok)
}

func TestVaultStore_AppendReviewLog(t *testing.T) {
	env := newVaultEnv(t)
	entries := []domain.ReviewLog{
		{Result: domain.ResultGood, ReviewedAtMillis: 1699000000000, ElapsedMillis: 4000},
		{Result: domain.ResultEasy, ReviewedAtMillis: 1700000000000, ElapsedMillis: 3100},
	}
	for _, entry := range entries {
		require.NoError(t, env.store.AppendReviewLog("hash-1", entry))
	}

	assert.Equal(t, entries, env.store.ReviewLog("hash-1"))
	assert.Empty(t, env.store.ReviewLog("missing"))

	// Entries persist across a reopen.
	reopened, err := OpenScheduleStore(filepath.Join(env.root, ".sprout", "schedule.yml"))
	require.NoError(t, err)
	assert.Equal(t, entries, reopened.Log("hash-1"))
}

func TestScheduleStore_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yml")
	store, err := OpenScheduleStore(path)
	require.NoError(t, err)

	state := domain.SchedulingState{
		Stage:      domain.StageSuspended,
		PrevStage:  domain.StageReview,
		DueMillis:  1700000000000,
		Lapses:     2,
		Difficulty: 6.5,
	}
	store.Put("hash-a", state)
	store.AppendLog("hash-a", domain.ReviewLog{
		Result:           domain.ResultGood,
		ReviewedAtMillis: 1700000500000,
		NextDueMillis:    1700518400000,
		ElapsedMillis:    4000,
	})
	require.NoError(t, store.Save())

	reopened, err := OpenScheduleStore(path)
	require.NoError(t, err)
	got, ok := reopened.Get("hash-a")
	require.True(t, ok)
	assert.Equal(t, state, got)
	require.Len(t, reopened.Log("hash-a"), 1)
	assert.Equal(t, domain.ResultGood, reopened.Log("hash-a")[0].Result)
}

func TestAppendBlocks(t *testing.T) {
	t.Run("creates file with parent folders", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "deck.md")
		require.NoError(t, AppendBlocks(path, []string{"basic | q | a"}))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "basic | q | a\n", string(data))
	})

	t.Run("appends with a blank-line separator", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deck.md")
		require.NoError(t, AppendBlocks(path, []string{"basic | q1 | a1"}))
		require.NoError(t, AppendBlocks(path, []string{"basic | q2 | a2", "cloze | {{c1::x}}"}))

		cards, errs := ParseBlocks(readFile(t, path))
		require.Empty(t, errs)
		assert.Len(t, cards, 3)
	})

	t.Run("no blocks is a no-op", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deck.md")
		require.NoError(t, AppendBlocks(path, nil))
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
