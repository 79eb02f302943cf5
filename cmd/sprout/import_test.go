package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/mapper"
	"github.com/ctrlaltwill/Sprout-sub003/internal/testutil"
)

func TestNewImportCommand(t *testing.T) {
	cmd := newImportCommand()

	assert.Equal(t, "import <archive>", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	for _, name := range []string{"skip-duplicates", "apply-scheduling", "map"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestNewPreviewCommand(t *testing.T) {
	cmd := newPreviewCommand()

	assert.Equal(t, "preview <archive>", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestParseMappingFlags(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    map[int64]mapper.FieldMapping
		wantErr string
	}{
		{
			name:   "no values",
			values: nil,
			want:   nil,
		},
		{
			name:   "full mapping",
			values: []string{"1234:q=0,a=1,i=2"},
			want: map[int64]mapper.FieldMapping{
				1234: {
					Kind:          mapper.MappingExplicit,
					QuestionIndex: 0,
					AnswerIndex:   1,
					InfoIndex:     2,
					ImportAs:      mapper.FlavorBasic,
				},
			},
		},
		{
			name:   "cloze flavor with question only",
			values: []string{"99:q=0,as=cloze"},
			want: map[int64]mapper.FieldMapping{
				99: {
					Kind:          mapper.MappingExplicit,
					QuestionIndex: 0,
					AnswerIndex:   -1,
					InfoIndex:     -1,
					ImportAs:      mapper.FlavorCloze,
				},
			},
		},
		{
			name:    "missing spec",
			values:  []string{"1234"},
			wantErr: "expected <modelID>:<spec>",
		},
		{
			name:    "bad note type id",
			values:  []string{"abc:q=0"},
			wantErr: "invalid --map note type id",
		},
		{
			name:    "bad field index",
			values:  []string{"1:q=x"},
			wantErr: "invalid --map field index",
		},
		{
			name:    "unknown key",
			values:  []string{"1:q=0,z=1"},
			wantErr: "invalid --map key",
		},
		{
			name:    "unknown flavor",
			values:  []string{"1:q=0,as=image"},
			wantErr: "invalid --map flavor",
		},
		{
			name:    "question field never mapped",
			values:  []string{"1:a=1"},
			wantErr: "does not map a question field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMappingFlags(tt.values)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewImportCommand_RunE(t *testing.T) {
	configPath, vaultDir := setupTestConfigFile(t)
	useConfigFile(t, configPath)

	archivePath := filepath.Join(t.TempDir(), "deck.apkg")
	data := testutil.BuildArchive(t, testutil.ArchiveFixture{
		Notes: []anki.Note{testutil.Note(1, anki.BasicModelID, "hablar", "to speak")},
		Cards: []anki.Card{testutil.NewCardRow(10, 1, 1)},
	})
	require.NoError(t, os.WriteFile(archivePath, data, 0o644))

	cmd := newImportCommand()
	cmd.SetArgs([]string{archivePath})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(filepath.Join(vaultDir, "Default.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "hablar")
}

func TestNewImportCommand_RunE_MissingArchive(t *testing.T) {
	configPath, _ := setupTestConfigFile(t)
	useConfigFile(t, configPath)

	cmd := newImportCommand()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.apkg")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestNewPreviewCommand_RunE(t *testing.T) {
	configPath, _ := setupTestConfigFile(t)
	useConfigFile(t, configPath)

	archivePath := filepath.Join(t.TempDir(), "deck.apkg")
	data := testutil.BuildArchive(t, testutil.ArchiveFixture{
		Notes: []anki.Note{testutil.Note(1, anki.BasicModelID, "front", "back")},
	})
	require.NoError(t, os.WriteFile(archivePath, data, 0o644))

	cmd := newPreviewCommand()
	cmd.SetArgs([]string{archivePath})
	require.NoError(t, cmd.Execute())
}
