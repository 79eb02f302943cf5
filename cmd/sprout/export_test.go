package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrlaltwill/Sprout-sub003/internal/export"
)

func TestNewExportCommand(t *testing.T) {
	cmd := newExportCommand()

	assert.Equal(t, "export", cmd.Use)
	assert.Equal(t, "Export vault cards to an Anki archive", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	outputFlag := cmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "export.apkg", outputFlag.DefValue)

	for _, name := range []string{"deck", "branch", "groups", "source", "choice", "include-scheduling"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestBuildScope(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		groups  []string
		source  string
		want    export.Scope
		wantErr bool
	}{
		{
			name: "no flags selects everything",
			want: export.Scope{Kind: export.ScopeAll},
		},
		{
			name:   "branch flag",
			branch: "Medicine/Anatomy",
			want:   export.Scope{Kind: export.ScopeBranch, Branch: "Medicine/Anatomy"},
		},
		{
			name:   "groups flag",
			groups: []string{"exam", "weekly"},
			want:   export.Scope{Kind: export.ScopeGroups, Groups: []string{"exam", "weekly"}},
		},
		{
			name:   "source flag",
			source: "notes/cardio.md",
			want:   export.Scope{Kind: export.ScopeSource, Source: "notes/cardio.md"},
		},
		{
			name:    "branch and source are exclusive",
			branch:  "Medicine",
			source:  "notes/cardio.md",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildScope(tt.branch, tt.groups, tt.source)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewExportCommand_RunE(t *testing.T) {
	configPath, vaultDir := setupTestConfigFile(t)
	useConfigFile(t, configPath)

	require.NoError(t, os.WriteFile(filepath.Join(vaultDir, "cards.md"),
		[]byte("basic | What is the capital of France? | Paris\n"), 0o644))

	output := filepath.Join(t.TempDir(), "out.apkg")
	cmd := newExportCommand()
	cmd.SetArgs([]string{"--output", output})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestNewExportCommand_RunE_ConflictingScopes(t *testing.T) {
	configPath, _ := setupTestConfigFile(t)
	useConfigFile(t, configPath)

	cmd := newExportCommand()
	cmd.SetArgs([]string{"--branch", "A", "--source", "b.md"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestNewExportCommand_RunE_InvalidChoice(t *testing.T) {
	configPath, _ := setupTestConfigFile(t)
	useConfigFile(t, configPath)

	cmd := newExportCommand()
	cmd.SetArgs([]string{"--choice", "maybe"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid choice strategy")
}
