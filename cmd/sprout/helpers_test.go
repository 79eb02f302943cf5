package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestConfigFile writes a minimal configuration pointing at a fresh
// vault directory and returns the config path and the vault path.
func setupTestConfigFile(t *testing.T) (string, string) {
	t.Helper()

	vaultDir := t.TempDir()
	content := fmt.Sprintf("vault:\n  directory: %s\n", vaultDir)

	configPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath, vaultDir
}

// useConfigFile swaps the global config path for one test.
func useConfigFile(t *testing.T, path string) {
	t.Helper()

	old := configFile
	configFile = path
	t.Cleanup(func() { configFile = old })
}
