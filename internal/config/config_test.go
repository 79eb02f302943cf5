package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		wantErr           bool
		wantErrorContains []string
		check             func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid config file with custom values",
			configContent: `vault:
  directory: /tmp/vault
  media_directory: /tmp/vault/assets
export:
  default_deck: Inbox
  choice_strategy: skip
  remote_media: true
scheduler:
  desired_retention: 0.85
  fsrs_weights: [0.4, 1.2, 3.1]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/tmp/vault", cfg.Vault.Directory)
				assert.Equal(t, "/tmp/vault/assets", cfg.Vault.MediaDirectory)
				assert.Equal(t, filepath.Join("/tmp/vault", ".sprout", "schedule.yml"), cfg.Vault.ScheduleFile)
				assert.Equal(t, "Inbox", cfg.Export.DefaultDeck)
				assert.Equal(t, "skip", cfg.Export.ChoiceStrategy)
				assert.True(t, cfg.Export.RemoteMedia)
				assert.Equal(t, 0.85, cfg.Scheduler.DesiredRetention)
				assert.Equal(t, []float64{0.4, 1.2, 3.1}, cfg.Scheduler.FSRSWeights)
			},
		},
		{
			name: "defaults applied for missing keys",
			configContent: `vault:
  directory: /tmp/vault
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "Sprout", cfg.Export.DefaultDeck)
				assert.Equal(t, "convert", cfg.Export.ChoiceStrategy)
				assert.Equal(t, uint(3), cfg.Export.RetryAttempts)
				assert.True(t, cfg.Import.SkipDuplicates)
				assert.Equal(t, []float64{1, 10}, cfg.Scheduler.LearningStepsMinutes)
				assert.Equal(t, []float64{10}, cfg.Scheduler.RelearningStepsMinutes)
				assert.Equal(t, 0.9, cfg.Scheduler.DesiredRetention)
				assert.Equal(t, filepath.Join("/tmp/vault", "media"), cfg.Vault.MediaDirectory)
			},
		},
		{
			name: "invalid YAML format",
			configContent: `vault:
  directory: /tmp/vault
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.configContent))
			if tt.wantErr {
				require.Error(t, err)
				for _, want := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), want)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("SPROUT_VAULT_DIR", "/env/vault")
	cfg, err := Load(writeConfig(t, "export:\n  default_deck: X\n"))
	require.NoError(t, err)
	assert.Equal(t, "/env/vault", cfg.Vault.Directory)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		dir := t.TempDir()
		cfg := &Config{
			Vault:     VaultConfig{Directory: dir},
			Export:    ExportConfig{ChoiceStrategy: "convert"},
			Scheduler: SchedulerConfig{DesiredRetention: 0.9},
		}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing vault directory", func(t *testing.T) {
		cfg := &Config{Export: ExportConfig{ChoiceStrategy: "convert"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory")
	})

	t.Run("vault directory does not exist", func(t *testing.T) {
		cfg := &Config{
			Vault:  VaultConfig{Directory: filepath.Join(t.TempDir(), "missing")},
			Export: ExportConfig{ChoiceStrategy: "convert"},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be an existing directory")
	})

	t.Run("bad choice strategy", func(t *testing.T) {
		cfg := &Config{
			Vault:  VaultConfig{Directory: t.TempDir()},
			Export: ExportConfig{ChoiceStrategy: "maybe"},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "choice_strategy")
	})

	t.Run("retention out of range", func(t *testing.T) {
		cfg := &Config{
			Vault:     VaultConfig{Directory: t.TempDir()},
			Export:    ExportConfig{ChoiceStrategy: "convert"},
			Scheduler: SchedulerConfig{DesiredRetention: 1.5},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "desired_retention")
	})
}
