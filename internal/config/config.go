// Package config loads the engine configuration: vault location, export
// defaults, import defaults, and scheduler parameters.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Vault     VaultConfig     `mapstructure:"vault"`
	Export    ExportConfig    `mapstructure:"export"`
	Import    ImportConfig    `mapstructure:"import"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type VaultConfig struct {
	Directory      string `mapstructure:"directory" validate:"required,dir_exists"`
	MediaDirectory string `mapstructure:"media_directory"`
	ScheduleFile   string `mapstructure:"schedule_file"`
}

type ExportConfig struct {
	DefaultDeck       string `mapstructure:"default_deck"`
	ChoiceStrategy    string `mapstructure:"choice_strategy" validate:"oneof=convert skip"`
	IncludeScheduling bool   `mapstructure:"include_scheduling"`
	RemoteMedia       bool   `mapstructure:"remote_media"`
	RetryAttempts     uint   `mapstructure:"retry_attempts"`
}

type ImportConfig struct {
	SkipDuplicates  bool `mapstructure:"skip_duplicates"`
	ApplyScheduling bool `mapstructure:"apply_scheduling"`
}

type SchedulerConfig struct {
	LearningStepsMinutes   []float64 `mapstructure:"learning_steps_minutes"`
	RelearningStepsMinutes []float64 `mapstructure:"relearning_steps_minutes"`
	DesiredRetention       float64   `mapstructure:"desired_retention" validate:"omitempty,gte=0.5,lte=1"`
	FSRSWeights            []float64 `mapstructure:"fsrs_weights"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/sprout")
	}

	v.SetDefault("export.default_deck", "Sprout")
	v.SetDefault("export.choice_strategy", "convert")
	v.SetDefault("export.retry_attempts", 3)
	v.SetDefault("import.skip_duplicates", true)
	v.SetDefault("scheduler.learning_steps_minutes", []float64{1, 10})
	v.SetDefault("scheduler.relearning_steps_minutes", []float64{10})
	v.SetDefault("scheduler.desired_retention", 0.9)

	if err := v.BindEnv("vault.directory", "SPROUT_VAULT_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind SPROUT_VAULT_DIR environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	// Paths derived from the vault root unless set explicitly.
	if cfg.Vault.MediaDirectory == "" && cfg.Vault.Directory != "" {
		cfg.Vault.MediaDirectory = filepath.Join(cfg.Vault.Directory, "media")
	}
	if cfg.Vault.ScheduleFile == "" && cfg.Vault.Directory != "" {
		cfg.Vault.ScheduleFile = filepath.Join(cfg.Vault.Directory, ".sprout", "schedule.yml")
	}

	return &cfg, nil
}
