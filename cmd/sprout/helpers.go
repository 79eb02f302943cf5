package main

import (
	"fmt"

	"github.com/ctrlaltwill/Sprout-sub003/internal/config"
	"github.com/ctrlaltwill/Sprout-sub003/internal/engine"
	"github.com/ctrlaltwill/Sprout-sub003/internal/export"
	"github.com/ctrlaltwill/Sprout-sub003/internal/idgen"
	"github.com/ctrlaltwill/Sprout-sub003/internal/importer"
	"github.com/ctrlaltwill/Sprout-sub003/internal/media"
	"github.com/ctrlaltwill/Sprout-sub003/internal/store"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openVault(cfg *config.Config) (*store.VaultStore, error) {
	schedule, err := store.OpenScheduleStore(cfg.Vault.ScheduleFile)
	if err != nil {
		return nil, fmt.Errorf("store.OpenScheduleStore() > %w", err)
	}
	return store.NewVaultStore(cfg.Vault.Directory, schedule), nil
}

func schedulerSettings(cfg *config.Config) store.StaticSettings {
	return store.StaticSettings{
		LearningStepsMinutes:   cfg.Scheduler.LearningStepsMinutes,
		RelearningStepsMinutes: cfg.Scheduler.RelearningStepsMinutes,
		Retention:              cfg.Scheduler.DesiredRetention,
		FSRSWeights:            cfg.Scheduler.FSRSWeights,
	}
}

// newExporter wires an exporter from the configuration. The returned
// cleanup closes the remote media fetcher when one was created.
func newExporter(cfg *config.Config) (*export.Exporter, func(), error) {
	vault, err := openVault(cfg)
	if err != nil {
		return nil, nil, err
	}

	var fetcher *media.Fetcher
	cleanup := func() {}
	if cfg.Export.RemoteMedia {
		fetcher = media.NewFetcher(cfg.Export.RetryAttempts)
		cleanup = func() {
			_ = fetcher.Close()
		}
	}

	newCollector := func() *media.Collector {
		return media.NewCollector(cfg.Vault.Directory, []string{cfg.Vault.MediaDirectory}, fetcher)
	}

	exporter := export.NewExporter(vault, schedulerSettings(cfg), engine.NewLoader(), idgen.New(), newCollector)
	return exporter, cleanup, nil
}

func newImporter(cfg *config.Config) (*importer.Importer, error) {
	vault, err := openVault(cfg)
	if err != nil {
		return nil, err
	}
	return importer.NewImporter(vault, engine.NewLoader()), nil
}
