package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
)

// scheduleRecord is one card's persisted scheduling entry, keyed by its
// content hash. The hash key doubles as the duplicate registry across
// import runs.
type scheduleRecord struct {
	State domain.SchedulingState `yaml:"state"`
	Log   []domain.ReviewLog     `yaml:"log,omitempty"`
}

type scheduleFile struct {
	Cards map[string]scheduleRecord `yaml:"cards"`
}

// ScheduleStore persists scheduling state in a single YAML file. Writes
// accumulate in memory until Save.
type ScheduleStore struct {
	path  string
	cards map[string]scheduleRecord
}

// OpenScheduleStore loads the schedule file at path. A missing file
// yields an empty store.
func OpenScheduleStore(path string) (*ScheduleStore, error) {
	store := &ScheduleStore{
		path:  path,
		cards: map[string]scheduleRecord{},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var file scheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}
	if file.Cards != nil {
		store.cards = file.Cards
	}
	return store, nil
}

// Get returns the scheduling state stored for a content hash.
func (s *ScheduleStore) Get(hash string) (domain.SchedulingState, bool) {
	record, ok := s.cards[hash]
	return record.State, ok
}

// Put stores the scheduling state for a content hash, keeping any
// existing review log.
func (s *ScheduleStore) Put(hash string, state domain.SchedulingState) {
	record := s.cards[hash]
	record.State = state
	s.cards[hash] = record
}

// AppendLog appends a review entry for a content hash.
func (s *ScheduleStore) AppendLog(hash string, entry domain.ReviewLog) {
	record := s.cards[hash]
	record.Log = append(record.Log, entry)
	s.cards[hash] = record
}

// Log returns the review history stored for a content hash.
func (s *ScheduleStore) Log(hash string) []domain.ReviewLog {
	return s.cards[hash].Log
}

// Known reports whether a content hash has ever been registered.
func (s *ScheduleStore) Known(hash string) bool {
	_, ok := s.cards[hash]
	return ok
}

// Save writes the store back to its YAML file.
func (s *ScheduleStore) Save() error {
	data, err := yaml.Marshal(scheduleFile{Cards: s.cards})
	if err != nil {
		return fmt.Errorf("yaml.Marshal > %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(s.path), err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", s.path, err)
	}
	return nil
}
