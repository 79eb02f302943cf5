package store

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
)

// VaultStore reads cards from markdown files under a vault directory and
// keeps their scheduling state in a ScheduleStore.
type VaultStore struct {
	root     string
	schedule *ScheduleStore
}

var _ CardStore = (*VaultStore)(nil)

func NewVaultStore(root string, schedule *ScheduleStore) *VaultStore {
	return &VaultStore{
		root:     root,
		schedule: schedule,
	}
}

// AllCards walks the vault and parses every markdown file. Unparseable
// blocks are logged and skipped rather than failing the walk.
func (s *VaultStore) AllCards(ctx context.Context) ([]domain.Card, error) {
	var cards []domain.Card
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		fileCards, parseErrs := s.parseFile(path)
		for _, parseErr := range parseErrs {
			slog.Default().Warn("skipping unparseable card block",
				"file", path,
				"error", parseErr,
			)
		}
		cards = append(cards, fileCards...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filepath.WalkDir(%s) > %w", s.root, err)
	}
	return cards, nil
}

func (s *VaultStore) parseFile(path string) ([]domain.Card, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("os.ReadFile(%s) > %w", path, err)}
	}
	cards, errs := ParseBlocks(string(data))
	segments := folderSegments(s.root, path)
	for i := range cards {
		cards[i].Source.FilePath = path
		cards[i].Source.FolderSegments = segments
	}
	return cards, errs
}

// Scheduling implements CardStore.
func (s *VaultStore) Scheduling(hash string) (domain.SchedulingState, bool) {
	return s.schedule.Get(hash)
}

// PutScheduling implements CardStore. The schedule file is saved
// immediately so patches survive a crash between buckets.
func (s *VaultStore) PutScheduling(hash string, state domain.SchedulingState) error {
	s.schedule.Put(hash, state)
	if err := s.schedule.Save(); err != nil {
		return fmt.Errorf("schedule.Save > %w", err)
	}
	return nil
}

// ReviewLog implements CardStore.
func (s *VaultStore) ReviewLog(hash string) []domain.ReviewLog {
	return s.schedule.Log(hash)
}

// AppendReviewLog implements CardStore, saving immediately like
// PutScheduling.
func (s *VaultStore) AppendReviewLog(hash string, entry domain.ReviewLog) error {
	s.schedule.AppendLog(hash, entry)
	if err := s.schedule.Save(); err != nil {
		return fmt.Errorf("schedule.Save > %w", err)
	}
	return nil
}

// RegisterFile re-parses one written file and registers its cards in the
// schedule store, so later imports can detect duplicates by hash.
func (s *VaultStore) RegisterFile(ctx context.Context, path string) (RegisterResult, error) {
	if ctx.Err() != nil {
		return RegisterResult{}, ctx.Err()
	}
	cards, errs := s.parseFile(path)
	for hash := range hashSet(cards) {
		if !s.schedule.Known(hash) {
			s.schedule.Put(hash, domain.SchedulingState{Stage: domain.StageNew})
		}
	}
	if err := s.schedule.Save(); err != nil {
		return RegisterResult{}, fmt.Errorf("schedule.Save > %w", err)
	}
	return RegisterResult{Parsed: len(cards), Failed: len(errs)}, nil
}

func hashSet(cards []domain.Card) map[string]struct{} {
	set := make(map[string]struct{}, len(cards))
	for _, card := range cards {
		set[domain.ContentHash(card)] = struct{}{}
	}
	return set
}

// AppendBlocks writes card blocks to a destination file, creating it with
// any missing parent folders, or appending with a blank-line separator
// when the file already exists.
func AppendBlocks(path string, blocks []string) error {
	if len(blocks) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(path), err)
	}

	content := strings.Join(blocks, "\n\n") + "\n"
	existing, err := os.ReadFile(path)
	if err == nil && len(strings.TrimSpace(string(existing))) > 0 {
		content = strings.TrimRight(string(existing), "\n") + "\n\n" + content
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}
