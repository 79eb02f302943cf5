// Package database builds and reads Anki collection databases. It speaks
// the schema-11 wire format directly: ordered positional writes, full-table
// reads, and the collection row's JSON blobs with their exact key names.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
)

// Desired-retention bounds accepted by the target scheduler config.
const (
	MinDesiredRetention = 0.80
	MaxDesiredRetention = 0.97
)

// Collection wraps an open collection database file.
type Collection struct {
	db   *sqlx.DB
	path string
	temp bool
}

// Create builds a new empty collection database at path with the five
// schema-11 tables and seven indices.
func Create(path string) (*Collection, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}
	if _, err := db.Exec(anki.Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema > %w", err)
	}
	return &Collection{db: db, path: path}, nil
}

// CreateTemp builds a new empty collection database in a temporary file.
// The backing file is removed by Bytes or Close.
func CreateTemp() (*Collection, error) {
	tmp, err := os.CreateTemp("", "collection-*.anki2")
	if err != nil {
		return nil, fmt.Errorf("os.CreateTemp() > %w", err)
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("tmp.Close() > %w", err)
	}
	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("os.Remove() > %w", err)
	}
	col, err := Create(path)
	if err != nil {
		return nil, err
	}
	col.temp = true
	return col, nil
}

// Open opens an existing collection database file.
func Open(path string) (*Collection, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping() > %w", err)
	}
	return &Collection{db: db, path: path}, nil
}

// OpenBytes writes database bytes to a temporary file and opens it. The
// caller owns the collection and must Close it; the temporary file is
// removed on Close.
func OpenBytes(data []byte) (*Collection, error) {
	tmp, err := os.CreateTemp("", "collection-*.anki2")
	if err != nil {
		return nil, fmt.Errorf("os.CreateTemp() > %w", err)
	}
	path := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("tmp.Write() > %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("tmp.Close() > %w", err)
	}
	col, err := Open(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	col.temp = true
	return col, nil
}

// Close closes the underlying database. A temporary backing file created
// by OpenBytes is removed.
func (c *Collection) Close() error {
	err := c.db.Close()
	if c.temp {
		_ = os.Remove(c.path)
	}
	return err
}

// Bytes closes the database and returns the raw file contents, ready to be
// packed into an archive. The collection is unusable afterwards.
func (c *Collection) Bytes() ([]byte, error) {
	if err := c.db.Close(); err != nil {
		return nil, fmt.Errorf("db.Close() > %w", err)
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile() > %w", err)
	}
	if c.temp {
		_ = os.Remove(c.path)
		c.temp = false
	}
	return data, nil
}

// Meta is the content of the single col row.
type Meta struct {
	CreatedAt   int64 // seconds; start of day the collection was created
	Models      map[int64]anki.Model
	Decks       map[int64]anki.Deck
	DeckConfigs map[int64]anki.DeckConfig
	Tags        map[string]int
}

// WriteCollection inserts the single col row. Missing maps get
// deterministic defaults. Desired retention is clamped to the range the
// target's config parser accepts, and FSRS weight vectors are placed in
// the current version slot with the other slots left as empty arrays.
func (c *Collection) WriteCollection(ctx context.Context, meta Meta) error {
	now := time.Now()
	if meta.CreatedAt == 0 {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		meta.CreatedAt = dayStart.Unix()
	}
	if meta.Models == nil {
		meta.Models = map[int64]anki.Model{}
	}
	if meta.Decks == nil {
		meta.Decks = map[int64]anki.Deck{}
	}
	if meta.DeckConfigs == nil {
		meta.DeckConfigs = map[int64]anki.DeckConfig{1: DefaultDeckConfig(1)}
	}
	if meta.Tags == nil {
		meta.Tags = map[string]int{}
	}

	for id, conf := range meta.DeckConfigs {
		meta.DeckConfigs[id] = normalizeDeckConfig(conf)
	}

	confJSON, err := json.Marshal(defaultCollectionConf(meta))
	if err != nil {
		return fmt.Errorf("marshal conf > %w", err)
	}
	modelsJSON, err := marshalKeyed(meta.Models)
	if err != nil {
		return fmt.Errorf("marshal models > %w", err)
	}
	decksJSON, err := marshalKeyed(meta.Decks)
	if err != nil {
		return fmt.Errorf("marshal decks > %w", err)
	}
	dconfJSON, err := marshalKeyed(meta.DeckConfigs)
	if err != nil {
		return fmt.Errorf("marshal dconf > %w", err)
	}
	tagsJSON, err := json.Marshal(meta.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags > %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, ?)
	`,
		meta.CreatedAt,
		now.UnixMilli(),
		now.UnixMilli(),
		anki.SchemaVersion,
		string(confJSON),
		string(modelsJSON),
		string(decksJSON),
		string(dconfJSON),
		string(tagsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert col > %w", err)
	}
	return nil
}

// normalizeDeckConfig clamps retention and enforces the version-slot
// layout: only fsrsParams6 carries weights, the other slots are empty
// arrays (never null).
func normalizeDeckConfig(conf anki.DeckConfig) anki.DeckConfig {
	if conf.DesiredRetention < MinDesiredRetention {
		conf.DesiredRetention = MinDesiredRetention
	}
	if conf.DesiredRetention > MaxDesiredRetention {
		conf.DesiredRetention = MaxDesiredRetention
	}
	conf.FSRSWeights = []float64{}
	conf.FSRSParams5 = []float64{}
	if conf.FSRSParams6 == nil {
		conf.FSRSParams6 = []float64{}
	}
	return conf
}

// DefaultDeckConfig returns a deck option group with Anki's stock values.
func DefaultDeckConfig(id int64) anki.DeckConfig {
	return anki.DeckConfig{
		ID:             id,
		Name:           "Default",
		MaxTaken:       60,
		Autoplay:       true,
		ReplayQuestion: true,
		New: anki.DeckConfigNew{
			Bury:          false,
			Delays:        []float64{1, 10},
			InitialFactor: 2500,
			Intervals:     []int{1, 4, 0},
			Order:         1,
			PerDay:        20,
		},
		Rev: anki.DeckConfigRev{
			Ease4:          1.3,
			IntervalFactor: 1,
			MaxInterval:    36500,
			PerDay:         200,
			HardFactor:     1.2,
		},
		Lapse: anki.DeckConfigLapse{
			Delays:      []float64{10},
			LeechAction: 1,
			LeechFails:  8,
			MinInterval: 1,
			Multiplier:  0,
		},
		FSRSWeights:      []float64{},
		FSRSParams5:      []float64{},
		FSRSParams6:      []float64{},
		DesiredRetention: 0.9,
	}
}

// DefaultDeck returns a deck with stock display flags.
func DefaultDeck(id int64, name string, modified int64) anki.Deck {
	return anki.Deck{
		ID:          id,
		Name:        name,
		Modified:    modified,
		LearnToday:  []int{0, 0},
		ReviewToday: []int{0, 0},
		NewToday:    []int{0, 0},
		TimeToday:   []int{0, 0},
		ConfigID:    1,
	}
}

func defaultCollectionConf(meta Meta) anki.CollectionConf {
	conf := anki.CollectionConf{
		NextPos:      1,
		EstTimes:     true,
		ActiveDecks:  []int64{1},
		SortType:     "noteFld",
		AddToCurrent: true,
		CurrentDeck:  1,
		NewSpread:    0,
		DueCounts:    true,
		CollapseTime: 1200,
		SchedulerVer: 2,
	}
	for id := range meta.Models {
		if conf.CurrentModel == 0 || id < conf.CurrentModel {
			conf.CurrentModel = id
		}
	}
	return conf
}

// marshalKeyed serializes an id-keyed map as a JSON object keyed by the
// decimal string form of each id, the layout the col row expects.
func marshalKeyed[T any](in map[int64]T) ([]byte, error) {
	out := make(map[string]T, len(in))
	for id, v := range in {
		out[strconv.FormatInt(id, 10)] = v
	}
	return json.Marshal(out)
}

// unmarshalKeyed parses a JSON object keyed by decimal id strings back
// into an id-keyed map.
func unmarshalKeyed[T any](data string) (map[int64]T, error) {
	raw := map[string]T{}
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, err
	}
	out := make(map[int64]T, len(raw))
	for key, v := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric id key %q", key)
		}
		out[id] = v
	}
	return out, nil
}

// InsertNote writes a notes row with ordered positional values.
func (c *Collection) InsertNote(ctx context.Context, n anki.Note) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.GUID, n.ModelID, n.Modified, n.USN, n.Tags, n.Fields, n.SortFld, n.Checksum, n.Flags, n.Data)
	if err != nil {
		return fmt.Errorf("insert note %d > %w", n.ID, err)
	}
	return nil
}

// InsertCard writes a cards row with ordered positional values.
func (c *Collection) InsertCard(ctx context.Context, card anki.Card) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, card.ID, card.NoteID, card.DeckID, card.Ordinal, card.Modified, card.USN, card.Type, card.Queue,
		card.Due, card.Interval, card.Factor, card.Reps, card.Lapses, card.Left, card.OrigDue, card.OrigDeck,
		card.Flags, card.Data)
	if err != nil {
		return fmt.Errorf("insert card %d > %w", card.ID, err)
	}
	return nil
}

// InsertRevlog writes a revlog row with ordered positional values.
func (c *Collection) InsertRevlog(ctx context.Context, r anki.Revlog) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO revlog (id, cid, usn, ease, ivl, lastIvl, factor, time, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.CardID, r.USN, r.Ease, r.Interval, r.LastInterval, r.Factor, r.TakenMillis, r.Type)
	if err != nil {
		return fmt.Errorf("insert revlog %d > %w", r.ID, err)
	}
	return nil
}

// ReadAllNotes returns every notes row. Batches are assumed to fit in
// memory; there is no pagination.
func (c *Collection) ReadAllNotes(ctx context.Context) ([]anki.Note, error) {
	var notes []anki.Note
	if err := c.db.SelectContext(ctx, &notes, `SELECT * FROM notes ORDER BY id`); err != nil {
		return nil, fmt.Errorf("db.SelectContext(notes) > %w", err)
	}
	return notes, nil
}

// ReadAllCards returns every cards row.
func (c *Collection) ReadAllCards(ctx context.Context) ([]anki.Card, error) {
	var cards []anki.Card
	if err := c.db.SelectContext(ctx, &cards, `SELECT * FROM cards ORDER BY id`); err != nil {
		return nil, fmt.Errorf("db.SelectContext(cards) > %w", err)
	}
	return cards, nil
}

// ReadAllRevlog returns every revlog row.
func (c *Collection) ReadAllRevlog(ctx context.Context) ([]anki.Revlog, error) {
	var logs []anki.Revlog
	if err := c.db.SelectContext(ctx, &logs, `SELECT * FROM revlog ORDER BY id`); err != nil {
		return nil, fmt.Errorf("db.SelectContext(revlog) > %w", err)
	}
	return logs, nil
}

// ReadModels parses the models JSON blob into an id-keyed map.
func (c *Collection) ReadModels(ctx context.Context) (map[int64]anki.Model, error) {
	var blob string
	if err := c.db.GetContext(ctx, &blob, `SELECT models FROM col WHERE id = 1`); err != nil {
		return nil, fmt.Errorf("db.GetContext(models) > %w", err)
	}
	models, err := unmarshalKeyed[anki.Model](blob)
	if err != nil {
		return nil, fmt.Errorf("parse models > %w", err)
	}
	return models, nil
}

// ReadDecks parses the decks JSON blob into an id-keyed map.
func (c *Collection) ReadDecks(ctx context.Context) (map[int64]anki.Deck, error) {
	var blob string
	if err := c.db.GetContext(ctx, &blob, `SELECT decks FROM col WHERE id = 1`); err != nil {
		return nil, fmt.Errorf("db.GetContext(decks) > %w", err)
	}
	decks, err := unmarshalKeyed[anki.Deck](blob)
	if err != nil {
		return nil, fmt.Errorf("parse decks > %w", err)
	}
	return decks, nil
}

// ReadDeckConfigs parses the dconf JSON blob into an id-keyed map.
func (c *Collection) ReadDeckConfigs(ctx context.Context) (map[int64]anki.DeckConfig, error) {
	var blob string
	if err := c.db.GetContext(ctx, &blob, `SELECT dconf FROM col WHERE id = 1`); err != nil {
		return nil, fmt.Errorf("db.GetContext(dconf) > %w", err)
	}
	configs, err := unmarshalKeyed[anki.DeckConfig](blob)
	if err != nil {
		return nil, fmt.Errorf("parse dconf > %w", err)
	}
	return configs, nil
}

// ReadCreationTime returns the collection creation time in seconds.
func (c *Collection) ReadCreationTime(ctx context.Context) (int64, error) {
	var crt int64
	if err := c.db.GetContext(ctx, &crt, `SELECT crt FROM col WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("db.GetContext(crt) > %w", err)
	}
	return crt, nil
}
