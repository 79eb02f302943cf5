// Package engine provides the database engine handle used by the export
// and import pipelines. The engine is loaded lazily; concurrent callers
// share one in-flight load, a successful load is memoized, and a failed
// load clears the memoized state so the next call retries cleanly.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/ctrlaltwill/Sprout-sub003/internal/database"
)

// Engine hands out collection databases once the driver has been probed.
type Engine struct{}

// CreateCollection returns a new empty temp-file backed collection.
func (e *Engine) CreateCollection() (*database.Collection, error) {
	return database.CreateTemp()
}

// OpenCollection opens collection database bytes unpacked from an archive.
func (e *Engine) OpenCollection(data []byte) (*database.Collection, error) {
	return database.OpenBytes(data)
}

type loadResult struct {
	engine *Engine
	err    error
}

type call struct {
	done chan struct{}
	res  loadResult
}

// Loader memoizes engine initialization behind a single in-flight guard.
// One loader is constructed at startup and injected into both pipelines.
type Loader struct {
	mu      sync.Mutex
	loaded  *Engine
	pending *call

	// probe is swapped out by tests to simulate load failures.
	probe func(ctx context.Context) error
}

// NewLoader returns a loader that probes the sqlite driver on first use.
func NewLoader() *Loader {
	return &Loader{probe: probeDriver}
}

func probeDriver(ctx context.Context) error {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return fmt.Errorf("sqlx.Open() > %w", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db.PingContext() > %w", err)
	}
	return nil
}

// Load returns the memoized engine, starting at most one probe at a time.
// Callers arriving during a probe wait for its result instead of starting
// their own.
func (l *Loader) Load(ctx context.Context) (*Engine, error) {
	l.mu.Lock()
	if l.loaded != nil {
		engine := l.loaded
		l.mu.Unlock()
		return engine, nil
	}
	if l.pending != nil {
		pending := l.pending
		l.mu.Unlock()
		select {
		case <-pending.done:
			return pending.res.engine, pending.res.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c := &call{done: make(chan struct{})}
	l.pending = c
	l.mu.Unlock()

	err := l.probe(ctx)

	l.mu.Lock()
	if err != nil {
		c.res = loadResult{err: fmt.Errorf("load database engine > %w", err)}
	} else {
		l.loaded = &Engine{}
		c.res = loadResult{engine: l.loaded}
	}
	// Clearing pending on failure lets the next Load retry rather than
	// caching a permanent failure.
	l.pending = nil
	l.mu.Unlock()
	close(c.done)

	return c.res.engine, c.res.err
}

// Reset drops the memoized engine. Intended for test isolation.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = nil
}
