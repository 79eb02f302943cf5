// Package idgen issues the numeric identifiers and GUIDs used by exported
// Anki rows. Anki keys notes and cards by millisecond timestamps, so the
// generator has to stay strictly increasing even when two rows are created
// within the same millisecond.
package idgen

import (
	"crypto/rand"
	"fmt"
	"time"
)

// base91 alphabet used by Anki for note GUIDs.
const guidAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#$%&()*+,-./:;<=>?@[]^_`{|}~"

// guidLength matches the length of GUIDs produced by Anki itself.
const guidLength = 10

// Generator issues strictly increasing numeric IDs. One generator is
// constructed per export batch and passed by reference through the
// pipeline; it is not safe for concurrent use.
type Generator struct {
	last int64
}

// New returns a generator whose next ID is based on the current time.
func New() *Generator {
	return &Generator{}
}

// NextID returns a millisecond timestamp, bumped past the previously
// issued value when the clock has not advanced.
func (g *Generator) NextID() int64 {
	id := time.Now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// NextIDAt returns an ID anchored at the given millisecond timestamp,
// bumped past the previously issued value when two rows share a
// millisecond. A zero timestamp falls back to the clock.
func (g *Generator) NextIDAt(millis int64) int64 {
	if millis == 0 {
		millis = time.Now().UnixMilli()
	}
	if millis <= g.last {
		millis = g.last + 1
	}
	g.last = millis
	return millis
}

// Reset clears the last-issued value. Intended for test isolation only.
func (g *Generator) Reset() {
	g.last = 0
}

// NewGUID returns a random 10-character GUID over Anki's base91 alphabet.
func NewGUID() (string, error) {
	buf := make([]byte, guidLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand.Read() > %w", err)
	}
	out := make([]byte, guidLength)
	for i, b := range buf {
		out[i] = guidAlphabet[int(b)%len(guidAlphabet)]
	}
	return string(out), nil
}
