// Package deck builds the Anki deck tree for an export batch. Deck names
// are hierarchical ("A::B::C"); a child can only exist once every
// ancestor prefix exists, and the resolver guarantees that by recursing
// up the path before allocating the leaf.
package deck

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ctrlaltwill/Sprout-sub003/internal/anki"
	"github.com/ctrlaltwill/Sprout-sub003/internal/database"
	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
	"github.com/ctrlaltwill/Sprout-sub003/internal/idgen"
)

// DefaultDeckName catches cards with no folder hierarchy and no groups.
const DefaultDeckName = "Sprout"

// Resolver allocates deck IDs for hierarchical paths, keeping the
// name-to-id and id-to-deck maps consistent with each other.
type Resolver struct {
	gen      *idgen.Generator
	modified int64
	byName   map[string]int64
	byID     map[int64]anki.Deck
}

// NewResolver returns an empty resolver issuing IDs from gen.
func NewResolver(gen *idgen.Generator, modified int64) *Resolver {
	return &Resolver{
		gen:      gen,
		modified: modified,
		byName:   map[string]int64{},
		byID:     map[int64]anki.Deck{},
	}
}

// EnsureDeck returns the deck id for a hierarchical name, allocating the
// deck and every missing ancestor. Repeated calls with the same name
// return the same id without allocating again.
func (r *Resolver) EnsureDeck(name string) int64 {
	name = strings.Trim(name, anki.DeckSeparator)
	if name == "" {
		name = DefaultDeckName
	}
	if id, ok := r.byName[name]; ok {
		return id
	}
	if idx := strings.LastIndex(name, anki.DeckSeparator); idx >= 0 {
		r.EnsureDeck(name[:idx])
	}
	id := r.gen.NextID()
	r.byName[name] = id
	r.byID[id] = database.DefaultDeck(id, name, r.modified)
	return id
}

// DeckNameFor derives the deck name for a card: the folder hierarchy of
// its source location wins over explicit groups; a card with neither
// falls into the default deck.
func DeckNameFor(card domain.Card) string {
	if len(card.Source.FolderSegments) > 0 {
		return strings.Join(card.Source.FolderSegments, anki.DeckSeparator)
	}
	if len(card.Groups) > 0 {
		return strings.ReplaceAll(card.Groups[0], "/", anki.DeckSeparator)
	}
	return DefaultDeckName
}

// Recover synthesizes placeholder decks for ids referenced by cards but
// missing from the deck map, guarding against inconsistent upstream state
// without failing the export.
func (r *Resolver) Recover(referenced []int64) {
	for _, id := range referenced {
		if _, ok := r.byID[id]; ok {
			continue
		}
		name := fmt.Sprintf("Recovered Deck %d", id)
		r.byName[name] = id
		r.byID[id] = database.DefaultDeck(id, name, r.modified)
	}
}

// Decks returns the id-keyed deck map built so far.
func (r *Resolver) Decks() map[int64]anki.Deck {
	return r.byID
}

// Names returns all allocated deck names, sorted, mainly for reporting.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
