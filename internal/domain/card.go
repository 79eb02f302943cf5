// Package domain holds the native flashcard entities produced and consumed
// by the interchange engine: cards, their scheduling state, and review
// history. The host plugin owns these shapes; the engine only converts them.
package domain

import (
	"encoding"
	"fmt"
	"strings"
)

// CardType tags the flavor of a native card.
type CardType int

const (
	TypeBasic CardType = iota + 1
	TypeBasicReversed
	TypeTypeIn
	TypeCloze
	TypeChoice
	TypeOcclusion
)

var (
	cardTypeNames = [...]string{
		TypeBasic:         "basic",
		TypeBasicReversed: "basic-reversed",
		TypeTypeIn:        "type-in",
		TypeCloze:         "cloze",
		TypeChoice:        "choice",
		TypeOcclusion:     "occlusion",
	}
	cardTypeByName = map[string]CardType{
		"basic":          TypeBasic,
		"basic-reversed": TypeBasicReversed,
		"type-in":        TypeTypeIn,
		"cloze":          TypeCloze,
		"choice":         TypeChoice,
		"occlusion":      TypeOcclusion,
	}
)

var (
	_ fmt.Stringer             = CardType(0)
	_ encoding.TextMarshaler   = CardType(0)
	_ encoding.TextUnmarshaler = (*CardType)(nil)
)

func (c CardType) isValid() bool {
	return c >= TypeBasic && c <= TypeOcclusion
}

func (c CardType) String() string {
	if c.isValid() {
		return cardTypeNames[c]
	}
	return fmt.Sprintf("CardType(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c CardType) MarshalText() ([]byte, error) {
	if !c.isValid() {
		return nil, fmt.Errorf("invalid card type: %d", int(c))
	}
	return []byte(cardTypeNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CardType) UnmarshalText(text []byte) error {
	v, ok := cardTypeByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid card type: %q", text)
	}
	*c = v
	return nil
}

// ParseCardType resolves a type tag as it appears in card files.
func ParseCardType(tag string) (CardType, error) {
	v, ok := cardTypeByName[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return 0, fmt.Errorf("unknown card type tag %q", tag)
	}
	return v, nil
}

// SourceLocation identifies where a card lives in the vault.
type SourceLocation struct {
	// FolderSegments is the vault folder hierarchy containing the card
	// file, outermost first. Empty for cards at the vault root.
	FolderSegments []string
	FilePath       string
	// BlockIndex is the card's position within its file, used to match
	// re-parsed cards back to their originals.
	BlockIndex int
}

// Card is a single native flashcard.
type Card struct {
	Type        CardType
	Question    string
	Answer      string
	Stem        string
	Options     []string
	CorrectIdx  int // 1-based index into Options; only set for TypeChoice
	ClozeText   string
	Explanation string
	// Groups are user-assigned group paths in native "A/B" form.
	Groups []string
	Source SourceLocation
	// ParentID links a cloze child card to the card holding its text.
	// Child cards never export standalone.
	ParentID string
}

// PrimaryField returns the text the card is identified by: the question
// for question/answer shapes, the stem for choices, the cloze text for
// cloze cards.
func (c Card) PrimaryField() string {
	switch c.Type {
	case TypeChoice:
		return c.Stem
	case TypeCloze:
		return c.ClozeText
	default:
		return c.Question
	}
}
