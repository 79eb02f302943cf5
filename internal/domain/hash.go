package domain

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// NormalizeContent reduces a card's primary field to the canonical form
// used for duplicate detection: type-tagged, whitespace-collapsed,
// lower-cased. Two cards with the same normalized content are treated as
// the same card across export/import round trips.
func NormalizeContent(c Card) string {
	text := strings.ToLower(c.PrimaryField())
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.Join(strings.Fields(text), " ")
	return c.Type.String() + "\n" + text
}

// ContentHash returns the SHA-256 hex digest of the normalized content.
func ContentHash(c Card) string {
	sum := sha256.Sum256([]byte(NormalizeContent(c)))
	return fmt.Sprintf("%x", sum)
}
