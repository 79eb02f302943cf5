// Package mapper translates between native card/state/log records and
// Anki note/card/revlog rows. The numeric conversions (checksum, due-date
// bases, difficulty scale) are exact inverses of what the target format
// expects; changing any of them silently corrupts interchange.
package mapper

import "unicode/utf16"

const (
	fnvOffsetBasis = uint32(2166136261)
	fnvPrime       = uint32(16777619)
)

// Checksum computes the notes.csum value: FNV-1a-32 folded over the
// UTF-16 code units of the sort field. The target computes the same hash
// over its native string representation, so the unit of hashing is the
// 16-bit code unit, not the byte.
func Checksum(sortField string) int64 {
	hash := fnvOffsetBasis
	for _, unit := range utf16.Encode([]rune(sortField)) {
		hash ^= uint32(unit)
		hash *= fnvPrime
	}
	return int64(hash)
}
