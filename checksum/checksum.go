// Package checksum fingerprints chunk content and tracks the
// completion of fingerprints computed concurrently.
package checksum

import (
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Size is the length of a checksum string.
const Size = 32

// Sum returns the 128-bit MurmurHash3 (x64 variant, seed 0) of buf as
// 32 uppercase hex characters.  The result names the chunk in the
// store, so the algorithm and format must never change.
func Sum(buf []byte) string {
	h1, h2 := murmur3.Sum128(buf)
	return fmt.Sprintf("%016X%016X", h1, h2)
}

// Valid reports whether s has the form of a checksum.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
