// Package hexid generates and validates the hex primary keys used for
// documents. Keys are time-ordered (UUID v7) and rendered as 32 lowercase
// hex digits, so the default identifier separator "g" can never collide.
package hexid

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Len is the length of a primary key in hex digits.
const Len = 32

// New returns a fresh primary key.
func New() string {
	u, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source does; fall back to v4
		// which panics on the same condition.
		u = uuid.New()
	}
	return hex.EncodeToString(u[:])
}

// Valid reports whether s is a well-formed primary key: exactly Len
// lowercase hex digits.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
