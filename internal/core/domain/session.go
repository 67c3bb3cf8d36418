package domain

import (
	"github.com/foteam/sessionstore/pkg/token"
)

// Session identifier constraints.
const (
	// SessionIDBytes is the number of random bytes behind a generated id.
	SessionIDBytes = 32

	// MaxSessionIDLength bounds externally supplied identifiers.
	MaxSessionIDLength = 128
)

// NewSessionID returns a new session identifier: 64 hex characters derived
// from 32 bytes of crypto/rand.
func NewSessionID() (string, error) {
	id, err := token.GenerateHex(SessionIDBytes)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return id, nil
}

// IsValidSessionID reports whether id is syntactically acceptable: 1 to 128
// characters from [A-Za-z0-9,-]. Only acceptable ids are ever used to build
// a record file path.
func IsValidSessionID(id string) bool {
	if id == "" || len(id) > MaxSessionIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == ',' || c == '-':
		default:
			return false
		}
	}
	return true
}
