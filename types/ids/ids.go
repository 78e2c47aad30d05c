package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ID is a 32-byte array.
type ID [32]byte

// Empty is the zero-value ID (all zeros)
var Empty ID

// NewID generates a new ID by hashing input bytes
func NewID(data []byte) ID {
	hash := sha256.Sum256(data)
	return ID(hash)
}

// FromString parses a 64-char hex string into an ID
func FromString(s string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != 32 {
		return id, fmt.Errorf("ID must be 32 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// FromBytes copies a 32-byte slice into an ID
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != 32 {
		return id, fmt.Errorf("ID must be 32 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// String converts an ID back to a hex string
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 8 hex chars, for log lines
func (id ID) Short() string {
	return hex.EncodeToString(id[:4])
}

// IsEmpty reports whether the ID is all zeros
func (id ID) IsEmpty() bool {
	return id == Empty
}

// IDFromString creates an ID from a string (using SHA-256)
func IDFromString(s string) ID {
	return NewID([]byte(s))
}
