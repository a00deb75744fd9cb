package crypto

import (
	"crypto/sha256"
	"fmt"
	"hash"
)

// ErrNilDigest is returned when a weld operand is missing
var ErrNilDigest = fmt.Errorf("nil digest")

// Hash returns a running SHA256 state with every segment written in order
func Hash(segments ...[]byte) hash.Hash {
	h := sha256.New()
	for _, segment := range segments {
		h.Write(segment)
	}

	return h
}

// HashString hashes a string by SHA256
func HashString(value string) []byte {
	return Hash([]byte(value)).Sum(nil)
}

// Weld returns a running state over left then right. Order matters.
func Weld(left, right []byte) (hash.Hash, error) {
	if left == nil || right == nil {
		return nil, ErrNilDigest
	}

	return Hash(left, right), nil
}

// HashNodes hashes two nodes into one
func HashNodes(left []byte, right []byte) []byte {
	return Hash(left, right).Sum(nil)
}
