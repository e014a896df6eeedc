// Package gitlib provides a thin interface over git repositories using
// libgit2. It supplies the commit-graph primitives the assignment engine
// consumes: hashes, reference resolution and topological range walks.
package gitlib

import (
	"encoding/hex"

	git2go "github.com/libgit2/git2go/v34"
)

// Constants for hash operations.
const (
	// HashSize is the size of a SHA-1 hash in bytes.
	HashSize = 20
	// HashHexSize is the size of a hex-encoded SHA-1 hash.
	HashHexSize = 40
)

// Hash represents a git object hash (SHA-1). It is a value type:
// comparable, hashable and safe to use as a map key.
type Hash [HashSize]byte

// ZeroHash returns the zero value hash, used as the null sentinel for
// "no commit" (brand-new or deleted references).
func ZeroHash() Hash {
	return Hash{}
}

// NewHash creates a Hash from a hex string. Short strings fill only the
// leading bytes; trailing odd digits and invalid input decode to zero.
func NewHash(hexStr string) Hash {
	var hash Hash

	if len(hexStr) > HashHexSize {
		hexStr = hexStr[:HashHexSize]
	}

	if len(hexStr)%2 == 1 {
		hexStr = hexStr[:len(hexStr)-1]
	}

	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return Hash{}
	}

	copy(hash[:], decoded)

	return hash
}

// HashFromOid converts a libgit2 Oid to Hash.
func HashFromOid(oid *git2go.Oid) Hash {
	var h Hash
	copy(h[:], oid[:])

	return h
}

// String returns the full hex representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Prefix returns the first n hex digits of the hash, clamped to the full
// hex length.
func (h Hash) Prefix(n int) string {
	s := hex.EncodeToString(h[:])
	if n < len(s) {
		return s[:n]
	}

	return s
}

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ToOid converts Hash back to a libgit2 Oid.
func (h Hash) ToOid() *git2go.Oid {
	oid := new(git2go.Oid)
	copy(oid[:], h[:])

	return oid
}
