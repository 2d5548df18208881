// Package sha256 computes catalog checksums.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Prefix marks the digest algorithm in checksum strings.
const Prefix = "sha256:"

// Hasher implements crawler.Hasher using SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns the digest of data as "sha256:<hex>".
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return Prefix + hex.EncodeToString(sum[:]), nil
}
