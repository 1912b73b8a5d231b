// Package crypto provides cryptographic utilities for Bookworm.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSHA256 computes the hex-encoded SHA-256 hash of a byte slice.
// Blob storage is content-addressed by this hash.
func ComputeSHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
