package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// domainPrefix is versioned so the hashing scheme can change without
// colliding with stored hashes.
const domainPrefix = "ictomato/document/v1/"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentHash computes the content hash of a JSON document of the given
// kind. Two documents that differ only in whitespace, key order or Unicode
// normalization hash identically.
func DocumentHash(kind Kind, data []byte) (string, error) {
	if !ValidKinds[kind] {
		return "", fmt.Errorf("DocumentHash: unknown kind %q", kind)
	}
	canonical, err := CanonicalizeJSON(data)
	if err != nil {
		return "", fmt.Errorf("DocumentHash: %w", err)
	}
	return hashWithDomain(domainPrefix+string(kind), canonical), nil
}

// MustDocumentHash is like DocumentHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDocumentHash(kind Kind, data []byte) string {
	h, err := DocumentHash(kind, data)
	if err != nil {
		panic(err)
	}
	return h
}
