package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSource = "docq/source/v1"
	DomainOutput = "docq/output/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceID computes the content-addressed ID of a named query source.
// The source is any decoded query definition (typically map[string]any);
// it is canonicalized first so key order in the input file does not matter.
func SourceID(name string, source any) (string, error) {
	canonical, err := MarshalCanonical(IRDocument{
		E("name", IRString(name)),
	})
	if err != nil {
		return "", fmt.Errorf("SourceID: failed to marshal name: %w", err)
	}
	body, err := MarshalCanonical(source)
	if err != nil {
		return "", fmt.Errorf("SourceID: failed to marshal source: %w", err)
	}
	return hashWithDomain(DomainSource, append(canonical, body...)), nil
}

// OutputHash computes the content hash of a compiled output document.
// Two compilations are identical exactly when their output hashes match.
func OutputHash(output IRValue) (string, error) {
	canonical, err := MarshalCanonical(output)
	if err != nil {
		return "", fmt.Errorf("OutputHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOutput, canonical), nil
}

// MustOutputHash is like OutputHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustOutputHash(output IRValue) string {
	h, err := OutputHash(output)
	if err != nil {
		panic(err)
	}
	return h
}
