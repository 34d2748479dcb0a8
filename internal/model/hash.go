package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Domain prefix for content-addressed envelope identity. The version suffix
// enables future algorithm migration without colliding with old fingerprints.
const domainEnvelope = "gdl/envelope/v1"

// Fingerprint computes a stable content-addressed identity for an envelope.
//
// The fingerprint identifies a queue entry across restarts and keys the
// dead-letter table, so it must be identical for the same logical mutation
// regardless of field order or string normalization in the payload.
// Canonical JSON (sorted keys, NFC strings, integer-only numbers) provides
// that stability.
func Fingerprint(e Envelope) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(e.Data))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return "", fmt.Errorf("fingerprint %s: decode payload: %w", e.Action, err)
	}

	canonical, err := marshalCanonical(map[string]any{
		"action": string(e.Action),
		"data":   payload,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", e.Action, err)
	}

	h := sha256.New()
	h.Write([]byte(domainEnvelope))
	h.Write([]byte{0x00}) // null separator prevents domain/data boundary ambiguity
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(e Envelope) string {
	fp, err := Fingerprint(e)
	if err != nil {
		panic(err)
	}
	return fp
}
