package aescbc

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/vdparikh/sbox/subtle"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultKeyLength is the derived key length for passphrases (AES-256).
	DefaultKeyLength = 32
	// DefaultIterations is the PBKDF2 iteration count.
	DefaultIterations = 200000
)

// DefaultSalt is the fixed application salt for passphrase stretching.
var DefaultSalt = []byte("SBOX_AES_SALT_V1")

// DeriveKey stretches passphrase with PBKDF2-HMAC-SHA-256. The same inputs
// always produce the same key.
func DeriveKey(passphrase string, length int, salt []byte, iterations int) ([]byte, error) {
	const op = "derive key"
	if passphrase == "" {
		return nil, errorf(KindKeyFormat, op, "key is required")
	}
	if !subtle.ValidKeySize(length) {
		return nil, errorf(KindKeyFormat, op, "key length %d (must be 16, 24, or 32)", length)
	}
	if len(salt) == 0 {
		salt = DefaultSalt
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key([]byte(passphrase), salt, iterations, length, sha256.New), nil
}

// RawKey decodes a hex key that must be exactly 16, 24 or 32 bytes. Unlike
// ResolveKey it never falls back to passphrase derivation.
func RawKey(keyHex string) ([]byte, error) {
	const op = "raw key"
	trimmed := strings.TrimSpace(keyHex)
	if trimmed == "" {
		return nil, errorf(KindKeyFormat, op, "key is required")
	}
	key, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, newError(KindKeyFormat, op, err)
	}
	if !subtle.ValidKeySize(len(key)) {
		return nil, errorf(KindKeyFormat, op, "hex key decodes to %d bytes (must be 32, 48, or 64 hex chars)", len(key))
	}
	return key, nil
}

// isRawKey reports whether input is hex that decodes to an AES key length.
func isRawKey(input string) ([]byte, bool) {
	key, err := hex.DecodeString(input)
	if err != nil || !subtle.ValidKeySize(len(key)) {
		return nil, false
	}
	return key, true
}
