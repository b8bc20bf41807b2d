package aescbc

import (
	"encoding/hex"
	"io"
	"strings"

	"github.com/vdparikh/sbox/subtle"
)

// NormalizeIV returns the IV to use. An empty ivHex draws 16 bytes from rnd;
// otherwise ivHex must decode to exactly 16 bytes.
func NormalizeIV(ivHex string, rnd io.Reader) ([]byte, error) {
	const op = "normalize IV"
	trimmed := strings.TrimSpace(ivHex)
	if trimmed == "" {
		iv := make([]byte, subtle.BlockSize)
		if _, err := io.ReadFull(rnd, iv); err != nil {
			return nil, newError(KindIO, op, err)
		}
		return iv, nil
	}
	iv, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, newError(KindIVFormat, op, err)
	}
	if len(iv) != subtle.BlockSize {
		return nil, errorf(KindIVFormat, op, "IV is %d bytes (must be %d, i.e. %d hex chars)", len(iv), subtle.BlockSize, 2*subtle.BlockSize)
	}
	return iv, nil
}
