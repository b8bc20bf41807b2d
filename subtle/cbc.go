package subtle

import (
	"crypto/aes"
	"crypto/cipher"
	cryptosubtle "crypto/subtle"
	"errors"
	"fmt"
)

// BlockSize is the AES block size in bytes, also the IV length.
const BlockSize = aes.BlockSize

var (
	// ErrInvalidKeySize is returned for keys that are not 16, 24 or 32 bytes.
	ErrInvalidKeySize = errors.New("invalid AES key size")
	// ErrInvalidIV is returned when the IV is not exactly one block.
	ErrInvalidIV = errors.New("invalid IV")
	// ErrCiphertextSize is returned when ciphertext is empty or not block aligned.
	ErrCiphertextSize = errors.New("invalid ciphertext size")
	// ErrInvalidPadding is returned when PKCS#7 padding does not verify.
	ErrInvalidPadding = errors.New("invalid PKCS#7 padding")
)

// CBC implements AES in CBC mode with PKCS#7 padding using a raw key.
// This is the low-level primitive; the IV is always supplied by the caller.
//
// Thread safety: CBC is safe for concurrent use, each call builds its own
// block mode.
type CBC struct {
	block cipher.Block
}

// ValidKeySize reports whether n is an AES key length.
func ValidKeySize(n int) bool {
	return n == 16 || n == 24 || n == 32
}

// NewCBC creates a CBC instance for a 16, 24 or 32 byte key.
func NewCBC(key []byte) (*CBC, error) {
	if !ValidKeySize(len(key)) {
		return nil, fmt.Errorf("%w: %d bytes (must be 16, 24, or 32)", ErrInvalidKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	return &CBC{block: block}, nil
}

// Encrypt pads plaintext with PKCS#7 and encrypts it under iv.
func (c *CBC) Encrypt(plaintext, iv []byte) ([]byte, error) {
	if len(iv) != BlockSize {
		return nil, fmt.Errorf("%w: %d bytes (must be %d)", ErrInvalidIV, len(iv), BlockSize)
	}
	padded := Pad(plaintext, BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt decrypts ciphertext under iv and strips the PKCS#7 padding.
// Size is checked before any block is touched.
func (c *CBC) Decrypt(ciphertext, iv []byte) ([]byte, error) {
	if len(iv) != BlockSize {
		return nil, fmt.Errorf("%w: %d bytes (must be %d)", ErrInvalidIV, len(iv), BlockSize)
	}
	if err := CheckCiphertextSize(len(ciphertext)); err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(out, ciphertext)
	return Unpad(out, BlockSize)
}

// EncryptBlocks encrypts block-aligned data without padding.
func (c *CBC) EncryptBlocks(src, iv []byte) ([]byte, error) {
	if len(iv) != BlockSize {
		return nil, fmt.Errorf("%w: %d bytes (must be %d)", ErrInvalidIV, len(iv), BlockSize)
	}
	if len(src)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrCiphertextSize, len(src), BlockSize)
	}
	out := make([]byte, len(src))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, src)
	return out, nil
}

// CheckCiphertextSize verifies that n is at least one block and block aligned.
func CheckCiphertextSize(n int) error {
	switch {
	case n == 0:
		return fmt.Errorf("%w: ciphertext is empty", ErrCiphertextSize)
	case n < BlockSize:
		return fmt.Errorf("%w: %d bytes (minimum %d)", ErrCiphertextSize, n, BlockSize)
	case n%BlockSize != 0:
		return fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrCiphertextSize, n, BlockSize)
	}
	return nil
}

// Pad appends PKCS#7 padding. A full block is added when data is already aligned.
func Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// Unpad validates and removes PKCS#7 padding.
func Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: padded length %d", ErrInvalidPadding, len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: pad byte 0x%02x", ErrInvalidPadding, n)
	}
	tail := data[len(data)-n:]
	want := make([]byte, n)
	for i := range want {
		want[i] = byte(n)
	}
	if cryptosubtle.ConstantTimeCompare(tail, want) != 1 {
		return nil, fmt.Errorf("%w: inconsistent pad bytes", ErrInvalidPadding)
	}
	return data[:len(data)-n], nil
}
