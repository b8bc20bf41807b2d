package aescbc

import (
	"github.com/vdparikh/sbox/subtle"
)

// Cipher is the byte-level AES-CBC primitive. Implementations pad with
// PKCS#7 on Encrypt and strictly validate it on Decrypt. Errors are *Error.
type Cipher interface {
	Encrypt(plaintext, iv []byte) ([]byte, error)
	Decrypt(ciphertext, iv []byte) ([]byte, error)
}

type cbcCipher struct {
	cbc *subtle.CBC
}

var _ Cipher = (*cbcCipher)(nil)

// NewCipher returns a Cipher for a raw 16, 24 or 32 byte AES key.
func NewCipher(key []byte) (Cipher, error) {
	cbc, err := subtle.NewCBC(key)
	if err != nil {
		return nil, classify("new cipher", err)
	}
	return &cbcCipher{cbc: cbc}, nil
}

func (c *cbcCipher) Encrypt(plaintext, iv []byte) ([]byte, error) {
	ct, err := c.cbc.Encrypt(plaintext, iv)
	if err != nil {
		return nil, classify("encrypt", err)
	}
	return ct, nil
}

func (c *cbcCipher) Decrypt(ciphertext, iv []byte) ([]byte, error) {
	pt, err := c.cbc.Decrypt(ciphertext, iv)
	if err != nil {
		return nil, classify("decrypt", err)
	}
	return pt, nil
}
