// Package aescbc is the block-cipher service: AES in CBC mode with PKCS#7
// padding, keyed either by a raw hex key or by a passphrase stretched with
// PBKDF2-HMAC-SHA-256.
//
// Byte operations are the primitive. Text operations add UTF-8 and base64 on
// top, and file operations add whole-file I/O with the ".aes" naming
// convention.
//
// Example usage:
//
//	ct, ivHex, err := aescbc.EncryptText("hello", "my passphrase", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//	pt, err := aescbc.DecryptText(ct, "my passphrase", ivHex)
package aescbc

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/vdparikh/sbox/subtle"
)

// Extension is appended to encrypted file names and stripped on decryption.
const Extension = ".aes"

// Service holds the key derivation parameters and the IV source. It has no
// mutable state and is safe for concurrent use if its rand reader is.
type Service struct {
	keyLength  int
	salt       []byte
	iterations int
	rand       io.Reader
	logger     logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithKeyLength sets the passphrase-derived key length in bytes.
func WithKeyLength(n int) Option {
	return func(s *Service) { s.keyLength = n }
}

// WithSalt overrides the PBKDF2 salt.
func WithSalt(salt []byte) Option {
	return func(s *Service) { s.salt = append([]byte(nil), salt...) }
}

// WithIterations overrides the PBKDF2 iteration count.
func WithIterations(n int) Option {
	return func(s *Service) { s.iterations = n }
}

// WithRand sets the source for generated IVs.
func WithRand(r io.Reader) Option {
	return func(s *Service) { s.rand = r }
}

// WithLogger sets the logger. Keys are never logged.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a Service with the package defaults.
func NewService(opts ...Option) *Service {
	s := &Service{
		keyLength:  DefaultKeyLength,
		salt:       DefaultSalt,
		iterations: DefaultIterations,
		rand:       rand.Reader,
		logger:     discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// ResolveKey turns key input into AES key bytes. Hex that decodes to 16, 24
// or 32 bytes is used directly; any other non-empty string is a passphrase.
func (s *Service) ResolveKey(input string) ([]byte, error) {
	if input == "" {
		return nil, errorf(KindKeyFormat, "resolve key", "key is required")
	}
	if key, ok := isRawKey(strings.TrimSpace(input)); ok {
		return key, nil
	}
	key, err := DeriveKey(input, s.keyLength, s.salt, s.iterations)
	if err != nil {
		return nil, err
	}
	s.logger.WithField("key_length", len(key)).Debug("derived key from passphrase")
	return key, nil
}

func (s *Service) cipherFor(key string) (Cipher, error) {
	k, err := s.ResolveKey(key)
	if err != nil {
		return nil, err
	}
	return NewCipher(k)
}

// EncryptBytes encrypts data and returns the ciphertext with the IV used.
// An empty ivHex generates a random IV.
func (s *Service) EncryptBytes(data []byte, key, ivHex string) ([]byte, []byte, error) {
	c, err := s.cipherFor(key)
	if err != nil {
		return nil, nil, err
	}
	iv, err := NormalizeIV(ivHex, s.rand)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(ivHex) == "" {
		s.logger.WithField("iv", hex.EncodeToString(iv)).Debug("generated IV")
	}
	ct, err := c.Encrypt(data, iv)
	if err != nil {
		return nil, nil, err
	}
	return ct, iv, nil
}

// DecryptBytes decrypts ciphertext. The size precondition is checked before
// any key derivation.
func (s *Service) DecryptBytes(ciphertext []byte, key, ivHex string) ([]byte, error) {
	if err := subtle.CheckCiphertextSize(len(ciphertext)); err != nil {
		return nil, classify("decrypt", err)
	}
	if strings.TrimSpace(ivHex) == "" {
		return nil, errorf(KindIVFormat, "decrypt", "IV is required")
	}
	iv, err := NormalizeIV(ivHex, s.rand)
	if err != nil {
		return nil, err
	}
	c, err := s.cipherFor(key)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(ciphertext, iv)
}

// EncryptText encrypts the UTF-8 bytes of plaintext and returns standard
// base64 ciphertext and the hex IV.
func (s *Service) EncryptText(plaintext, key, ivHex string) (string, string, error) {
	ct, iv, err := s.EncryptBytes([]byte(plaintext), key, ivHex)
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(ct), hex.EncodeToString(iv), nil
}

// DecryptText reverses EncryptText.
func (s *Service) DecryptText(ciphertextB64, key, ivHex string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertextB64))
	if err != nil {
		return "", newError(KindEncoding, "decrypt text", err)
	}
	pt, err := s.DecryptBytes(ct, key, ivHex)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(pt) {
		return "", errorf(KindEncoding, "decrypt text", "plaintext is not valid UTF-8")
	}
	return string(pt), nil
}

// EncryptFile encrypts the file at path into outDir/<base>.aes and returns
// the output path and hex IV.
func (s *Service) EncryptFile(path, key, outDir, ivHex string) (string, string, error) {
	const op = "encrypt file"
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", newError(KindIO, op, err)
	}
	ct, iv, err := s.EncryptBytes(data, key, ivHex)
	if err != nil {
		return "", "", err
	}
	outPath := filepath.Join(outDir, filepath.Base(path)+Extension)
	if err := s.writeFile(op, outPath, ct); err != nil {
		return "", "", err
	}
	return outPath, hex.EncodeToString(iv), nil
}

// DecryptFile decrypts the file at path into outDir. The output name strips
// a trailing ".aes" and appends originalExt when it is non-empty.
func (s *Service) DecryptFile(path, key, outDir, ivHex, originalExt string) (string, error) {
	const op = "decrypt file"
	data, err := os.ReadFile(path)
	if err != nil {
		return "", newError(KindIO, op, err)
	}
	pt, err := s.DecryptBytes(data, key, ivHex)
	if err != nil {
		return "", err
	}
	outPath := filepath.Join(outDir, DecryptedName(filepath.Base(path), originalExt))
	if err := s.writeFile(op, outPath, pt); err != nil {
		return "", err
	}
	return outPath, nil
}

// DecryptedName derives the plaintext file name from an encrypted one.
func DecryptedName(name, originalExt string) string {
	name = strings.TrimSuffix(name, Extension)
	if ext := strings.TrimPrefix(strings.TrimSpace(originalExt), "."); ext != "" {
		name += "." + ext
	}
	return name
}

func (s *Service) writeFile(op, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return newError(KindIO, op, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return newError(KindIO, op, err)
	}
	s.logger.WithFields(logrus.Fields{"path": path, "bytes": len(data)}).Info("wrote file")
	return nil
}

var defaultService = NewService()

// EncryptBytes calls EncryptBytes on a default Service.
func EncryptBytes(data []byte, key, ivHex string) ([]byte, []byte, error) {
	return defaultService.EncryptBytes(data, key, ivHex)
}

// DecryptBytes calls DecryptBytes on a default Service.
func DecryptBytes(ciphertext []byte, key, ivHex string) ([]byte, error) {
	return defaultService.DecryptBytes(ciphertext, key, ivHex)
}

// EncryptText calls EncryptText on a default Service.
func EncryptText(plaintext, key, ivHex string) (string, string, error) {
	return defaultService.EncryptText(plaintext, key, ivHex)
}

// DecryptText calls DecryptText on a default Service.
func DecryptText(ciphertextB64, key, ivHex string) (string, error) {
	return defaultService.DecryptText(ciphertextB64, key, ivHex)
}

// EncryptFile calls EncryptFile on a default Service.
func EncryptFile(path, key, outDir, ivHex string) (string, string, error) {
	return defaultService.EncryptFile(path, key, outDir, ivHex)
}

// DecryptFile calls DecryptFile on a default Service.
func DecryptFile(path, key, outDir, ivHex, originalExt string) (string, error) {
	return defaultService.DecryptFile(path, key, outDir, ivHex, originalExt)
}

// ResolveKey calls ResolveKey on a default Service.
func ResolveKey(input string) ([]byte, error) {
	return defaultService.ResolveKey(input)
}
