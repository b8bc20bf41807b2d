package aescbc

import (
	"errors"
	"fmt"

	"github.com/vdparikh/sbox/subtle"
)

// Kind classifies cipher service failures so callers can branch without
// matching on messages.
type Kind int

const (
	KindUnknown Kind = iota
	// KindKeyFormat: empty key, bad derived key length, or a malformed raw key.
	KindKeyFormat
	// KindIVFormat: IV is not hex or not 16 bytes.
	KindIVFormat
	// KindCiphertextSize: ciphertext is empty, shorter than a block, or unaligned.
	KindCiphertextSize
	// KindPadding: PKCS#7 validation failed, almost always a key or IV mismatch.
	KindPadding
	// KindEncoding: invalid base64 input or a plaintext that is not UTF-8.
	KindEncoding
	// KindIO: reading or writing a file failed.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindKeyFormat:
		return "key format"
	case KindIVFormat:
		return "IV format"
	case KindCiphertextSize:
		return "ciphertext size"
	case KindPadding:
		return "padding invalid"
	case KindEncoding:
		return "encoding"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by this package.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Sentinels for errors.Is; matching compares Kind only.
var (
	ErrKeyFormat      = &Error{Kind: KindKeyFormat}
	ErrIVFormat       = &Error{Kind: KindIVFormat}
	ErrCiphertextSize = &Error{Kind: KindCiphertextSize}
	ErrPadding        = &Error{Kind: KindPadding}
	ErrEncoding       = &Error{Kind: KindEncoding}
	ErrIO             = &Error{Kind: KindIO}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Kind == KindPadding {
		msg += " (wrong key or IV?)"
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "aescbc: " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func errorf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// classify maps errors from the subtle layer onto the taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return err
	}
	switch {
	case errors.Is(err, subtle.ErrInvalidPadding):
		return newError(KindPadding, op, err)
	case errors.Is(err, subtle.ErrCiphertextSize):
		return newError(KindCiphertextSize, op, err)
	case errors.Is(err, subtle.ErrInvalidIV):
		return newError(KindIVFormat, op, err)
	case errors.Is(err, subtle.ErrInvalidKeySize):
		return newError(KindKeyFormat, op, err)
	}
	return newError(KindUnknown, op, err)
}
