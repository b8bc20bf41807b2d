package sbox

import (
	"errors"
	"fmt"
)

// ErrStructural matches every ValidationError through errors.Is.
var ErrStructural = errors.New("structural validation failed")

// ValidationError reports input that violates a structural precondition:
// wrong S-box length, a matrix that is not 8x8 or not binary, a value outside
// 0..255, or an unparseable constant.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func newValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: err.Error(), Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap exposes the underlying cause, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStructural) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrStructural
}
