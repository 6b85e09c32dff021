package claims

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced claim does not exist.
	ErrNotFound = errors.New("claim not found")

	// ErrAlreadyAdjudicated is returned when a decision targets a claim
	// that has left the submitted state. Double decisions are rejected,
	// never silently accepted.
	ErrAlreadyAdjudicated = errors.New("claim has already been adjudicated")

	// ErrForbidden is returned when provider staff reach for a claim that
	// belongs to another provider.
	ErrForbidden = errors.New("claim belongs to another provider")

	// ErrNoProvider is returned when the submitting user is not associated
	// with a provider organization.
	ErrNoProvider = errors.New("user must be associated with a provider")
)

// InputError marks malformed or missing caller input. It is always surfaced
// to the caller and never retried internally.
type InputError struct {
	Field string
	Msg   string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func inputErr(field, msg string) error {
	return &InputError{Field: field, Msg: msg}
}

// IsInputError reports whether err is (or wraps) an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
