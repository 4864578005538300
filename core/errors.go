package core

import "github.com/pkg/errors"

// Store errors. The store enforces identifier/email uniqueness and
// referential bookkeeping; everything else is validated by the calling
// workflow before a mutating call is attempted.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateKey   = errors.New("a record with this id already exists")
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	// ErrStoreCorrupted signals that a persisted payload failed to
	// deserialize. It is unrecoverable for the session: writes must halt
	// until the store is reset.
	ErrStoreCorrupted = errors.New("persisted store payload is corrupted")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s *shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
