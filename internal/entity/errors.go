package entity

import "github.com/pkg/errors"

// Error kinds for the adapter. Callers match them with errors.Is; the
// concrete cause stays reachable through the wrap chain.
var (
	// ErrConfiguration means required settings are missing or malformed.
	ErrConfiguration = errors.New("configuration error")
	// ErrProvider means the balance provider query failed.
	ErrProvider = errors.New("balance provider error")
	// ErrValidation means the trade intent is malformed or unsatisfiable.
	ErrValidation = errors.New("validation error")
	// ErrTransfer means the on-chain dispatch failed.
	ErrTransfer = errors.New("transfer error")
	// ErrRouting wraps any trade-dispatch failure.
	ErrRouting = errors.New("routing error")
)

type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *kindError) Unwrap() error { return e.cause }

func (e *kindError) Is(target error) bool { return target == e.kind }

// Tag attaches an error kind to err. The result matches both the kind
// and anything err already matched.
func Tag(kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, cause: err}
}

// Tagf builds a new error of the given kind from a format string.
func Tagf(kind error, format string, args ...any) error {
	return &kindError{kind: kind, cause: errors.Errorf(format, args...)}
}
