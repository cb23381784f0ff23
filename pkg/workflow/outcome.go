package workflow

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDoesNotExist reports that a backend does not hold the item.
	ErrDoesNotExist = errors.New("item does not exist")

	// ErrNegativeCache reports that a backend holds a negative marker for
	// the item: a previous run confirmed it is missing everywhere.
	ErrNegativeCache = errors.New("negative cache hit")

	// ErrUnsupported is returned by backends that cannot perform an
	// operation, such as publishing to a read-only HTTP repository. Chains
	// skip such backends.
	ErrUnsupported = errors.New("operation not supported by backend")
)

// TemporaryError wraps a failure that may not recur, such as a timeout or a
// 5xx response. Chains fall through to the next backend.
type TemporaryError struct{ Err error }

func (e *TemporaryError) Error() string { return "temporary failure: " + e.Err.Error() }
func (e *TemporaryError) Unwrap() error { return e.Err }

// PermanentError wraps a failure that will recur on every attempt, such as
// a checksum mismatch. Chains abort.
type PermanentError struct{ Err error }

func (e *PermanentError) Error() string { return "permanent failure: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Temporary wraps err as a *TemporaryError. Nil stays nil.
func Temporary(err error) error {
	if err == nil {
		return nil
	}
	return &TemporaryError{Err: err}
}

// Temporaryf formats a *TemporaryError.
func Temporaryf(format string, args ...any) error {
	return &TemporaryError{Err: fmt.Errorf(format, args...)}
}

// Permanent wraps err as a *PermanentError. Nil stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Permanentf formats a *PermanentError.
func Permanentf(format string, args ...any) error {
	return &PermanentError{Err: fmt.Errorf(format, args...)}
}

// Outcome is the classification of one backend attempt.
type Outcome int

const (
	Found Outcome = iota
	DoesNotExist
	NegativeCacheHit
	TemporaryFailure
	PermanentFailure
)

// String returns a lower-case label suitable for logs and metrics.
func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case DoesNotExist:
		return "does_not_exist"
	case NegativeCacheHit:
		return "negative_cache_hit"
	case TemporaryFailure:
		return "temporary_failure"
	default:
		return "permanent_failure"
	}
}

// Classify maps a backend error onto its outcome. Unknown errors, including
// context cancellation, are permanent.
func Classify(err error) Outcome {
	var (
		perm *PermanentError
		temp *TemporaryError
	)
	switch {
	case err == nil:
		return Found
	case errors.As(err, &perm):
		return PermanentFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return PermanentFailure
	case errors.As(err, &temp):
		return TemporaryFailure
	case errors.Is(err, ErrNegativeCache):
		return NegativeCacheHit
	case errors.Is(err, ErrDoesNotExist):
		return DoesNotExist
	default:
		return PermanentFailure
	}
}
