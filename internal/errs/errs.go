// Package errs defines the failure kinds every circulation operation reports.
//
// Components wrap one of the sentinels with context:
//
//	return fmt.Errorf("%w: book %d", errs.ErrNotFound, id)
//
// Storage failures keep their cause so it can be logged:
//
//	return errs.Storage(err)
//
// Callers branch with errors.Is or Kind. Only ErrStorage is retryable.
package errs

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrNotEligible = errors.New("not eligible")
	ErrUnavailable = errors.New("unavailable")
	ErrConflict    = errors.New("conflict")
	ErrStorage     = errors.New("storage error")
	ErrAuth        = errors.New("authentication failed")
)

// kinds is ordered so that a more specific domain kind wins over storage when
// an error chain carries both.
var kinds = []error{
	ErrValidation,
	ErrAuth,
	ErrNotFound,
	ErrNotEligible,
	ErrUnavailable,
	ErrConflict,
	ErrStorage,
}

// Validation builds an ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Conflict builds an ErrConflict with a formatted message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Unavailable builds an ErrUnavailable with a formatted message.
func Unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}

// NotEligible builds an ErrNotEligible with a formatted message.
func NotEligible(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotEligible, fmt.Sprintf(format, args...))
}

// NotFound builds an ErrNotFound for the named entity.
func NotFound(entity string, id uint) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
}

// Storage wraps a store or driver failure. A nil err stays nil and an error
// that already carries a kind is returned unchanged.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// Kind returns the sentinel carried by err, or nil if err has none.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Normalize guarantees the result carries exactly one known kind. Context
// cancellation and deadlines count as storage failures.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if errors.Is(err, ErrStorage) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return Storage(err)
}

// Retryable reports whether the caller may transparently retry the call.
func Retryable(err error) bool {
	return Kind(err) == ErrStorage
}

// Code is the machine readable name of err's kind, used in API responses.
func Code(err error) string {
	switch Kind(err) {
	case ErrValidation:
		return "validation_error"
	case ErrNotFound:
		return "not_found"
	case ErrNotEligible:
		return "not_eligible"
	case ErrUnavailable:
		return "unavailable"
	case ErrConflict:
		return "conflict"
	case ErrAuth:
		return "auth_error"
	case ErrStorage:
		return "storage_error"
	default:
		return ""
	}
}
