package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrTemporary          = errors.New("temporary failure")
	ErrNoTextDetected     = errors.New("no text detected")
	ErrExtractionService  = errors.New("extraction service failure")
	ErrValidationRejected = errors.New("validation rejected")
	ErrArchival           = errors.New("archival failure")
	ErrPersistence        = errors.New("persistence failure")
	ErrQuarantine         = errors.New("quarantine failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
