package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedCategory = errors.New("unsupported file category")
	ErrLoad                = errors.New("load failure")
	ErrDecode              = errors.New("text decode failure")
	ErrNoSubSource         = errors.New("no sub-source detected")
	ErrNoFile              = errors.New("no file uploaded")
	ErrEmptyTable          = errors.New("empty table")
	ErrAnalysis            = errors.New("analysis call failure")
	ErrTemporary           = errors.New("temporary failure")
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
