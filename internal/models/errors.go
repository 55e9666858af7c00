package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInsufficientStars  = errors.New("insufficient stars")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindInsufficientStars ErrorKind = "insufficient_stars"
	KindCatalog           ErrorKind = "catalog"
	KindRender            ErrorKind = "render"
	KindConfig            ErrorKind = "config"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op    string
	Kind  ErrorKind
	Field string // Optional: offending input field
	Err   error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Field != "" {
		base += fmt.Sprintf(" (field=%s)", e.Field)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel for the error's kind, so errors.Is(err, ErrInvalidInput)
// holds for every invalid_input OpError.
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindInvalidInput:
		return target == ErrInvalidInput
	case KindInsufficientStars:
		return target == ErrInsufficientStars
	case KindCatalog:
		return target == ErrCatalogUnavailable
	}
	return false
}

// IsKind helps callers classify errors without depending on service packages.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// UserMessage returns the innermost message suitable for an inline form error.
func UserMessage(err error) string {
	var oe *OpError
	if errors.As(err, &oe) && oe.Err != nil {
		return oe.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func invalidInput(op, field string, err error) error {
	return &OpError{Op: op, Kind: KindInvalidInput, Field: field, Err: err}
}
