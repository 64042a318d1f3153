package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks raw amount text that failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownUnit marks a unit name with no catalog entry in the requested domain.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrUnsupportedDomain marks a domain outside the closed enumeration.
	ErrUnsupportedDomain = errors.New("unsupported domain")
)

// Error kinds as they appear on the wire.
const (
	KindInvalidInput      = "invalid_input"
	KindUnknownUnit       = "unknown_unit"
	KindUnsupportedDomain = "unsupported_domain"
)

// ConversionError is the structured failure returned by catalog lookups,
// validation, and conversion. Kind is one of the package sentinels.
type ConversionError struct {
	Kind    error
	Message string
}

func (e *ConversionError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ConversionError) Unwrap() error { return e.Kind }

func invalidInput(message string) *ConversionError {
	return &ConversionError{Kind: ErrInvalidInput, Message: message}
}

func unknownUnit(d Domain, name string) *ConversionError {
	return &ConversionError{Kind: ErrUnknownUnit, Message: fmt.Sprintf("%q is not a %s unit", name, d)}
}

func unsupportedDomain(name string) *ConversionError {
	return &ConversionError{Kind: ErrUnsupportedDomain, Message: fmt.Sprintf("%q is not a supported domain", name)}
}

// ErrorKind maps an error to its wire kind. Errors outside the taxonomy
// return the empty string.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrUnknownUnit):
		return KindUnknownUnit
	case errors.Is(err, ErrUnsupportedDomain):
		return KindUnsupportedDomain
	default:
		return ""
	}
}

// ErrorMessage returns the caller-facing message for err. Validation
// messages are surfaced verbatim.
func ErrorMessage(err error) string {
	var ce *ConversionError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return err.Error()
}
