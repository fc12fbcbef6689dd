package curp

import (
	"errors"
	"fmt"
)

// ErrorKind classifies encoding failures.
type ErrorKind string

const (
	// KindInvalidInput covers empty required fields, ambiguous honorific-only
	// given names, unknown sex/entity values and candidates that are too short.
	KindInvalidInput ErrorKind = "invalid_input"

	// KindMalformedCandidate covers candidate codes whose characters or
	// catalog segments are structurally wrong.
	KindMalformedCandidate ErrorKind = "malformed_candidate"
)

// Sentinels for errors.Is matching against an *EncodingError kind.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMalformedCandidate = errors.New("malformed candidate")
)

// EncodingError is returned at the point where an input cannot be encoded.
type EncodingError struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *EncodingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("curp %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("curp %s: %s: %s", e.Kind, e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) and errors.Is(err, ErrMalformedCandidate) work.
func (e *EncodingError) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrMalformedCandidate:
		return e.Kind == KindMalformedCandidate
	}
	return false
}

func invalidInput(field, message string) *EncodingError {
	return &EncodingError{Kind: KindInvalidInput, Field: field, Message: message}
}

func malformedCandidate(message string) *EncodingError {
	return &EncodingError{Kind: KindMalformedCandidate, Field: "code", Message: message}
}
