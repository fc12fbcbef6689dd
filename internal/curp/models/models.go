// Package models holds the request and result types shared by the CURP
// service, its stores and its transports.
package models

import (
	"strings"
	"time"

	"curpkit/pkg/curp"
	dErrors "curpkit/pkg/domain-errors"
)

// CachedCode is what the issued-code cache remembers for an identity.
type CachedCode struct {
	Code      string    `json:"code"`
	Candidate string    `json:"candidate"`
	Filtered  bool      `json:"filtered"`
	CachedAt  time.Time `json:"cached_at"`
}

// EncodeResult is the outcome of encoding one identity.
type EncodeResult struct {
	Code     curp.Code
	Segments curp.Segments
	// Cached is true when the code came from the issued-code cache.
	Cached bool
}

// ValidateMode selects how a candidate is compared with the computed code.
type ValidateMode string

const (
	// ModePrefix16 compares the first 16 characters, accepting 18-character CURPs.
	ModePrefix16 ValidateMode = "prefix16"
	// ModeStrict requires the candidate to equal the 16-character code.
	ModeStrict ValidateMode = "strict"
)

var validateModes = map[ValidateMode]struct{}{
	ModePrefix16: {},
	ModeStrict:   {},
}

// ParseValidateMode accepts prefix16 or strict; empty means prefix16.
func ParseValidateMode(s string) (ValidateMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModePrefix16, nil
	}
	mode := ValidateMode(s)
	if _, ok := validateModes[mode]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "mode must be prefix16 or strict")
	}
	return mode, nil
}

// ValidateResult reports a comparison outcome.
type ValidateResult struct {
	Valid bool
	// WellFormed reports whether the candidate passes the structural check,
	// independent of the identity.
	WellFormed bool
}

// NameQuery is the input of a name-to-code match.
type NameQuery struct {
	GivenName       string
	PaternalSurname string
	MaternalSurname string
	Code            string
}

// BatchResult is the per-item outcome of a batch encode. Exactly one of Code
// and Err is set.
type BatchResult struct {
	Index int
	Code  curp.Code
	Err   error
}
