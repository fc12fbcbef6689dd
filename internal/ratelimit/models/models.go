package models

import (
	"math"
	"time"
)

// EndpointClass groups endpoints that share a request budget.
type EndpointClass string

const (
	// ClassRead covers catalog lookups such as GET /v1/curp/entities.
	ClassRead EndpointClass = "read"
	// ClassWrite covers single-item computations: encode, validate, name-match, parse.
	ClassWrite EndpointClass = "write"
	// ClassBatch covers batch encoding, which is budgeted per request.
	ClassBatch EndpointClass = "batch"
)

func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassRead, ClassWrite, ClassBatch:
		return true
	}
	return false
}

// Result is the outcome of one bucket check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the window frees a slot,
// never less than one.
func (r Result) RetryAfter(now time.Time) int {
	secs := int(math.Ceil(r.ResetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// NewBucketKey scopes a subject (client or IP) to an endpoint class.
func NewBucketKey(class EndpointClass, subject string) string {
	return "rl:" + string(class) + ":" + subject
}
