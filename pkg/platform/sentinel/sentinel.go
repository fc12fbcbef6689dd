package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and publishers
// return these (optionally wrapped) so services can translate them into domain
// errors or degrade quietly.
//
//   - ErrNotFound: key absent or expired in a cache or store
//   - ErrUnavailable: backend (redis, postgres, kafka) temporarily unreachable
//   - ErrClosed: component already shut down
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
