package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers identity checks with regulatory significance:
	// validating a code against a person or matching names to a code.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers rejected or suspicious requests.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine encoding and batch activity.
	// These can be sampled or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted by the CURP service to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Events never carry names or birth dates. SubjectIDHash is HashSubject of the
// 16-character code concerned: the computed code for encode and validate, the
// first 16 characters of the supplied code for name matching. Encoding,
// validating and matching one person therefore share a subject. It is empty
// when a request is rejected before any code exists.
type Event struct {
	Category      EventCategory
	Timestamp     time.Time
	Action        string
	SubjectIDHash string
	// Entity is the two-letter federal entity code, kept for per-state reporting.
	Entity    string
	Outcome   string
	Reason    string
	RequestID string
	// ActorID is the authenticated API client, or the CLI user.
	ActorID string
}

type AuditEvent string

const (
	EventCurpEncoded     AuditEvent = "curp_encoded"
	EventCurpValidated   AuditEvent = "curp_validated"
	EventCurpNameMatched AuditEvent = "curp_name_matched"
	EventCurpRejected    AuditEvent = "curp_rejected"
	EventBatchProcessed  AuditEvent = "curp_batch_processed"
)

// Outcomes recorded in Event.Outcome.
const (
	OutcomeIssued   = "issued"
	OutcomeMatch    = "match"
	OutcomeMismatch = "mismatch"
	OutcomeRejected = "rejected"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventCurpValidated:   CategoryCompliance,
	EventCurpNameMatched: CategoryCompliance,
	EventCurpRejected:    CategorySecurity,
	EventCurpEncoded:     CategoryOperations,
	EventBatchProcessed:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// HashSubject returns the hex SHA-256 of a subject identifier. Empty input
// yields an empty hash so events about unencodable input stay unlinkable.
func HashSubject(subject string) string {
	if subject == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:])
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can be queried back.
type Lister interface {
	ListBySubject(ctx context.Context, subjectIDHash string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Fanout appends every event to each store in order. All stores are attempted;
// failures are joined.
type Fanout []Store

func (f Fanout) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
