package kafka

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "curpkit/pkg/platform/audit"
)

func TestPayloadCarriesDerivedCategory(t *testing.T) {
	eventID := uuid.New()
	ts := time.Date(2025, 2, 3, 4, 5, 6, 7, time.UTC)

	value, err := encode(eventID, audit.Event{
		Timestamp:     ts,
		Action:        string(audit.EventCurpValidated),
		SubjectIDHash: audit.HashSubject("GALM900515HDFRPR"),
		Outcome:       audit.OutcomeMismatch,
	})
	require.NoError(t, err)
	assert.NotContains(t, string(value), "GALM900515HDFRPR")

	gotID, event, err := decode(value)
	require.NoError(t, err)
	assert.Equal(t, eventID, gotID)
	assert.Equal(t, audit.CategoryCompliance, event.Category)
	assert.True(t, ts.Equal(event.Timestamp))
	assert.Equal(t, audit.OutcomeMismatch, event.Outcome)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := decode([]byte(`{"id":"not-a-uuid","timestamp":"2025-01-01T00:00:00Z"}`))
	assert.Error(t, err)

	_, _, err = decode([]byte(`not json`))
	assert.Error(t, err)
}
