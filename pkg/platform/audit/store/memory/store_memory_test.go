package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "curpkit/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	a := audit.HashSubject("GALM900515HDFRPR")
	b := audit.HashSubject("PEXJ000101HJCRXN")

	require.NoError(t, store.Append(ctx, audit.Event{Action: string(audit.EventCurpEncoded), SubjectIDHash: a}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: string(audit.EventCurpEncoded), SubjectIDHash: b}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: string(audit.EventCurpValidated), SubjectIDHash: a}))

	events, err := store.ListBySubject(ctx, a)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventCurpEncoded), events[0].Action)
	assert.Equal(t, string(audit.EventCurpValidated), events[1].Action)

	recent, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, string(audit.EventCurpValidated), recent[0].Action)
	assert.Equal(t, b, recent[1].SubjectIDHash)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	store.Clear()
	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
