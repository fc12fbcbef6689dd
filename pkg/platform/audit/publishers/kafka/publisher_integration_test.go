//go:build integration

package kafka_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	audit "curpkit/pkg/platform/audit"
	"curpkit/pkg/platform/audit/publishers/kafka"
	"curpkit/pkg/testutil/containers"
)

type collectingSink struct {
	mu     sync.Mutex
	events map[uuid.UUID]audit.Event
}

func (s *collectingSink) AppendWithID(_ context.Context, id uuid.UUID, e audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[id] = e
	return nil
}

func (s *collectingSink) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *collectingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type KafkaAuditSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestKafkaAuditSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaAuditSuite))
}

func (s *KafkaAuditSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

func (s *KafkaAuditSuite) TestPublishAndMaterialize() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "curp-audit-" + uuid.NewString()[:8]
	pub, err := kafka.NewPublisher(s.redpanda.Brokers, topic)
	s.Require().NoError(err)
	defer pub.Close()
	s.Require().NoError(pub.EnsureTopic(ctx, 1, 1))
	s.Require().NoError(pub.EnsureTopic(ctx, 1, 1), "existing topic is not an error")

	for range 3 {
		s.Require().NoError(pub.Append(ctx, audit.Event{
			Timestamp:     time.Now(),
			Action:        string(audit.EventCurpEncoded),
			SubjectIDHash: audit.HashSubject("GALM900515HDFRPR"),
		}))
	}

	sink := &collectingSink{events: map[uuid.UUID]audit.Event{}}
	consumer, err := kafka.NewConsumer(s.redpanda.Brokers, topic, "curp-audit-test", sink, nil)
	s.Require().NoError(err)
	defer consumer.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = consumer.Run(runCtx)
	}()

	s.Eventually(func() bool { return sink.len() == 3 }, 20*time.Second, 100*time.Millisecond)
	stop()
	<-done
}
