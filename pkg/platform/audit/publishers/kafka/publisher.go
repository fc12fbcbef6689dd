// Package kafka streams audit events to a Kafka topic and materializes them
// back into a queryable store.
//
// Records are JSON, keyed by subject hash so every event about one person lands
// on the same partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "curpkit/pkg/platform/audit"
)

// payload is the wire form of audit.Event.
type payload struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Timestamp     string `json:"timestamp"`
	Action        string `json:"action"`
	SubjectIDHash string `json:"subject_id_hash,omitempty"`
	Entity        string `json:"entity,omitempty"`
	Outcome       string `json:"outcome,omitempty"`
	Reason        string `json:"reason,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	ActorID       string `json:"actor_id,omitempty"`
}

func encode(eventID uuid.UUID, event audit.Event) ([]byte, error) {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}
	return json.Marshal(payload{
		ID:            eventID.String(),
		Category:      string(category),
		Timestamp:     event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:        event.Action,
		SubjectIDHash: event.SubjectIDHash,
		Entity:        event.Entity,
		Outcome:       event.Outcome,
		Reason:        event.Reason,
		RequestID:     event.RequestID,
		ActorID:       event.ActorID,
	})
}

func decode(value []byte) (uuid.UUID, audit.Event, error) {
	var p payload
	if err := json.Unmarshal(value, &p); err != nil {
		return uuid.Nil, audit.Event{}, fmt.Errorf("unmarshal audit payload: %w", err)
	}
	eventID, err := uuid.Parse(p.ID)
	if err != nil {
		return uuid.Nil, audit.Event{}, fmt.Errorf("parse audit event id: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return uuid.Nil, audit.Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	return eventID, audit.Event{
		Category:      audit.EventCategory(p.Category),
		Timestamp:     ts,
		Action:        p.Action,
		SubjectIDHash: p.SubjectIDHash,
		Entity:        p.Entity,
		Outcome:       p.Outcome,
		Reason:        p.Reason,
		RequestID:     p.RequestID,
		ActorID:       p.ActorID,
	}, nil
}

// Publisher implements audit.Store by producing to Kafka.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects a producer to brokers.
func NewPublisher(brokers []string, topic string, opts ...kgo.Opt) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RecordRetries(5),
		kgo.RequestRetries(5),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// EnsureTopic creates the topic when it does not exist yet.
func (p *Publisher) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	return ensureTopic(ctx, kadm.NewClient(p.client), p.topic, partitions, replicationFactor)
}

func ensureTopic(ctx context.Context, admin *kadm.Client, topic string, partitions int32, replicationFactor int16) error {
	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Append produces the event synchronously.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	value, err := encode(uuid.New(), event)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.SubjectIDHash),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes pending records and closes the client.
func (p *Publisher) Close() {
	_ = p.client.Flush(context.Background())
	p.client.Close()
}

// Sink is where the consumer materializes events; postgres.Store satisfies it.
// Each poll is written inside one InTx call.
type Sink interface {
	AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Consumer reads the audit topic in a consumer group and writes each event to
// a Sink. Offsets are committed only after the sink accepts a batch.
type Consumer struct {
	client *kgo.Client
	sink   Sink
	onErr  func(error)
}

// NewConsumer joins group on topic.
func NewConsumer(brokers []string, topic, group string, sink Sink, onErr func(error)) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if onErr == nil {
		onErr = func(error) {}
	}
	return &Consumer{client: client, sink: sink, onErr: onErr}, nil
}

// Run polls until ctx is cancelled. Undecodable records are reported and
// skipped; sink failures stop the loop without committing so the batch is
// redelivered.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.onErr(fmt.Errorf("fetch %s/%d: %w", topic, partition, err))
		})

		if fetches.NumRecords() == 0 {
			continue
		}
		sinkErr := c.sink.InTx(ctx, func(ctx context.Context) error {
			var appendErr error
			fetches.EachRecord(func(r *kgo.Record) {
				if appendErr != nil {
					return
				}
				eventID, event, err := decode(r.Value)
				if err != nil {
					c.onErr(err)
					return
				}
				appendErr = c.sink.AppendWithID(ctx, eventID, event)
			})
			return appendErr
		})
		if sinkErr != nil {
			return fmt.Errorf("materialize audit event: %w", sinkErr)
		}
		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			c.onErr(fmt.Errorf("commit offsets: %w", err))
		}
	}
}

func (c *Consumer) Close() {
	c.client.Close()
}
