package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // registers the "postgres" driver

	audit "curpkit/pkg/platform/audit"
	"curpkit/pkg/platform/sentinel"
	"curpkit/pkg/platform/tx"
)

// Schema creates the audit table. Applied by Migrate; kept exported so
// operators can run it by hand.
const Schema = `
CREATE TABLE IF NOT EXISTS curp_audit_events (
	id              UUID PRIMARY KEY,
	category        TEXT        NOT NULL,
	timestamp       TIMESTAMPTZ NOT NULL,
	action          TEXT        NOT NULL,
	subject_id_hash TEXT        NOT NULL DEFAULT '',
	entity          TEXT        NOT NULL DEFAULT '',
	outcome         TEXT        NOT NULL DEFAULT '',
	reason          TEXT        NOT NULL DEFAULT '',
	request_id      TEXT        NOT NULL DEFAULT '',
	actor_id        TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS curp_audit_events_subject_idx ON curp_audit_events (subject_id_hash, timestamp);
CREATE INDEX IF NOT EXISTS curp_audit_events_timestamp_idx ON curp_audit_events (timestamp DESC);
`

// Store implements audit.Store and audit.Lister on PostgreSQL.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w: %w", sentinel.ErrUnavailable, err)
	}
	return db, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// conn returns the transaction carried by ctx, if any, or the pool.
func (s *Store) conn(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

// InTx runs fn in one transaction. Appends made with the ctx passed to fn
// commit together or not at all.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := tx.From(ctx); ok {
		return fn(ctx)
	}
	t, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	if err := fn(tx.WithTx(ctx, t)); err != nil {
		_ = t.Rollback()
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

// Append inserts one event under a fresh ID.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	return s.AppendWithID(ctx, uuid.New(), event)
}

// AppendWithID inserts an event with a caller-chosen ID. Duplicate IDs are
// ignored so redelivered events stay idempotent.
func (s *Store) AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	query := `
		INSERT INTO curp_audit_events (
			id, category, timestamp, action, subject_id_hash,
			entity, outcome, reason, request_id, actor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.conn(ctx).ExecContext(ctx, query,
		eventID,
		string(category),
		event.Timestamp,
		event.Action,
		event.SubjectIDHash,
		event.Entity,
		event.Outcome,
		event.Reason,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT category, timestamp, action, subject_id_hash,
	       entity, outcome, reason, request_id, actor_id
	FROM curp_audit_events
`

// ListBySubject returns events for one subject hash, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subjectIDHash string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE subject_id_hash = $1
		ORDER BY timestamp ASC
	`, subjectIDHash)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the limit most recent events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		ORDER BY timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&event.Action,
			&event.SubjectIDHash,
			&event.Entity,
			&event.Outcome,
			&event.Reason,
			&event.RequestID,
			&event.ActorID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
