package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"curpkit/internal/curp/metrics"
	"curpkit/internal/curp/models"
	"curpkit/internal/curp/store"
	"curpkit/pkg/curp"
	dErrors "curpkit/pkg/domain-errors"
	audit "curpkit/pkg/platform/audit"
	"curpkit/pkg/platform/sentinel"
	"curpkit/pkg/requestcontext"
)

// Cache remembers issued codes by identity key.
type Cache interface {
	Find(ctx context.Context, key string) (*models.CachedCode, error)
	Save(ctx context.Context, key string, record models.CachedCode) error
}

// AuditPublisher records operation outcomes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	DefaultBatchMaxItems    = 500
	DefaultBatchConcurrency = 8
)

// Service wraps the encoding engine with caching, auditing and telemetry.
// Personal data is never logged; audit events carry a subject hash.
type Service struct {
	cache            Cache
	auditor          AuditPublisher
	metrics          *metrics.Metrics
	logger           *slog.Logger
	tracer           trace.Tracer
	batchMaxItems    int
	batchConcurrency int
}

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithBatchLimits bounds batch size and the number of items encoded at once.
// Non-positive values keep the defaults.
func WithBatchLimits(maxItems, concurrency int) Option {
	return func(s *Service) {
		if maxItems > 0 {
			s.batchMaxItems = maxItems
		}
		if concurrency > 0 {
			s.batchConcurrency = concurrency
		}
	}
}

func New(opts ...Option) *Service {
	s := &Service{
		logger:           slog.Default(),
		tracer:           otel.Tracer("curpkit/curp"),
		batchMaxItems:    DefaultBatchMaxItems,
		batchConcurrency: DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Encode computes the 16-character code, consulting the cache first. The
// non-name fields are validated before the cache so a hit never masks an
// input the engine would reject.
func (s *Service) Encode(ctx context.Context, id curp.Identity) (*models.EncodeResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "curp.encode", trace.WithAttributes(
		attribute.String("curp.entity", string(id.Entity)),
	))
	defer span.End()
	defer func() { s.metrics.ObserveLatency("encode", time.Since(start)) }()

	if err := id.Validate(); err != nil {
		return nil, s.reject(ctx, span, "encode", "", err)
	}

	key := store.IdentityKey(id)
	if cached, ok := s.lookup(ctx, key); ok {
		span.SetAttributes(attribute.Bool("curp.cached", true))
		s.metrics.IncrementOperation("encode", "ok")
		s.emit(ctx, audit.Event{
			Action:        string(audit.EventCurpEncoded),
			SubjectIDHash: subjectOf(cached.Code),
			Entity:        string(id.Entity),
			Outcome:       audit.OutcomeIssued,
			Reason:        "cache",
		})
		return cached, nil
	}

	code, segments, err := curp.EncodeWithSegments(id)
	if err != nil {
		return nil, s.reject(ctx, span, "encode", "", err)
	}

	if segments.Filtered {
		s.metrics.IncrementOffensiveFiltered()
	}
	span.SetAttributes(
		attribute.Bool("curp.cached", false),
		attribute.Bool("curp.filtered", segments.Filtered),
	)
	s.store(ctx, key, code, segments)
	s.metrics.IncrementOperation("encode", "ok")
	s.emit(ctx, audit.Event{
		Action:        string(audit.EventCurpEncoded),
		SubjectIDHash: subjectOf(code),
		Entity:        string(id.Entity),
		Outcome:       audit.OutcomeIssued,
	})
	return &models.EncodeResult{Code: code, Segments: segments}, nil
}

// Validate compares candidate with the code computed from id.
func (s *Service) Validate(ctx context.Context, id curp.Identity, candidate string, mode models.ValidateMode) (*models.ValidateResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "curp.validate", trace.WithAttributes(
		attribute.String("curp.mode", string(mode)),
	))
	defer span.End()
	defer func() { s.metrics.ObserveLatency("validate", time.Since(start)) }()

	switch mode {
	case models.ModeStrict, models.ModePrefix16, "":
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "mode must be prefix16 or strict")
	}

	code, err := curp.Encode(id)
	if err != nil {
		return nil, s.reject(ctx, span, "validate", "", err)
	}
	subject := subjectOf(code)

	var valid bool
	if mode == models.ModeStrict {
		valid = code.Equals(candidate)
	} else if valid, err = code.MatchesPrefix(candidate); err != nil {
		return nil, s.reject(ctx, span, "validate", subject, err)
	}

	_, parseErr := curp.ParseCode(candidate)
	result := &models.ValidateResult{Valid: valid, WellFormed: parseErr == nil}

	outcome := audit.OutcomeMismatch
	if valid {
		outcome = audit.OutcomeMatch
	}
	span.SetAttributes(attribute.Bool("curp.valid", valid))
	s.metrics.IncrementOperation("validate", string(outcome))
	s.emit(ctx, audit.Event{
		Action:        string(audit.EventCurpValidated),
		SubjectIDHash: subject,
		Entity:        string(id.Entity),
		Outcome:       outcome,
	})
	return result, nil
}

// NameMatch reports whether the names produce the name-derived segments of q.Code.
func (s *Service) NameMatch(ctx context.Context, q models.NameQuery) (bool, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "curp.name_match")
	defer span.End()
	defer func() { s.metrics.ObserveLatency("name_match", time.Since(start)) }()

	var subject string
	if prefix, ok := curp.CodePrefix(q.Code); ok {
		subject = subjectOf(curp.Code(prefix))
	}

	matched, err := curp.NameMatchesCode(q.GivenName, q.PaternalSurname, q.MaternalSurname, q.Code)
	if err != nil {
		return false, s.reject(ctx, span, "name_match", subject, err)
	}

	outcome := audit.OutcomeMismatch
	if matched {
		outcome = audit.OutcomeMatch
	}
	span.SetAttributes(attribute.Bool("curp.matched", matched))
	s.metrics.IncrementOperation("name_match", string(outcome))
	s.emit(ctx, audit.Event{
		Action:        string(audit.EventCurpNameMatched),
		SubjectIDHash: subject,
		Outcome:       outcome,
	})
	return matched, nil
}

// Parse checks the structure of a 16-character code.
func (s *Service) Parse(ctx context.Context, code string) (curp.Code, error) {
	_, span := s.tracer.Start(ctx, "curp.parse")
	defer span.End()

	parsed, err := curp.ParseCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed code")
		s.metrics.IncrementOperation("parse", "invalid")
		return "", translate(err)
	}
	s.metrics.IncrementOperation("parse", "ok")
	return parsed, nil
}

// Entities lists the federal entity codes accepted by Encode.
func (s *Service) Entities() []curp.EntityInfo {
	return curp.Entities()
}

// EncodeBatch encodes ids concurrently. Per-item failures are reported in the
// results; the returned error is set only when the batch itself is rejected
// or ctx ends.
func (s *Service) EncodeBatch(ctx context.Context, ids []curp.Identity) ([]models.BatchResult, error) {
	if len(ids) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "batch must contain at least one item")
	}
	if len(ids) > s.batchMaxItems {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("batch exceeds %d items", s.batchMaxItems))
	}

	ctx, span := s.tracer.Start(ctx, "curp.encode_batch", trace.WithAttributes(
		attribute.Int("curp.batch_size", len(ids)),
	))
	defer span.End()
	s.metrics.ObserveBatchSize(len(ids))

	results := make([]models.BatchResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Encode(gctx, id)
			if err != nil {
				results[i] = models.BatchResult{Index: i, Err: err}
				return nil
			}
			results[i] = models.BatchResult{Index: i, Code: res.Code}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch aborted")
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("curp.batch_failed", failed))
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventBatchProcessed),
		Outcome: audit.OutcomeIssued,
		Reason:  fmt.Sprintf("items=%d failed=%d", len(ids), failed),
	})
	return results, nil
}

func (s *Service) lookup(ctx context.Context, key string) (*models.EncodeResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	record, err := s.cache.Find(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementCacheLookup("miss")
		} else {
			s.metrics.IncrementCacheLookup("error")
			s.logger.WarnContext(ctx, "curp cache lookup failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		return nil, false
	}
	code, err := curp.ParseCode(record.Code)
	if err != nil {
		s.metrics.IncrementCacheLookup("error")
		return nil, false
	}
	s.metrics.IncrementCacheLookup("hit")
	return &models.EncodeResult{
		Code: code,
		Segments: curp.Segments{
			Identity:       code.Identity(),
			Candidate:      record.Candidate,
			Filtered:       record.Filtered,
			Differentiator: code.Differentiator(),
		},
		Cached: true,
	}, true
}

func (s *Service) store(ctx context.Context, key string, code curp.Code, seg curp.Segments) {
	if s.cache == nil {
		return
	}
	err := s.cache.Save(ctx, key, models.CachedCode{
		Code:      code.String(),
		Candidate: seg.Candidate,
		Filtered:  seg.Filtered,
		CachedAt:  requestcontext.Now(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "curp cache save failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func (s *Service) reject(ctx context.Context, span trace.Span, operation, subject string, err error) error {
	translated := translate(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(translated)))
	s.metrics.IncrementOperation(operation, "invalid")
	s.emit(ctx, audit.Event{
		Action:        string(audit.EventCurpRejected),
		SubjectIDHash: subject,
		Outcome:       audit.OutcomeRejected,
		Reason:        operation,
	})
	return translated
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if event.ActorID == "" {
		event.ActorID = requestcontext.ClientID(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.metrics.IncrementAuditDropped()
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// subjectOf is the audit subject of every operation: the hash of the
// 16-character code concerned.
func subjectOf(code curp.Code) string {
	return audit.HashSubject(code.String())
}

// translate maps engine errors onto domain error codes. The cause is reduced
// to the kind sentinel so the engine message appears once in logs.
func translate(err error) error {
	var encErr *curp.EncodingError
	if errors.As(err, &encErr) {
		msg := encErr.Message
		if encErr.Field != "" {
			msg = encErr.Field + ": " + msg
		}
		cause := curp.ErrInvalidInput
		if encErr.Kind == curp.KindMalformedCandidate {
			cause = curp.ErrMalformedCandidate
		}
		return &dErrors.Error{Code: dErrors.CodeValidation, Message: msg, Err: cause}
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "curp operation failed")
}
