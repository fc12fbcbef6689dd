package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"curpkit/internal/ratelimit/metrics"
	"curpkit/internal/ratelimit/models"
	dErrors "curpkit/pkg/domain-errors"
	"curpkit/pkg/platform/circuit"
	"curpkit/pkg/platform/httputil"
	"curpkit/pkg/requestcontext"
)

// HeaderStatus is set to "degraded" while the fallback store decides.
const HeaderStatus = "X-RateLimit-Status"

// BucketStore records requests in per-key sliding windows.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// Limits maps endpoint classes to requests per window.
type Limits map[models.EndpointClass]int

// Classifier picks the endpoint class of a request.
type Classifier func(r *http.Request) models.EndpointClass

type Middleware struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	limits   Limits
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	disabled bool
}

type Option func(*Middleware)

// WithFallback sets the store used while the primary is failing.
func WithFallback(store BucketStore) Option {
	return func(m *Middleware) { m.fallback = store }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(m *Middleware) { m.breaker = b }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) { m.logger = logger }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) { m.metrics = mt }
}

// WithDisabled disables rate limiting entirely.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) { m.disabled = disabled }
}

func New(primary BucketStore, limits Limits, window time.Duration, opts ...Option) *Middleware {
	m := &Middleware{
		primary: primary,
		breaker: circuit.New("ratelimit", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(3)),
		limits:  limits,
		window:  window,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		m.logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit budgets requests per client, or per IP for anonymous callers.
// Requests of classes without a configured limit pass through. Store
// failures fail open.
func (m *Middleware) RateLimit(classify Classifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			class := classify(r)
			limit, ok := m.limits[class]
			if !ok || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := models.NewBucketKey(class, subject(ctx))
			result, degraded, err := m.check(ctx, key, limit)
			if err != nil {
				m.metrics.IncrementDecision(class, "error")
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"request_id", requestcontext.RequestID(ctx),
					"class", class,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if degraded {
				w.Header().Set(HeaderStatus, "degraded")
			}
			if !result.Allowed {
				m.metrics.IncrementDecision(class, "rejected")
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"class", class,
				)
				m.writeRateLimitExceeded(w, result)
				return
			}
			m.metrics.IncrementDecision(class, "allowed")
			next.ServeHTTP(w, r)
		})
	}
}

// check asks the primary store and switches to the fallback when it fails.
// The primary is still consulted while the breaker is open so it can close
// it; once it answers, its result is used and the request is recorded in one
// store only. Responses stay marked degraded until the breaker closes.
func (m *Middleware) check(ctx context.Context, key string, limit int) (*models.Result, bool, error) {
	result, err := m.primary.Allow(ctx, key, limit, m.window)
	if m.fallback == nil {
		return result, false, err
	}
	if err != nil {
		if _, change := m.breaker.RecordFailure(); change.Opened {
			m.logger.WarnContext(ctx, "rate limit store unavailable, using in-memory fallback", "error", err)
			m.metrics.SetDegraded(true)
		}
		result, err = m.fallback.Allow(ctx, key, limit, m.window)
		return result, true, err
	}
	if _, change := m.breaker.RecordSuccess(); change.Closed {
		m.logger.InfoContext(ctx, "rate limit store recovered")
		m.metrics.SetDegraded(false)
	}
	return result, m.breaker.IsOpen(), nil
}

func subject(ctx context.Context) string {
	if clientID := requestcontext.ClientID(ctx); clientID != "" {
		return "client:" + clientID
	}
	return "ip:" + requestcontext.ClientIP(ctx)
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func (m *Middleware) writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	retryAfter := result.RetryAfter(m.now())
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
		fmt.Sprintf("too many requests, retry after %d seconds", retryAfter)))
}
