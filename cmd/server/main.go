package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	curpHandler "curpkit/internal/curp/handler"
	curpMetrics "curpkit/internal/curp/metrics"
	curpService "curpkit/internal/curp/service"
	curpStore "curpkit/internal/curp/store"
	jwttoken "curpkit/internal/jwt_token"
	"curpkit/internal/platform/config"
	"curpkit/internal/platform/httpserver"
	"curpkit/internal/platform/logger"
	"curpkit/internal/platform/metrics"
	"curpkit/internal/platform/middleware"
	redisclient "curpkit/internal/platform/redis"
	rlMetrics "curpkit/internal/ratelimit/metrics"
	ratelimit "curpkit/internal/ratelimit/middleware"
	rlmodels "curpkit/internal/ratelimit/models"
	"curpkit/internal/ratelimit/store/bucket"
	audit "curpkit/pkg/platform/audit"
	"curpkit/pkg/platform/audit/publisher"
	"curpkit/pkg/platform/audit/publishers/kafka"
	auditmemory "curpkit/pkg/platform/audit/store/memory"
	auditpostgres "curpkit/pkg/platform/audit/store/postgres"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	closers = append(closers, func() { _ = tp.Shutdown(context.Background()) })

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(reg)
	serviceMetrics := curpMetrics.New(reg)

	redis, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	memoryCache := curpStore.NewInMemoryCache(cfg.Cache.TTL)
	var cache curpService.Cache = memoryCache
	if redis != nil {
		closers = append(closers, func() { _ = redis.Close() })
		cache = curpStore.NewFallbackCache(
			curpStore.NewRedisCache(redis.Client, cfg.Cache.TTL),
			memoryCache,
			curpStore.WithLogger(log),
			curpStore.WithDegradedReporter(serviceMetrics),
		)
		log.Info("curp cache backed by redis")
	}

	auditStore, auditClosers, err := buildAuditStore(ctx, cfg, log)
	closers = append(closers, auditClosers...)
	if err != nil {
		return err
	}
	auditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithLogger(log),
	)
	closers = append(closers, auditor.Close)

	svc := curpService.New(
		curpService.WithCache(cache),
		curpService.WithAuditPublisher(auditor),
		curpService.WithMetrics(serviceMetrics),
		curpService.WithLogger(log),
		curpService.WithBatchLimits(cfg.Batch.MaxItems, cfg.Batch.Concurrency),
	)

	var validator middleware.JWTValidator
	if cfg.AuthEnabled() {
		validator = jwttoken.NewJWTServiceAdapter(
			jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience),
		)
	} else {
		log.Warn("jwt signing key not set, /v1 is unauthenticated")
	}

	router := newRouter(routerDeps{
		logger:      log,
		curp:        curpHandler.New(svc, log, cfg.Batch.MaxItems),
		httpMetrics: httpMetrics,
		gatherer:    reg,
		validator:   validator,
		rateLimit:   buildRateLimiter(ctx, cfg, redis, reg, log),
		health: func(ctx context.Context) map[string]string {
			components := map[string]string{}
			if redis != nil {
				components["redis"] = "ok"
				if err := redis.Health(ctx); err != nil {
					components["redis"] = "unavailable"
				}
			}
			return components
		},
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting curp api", "addr", cfg.Server.Addr, "auth", cfg.AuthEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildRateLimiter keeps buckets in Redis when it is configured, with an
// in-memory fallback behind a breaker, and in memory otherwise.
func buildRateLimiter(ctx context.Context, cfg config.Config, redis *redisclient.Client, reg prometheus.Registerer, log *slog.Logger) *ratelimit.Middleware {
	limits := ratelimit.Limits{
		rlmodels.ClassRead:  cfg.RateLimit.Read,
		rlmodels.ClassWrite: cfg.RateLimit.Write,
		rlmodels.ClassBatch: cfg.RateLimit.Batch,
	}
	opts := []ratelimit.Option{
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(rlMetrics.New(reg)),
		ratelimit.WithDisabled(!cfg.RateLimit.Enabled),
	}

	memory := bucket.New()
	if cfg.RateLimit.Enabled {
		go sweepBuckets(ctx, memory, cfg.RateLimit.Window, log)
	}
	if redis == nil {
		return ratelimit.New(memory, limits, cfg.RateLimit.Window, opts...)
	}
	opts = append(opts, ratelimit.WithFallback(memory))
	return ratelimit.New(bucket.NewRedisBucketStore(redis.Client), limits, cfg.RateLimit.Window, opts...)
}

func sweepBuckets(ctx context.Context, store *bucket.InMemoryBucketStore, every time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Debug("swept idle rate limit windows", "count", n)
			}
		}
	}
}

// buildAuditStore picks the audit sinks. With a consumer group the topic is the
// only write path and the consumer fills Postgres; otherwise Postgres is
// written directly. Nothing configured falls back to memory.
func buildAuditStore(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Store, []func(), error) {
	var (
		sinks   audit.Fanout
		closers []func()
		pg      *auditpostgres.Store
	)

	if cfg.Postgres.DSN != "" {
		db, err := auditpostgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, func() { _ = db.Close() })
		pg = auditpostgres.New(db)
		if err := pg.Migrate(ctx); err != nil {
			return nil, closers, err
		}
		if cfg.Kafka.ConsumerGroup == "" {
			sinks = append(sinks, pg)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, producer.Close)
		if err := producer.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return nil, closers, err
		}
		sinks = append(sinks, producer)

		if cfg.Kafka.ConsumerGroup != "" && pg != nil {
			consumer, err := startConsumer(ctx, cfg, pg, log)
			if err != nil {
				return nil, closers, err
			}
			closers = append(closers, consumer.Close)
		}
	}

	if len(sinks) == 0 {
		log.Warn("no durable audit sink configured, keeping audit events in memory")
		return auditmemory.NewInMemoryStore(), closers, nil
	}
	return sinks, closers, nil
}

func startConsumer(ctx context.Context, cfg config.Config, pg *auditpostgres.Store, log *slog.Logger) (*kafka.Consumer, error) {
	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ConsumerGroup, pg,
		func(err error) { log.Warn("audit consumer error", "error", err) },
	)
	if err != nil {
		return nil, err
	}
	go func() {
		for ctx.Err() == nil {
			err := consumer.Run(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				return
			}
			log.Error("audit consumer stopped, restarting", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}()
	return consumer, nil
}
