package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	curpHandler "curpkit/internal/curp/handler"
	"curpkit/internal/platform/metrics"
	"curpkit/internal/platform/middleware"
	ratelimit "curpkit/internal/ratelimit/middleware"
	rlmodels "curpkit/internal/ratelimit/models"
	"curpkit/pkg/platform/httputil"
	"curpkit/pkg/platform/middleware/metadata"
	"curpkit/pkg/platform/middleware/request"
	"curpkit/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// routerDeps are the pieces newRouter mounts. A nil validator leaves /v1 open
// and a nil rateLimit leaves it unthrottled.
type routerDeps struct {
	logger      *slog.Logger
	curp        *curpHandler.Handler
	httpMetrics *metrics.HTTP
	gatherer    prometheus.Gatherer
	validator   middleware.JWTValidator
	rateLimit   *ratelimit.Middleware
	health      func(ctx context.Context) map[string]string
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(d.httpMetrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if d.health != nil {
			resp.Components = d.health(r.Context())
			for _, state := range resp.Components {
				if state != "ok" {
					resp.Status = "degraded"
				}
			}
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(chimiddleware.Timeout(requestTimeout))
		if d.validator != nil {
			v1.Use(middleware.RequireAuth(d.validator, d.logger))
		}
		if d.rateLimit != nil {
			v1.Use(d.rateLimit.RateLimit(classify))
		}
		d.curp.Register(v1)
	})

	return otelhttp.NewHandler(r, "curp-api",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
	)
}

func classify(r *http.Request) rlmodels.EndpointClass {
	switch {
	case r.Method == http.MethodGet:
		return rlmodels.ClassRead
	case strings.HasSuffix(r.URL.Path, "/batch"):
		return rlmodels.ClassBatch
	default:
		return rlmodels.ClassWrite
	}
}
