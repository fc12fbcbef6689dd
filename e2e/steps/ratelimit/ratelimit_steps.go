package ratelimit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext is the part of the scenario context the rate limit steps need.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetLastResponseStatus() int
	GetLastResponseHeader(name string) string
}

// RegisterSteps registers steps for the /v1 per-client budget. Scenarios
// assume the server runs with a small batch limit, see features/ratelimit.feature.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I send (\d+) batch requests$`, steps.sendBatches)
	ctx.Step(`^I list the entities (\d+) times$`, steps.listEntitiesNTimes)
	ctx.Step(`^at least one response should have been rate limited$`, steps.sawRateLimited)
	ctx.Step(`^the response should carry rate limit headers$`, steps.hasHeaders)
	ctx.Step(`^the response should carry a Retry-After header$`, steps.hasRetryAfter)
}

type ratelimitSteps struct {
	tc      TestContext
	limited int
}

var batchBody = map[string]any{
	"items": []map[string]any{{
		"given_name":       "Ana",
		"paternal_surname": "Ruiz",
		"maternal_surname": "Soto",
		"birth_date":       "2005-09-09",
		"sex":              "M",
		"entity":           "SR",
	}},
}

func (s *ratelimitSteps) sendBatches(_ context.Context, n int) error {
	return s.repeat(n, func() error { return s.tc.POST("/v1/curp/batch", batchBody) })
}

func (s *ratelimitSteps) listEntitiesNTimes(_ context.Context, n int) error {
	return s.repeat(n, func() error { return s.tc.GET("/v1/curp/entities") })
}

// repeat stops at the first 429 so the last response is the rejection.
func (s *ratelimitSteps) repeat(n int, call func() error) error {
	for range n {
		if err := call(); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() == 429 {
			s.limited++
			return nil
		}
	}
	return nil
}

func (s *ratelimitSteps) sawRateLimited(context.Context) error {
	if s.limited == 0 {
		return fmt.Errorf("no request was rate limited")
	}
	return nil
}

func (s *ratelimitSteps) hasHeaders(context.Context) error {
	for _, h := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
		if s.tc.GetLastResponseHeader(h) == "" {
			return fmt.Errorf("missing header %s", h)
		}
	}
	return nil
}

func (s *ratelimitSteps) hasRetryAfter(context.Context) error {
	v := s.tc.GetLastResponseHeader("Retry-After")
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 1 {
		return fmt.Errorf("invalid Retry-After %q", v)
	}
	return nil
}
