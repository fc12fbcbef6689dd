package e2e

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"curpkit/e2e/steps/curp"
	"curpkit/e2e/steps/ratelimit"
)

// RegisterSteps registers the shared assertions and every step package.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the response status should be (\d+)$`, func(status int) error {
		if got := tc.GetLastResponseStatus(); got != status {
			return fmt.Errorf("expected status %d, got %d (body %s)", status, got, tc.lastBody)
		}
		return nil
	})
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, func(field, want string) error {
		got, err := tc.GetResponseField(field)
		if err != nil {
			return err
		}
		if fmt.Sprint(got) != want {
			return fmt.Errorf("field %q: expected %q, got %v", field, want, got)
		}
		return nil
	})

	curp.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
