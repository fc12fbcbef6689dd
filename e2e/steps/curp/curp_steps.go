package curp

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the part of the scenario context the CURP steps need.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
}

// RegisterSteps registers encode, validate and parse steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &curpSteps{tc: tc}

	ctx.Step(`^a person named "([^"]*)" "([^"]*)" "([^"]*)"$`, steps.personNamed)
	ctx.Step(`^born on "([^"]*)" in "([^"]*)" with sex "([^"]*)"$`, steps.bornOn)
	ctx.Step(`^I encode the person$`, steps.encode)
	ctx.Step(`^I validate "([^"]*)" against the person$`, steps.validate)
	ctx.Step(`^I validate "([^"]*)" against the person in strict mode$`, steps.validateStrict)
	ctx.Step(`^I parse "([^"]*)"$`, steps.parse)
	ctx.Step(`^I list the federal entities$`, steps.listEntities)
	ctx.Step(`^the encoded CURP should be "([^"]*)"$`, steps.encodedShouldBe)
	ctx.Step(`^the CURP should be valid$`, steps.shouldBeValid(true))
	ctx.Step(`^the CURP should be invalid$`, steps.shouldBeValid(false))
	ctx.Step(`^the entity list should contain (\d+) entries$`, steps.entityCount)
}

type curpSteps struct {
	tc     TestContext
	person map[string]any
}

func (s *curpSteps) personNamed(_ context.Context, given, paternal, maternal string) error {
	s.person = map[string]any{
		"given_name":       given,
		"paternal_surname": paternal,
		"maternal_surname": maternal,
	}
	return nil
}

func (s *curpSteps) bornOn(_ context.Context, date, entity, sex string) error {
	if s.person == nil {
		return fmt.Errorf("no person defined")
	}
	s.person["birth_date"] = date
	s.person["entity"] = entity
	s.person["sex"] = sex
	return nil
}

func (s *curpSteps) encode(context.Context) error {
	return s.tc.POST("/v1/curp/encode", s.person)
}

func (s *curpSteps) validate(_ context.Context, code string) error {
	return s.tc.POST("/v1/curp/validate", s.withCode(code, ""))
}

func (s *curpSteps) validateStrict(_ context.Context, code string) error {
	return s.tc.POST("/v1/curp/validate", s.withCode(code, "strict"))
}

func (s *curpSteps) withCode(code, mode string) map[string]any {
	body := make(map[string]any, len(s.person)+2)
	for k, v := range s.person {
		body[k] = v
	}
	body["code"] = code
	if mode != "" {
		body["mode"] = mode
	}
	return body
}

func (s *curpSteps) parse(_ context.Context, code string) error {
	return s.tc.POST("/v1/curp/parse", map[string]any{"code": code})
}

func (s *curpSteps) listEntities(context.Context) error {
	return s.tc.GET("/v1/curp/entities")
}

func (s *curpSteps) encodedShouldBe(_ context.Context, want string) error {
	got, err := s.tc.GetResponseField("code")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected CURP %q, got %v", want, got)
	}
	return nil
}

func (s *curpSteps) shouldBeValid(want bool) func(context.Context) error {
	return func(context.Context) error {
		got, err := s.tc.GetResponseField("valid")
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("expected valid=%t, got %v", want, got)
		}
		return nil
	}
}

func (s *curpSteps) entityCount(_ context.Context, n int) error {
	got, err := s.tc.GetResponseField("entities")
	if err != nil {
		return err
	}
	list, ok := got.([]any)
	if !ok {
		return fmt.Errorf("entities is %T, not a list", got)
	}
	if len(list) != n {
		return fmt.Errorf("expected %d entities, got %d", n, len(list))
	}
	return nil
}
