//go:build e2e

package common

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext is the part of the scenario context these steps use.
type TestContext interface {
	SignIn(ctx context.Context, name string) error
	SignOut()
	UseToken(token string)
	GET(path string) error
	LastStatus() int
	LastHeader() http.Header
	ResponseField(field string) (any, error)
	ResponseList() ([]map[string]any, error)
}

// RegisterSteps registers authentication, request and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I am signed in as "([^"]*)"$`, steps.signedInAs)
	ctx.Step(`^I am not signed in$`, steps.notSignedIn)
	ctx.Step(`^I use the bearer token "([^"]*)"$`, steps.useToken)

	ctx.Step(`^I GET "([^"]*)"$`, steps.get)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the error code should be "([^"]*)"$`, steps.errorCodeShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response should list (\d+) contacts?$`, steps.listLength)
	ctx.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, steps.headerShouldBe)
	ctx.Step(`^the response header "([^"]*)" should be set$`, steps.headerShouldBeSet)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) signedInAs(ctx context.Context, name string) error {
	return s.tc.SignIn(ctx, name)
}

func (s *commonSteps) notSignedIn(context.Context) error {
	s.tc.SignOut()
	return nil
}

func (s *commonSteps) useToken(_ context.Context, token string) error {
	s.tc.UseToken(token)
	return nil
}

func (s *commonSteps) get(_ context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) statusShouldBe(_ context.Context, expected int) error {
	if got := s.tc.LastStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d", expected, got)
	}
	return nil
}

func (s *commonSteps) errorCodeShouldBe(_ context.Context, expected string) error {
	return s.fieldShouldBe(context.Background(), "error", expected)
}

func (s *commonSteps) fieldShouldBe(_ context.Context, field, expected string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s %q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) listLength(_ context.Context, expected int) error {
	list, err := s.tc.ResponseList()
	if err != nil {
		return err
	}
	if len(list) != expected {
		return fmt.Errorf("expected %d contacts, got %d", expected, len(list))
	}
	return nil
}

func (s *commonSteps) headerShouldBe(_ context.Context, name, expected string) error {
	if got := s.tc.LastHeader().Get(name); got != expected {
		return fmt.Errorf("expected header %s %q, got %q", name, expected, got)
	}
	return nil
}

func (s *commonSteps) headerShouldBeSet(_ context.Context, name string) error {
	if s.tc.LastHeader().Get(name) == "" {
		return fmt.Errorf("expected header %s to be set", name)
	}
	return nil
}
