//go:build e2e

package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cucumber/godog"
)

// TestContext is the part of the scenario context these steps use.
type TestContext interface {
	SetRateLimit(requests int, window string) error
	GET(path string) error
	LastStatus() int
	LastHeader() http.Header
}

// RegisterSteps registers rate limiting steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^the rate limit is (\d+) requests per "([^"]*)"$`, steps.rateLimitIs)
	ctx.Step(`^I GET "([^"]*)" (\d+) times$`, steps.getNTimes)
	ctx.Step(`^the first (\d+) responses should succeed$`, steps.firstNSucceed)
	ctx.Step(`^the last response should be rate limited$`, steps.lastRateLimited)
	ctx.Step(`^I wait for the rate limit to reset$`, steps.waitForReset)
}

type ratelimitSteps struct {
	tc       TestContext
	statuses []int
}

func (s *ratelimitSteps) rateLimitIs(_ context.Context, requests int, window string) error {
	return s.tc.SetRateLimit(requests, window)
}

func (s *ratelimitSteps) getNTimes(_ context.Context, path string, n int) error {
	s.statuses = s.statuses[:0]
	for range n {
		if err := s.tc.GET(path); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.LastStatus())
	}
	return nil
}

func (s *ratelimitSteps) firstNSucceed(_ context.Context, n int) error {
	if len(s.statuses) < n {
		return fmt.Errorf("only %d requests were sent", len(s.statuses))
	}
	for i, status := range s.statuses[:n] {
		if status != http.StatusOK {
			return fmt.Errorf("request %d returned %d", i+1, status)
		}
	}
	return nil
}

func (s *ratelimitSteps) lastRateLimited(context.Context) error {
	if status := s.tc.LastStatus(); status != http.StatusTooManyRequests {
		return fmt.Errorf("expected 429, got %d", status)
	}
	retryAfter, err := strconv.Atoi(s.tc.LastHeader().Get("Retry-After"))
	if err != nil || retryAfter < 1 {
		return fmt.Errorf("expected a positive Retry-After, got %q", s.tc.LastHeader().Get("Retry-After"))
	}
	return nil
}

func (s *ratelimitSteps) waitForReset(context.Context) error {
	retryAfter, err := strconv.Atoi(s.tc.LastHeader().Get("Retry-After"))
	if err != nil {
		return fmt.Errorf("no Retry-After on the last response")
	}
	time.Sleep(time.Duration(retryAfter) * time.Second)
	return nil
}
