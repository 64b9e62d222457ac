//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"

	"contactbook/internal/platform/config"
)

func TestFeatures(t *testing.T) {
	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	// Scenarios that exercise the limiter set it explicitly.
	cfg.RateLimit.Requests = 1000

	format := "pretty"
	if v := os.Getenv("GODOG_FORMAT"); v != "" {
		format = v
	}

	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			tc := NewTestContext(cfg)
			RegisterSteps(sc, tc)
			sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
				return ctx, tc.Close()
			})
		},
		Options: &godog.Options{
			Format:   format,
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("e2e scenarios failed")
	}
}
