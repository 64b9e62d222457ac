//go:build e2e

package e2e

import (
	"github.com/cucumber/godog"

	"contactbook/e2e/steps/common"
	"contactbook/e2e/steps/contacts"
	"contactbook/e2e/steps/ratelimit"
)

// RegisterSteps registers the step definitions of every step package.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	contacts.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
