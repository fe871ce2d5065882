//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// commandResult holds the output and error of the last command any scenario ran
type commandResult struct {
	output *bytes.Buffer
	err    error
}

var SharedResult = &commandResult{output: &bytes.Buffer{}}

func InitializeCommandScenario(ctx *godog.ScenarioContext) {
	res := SharedResult

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		res.output.Reset()
		res.err = nil
		return c, nil
	})

	ctx.Step(`^the command should succeed$`, res.theCommandShouldSucceed)
	ctx.Step(`^the command should fail with "([^"]*)"$`, res.theCommandShouldFailWith)
	ctx.Step(`^the output should contain "([^"]*)"$`, res.theOutputShouldContain)
	ctx.Step(`^the output should not contain "([^"]*)"$`, res.theOutputShouldNotContain)
}

// run records the outcome of one command invocation
func (r *commandResult) run(fn func() error) {
	r.output.Reset()
	r.err = fn()
}

func (r *commandResult) theCommandShouldSucceed() error {
	if r.err != nil {
		return fmt.Errorf("expected command to succeed but got error: %v\nOutput: %s", r.err, r.output.String())
	}
	return nil
}

func (r *commandResult) theCommandShouldFailWith(expectedError string) error {
	if r.err == nil {
		return fmt.Errorf("expected command to fail with %q but it succeeded\nOutput: %s", expectedError, r.output.String())
	}
	if !strings.Contains(strings.ToLower(r.err.Error()), strings.ToLower(expectedError)) {
		return fmt.Errorf("expected error to contain %q but got %q", expectedError, r.err.Error())
	}
	return nil
}

func (r *commandResult) theOutputShouldContain(expected string) error {
	if !strings.Contains(r.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q but got:\n%s", expected, r.output.String())
	}
	return nil
}

func (r *commandResult) theOutputShouldNotContain(unexpected string) error {
	if strings.Contains(r.output.String(), unexpected) {
		return fmt.Errorf("expected output not to contain %q but got:\n%s", unexpected, r.output.String())
	}
	return nil
}
