//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"poke-battle-logger/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	loadErr    error
}

var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.cfg = nil
		testCtx.loadErr = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a configuration file containing:$`, testCtx.aConfigurationFileContaining)
	ctx.Step(`^no configuration file exists$`, testCtx.noConfigurationFileExists)
	ctx.Step(`^I load the configuration$`, testCtx.iLoadTheConfiguration)
	ctx.Step(`^I attempt to load the configuration$`, testCtx.iAttemptToLoadTheConfiguration)
	ctx.Step(`^the detection profile should be "([^"]*)"$`, testCtx.theDetectionProfileShouldBe)
	ctx.Step(`^the gap threshold should be (\d+)$`, testCtx.theGapThresholdShouldBe)
	ctx.Step(`^the storage type should be "([^"]*)"$`, testCtx.theStorageTypeShouldBe)
	ctx.Step(`^the timezone should be "([^"]*)"$`, testCtx.theTimezoneShouldBe)
	ctx.Step(`^the configuration should be valid$`, testCtx.theConfigurationShouldBeValid)
	ctx.Step(`^validating the configuration should fail with "([^"]*)"$`, testCtx.validatingShouldFailWith)
	ctx.Step(`^I should receive an error about missing configuration$`, testCtx.iShouldReceiveAnErrorAboutMissingConfiguration)
}

func (c *configContext) aConfigurationFileContaining(doc *godog.DocString) error {
	return os.WriteFile(c.configPath, []byte(doc.Content), 0600)
}

func (c *configContext) noConfigurationFileExists() error {
	os.Remove(c.configPath)
	return nil
}

func (c *configContext) iLoadTheConfiguration() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *configContext) iAttemptToLoadTheConfiguration() error {
	c.cfg, c.loadErr = config.Load(c.configPath)
	return nil
}

func (c *configContext) theDetectionProfileShouldBe(expected string) error {
	if c.cfg.Detection.Profile != expected {
		return fmt.Errorf("expected profile %q, got %q", expected, c.cfg.Detection.Profile)
	}
	return nil
}

func (c *configContext) theGapThresholdShouldBe(expected int) error {
	if c.cfg.Detection.GapThreshold != expected {
		return fmt.Errorf("expected gap threshold %d, got %d", expected, c.cfg.Detection.GapThreshold)
	}
	return nil
}

func (c *configContext) theStorageTypeShouldBe(expected string) error {
	if c.cfg.Storage.Type != expected {
		return fmt.Errorf("expected storage type %q, got %q", expected, c.cfg.Storage.Type)
	}
	return nil
}

func (c *configContext) theTimezoneShouldBe(expected string) error {
	if c.cfg.Timezone != expected {
		return fmt.Errorf("expected timezone %q, got %q", expected, c.cfg.Timezone)
	}
	return nil
}

func (c *configContext) theConfigurationShouldBeValid() error {
	return c.cfg.Validate()
}

func (c *configContext) validatingShouldFailWith(expected string) error {
	err := c.cfg.Validate()
	if err == nil {
		return fmt.Errorf("expected validation to fail with %q", expected)
	}
	if !strings.Contains(err.Error(), expected) {
		return fmt.Errorf("expected error to contain %q, got %q", expected, err.Error())
	}
	return nil
}

func (c *configContext) iShouldReceiveAnErrorAboutMissingConfiguration() error {
	if c.loadErr == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(c.loadErr.Error(), "failed to read config file") {
		return fmt.Errorf("expected missing config error, got %q", c.loadErr.Error())
	}
	return nil
}
