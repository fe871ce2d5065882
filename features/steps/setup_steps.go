//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"poke-battle-logger/cmd"
	"poke-battle-logger/infrastructure/config"

	"github.com/cucumber/godog"
)

// scriptedPrompter answers prompts by trimmed message and falls back to each
// prompt's default
type scriptedPrompter struct {
	answers map[string]string
	asked   []string
}

func (p *scriptedPrompter) answer(message string) (string, bool) {
	p.asked = append(p.asked, message)
	a, ok := p.answers[strings.TrimSpace(message)]
	return a, ok
}

func (p *scriptedPrompter) Input(message string, defaultValue string) (string, error) {
	if a, ok := p.answer(message); ok {
		return a, nil
	}
	return defaultValue, nil
}

func (p *scriptedPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if a, ok := p.answer(message); ok {
		return a == "yes", nil
	}
	return defaultValue, nil
}

func (p *scriptedPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	if a, ok := p.answer(message); ok {
		for _, o := range options {
			if o == a {
				return a, nil
			}
		}
		return "", fmt.Errorf("%q is not an option of %q", a, message)
	}
	return defaultValue, nil
}

type setupContext struct {
	tempDir    string
	configPath string
	prompter   *scriptedPrompter
	result     *commandResult
	saved      *config.Config
}

var SharedSetupContext = &setupContext{}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext
	testCtx.result = SharedResult

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.prompter = &scriptedPrompter{answers: make(map[string]string)}
		testCtx.saved = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^I answer "([^"]*)" to "([^"]*)"$`, testCtx.iAnswerTo)
	ctx.Step(`^I answer the setup prompts with:$`, testCtx.iAnswerTheSetupPromptsWith)
	ctx.Step(`^an existing setup config file$`, testCtx.anExistingSetupConfigFile)
	ctx.Step(`^I run setup$`, testCtx.iRunSetup)
	ctx.Step(`^the saved config should have storage type "([^"]*)"$`, testCtx.theSavedConfigShouldHaveStorageType)
	ctx.Step(`^the saved config should have profile "([^"]*)"$`, testCtx.theSavedConfigShouldHaveProfile)
	ctx.Step(`^the saved config should have trainer "([^"]*)" with id (\d+)$`, testCtx.theSavedConfigShouldHaveTrainer)
	ctx.Step(`^the saved config should have email disabled$`, testCtx.theSavedConfigShouldHaveEmailDisabled)
	ctx.Step(`^the saved config should have postgres port (\d+)$`, testCtx.theSavedConfigShouldHavePostgresPort)
	ctx.Step(`^no config file should be written$`, testCtx.noConfigFileShouldBeWritten)
	ctx.Step(`^the existing config file should be unchanged$`, testCtx.theExistingConfigFileShouldBeUnchanged)
}

func (c *setupContext) iAnswerTo(answer, message string) error {
	c.prompter.answers[message] = answer
	return nil
}

func (c *setupContext) iAnswerTheSetupPromptsWith(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		c.prompter.answers[row.Cells[0].Value] = row.Cells[1].Value
	}
	return nil
}

const existingConfig = "timezone: UTC\n"

func (c *setupContext) anExistingSetupConfigFile() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.configPath, []byte(existingConfig), 0600)
}

func (c *setupContext) iRunSetup() error {
	c.result.run(func() error {
		return cmd.RunSetupWithPrompter(c.prompter, c.configPath)
	})
	if c.result.err == nil {
		if cfg, err := config.Load(c.configPath); err == nil {
			c.saved = cfg
		}
	}
	return nil
}

func (c *setupContext) requireSaved() error {
	if c.saved == nil {
		return fmt.Errorf("no config was saved (error: %v)", c.result.err)
	}
	return nil
}

func (c *setupContext) theSavedConfigShouldHaveStorageType(expected string) error {
	if err := c.requireSaved(); err != nil {
		return err
	}
	if c.saved.Storage.Type != expected {
		return fmt.Errorf("expected storage type %q, got %q", expected, c.saved.Storage.Type)
	}
	return nil
}

func (c *setupContext) theSavedConfigShouldHaveProfile(expected string) error {
	if err := c.requireSaved(); err != nil {
		return err
	}
	if c.saved.Detection.Profile != expected {
		return fmt.Errorf("expected profile %q, got %q", expected, c.saved.Detection.Profile)
	}
	return nil
}

func (c *setupContext) theSavedConfigShouldHaveTrainer(key string, id int64) error {
	if err := c.requireSaved(); err != nil {
		return err
	}
	t, ok := c.saved.Trainers[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("trainer %q not saved", key)
	}
	if t.ID != id {
		return fmt.Errorf("expected trainer %q to have id %d, got %d", key, id, t.ID)
	}
	return nil
}

func (c *setupContext) theSavedConfigShouldHaveEmailDisabled() error {
	if err := c.requireSaved(); err != nil {
		return err
	}
	if c.saved.Email.Enabled {
		return fmt.Errorf("expected email to be disabled")
	}
	return nil
}

func (c *setupContext) theSavedConfigShouldHavePostgresPort(port int) error {
	if err := c.requireSaved(); err != nil {
		return err
	}
	if c.saved.Storage.Port != port {
		return fmt.Errorf("expected port %d, got %d", port, c.saved.Storage.Port)
	}
	return nil
}

func (c *setupContext) noConfigFileShouldBeWritten() error {
	if _, err := os.Stat(c.configPath); err == nil {
		return fmt.Errorf("expected no config file at %s", c.configPath)
	}
	return nil
}

func (c *setupContext) theExistingConfigFileShouldBeUnchanged() error {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return err
	}
	if string(data) != existingConfig {
		return fmt.Errorf("config file was modified:\n%s", data)
	}
	return nil
}
