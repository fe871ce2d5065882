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

type configCrudContext struct {
	tempDir    string
	configPath string
	config     *config.Config
	result     *commandResult
}

var SharedConfigCrudContext = &configCrudContext{}

func InitializeConfigCrudScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigCrudContext
	testCtx.result = SharedResult

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-crud-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.config = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a config file exists with initial data$`, testCtx.aConfigFileExistsWithInitialData)

	// Trainer steps
	ctx.Step(`^I run config add trainer with key "([^"]*)" id (\d+) name "([^"]*)" and email "([^"]*)"$`, testCtx.iRunConfigAddTrainer)
	ctx.Step(`^trainer "([^"]*)" exists with id (\d+) and name "([^"]*)"$`, testCtx.trainerExists)
	ctx.Step(`^I run config list trainers$`, testCtx.iRunConfigListTrainers)
	ctx.Step(`^I run config remove trainer "([^"]*)"$`, testCtx.iRunConfigRemoveTrainer)
	ctx.Step(`^I run config update trainer "([^"]*)" with email "([^"]*)"$`, testCtx.iRunConfigUpdateTrainerEmail)
	ctx.Step(`^the config should contain trainer "([^"]*)" with id (\d+) and name "([^"]*)"$`, testCtx.theConfigShouldContainTrainer)
	ctx.Step(`^the config should contain trainer "([^"]*)" with email "([^"]*)"$`, testCtx.theConfigShouldContainTrainerEmail)
	ctx.Step(`^the config should not contain trainer "([^"]*)"$`, testCtx.theConfigShouldNotContainTrainer)

	// CC steps
	ctx.Step(`^I run config add cc with name "([^"]*)" and email "([^"]*)"$`, testCtx.iRunConfigAddCC)
	ctx.Step(`^cc exists with name "([^"]*)" and email "([^"]*)"$`, testCtx.ccExists)
	ctx.Step(`^I run config list ccs$`, testCtx.iRunConfigListCCs)
	ctx.Step(`^I run config remove cc "([^"]*)"$`, testCtx.iRunConfigRemoveCC)
	ctx.Step(`^the config should contain cc with name "([^"]*)" and email "([^"]*)"$`, testCtx.theConfigShouldContainCC)
	ctx.Step(`^the config should not contain cc with name "([^"]*)"$`, testCtx.theConfigShouldNotContainCC)
}

func (c *configCrudContext) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	return nil
}

func (c *configCrudContext) saveConfig() error {
	return config.Save(c.config, c.configPath)
}

// --- Background ---

func (c *configCrudContext) aConfigFileExistsWithInitialData() error {
	c.config = &config.Config{
		Google: config.GoogleConfig{
			CredentialsFile: "credentials.json",
		},
		Email: config.EmailConfig{
			FromName:    "Battle Logger",
			FromAddress: "logger@example.com",
			DefaultCC:   []config.RecipientConfig{},
		},
		Trainers: make(map[string]config.TrainerConfig),
	}
	c.config.ApplyDefaults()
	return c.saveConfig()
}

// --- Trainer steps ---

func (c *configCrudContext) iRunConfigAddTrainer(key string, id int64, name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.result.run(func() error {
		return cmd.RunConfigAddWithDependencies(c.config, c.configPath, "trainer", cmd.ConfigEntry{
			Key:   key,
			ID:    id,
			Name:  name,
			Email: email,
		}, c.result.output)
	})
	return nil
}

func (c *configCrudContext) trainerExists(key string, id int64, name string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	if c.config.Trainers == nil {
		c.config.Trainers = make(map[string]config.TrainerConfig)
	}
	c.config.Trainers[strings.ToLower(key)] = config.TrainerConfig{ID: id, Name: name}
	return c.saveConfig()
}

func (c *configCrudContext) iRunConfigListTrainers() error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.result.run(func() error {
		return cmd.RunConfigListWithDependencies(c.config, c.configPath, "trainers", c.result.output)
	})
	return nil
}

func (c *configCrudContext) iRunConfigRemoveTrainer(key string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.result.run(func() error {
		return cmd.RunConfigRemoveWithDependencies(c.config, c.configPath, "trainer", key, c.result.output)
	})
	return nil
}

func (c *configCrudContext) iRunConfigUpdateTrainerEmail(key, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.result.run(func() error {
		return cmd.RunConfigUpdateWithDependencies(c.config, c.configPath, "trainer", key, "", email, c.result.output)
	})
	return nil
}

func (c *configCrudContext) theConfigShouldContainTrainer(key string, id int64, name string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	key = strings.ToLower(key)
	t, exists := c.config.Trainers[key]
	if !exists {
		return fmt.Errorf("trainer %q not found in config", key)
	}
	if t.ID != id || t.Name != name {
		return fmt.Errorf("expected trainer %q to be %d/%q, got %d/%q", key, id, name, t.ID, t.Name)
	}
	return nil
}

func (c *configCrudContext) theConfigShouldContainTrainerEmail(key, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	t, exists := c.config.Trainers[strings.ToLower(key)]
	if !exists {
		return fmt.Errorf("trainer %q not found in config", key)
	}
	if t.Email != email {
		return fmt.Errorf("expected trainer %q to have email %q, got %q", key, email, t.Email)
	}
	return nil
}

func (c *configCrudContext) theConfigShouldNotContainTrainer(key string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	if _, exists := c.config.Trainers[strings.ToLower(key)]; exists {
		return fmt.Errorf("trainer %q should not exist in config", key)
	}
	return nil
}

// --- CC steps ---

func (c *configCrudContext) iRunConfigAddCC(name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.result.run(func() error {
		return cmd.RunConfigAddWithDependencies(c.config, c.configPath, "cc", cmd.ConfigEntry{
			Name:  name,
			Email: email,
		}, c.result.output)
	})
	return nil
}

func (c *configCrudContext) ccExists(name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.config.Email.DefaultCC = append(c.config.Email.DefaultCC, config.RecipientConfig{Name: name, Address: email})
	return c.saveConfig()
}

func (c *configCrudContext) iRunConfigListCCs() error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.result.run(func() error {
		return cmd.RunConfigListWithDependencies(c.config, c.configPath, "ccs", c.result.output)
	})
	return nil
}

func (c *configCrudContext) iRunConfigRemoveCC(key string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.result.run(func() error {
		return cmd.RunConfigRemoveWithDependencies(c.config, c.configPath, "cc", key, c.result.output)
	})
	return nil
}

func (c *configCrudContext) theConfigShouldContainCC(name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	for _, cc := range c.config.Email.DefaultCC {
		if cc.Name == name {
			if cc.Address != email {
				return fmt.Errorf("expected cc %q to have email %q, got %q", name, email, cc.Address)
			}
			return nil
		}
	}
	return fmt.Errorf("cc %q not found in config", name)
}

func (c *configCrudContext) theConfigShouldNotContainCC(name string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	for _, cc := range c.config.Email.DefaultCC {
		if cc.Name == name {
			return fmt.Errorf("cc %q should not exist in config", name)
		}
	}
	return nil
}
