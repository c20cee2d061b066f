package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mapi"
	"mapi/internal/config"
	"mapi/internal/logging"
	"mapi/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	clientOnce sync.Once
	client     *mapi.Client
	clientErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) flagPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.flagPath())
		if err != nil {
			c.configErr = asConfigurationError(err)
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// ensureClient builds the logger and the shared HTTP client on first use.
func (c *commandContext) ensureClient(ctx context.Context) (*mapi.Client, error) {
	c.clientOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.clientErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.clientErr = services.Wrap(services.ErrConfiguration, "cli", "logging", "", err)
			return
		}
		client, err := mapi.NewClient(ctx, cfg, logger)
		if err != nil {
			c.clientErr = asConfigurationError(err)
			return
		}
		c.client = client
	})
	return c.client, c.clientErr
}

func (c *commandContext) close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// asConfigurationError tags errors that carry no marker so the exit status
// reports a configuration problem.
func asConfigurationError(err error) error {
	if services.Kind(err) != "unknown" {
		return err
	}
	return services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
