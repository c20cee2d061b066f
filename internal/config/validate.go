package config

import (
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/text/language"

	"mapi/internal/services"
)

// Validate ensures the configuration is usable. Errors carry
// services.ErrValidation.
func (c *Config) Validate() error {
	if err := c.validateProviders(); err != nil {
		return services.Wrap(services.ErrValidation, "config", "validate", "", err)
	}
	if err := c.validateCache(); err != nil {
		return services.Wrap(services.ErrValidation, "config", "validate", "", err)
	}
	if err := c.validateHTTP(); err != nil {
		return services.Wrap(services.ErrValidation, "config", "validate", "", err)
	}
	if err := c.validateLogging(); err != nil {
		return services.Wrap(services.ErrValidation, "config", "validate", "", err)
	}
	return nil
}

func (c *Config) validateProviders() error {
	for name, p := range map[string]Provider{"tmdb": c.TMDb, "tvdb": c.TVDb, "omdb": c.OMDb} {
		parsed, err := url.Parse(p.BaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s.base_url must be an absolute URL, got %q", name, p.BaseURL)
		}
		if p.Language == "" {
			continue
		}
		if _, err := language.Parse(p.Language); err != nil {
			return fmt.Errorf("%s.language %q is not a valid language tag: %w", name, p.Language, err)
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.Path == "" {
		return errors.New("cache.path must be set when the cache is enabled")
	}
	if c.Cache.RetentionDays < 1 {
		return errors.New("cache.retention_days must be at least 1")
	}
	return nil
}

func (c *Config) validateHTTP() error {
	if c.HTTP.TimeoutSeconds < 1 {
		return errors.New("http.timeout_seconds must be at least 1")
	}
	if c.HTTP.RetryMax < 0 {
		return errors.New("http.retry_max must not be negative")
	}
	if c.HTTP.RequestsPerSecond < 0 {
		return errors.New("http.requests_per_second must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
