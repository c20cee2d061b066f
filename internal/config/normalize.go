package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeProviders()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	return nil
}

func (c *Config) normalizeProviders() {
	sections := []struct {
		provider *Provider
		envKey   string
		baseURL  string
	}{
		{&c.TMDb, "API_KEY_TMDB", defaultTMDbBaseURL},
		{&c.TVDb, "API_KEY_TVDB", defaultTVDbBaseURL},
		{&c.OMDb, "API_KEY_OMDB", defaultOMDbBaseURL},
	}
	for _, section := range sections {
		p := section.provider
		p.APIKey = strings.TrimSpace(p.APIKey)
		if p.APIKey == "" {
			if value, ok := os.LookupEnv(section.envKey); ok {
				p.APIKey = strings.TrimSpace(value)
			}
		}
		p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
		if p.BaseURL == "" {
			p.BaseURL = section.baseURL
		}
		p.Language = strings.TrimSpace(p.Language)
	}
}

func (c *Config) normalizeCache() error {
	if value, ok := os.LookupEnv("MAPI_CACHE_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Cache.Path = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath()
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	if value, ok := os.LookupEnv("MAPI_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
