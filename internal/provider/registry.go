package provider

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"mapi/internal/config"
	"mapi/internal/metadata"
	"mapi/internal/services"
	"mapi/internal/transport"
)

type registration struct {
	media metadata.Media
	open  func(context.Context, Options) (Provider, error)
}

var registry = map[string]registration{
	"tmdb": {media: metadata.MediaMovie, open: func(_ context.Context, opts Options) (Provider, error) {
		p, err := NewTMDb(opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	}},
	"omdb": {media: metadata.MediaMovie, open: func(_ context.Context, opts Options) (Provider, error) {
		p, err := NewOMDb(opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	}},
	"tvdb": {media: metadata.MediaTelevision, open: func(ctx context.Context, opts Options) (Provider, error) {
		p, err := NewTVDb(ctx, opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	}},
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Names lists the registered provider names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}

// HasProvider reports whether name is a registered provider.
func HasProvider(name string) bool {
	_, ok := registry[normalizeName(name)]
	return ok
}

// HasProviderSupport reports whether the provider exists and yields media.
func HasProviderSupport(name string, media metadata.Media) bool {
	reg, ok := registry[normalizeName(name)]
	return ok && reg.media == media
}

// MediaOf returns the record kind a provider yields.
func MediaOf(name string) (metadata.Media, bool) {
	reg, ok := registry[normalizeName(name)]
	return reg.media, ok
}

// New instantiates the named provider. Unknown names fail with
// services.ErrConfiguration.
func New(ctx context.Context, name string, opts Options) (Provider, error) {
	reg, ok := registry[normalizeName(name)]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, name, "new provider",
			"unknown provider; expected one of "+strings.Join(Names(), ", "), nil)
	}
	return reg.open(ctx, opts)
}

// OptionsFromConfig maps the configuration section of a provider to Options
// using fetcher for every request.
func OptionsFromConfig(cfg *config.Config, name string, fetcher transport.Fetcher, logger *slog.Logger) Options {
	opts := Options{Fetcher: fetcher, Logger: logger}
	if cfg == nil {
		return opts
	}
	if section, ok := cfg.ProviderSettings(name); ok {
		opts.APIKey = section.APIKey
		opts.BaseURL = section.BaseURL
		opts.Language = section.Language
	}
	opts.Cache = cfg.Cache.Enabled
	return opts
}
