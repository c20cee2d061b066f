package transport

import (
	"context"
	"log/slog"

	"mapi/internal/config"
)

// NewFromConfig builds a Client from the [http] and [cache] sections,
// opening the response cache when it is enabled.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	opts := Options{Logger: logger}
	if cfg == nil {
		return New(opts), nil
	}
	opts.Timeout = cfg.Timeout()
	opts.RetryMax = cfg.HTTP.RetryMax
	opts.RequestsPerSecond = cfg.HTTP.RequestsPerSecond
	opts.UserAgent = cfg.HTTP.UserAgent
	if cfg.Cache.Enabled {
		cache, err := OpenCache(ctx, cfg.Cache.Path, cfg.Retention())
		if err != nil {
			return nil, err
		}
		opts.Cache = cache
	}
	return New(opts), nil
}
