// Package mapi searches movie and television metadata on The Movie Database,
// TheTVDB and the Open Movie Database and normalizes every result into a
// Metadata record.
//
//	client, err := mapi.NewClient(ctx, cfg, nil)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	tmdb, err := client.Provider(ctx, "tmdb")
//	if err != nil {
//		return err
//	}
//	for record, err := range tmdb.Search(ctx, mapi.Criteria{Title: "the goonies", Year: "1985"}) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(record) // The Goonies (1985)
//	}
package mapi

import (
	"context"
	"iter"
	"log/slog"

	"mapi/internal/config"
	"mapi/internal/metadata"
	"mapi/internal/provider"
	"mapi/internal/services"
	"mapi/internal/transport"
)

type (
	Metadata   = metadata.Metadata
	Movie      = metadata.Movie
	Television = metadata.Television
	Media      = metadata.Media
	Fields     = metadata.Fields
	FieldError = metadata.FieldError

	Criteria = provider.Criteria
	Provider = provider.Provider
	Options  = provider.Options

	Config     = config.Config
	Cache      = transport.Cache
	CacheStats = transport.CacheStats
)

const (
	MediaMovie      = metadata.MediaMovie
	MediaTelevision = metadata.MediaTelevision
)

// Error markers; match them with errors.Is.
var (
	ErrNotFound       = services.ErrNotFound
	ErrProviderMisuse = services.ErrProviderMisuse
	ErrNetwork        = services.ErrNetwork
	ErrConfiguration  = services.ErrConfiguration
	ErrValidation     = services.ErrValidation

	ErrUnknownField   = metadata.ErrUnknownField
	ErrMediaImmutable = metadata.ErrMediaImmutable
	ErrInvalidDate    = metadata.ErrInvalidDate
)

// NewMovie builds a movie record.
func NewMovie(fields Fields) (*Movie, error) { return metadata.NewMovie(fields) }

// NewTelevision builds a television episode record.
func NewTelevision(fields Fields) (*Television, error) { return metadata.NewTelevision(fields) }

// Int returns a pointer to n for Criteria.Season and Criteria.Episode.
func Int(n int) *int { return provider.Int(n) }

// HasProvider reports whether name is a known provider.
func HasProvider(name string) bool { return provider.HasProvider(name) }

// HasProviderSupport reports whether the named provider yields media records.
func HasProviderSupport(name string, media Media) bool {
	return provider.HasProviderSupport(name, media)
}

// APIKeyEnv names the environment variable consulted when a provider has no
// configured API key.
func APIKeyEnv(name string) string { return provider.APIKeyEnv(name) }

// Providers lists the known provider names.
func Providers() []string { return provider.Names() }

// NewProvider instantiates the named provider with explicit options.
func NewProvider(ctx context.Context, name string, opts Options) (Provider, error) {
	return provider.New(ctx, name, opts)
}

// Collect drains a search into a slice.
func Collect(seq iter.Seq2[Metadata, error]) ([]Metadata, error) { return provider.Collect(seq) }

// First returns the first search result.
func First(seq iter.Seq2[Metadata, error]) (Metadata, error) { return provider.First(seq) }

// FilterMeta dedupes records and narrows them to a year window.
func FilterMeta(records []Metadata, maxHits, year, delta int) []Metadata {
	return provider.FilterMeta(records, maxHits, year, delta)
}

// LoadConfig reads the configuration file at path, or the default locations
// when path is empty.
func LoadConfig(path string) (*Config, error) {
	cfg, _, _, err := config.Load(path)
	return cfg, err
}

// Client shares one HTTP transport and response cache between providers
// configured from a Config.
type Client struct {
	cfg       *config.Config
	transport *transport.Client
	logger    *slog.Logger
}

// NewClient opens the response cache (when enabled) and prepares the HTTP
// transport. A nil cfg uses defaults.
func NewClient(ctx context.Context, cfg *Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	client, err := transport.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, transport: client, logger: logger}, nil
}

// Provider instantiates the named provider from the client's configuration.
func (c *Client) Provider(ctx context.Context, name string) (Provider, error) {
	return provider.New(ctx, name, provider.OptionsFromConfig(c.cfg, name, c.transport, c.logger))
}

// Cache returns the response cache, or nil when caching is disabled.
func (c *Client) Cache() *Cache { return c.transport.Cache() }

// Close releases the response cache.
func (c *Client) Close() error { return c.transport.Close() }
