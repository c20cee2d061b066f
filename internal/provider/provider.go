package provider

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"mapi/internal/endpoints"
	"mapi/internal/logging"
	"mapi/internal/metadata"
	"mapi/internal/services"
	"mapi/internal/transport"
)

// Criteria describe what to search for. Empty strings and nil pointers are
// ignored.
type Criteria struct {
	IDTmdb string
	IDTvdb string
	IDImdb string
	Title  string
	Series string
	// Year is a single year ("1985") or an inclusive range ("1990-1999",
	// "-1999", "1990-").
	Year string
	// Date is an air date prefix: YYYY, YYYY-MM or YYYY-MM-DD.
	Date    string
	Season  *int
	Episode *int
}

// Int returns a pointer to n for the optional numeric criteria.
func Int(n int) *int { return &n }

// Provider searches one metadata service.
type Provider interface {
	// Name is the registry key, e.g. "tmdb".
	Name() string
	// Media is the record kind the provider produces.
	Media() metadata.Media
	// Search lazily yields the records matching c.
	Search(ctx context.Context, c Criteria) iter.Seq2[metadata.Metadata, error]
}

// Options configure a provider.
type Options struct {
	// APIKey overrides the API_KEY_<NAME> environment variable.
	APIKey   string
	BaseURL  string
	Language string
	// Cache lets endpoint calls read and write the transport's response
	// cache. TVDb defers its login while caching is on.
	Cache   bool
	Fetcher transport.Fetcher
	Logger  *slog.Logger
	// LookupEnv resolves the API key fallback; os.LookupEnv when nil.
	LookupEnv func(string) (string, bool)
}

type base struct {
	name     string
	apiKey   string
	fetcher  transport.Fetcher
	endpoint endpoints.Options
	logger   *slog.Logger
}

func newBase(name, label string, opts Options) (base, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		lookup := opts.LookupEnv
		if lookup == nil {
			lookup = os.LookupEnv
		}
		if value, ok := lookup(APIKeyEnv(name)); ok {
			apiKey = strings.TrimSpace(value)
		}
	}
	if apiKey == "" {
		return base{}, services.Wrap(services.ErrProviderMisuse, name, "init",
			label+" requires an API key; set "+APIKeyEnv(name)+" or pass one explicitly", nil)
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = transport.New(transport.Options{Logger: opts.Logger})
	}
	return base{
		name:    name,
		apiKey:  apiKey,
		fetcher: fetcher,
		endpoint: endpoints.Options{
			BaseURL:  opts.BaseURL,
			Language: opts.Language,
			Cache:    opts.Cache,
		},
		logger: logging.NewComponentLogger(opts.Logger, "provider."+name),
	}, nil
}

// APIKeyEnv is the environment variable holding the API key of a provider.
func APIKeyEnv(name string) string {
	return "API_KEY_" + strings.ToUpper(strings.TrimSpace(name))
}

func (b *base) Name() string { return b.name }

func (b *base) notFound(operation, message string) error {
	return services.Wrap(services.ErrNotFound, b.name, operation, message, nil)
}

func (b *base) misuse(operation, message string) error {
	return services.Wrap(services.ErrProviderMisuse, b.name, operation, message, nil)
}

func (b *base) checkContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrNetwork, b.name, operation, "search cancelled", err)
	}
	return nil
}

func (b *base) logPage(ctx context.Context, operation string, page, items int) {
	logging.WithContext(ctx, b.logger).Debug("page fetched",
		logging.String(logging.FieldOperation, operation),
		logging.Int("page", page),
		logging.Int("items", items),
	)
}

func (b *base) logSkip(ctx context.Context, operation string, err error) {
	logging.WithContext(ctx, b.logger).Debug("skipping malformed result",
		logging.String(logging.FieldOperation, operation),
		logging.Error(err),
	)
}

// emitFunc hands one record to the consumer; it returns errStop once the
// consumer has stopped ranging.
type emitFunc func(metadata.Metadata) error

var errStop = errors.New("search stopped by consumer")

// run adapts a push-style producer to an iter.Seq2, dropping duplicates and
// reporting a terminal error once.
func (b *base) run(ctx context.Context, produce func(context.Context, emitFunc) error) iter.Seq2[metadata.Metadata, error] {
	return func(yield func(metadata.Metadata, error) bool) {
		if _, ok := services.RequestIDFromContext(ctx); !ok {
			ctx = services.WithRequestID(ctx, uuid.NewString())
		}
		ctx = services.WithProvider(ctx, b.name)
		logger := logging.WithContext(ctx, b.logger)

		seen := make(map[string]struct{})
		emitted := 0
		emit := func(m metadata.Metadata) error {
			key := m.Key()
			if _, dup := seen[key]; dup {
				return nil
			}
			seen[key] = struct{}{}
			emitted++
			if !yield(m, nil) {
				return errStop
			}
			return nil
		}

		err := produce(ctx, emit)
		switch {
		case errors.Is(err, errStop):
			logger.Debug("search stopped early", logging.Int("results", emitted))
		case err != nil:
			logger.Debug("search failed",
				logging.Int("results", emitted),
				logging.String("error_kind", services.Kind(err)),
				logging.Error(err),
			)
			yield(nil, err)
		default:
			logger.Debug("search complete", logging.Int("results", emitted))
		}
	}
}

// Collect drains seq, returning every record produced before the first error.
func Collect(seq iter.Seq2[metadata.Metadata, error]) ([]metadata.Metadata, error) {
	var records []metadata.Metadata
	for record, err := range seq {
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

// First returns the first record of seq and stops the search.
func First(seq iter.Seq2[metadata.Metadata, error]) (metadata.Metadata, error) {
	for record, err := range seq {
		return record, err
	}
	return nil, services.Wrap(services.ErrNotFound, "", "first", "empty result sequence", nil)
}
