package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mapi/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDb.APIKey = "tmdb-test"
	cfgVal.TVDb.APIKey = "tvdb-test"
	cfgVal.OMDb.APIKey = "omdb-test"
	cfgVal.Cache.Path = filepath.Join(base, "cache", "responses.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKey sets the API key of one provider section.
func WithAPIKey(provider, key string) ConfigOption {
	return func(b *configBuilder) {
		switch provider {
		case "tmdb":
			b.cfg.TMDb.APIKey = key
		case "tvdb":
			b.cfg.TVDb.APIKey = key
		case "omdb":
			b.cfg.OMDb.APIKey = key
		default:
			b.t.Fatalf("unknown provider %q", provider)
		}
	}
}

// WithCacheDisabled turns the response cache off.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithLogFile routes file logging into the test's temp directory.
func WithLogFile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.File = filepath.Join(b.baseDir, "logs", name)
	}
}

// WriteConfigFile writes raw TOML into a temp directory and returns its path.
func WriteConfigFile(t testing.TB, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
