package provider_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapi/internal/metadata"
	"mapi/internal/provider"
	"mapi/internal/services"
	"mapi/internal/testsupport"
)

func TestRegistryLookups(t *testing.T) {
	assert.Equal(t, []string{"omdb", "tmdb", "tvdb"}, provider.Names())

	assert.True(t, provider.HasProvider("TMDb"))
	assert.True(t, provider.HasProvider(" tvdb "))
	assert.False(t, provider.HasProvider("imdb"))

	assert.True(t, provider.HasProviderSupport("tmdb", metadata.MediaMovie))
	assert.True(t, provider.HasProviderSupport("OMDB", metadata.MediaMovie))
	assert.True(t, provider.HasProviderSupport("tvdb", metadata.MediaTelevision))
	assert.False(t, provider.HasProviderSupport("tvdb", metadata.MediaMovie))
	assert.False(t, provider.HasProviderSupport("imdb", metadata.MediaMovie))
}

func TestRegistryNew(t *testing.T) {
	ctx := context.Background()
	fetcher := testsupport.NewFetcher(t).Reply("/login", http.StatusOK, `{"token":"jwt"}`)

	for _, name := range provider.Names() {
		p, err := provider.New(ctx, name, provider.Options{APIKey: "key", Fetcher: fetcher})
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
		media, _ := provider.MediaOf(name)
		assert.Equal(t, media, p.Media())
	}

	_, err := provider.New(ctx, "imdb", provider.Options{APIKey: "key"})
	assert.ErrorIs(t, err, services.ErrConfiguration)

	noEnv := func(string) (string, bool) { return "", false }
	p, err := provider.New(ctx, "omdb", provider.Options{LookupEnv: noEnv})
	assert.ErrorIs(t, err, services.ErrProviderMisuse)
	assert.Nil(t, p)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIKey("tvdb", "secret"))
	fetcher := testsupport.NewFetcher(t)

	opts := provider.OptionsFromConfig(cfg, "TVDB", fetcher, nil)
	assert.Equal(t, "secret", opts.APIKey)
	assert.Equal(t, "en", opts.Language)
	assert.Equal(t, "https://api.thetvdb.com", opts.BaseURL)
	assert.True(t, opts.Cache)
	assert.Same(t, fetcher, opts.Fetcher)
}

func TestCollectAndFirst(t *testing.T) {
	seq := func(yield func(metadata.Metadata, error) bool) {}
	records, err := provider.Collect(seq)
	assert.NoError(t, err)
	assert.Empty(t, records)

	_, err = provider.First(seq)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
