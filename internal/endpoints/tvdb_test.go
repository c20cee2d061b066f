package endpoints_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapi/internal/endpoints"
	"mapi/internal/services"
	"mapi/internal/testsupport"
	"mapi/internal/transport"
)

func TestTVDbLogin(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).Reply("/login", http.StatusOK, `{"token":"jwt"}`)

	token, err := endpoints.TVDbLogin(context.Background(), fetcher, "secret", endpoints.Options{Cache: true})
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)

	call := fetcher.Calls()[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, map[string]string{"apikey": "secret"}, call.Body)
	assert.False(t, call.UseCache, "login must bypass the cache")
}

func TestTVDbLoginRejected(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).Reply("/login", http.StatusUnauthorized, `{"Error":"Not Authorized"}`)
	_, err := endpoints.TVDbLogin(context.Background(), fetcher, "bad", endpoints.Options{})
	assert.ErrorIs(t, err, services.ErrProviderMisuse)
}

func TestTVDbRefreshToken(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).Reply("/refresh_token", http.StatusOK, `{"token":"fresh"}`)
	token, err := endpoints.TVDbRefreshToken(context.Background(), fetcher, "stale", endpoints.Options{})
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, "Bearer stale", fetcher.Calls()[0].Headers["Authorization"])
}

func TestTVDbSeriesIDHeaders(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).Reply("/series/73141", http.StatusOK, `{"data":{"id":73141,"seriesName":"American Dad!"}}`)

	payload, err := endpoints.TVDbSeriesID(context.Background(), fetcher, "jwt", "73141", endpoints.Options{Language: "DE"})
	require.NoError(t, err)
	assert.Equal(t, "American Dad!", payload.Map("data").String("seriesName"))

	headers := fetcher.Calls()[0].Headers
	assert.Equal(t, "Bearer jwt", headers["Authorization"])
	assert.Equal(t, "de", headers["Accept-Language"])
}

func TestTVDbValidation(t *testing.T) {
	fetcher := testsupport.NewFetcher(t)
	ctx := context.Background()

	_, err := endpoints.TVDbSeriesID(ctx, fetcher, "jwt", "abc", endpoints.Options{})
	assert.ErrorIs(t, err, services.ErrProviderMisuse)

	_, err = endpoints.TVDbEpisodesID(ctx, fetcher, "jwt", "1", endpoints.Options{Language: "xx"})
	assert.ErrorIs(t, err, services.ErrProviderMisuse)

	_, err = endpoints.TVDbSearchSeries(ctx, fetcher, "jwt", endpoints.TVDbSeriesSearch{Series: "x", IDImdb: "tt1"}, endpoints.Options{})
	assert.ErrorIs(t, err, services.ErrProviderMisuse)

	_, err = endpoints.TVDbSearchSeries(ctx, fetcher, "jwt", endpoints.TVDbSeriesSearch{}, endpoints.Options{})
	assert.ErrorIs(t, err, services.ErrProviderMisuse)

	assert.Empty(t, fetcher.Calls())
}

func TestTVDbEpisodesIDInvalidLanguage(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).
		Reply("/episodes/42", http.StatusOK, `{"data":{"id":42},"errors":{"invalidLanguage":"Incomplete or no translation for the given language"}}`)
	_, err := endpoints.TVDbEpisodesID(context.Background(), fetcher, "jwt", "42", endpoints.Options{})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestTVDbSeriesIDEpisodesQueryParams(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).
		Reply("/series/73141/episodes/query", http.StatusOK, `{"links":{"next":null},"data":[{"id":1}]}`)

	season := 0
	_, err := endpoints.TVDbSeriesIDEpisodesQuery(context.Background(), fetcher, "jwt", "73141",
		endpoints.TVDbEpisodeQuery{Season: &season, Page: 2}, endpoints.Options{})
	require.NoError(t, err)

	params := fetcher.Calls()[0].Params
	assert.Equal(t, "0", params.Get("airedSeason"))
	assert.False(t, params.Has("airedEpisode"))
	assert.Equal(t, "2", params.Get("page"))
}

func TestTVDbSeriesIDEpisodesPage(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).Handle("/series/73141/episodes",
		testsupport.Pages(t, `{"links":{"next":2},"data":[{"id":1}]}`, `{"links":{"next":null},"data":[{"id":2}]}`))

	payload, err := endpoints.TVDbSeriesIDEpisodes(context.Background(), fetcher, "jwt", "73141", 2, endpoints.Options{})
	require.NoError(t, err)
	items := payload.List("data")
	require.Len(t, items, 1)
	id, _ := items[0].Int("id")
	assert.Equal(t, 2, id)
}

func TestTVDbStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"Error":"Not authorized"}`, services.ErrProviderMisuse},
		{http.StatusMethodNotAllowed, `{"Error":"mutually exclusive"}`, services.ErrProviderMisuse},
		{http.StatusNotFound, `{"Error":"Resource not found"}`, services.ErrNotFound},
		{http.StatusOK, `{"data":[]}`, services.ErrNetwork},
		{http.StatusBadGateway, ``, services.ErrNetwork},
	}
	for _, tt := range tests {
		fetcher := testsupport.NewFetcher(t).Handle("/search/series", func(transport.Request) (transport.Response, error) {
			return testsupport.JSON(t, tt.status, tt.body), nil
		})
		_, err := endpoints.TVDbSearchSeries(context.Background(), fetcher, "jwt",
			endpoints.TVDbSeriesSearch{Series: "Adventure Time"}, endpoints.Options{})
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}
}
