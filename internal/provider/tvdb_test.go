package provider_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapi/internal/metadata"
	"mapi/internal/provider"
	"mapi/internal/services"
	"mapi/internal/testsupport"
	"mapi/internal/transport"
)

const graybles = `{
	"links": {"first": 1, "last": 1, "next": null},
	"data": [{
		"airedSeason": 5,
		"airedEpisodeNumber": 3,
		"episodeName": "Five More Short Graybles; Part 2",
		"firstAired": "2012-11-26",
		"overview": "Finn and Jake  share\r\n stories."
	}]
}`

func newCachedTVDb(t *testing.T, fetcher *testsupport.Fetcher) *provider.TVDb {
	t.Helper()
	p, err := provider.NewTVDb(context.Background(), provider.Options{APIKey: "key", Fetcher: fetcher, Cache: true})
	require.NoError(t, err)
	return p
}

func TestTVDbFanOutSkipsNotFoundCandidates(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).
		Reply("/search/series", http.StatusOK, `{"data":[{"id":1,"seriesName":"Adventure Time Shorts"},{"id":2,"seriesName":"Adventure Time"},{"id":3,"seriesName":"Adventure Time (UK)"}]}`).
		Reply("/series/1", http.StatusNotFound, `{"Error":"ID: 1 not found"}`).
		Reply("/series/2", http.StatusOK, `{"data":{"id":2,"seriesName":"Adventure Time"}}`).
		Reply("/series/2/episodes/query", http.StatusOK, graybles).
		Reply("/series/3", http.StatusOK, `{"data":{"id":3,"seriesName":"Adventure Time (UK)"}}`).
		Reply("/series/3/episodes/query", http.StatusNotFound, `{"Error":"No results for your query"}`)
	p := newCachedTVDb(t, fetcher)

	records, err := provider.Collect(p.Search(context.Background(), provider.Criteria{
		Series: "adventure time", Season: provider.Int(5), Episode: provider.Int(3),
	}))
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, metadata.MediaTelevision, record.Media())
	title, _ := record.Get(metadata.FieldTitle)
	assert.Equal(t, "Five More Short Graybles", title)
	synopsis, _ := record.Get(metadata.FieldSynopsis)
	assert.Equal(t, "Finn and Jake share stories.", synopsis)
	id, _ := record.Get(metadata.FieldIDTvdb)
	assert.Equal(t, "2", id)
	assert.Equal(t, "Adventure Time - 05x03 - Five More Short Graybles", record.String())

	query := fetcher.Calls()[len(fetcher.Calls())-1].Params
	assert.Equal(t, "5", query.Get("airedSeason"))
	assert.Equal(t, "3", query.Get("airedEpisode"))
}

func TestTVDbFanOutAllNotFound(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).
		Reply("/search/series", http.StatusOK, `{"data":[{"id":1,"seriesName":"A"},{"id":2,"seriesName":"B"}]}`)
	p := newCachedTVDb(t, fetcher)

	_, err := provider.Collect(p.Search(context.Background(), provider.Criteria{Series: "nothing"}))
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestTVDbFanOutLimitsCandidates(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).
		Reply("/search/series", http.StatusOK, `{"data":[{"id":1},{"id":2},{"id":3},{"id":4},{"id":5},{"id":6},{"id":7}]}`)
	p := newCachedTVDb(t, fetcher)

	_, _ = provider.Collect(p.Search(context.Background(), provider.Criteria{Series: "many"}))
	seriesLookups := 0
	for i := 1; i <= 7; i++ {
		seriesLookups += fetcher.CallCount("/series/" + strconv.Itoa(i))
	}
	assert.Equal(t, 5, seriesLookups)
}

func TestTVDbReauthenticatesOnceInCachedMode(t *testing.T) {
	authorized := func(req transport.Request) bool {
		return req.Headers["Authorization"] == "Bearer jwt"
	}
	fetcher := testsupport.NewFetcher(t).
		Reply("/login", http.StatusOK, `{"token":"jwt"}`).
		Handle("/series/73141/episodes/query", func(req transport.Request) (transport.Response, error) {
			if !authorized(req) {
				return testsupport.JSON(t, http.StatusUnauthorized, `{"Error":"Not authorized"}`), nil
			}
			return testsupport.JSON(t, http.StatusOK, graybles), nil
		}).
		Handle("/series/73141", func(req transport.Request) (transport.Response, error) {
			if !authorized(req) {
				return testsupport.JSON(t, http.StatusUnauthorized, `{"Error":"Not authorized"}`), nil
			}
			return testsupport.JSON(t, http.StatusOK, `{"data":{"id":73141,"seriesName":"Adventure Time"}}`), nil
		})
	p := newCachedTVDb(t, fetcher)
	assert.Equal(t, 0, fetcher.CallCount("/login"), "cached mode defers login")

	records, err := provider.Collect(p.Search(context.Background(), provider.Criteria{IDTvdb: "73141"}))
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, fetcher.CallCount("/login"))

	_, err = provider.Collect(p.Search(context.Background(), provider.Criteria{IDTvdb: "73141"}))
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.CallCount("/login"), "token is reused")
}

func TestTVDbRenewsStaleTokenInCachedMode(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).
		Reply("/login", http.StatusOK, `{"token":"fresh"}`).
		Reply("/refresh_token", http.StatusOK, `{"token":"stale"}`).
		Handle("/series/2/episodes/query", func(req transport.Request) (transport.Response, error) {
			if req.Headers["Authorization"] != "Bearer fresh" {
				return testsupport.JSON(t, http.StatusUnauthorized, `{"Error":"Not authorized"}`), nil
			}
			return testsupport.JSON(t, http.StatusOK, graybles), nil
		}).
		Handle("/series/2", func(req transport.Request) (transport.Response, error) {
			if req.Headers["Authorization"] != "Bearer fresh" {
				return testsupport.JSON(t, http.StatusUnauthorized, `{"Error":"Not authorized"}`), nil
			}
			return testsupport.JSON(t, http.StatusOK, `{"data":{"id":2,"seriesName":"Adventure Time"}}`), nil
		})
	p := newCachedTVDb(t, fetcher)

	require.NoError(t, p.Refresh(context.Background()))
	require.NoError(t, p.Refresh(context.Background()))
	require.Equal(t, 1, fetcher.CallCount("/login"))
	require.Equal(t, 1, fetcher.CallCount("/refresh_token"))

	records, err := provider.Collect(p.Search(context.Background(), provider.Criteria{IDTvdb: "2"}))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Adventure Time - 05x03 - Five More Short Graybles", records[0].String())
	assert.Equal(t, 2, fetcher.CallCount("/login"), "a rejected token is replaced by a new login")
}

func TestTVDbDoesNotRetryWithToken(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).
		Reply("/login", http.StatusOK, `{"token":"jwt"}`).
		Reply("/series/73141", http.StatusUnauthorized, `{"Error":"Not authorized"}`)
	p, err := provider.NewTVDb(context.Background(), provider.Options{APIKey: "key", Fetcher: fetcher})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.CallCount("/login"), "live mode logs in eagerly")

	_, err = provider.Collect(p.Search(context.Background(), provider.Criteria{IDTvdb: "73141"}))
	assert.ErrorIs(t, err, services.ErrProviderMisuse)
	assert.Equal(t, 1, fetcher.CallCount("/login"))
}

func TestTVDbSearchByIMDbID(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).
		Reply("/search/series", http.StatusOK, `{"data":[{"id":2,"seriesName":"Adventure Time"}]}`).
		Reply("/series/2", http.StatusOK, `{"data":{"id":2,"seriesName":"Adventure Time"}}`).
		Reply("/series/2/episodes/query", http.StatusOK, graybles)
	p := newCachedTVDb(t, fetcher)

	_, err := provider.First(p.Search(context.Background(), provider.Criteria{IDImdb: "tt1305826", Series: "ignored"}))
	require.NoError(t, err)
	assert.Equal(t, "tt1305826", fetcher.Calls()[0].Params.Get("imdbId"))
	assert.False(t, fetcher.Calls()[0].Params.Has("name"))
}

func TestTVDbSearchSeriesDate(t *testing.T) {
	page1 := `{"links":{"last":2},"data":[
		{"airedSeason":1,"airedEpisodeNumber":1,"episodeName":"Get Away From My Mom","firstAired":"1999-04-26"},
		{"airedSeason":4,"airedEpisodeNumber":1,"episodeName":"Bye Bye Greasy","firstAired":"2019-05-23"}
	]}`
	page2 := `{"links":{"last":2},"data":[
		{"airedSeason":4,"airedEpisodeNumber":2,"episodeName":"Camp","firstAired":"2019-05-30"}
	]}`
	newFetcher := func() *testsupport.Fetcher {
		return testsupport.NewFetcher(t).
			Reply("/search/series", http.StatusOK, `{"data":[{"id":75087,"seriesName":"Home Movies"}]}`).
			Handle("/series/75087/episodes", testsupport.Pages(t, page1, page2))
	}

	fetcher := newFetcher()
	p := newCachedTVDb(t, fetcher)
	records, err := provider.Collect(p.Search(context.Background(), provider.Criteria{Series: "home movies", Date: "2019-05-23"}))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Home Movies - 04x01 - Bye Bye Greasy", records[0].String())
	assert.Equal(t, 1, fetcher.CallCount("/series/75087/episodes"), "exact date stops after the matching page")

	fetcher = newFetcher()
	p = newCachedTVDb(t, fetcher)
	records, err = provider.Collect(p.Search(context.Background(), provider.Criteria{Series: "home movies", Date: "2019-05"}))
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, fetcher.CallCount("/series/75087/episodes"))
}

func TestTVDbValidatesCriteria(t *testing.T) {
	fetcher := testsupport.NewFetcher(t)
	p := newCachedTVDb(t, fetcher)

	for _, c := range []provider.Criteria{
		{Series: "home movies", Date: "05/23/2019"},
		{Series: "home movies", Date: "2019-13"},
		{IDTvdb: "abc"},
		{IDImdb: "1305826"},
		{Series: "x", Season: provider.Int(-1)},
	} {
		_, err := provider.Collect(p.Search(context.Background(), c))
		assert.ErrorIs(t, err, services.ErrProviderMisuse, "%+v", c)
	}
	assert.Empty(t, fetcher.Calls(), "invalid criteria never reach the network or trigger a login")
}

func TestTVDbRefresh(t *testing.T) {
	fetcher := testsupport.NewFetcher(t).
		Reply("/login", http.StatusOK, `{"token":"first"}`).
		Reply("/refresh_token", http.StatusOK, `{"token":"second"}`)
	p := newCachedTVDb(t, fetcher)

	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, 1, fetcher.CallCount("/login"))
	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, 1, fetcher.CallCount("/refresh_token"))
	assert.Equal(t, "Bearer first", fetcher.Calls()[1].Headers["Authorization"])
}
