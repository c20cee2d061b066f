package endpoints

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"mapi/internal/transport"
)

// TMDbBaseURL is the public root of The Movie Database v3 API.
const TMDbBaseURL = "https://api.themoviedb.org/3"

const tmdbDefaultLanguage = "en-US"

// TMDbFindSources are the foreign key kinds accepted by TMDbFind.
var TMDbFindSources = []string{"imdb_id", "freebase_mid", "freebase_id", "tvdb_id", "tvrage_id"}

var tmdbFindResultKeys = []string{
	"movie_results",
	"person_results",
	"tv_episode_results",
	"tv_results",
	"tv_season_results",
}

var imdbIDPattern = regexp.MustCompile(`^tt\d+$`)

// TMDbSearch holds the optional filters of TMDbSearchMovies.
type TMDbSearch struct {
	Year   int
	Adult  bool
	Region string
	Page   int
}

// TMDbFind looks up TMDb objects by another database's key.
func TMDbFind(ctx context.Context, f Fetcher, apiKey, source, externalID string, opts Options) (Payload, error) {
	c := call{provider: "tmdb", operation: "find"}
	if !slices.Contains(TMDbFindSources, source) {
		return nil, c.misuse("external source must be one of %s", strings.Join(TMDbFindSources, ","))
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, c.misuse("external id required")
	}
	if source == "imdb_id" && !imdbIDPattern.MatchString(externalID) {
		return nil, c.misuse("invalid imdb tt-const value %q", externalID)
	}
	lang, err := tmdbLanguage(c, opts.Language)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("api_key", apiKey)
	params.Set("external_source", source)
	params.Set("language", lang)

	resp, err := c.fetch(ctx, f, transport.Request{
		URL:      opts.baseURL(TMDbBaseURL) + "/find/" + url.PathEscape(externalID),
		Params:   params,
		UseCache: opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	payload := Payload(resp.Payload)
	switch {
	case resp.Status == http.StatusUnauthorized:
		return nil, c.misuse("invalid API key")
	case resp.Status == http.StatusNotFound:
		return nil, c.notFound(externalID)
	case resp.Status != http.StatusOK || len(payload) == 0:
		return nil, c.unavailable(resp.Status)
	}
	for _, key := range tmdbFindResultKeys {
		if payload.Has(key) {
			return payload, nil
		}
	}
	return nil, c.notFound(externalID)
}

// TMDbMovies fetches a movie's details by TMDb id.
func TMDbMovies(ctx context.Context, f Fetcher, apiKey, id string, opts Options) (Payload, error) {
	c := call{provider: "tmdb", operation: "movies"}
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return nil, c.misuse("id_tmdb must be numeric, got %q", id)
	}
	lang, err := tmdbLanguage(c, opts.Language)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("api_key", apiKey)
	params.Set("language", lang)

	resp, err := c.fetch(ctx, f, transport.Request{
		URL:      opts.baseURL(TMDbBaseURL) + "/movie/" + strconv.Itoa(n),
		Params:   params,
		UseCache: opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	payload := Payload(resp.Payload)
	switch {
	case resp.Status == http.StatusUnauthorized:
		return nil, c.misuse("invalid API key")
	case resp.Status == http.StatusNotFound:
		return nil, c.notFound("movie " + strconv.Itoa(n))
	case resp.Status != http.StatusOK || len(payload) == 0:
		return nil, c.unavailable(resp.Status)
	}
	return payload, nil
}

// TMDbSearchMovies runs a movie title search and returns one result page.
func TMDbSearchMovies(ctx context.Context, f Fetcher, apiKey, query string, search TMDbSearch, opts Options) (Payload, error) {
	c := call{provider: "tmdb", operation: "search movies"}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, c.misuse("query required")
	}
	if search.Year < 0 {
		return nil, c.misuse("year must be positive, got %d", search.Year)
	}
	lang, err := tmdbLanguage(c, opts.Language)
	if err != nil {
		return nil, err
	}
	page := search.Page
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("api_key", apiKey)
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", strconv.FormatBool(search.Adult))
	params.Set("language", lang)
	if region := strings.TrimSpace(search.Region); region != "" {
		params.Set("region", strings.ToUpper(region))
	}
	if search.Year > 0 {
		params.Set("year", strconv.Itoa(search.Year))
	}

	resp, err := c.fetch(ctx, f, transport.Request{
		URL:      opts.baseURL(TMDbBaseURL) + "/search/movie",
		Params:   params,
		UseCache: opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	payload := Payload(resp.Payload)
	switch {
	case resp.Status == http.StatusUnauthorized:
		return nil, c.misuse("invalid API key")
	case resp.Status == http.StatusNotFound, resp.Status == http.StatusUnprocessableEntity:
		return nil, c.notFound(query)
	case resp.Status != http.StatusOK || len(payload) == 0:
		return nil, c.unavailable(resp.Status)
	}
	if total, _ := payload.Int("total_results"); total == 0 {
		return nil, c.notFound(query)
	}
	return payload, nil
}

func tmdbLanguage(c call, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return tmdbDefaultLanguage, nil
	}
	if _, err := language.Parse(value); err != nil {
		return "", c.misuse("invalid language %q", value)
	}
	return value, nil
}
