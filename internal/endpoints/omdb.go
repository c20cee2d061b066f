package endpoints

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"mapi/internal/transport"
)

// OMDbBaseURL is the public root of the Open Movie Database API.
const OMDbBaseURL = "http://www.omdbapi.com"

var (
	// OMDbMediaTypes are the values accepted for the type parameter.
	OMDbMediaTypes = []string{"episode", "movie", "series"}
	// OMDbPlotTypes are the values accepted for the plot parameter.
	OMDbPlotTypes = []string{"short", "full"}
)

// OMDbLookup selects a single title. Exactly one of IDImdb and Title is
// required.
type OMDbLookup struct {
	IDImdb  string
	Title   string
	Type    string
	Year    int
	Season  *int
	Episode *int
	Plot    string
}

// OMDbSearchOptions narrows OMDbSearch. Page must be within 1..100; zero
// means the first page.
type OMDbSearchOptions struct {
	Type string
	Year int
	Page int
}

// OMDbTitle looks up one title by IMDb id or exact title.
func OMDbTitle(ctx context.Context, f Fetcher, apiKey string, lookup OMDbLookup, opts Options) (Payload, error) {
	c := call{provider: "omdb", operation: "title"}
	id := strings.TrimSpace(lookup.IDImdb)
	title := strings.TrimSpace(lookup.Title)
	if (id == "") == (title == "") {
		return nil, c.misuse("either id_imdb or title must be specified")
	}
	if id != "" && !imdbIDPattern.MatchString(id) {
		return nil, c.misuse("invalid imdb tt-const value %q", id)
	}
	if err := omdbCheckType(c, lookup.Type); err != nil {
		return nil, err
	}
	if lookup.Plot != "" && !slices.Contains(OMDbPlotTypes, lookup.Plot) {
		return nil, c.misuse("plot must be one of %s", strings.Join(OMDbPlotTypes, ","))
	}

	params := url.Values{}
	params.Set("apikey", apiKey)
	setNonEmpty(params, "i", id)
	setNonEmpty(params, "t", title)
	setNonEmpty(params, "type", lookup.Type)
	setNonEmpty(params, "plot", lookup.Plot)
	if lookup.Year > 0 {
		params.Set("y", strconv.Itoa(lookup.Year))
	}
	if lookup.Season != nil {
		params.Set("season", strconv.Itoa(*lookup.Season))
	}
	if lookup.Episode != nil {
		params.Set("episode", strconv.Itoa(*lookup.Episode))
	}

	resp, err := c.fetch(ctx, f, transport.Request{
		URL:      opts.baseURL(OMDbBaseURL),
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
	case resp.Status != http.StatusOK || payload == nil:
		return nil, c.unavailable(resp.Status)
	case payload.Has("Error"):
		return nil, c.notFound(payload.String("Error"))
	}
	return payload, nil
}

// OMDbSearch runs a title search and returns one result page of ten items.
func OMDbSearch(ctx context.Context, f Fetcher, apiKey, query string, search OMDbSearchOptions, opts Options) (Payload, error) {
	c := call{provider: "omdb", operation: "search"}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, c.misuse("query required")
	}
	if err := omdbCheckType(c, search.Type); err != nil {
		return nil, err
	}
	page := search.Page
	if page == 0 {
		page = 1
	}
	if page < 1 || page > 100 {
		return nil, c.misuse("page must be between 1 and 100, got %d", page)
	}

	params := url.Values{}
	params.Set("apikey", apiKey)
	params.Set("s", query)
	params.Set("page", strconv.Itoa(page))
	setNonEmpty(params, "type", search.Type)
	if search.Year > 0 {
		params.Set("y", strconv.Itoa(search.Year))
	}

	resp, err := c.fetch(ctx, f, transport.Request{
		URL:      opts.baseURL(OMDbBaseURL),
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
	case resp.Status != http.StatusOK || payload == nil:
		return nil, c.unavailable(resp.Status)
	case !payload.Has("totalResults"):
		return nil, c.notFound(query)
	}
	return payload, nil
}

func omdbCheckType(c call, mediaType string) error {
	if mediaType != "" && !slices.Contains(OMDbMediaTypes, mediaType) {
		return c.misuse("media type must be one of %s", strings.Join(OMDbMediaTypes, ","))
	}
	return nil
}

func setNonEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}
