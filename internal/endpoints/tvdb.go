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

// TVDbBaseURL is the public root of the TVDb v2 API.
const TVDbBaseURL = "https://api.thetvdb.com"

const tvdbDefaultLanguage = "en"

// TVDbLanguages are the result languages the TVDb API serves.
var TVDbLanguages = []string{
	"cs", "da", "de", "el", "en", "es", "fi", "fr", "he", "hr", "hu", "it",
	"ja", "ko", "nl", "no", "pl", "pt", "ru", "sl", "sv", "tr", "zh",
}

// TVDbEpisodeQuery narrows TVDbSeriesIDEpisodesQuery. Nil season or episode
// leaves that filter off; zero is a valid value.
type TVDbEpisodeQuery struct {
	Season  *int
	Episode *int
	Page    int
}

// TVDbSeriesSearch selects exactly one of the series search keys.
type TVDbSeriesSearch struct {
	Series   string
	IDImdb   string
	IDZap2it string
}

// TVDbLogin exchanges an API key for a session token. The response is
// never cached.
func TVDbLogin(ctx context.Context, f Fetcher, apiKey string, opts Options) (string, error) {
	c := call{provider: "tvdb", operation: "login"}
	if strings.TrimSpace(apiKey) == "" {
		return "", c.misuse("api key required")
	}
	resp, err := c.fetch(ctx, f, transport.Request{
		Method: http.MethodPost,
		URL:    opts.baseURL(TVDbBaseURL) + "/login",
		Body:   map[string]string{"apikey": apiKey},
	})
	if err != nil {
		return "", err
	}
	return tvdbToken(c, resp, "invalid API key")
}

// TVDbRefreshToken renews a session token before it expires.
func TVDbRefreshToken(ctx context.Context, f Fetcher, token string, opts Options) (string, error) {
	c := call{provider: "tvdb", operation: "refresh token"}
	resp, err := c.fetch(ctx, f, transport.Request{
		URL:     opts.baseURL(TVDbBaseURL) + "/refresh_token",
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	if err != nil {
		return "", err
	}
	return tvdbToken(c, resp, "invalid token")
}

// TVDbEpisodesID fetches an episode by TVDb episode id.
func TVDbEpisodesID(ctx context.Context, f Fetcher, token, id string, opts Options) (Payload, error) {
	c := call{provider: "tvdb", operation: "episodes id"}
	n, headers, err := tvdbPrepare(c, token, id, opts)
	if err != nil {
		return nil, err
	}
	resp, err := c.fetch(ctx, f, transport.Request{
		URL:      opts.baseURL(TVDbBaseURL) + "/episodes/" + strconv.Itoa(n),
		Headers:  headers,
		UseCache: opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusOK {
		if errs := Payload(resp.Payload).Map("errors"); errs != nil && errs.Has("invalidLanguage") {
			return nil, c.notFound("episode " + strconv.Itoa(n) + " has no translation")
		}
	}
	return tvdbData(c, resp, "episode "+strconv.Itoa(n))
}

// TVDbSeriesID fetches a series by TVDb series id.
func TVDbSeriesID(ctx context.Context, f Fetcher, token, id string, opts Options) (Payload, error) {
	c := call{provider: "tvdb", operation: "series id"}
	n, headers, err := tvdbPrepare(c, token, id, opts)
	if err != nil {
		return nil, err
	}
	resp, err := c.fetch(ctx, f, transport.Request{
		URL:      opts.baseURL(TVDbBaseURL) + "/series/" + strconv.Itoa(n),
		Headers:  headers,
		UseCache: opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	return tvdbData(c, resp, "series "+strconv.Itoa(n))
}

// TVDbSeriesIDEpisodes lists one page (100 items) of a series' episodes.
func TVDbSeriesIDEpisodes(ctx context.Context, f Fetcher, token, id string, page int, opts Options) (Payload, error) {
	c := call{provider: "tvdb", operation: "series id episodes"}
	n, headers, err := tvdbPrepare(c, token, id, opts)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(page, 1)))
	resp, err := c.fetch(ctx, f, transport.Request{
		URL:      opts.baseURL(TVDbBaseURL) + "/series/" + strconv.Itoa(n) + "/episodes",
		Params:   params,
		Headers:  headers,
		UseCache: opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	return tvdbData(c, resp, "series "+strconv.Itoa(n)+" episodes")
}

// TVDbSeriesIDEpisodesQuery lists one page of a series' episodes filtered by
// aired season and episode.
func TVDbSeriesIDEpisodesQuery(ctx context.Context, f Fetcher, token, id string, query TVDbEpisodeQuery, opts Options) (Payload, error) {
	c := call{provider: "tvdb", operation: "series id episodes query"}
	n, headers, err := tvdbPrepare(c, token, id, opts)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	if query.Season != nil {
		if *query.Season < 0 {
			return nil, c.misuse("season must not be negative")
		}
		params.Set("airedSeason", strconv.Itoa(*query.Season))
	}
	if query.Episode != nil {
		if *query.Episode < 0 {
			return nil, c.misuse("episode must not be negative")
		}
		params.Set("airedEpisode", strconv.Itoa(*query.Episode))
	}
	params.Set("page", strconv.Itoa(max(query.Page, 1)))
	resp, err := c.fetch(ctx, f, transport.Request{
		URL:      opts.baseURL(TVDbBaseURL) + "/series/" + strconv.Itoa(n) + "/episodes/query",
		Params:   params,
		Headers:  headers,
		UseCache: opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	return tvdbData(c, resp, "series "+strconv.Itoa(n)+" episodes query")
}

// TVDbSearchSeries searches series by name, IMDb id or Zap2it id.
func TVDbSearchSeries(ctx context.Context, f Fetcher, token string, search TVDbSeriesSearch, opts Options) (Payload, error) {
	c := call{provider: "tvdb", operation: "search series"}
	params := url.Values{}
	for key, value := range map[string]string{
		"name":     search.Series,
		"imdbId":   search.IDImdb,
		"zap2itId": search.IDZap2it,
	} {
		if value = strings.TrimSpace(value); value != "" {
			params.Set(key, value)
		}
	}
	if len(params) != 1 {
		return nil, c.misuse("series, id_imdb and id_zap2it are mutually exclusive; set exactly one")
	}
	if search.IDImdb != "" && !imdbIDPattern.MatchString(strings.TrimSpace(search.IDImdb)) {
		return nil, c.misuse("invalid imdb tt-const value %q", search.IDImdb)
	}
	headers, err := tvdbHeaders(c, token, opts.Language)
	if err != nil {
		return nil, err
	}
	resp, err := c.fetch(ctx, f, transport.Request{
		URL:      opts.baseURL(TVDbBaseURL) + "/search/series",
		Params:   params,
		Headers:  headers,
		UseCache: opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusMethodNotAllowed {
		return nil, c.misuse("series, id_imdb and id_zap2it are mutually exclusive")
	}
	return tvdbData(c, resp, params.Encode())
}

func tvdbPrepare(c call, token, id string, opts Options) (int, map[string]string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return 0, nil, c.misuse("id_tvdb must be numeric, got %q", id)
	}
	headers, err := tvdbHeaders(c, token, opts.Language)
	if err != nil {
		return 0, nil, err
	}
	return n, headers, nil
}

func tvdbHeaders(c call, token, lang string) (map[string]string, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = tvdbDefaultLanguage
	}
	if !slices.Contains(TVDbLanguages, lang) {
		return nil, c.misuse("language must be one of %s", strings.Join(TVDbLanguages, ","))
	}
	headers := map[string]string{"Accept-Language": lang}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return headers, nil
}

func tvdbData(c call, resp transport.Response, subject string) (Payload, error) {
	payload := Payload(resp.Payload)
	switch {
	case resp.Status == http.StatusUnauthorized:
		return nil, c.misuse("invalid token")
	case resp.Status == http.StatusNotFound:
		return nil, c.notFound(subject)
	case resp.Status == http.StatusBadRequest:
		return nil, c.misuse("bad request for %s", subject)
	case resp.Status != http.StatusOK || !payload.Has("data"):
		return nil, c.unavailable(resp.Status)
	}
	return payload, nil
}

func tvdbToken(c call, resp transport.Response, unauthorized string) (string, error) {
	if resp.Status == http.StatusUnauthorized {
		return "", c.misuse("%s", unauthorized)
	}
	token := Payload(resp.Payload).String("token")
	if resp.Status != http.StatusOK || token == "" {
		return "", c.unavailable(resp.Status)
	}
	return token, nil
}
