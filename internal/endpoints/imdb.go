package endpoints

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mapi/internal/services"
	"mapi/internal/transport"
)

const (
	imdbMainDetailsURL = "https://app.imdb.com/title/maindetails"
	imdbMobileFindURL  = "http://www.imdb.com/xml/find"
	imdbOverloadTries  = 50
)

// imdbOverloadDelay is the base step of the linear backoff applied while
// IMDb answers 503.
var imdbOverloadDelay = 25 * time.Millisecond

// IMDbMainDetails looks up a title through the legacy IMDb app API.
func IMDbMainDetails(ctx context.Context, f Fetcher, idImdb string, opts Options) (Payload, error) {
	c := call{provider: "imdb", operation: "main details"}
	idImdb = strings.TrimSpace(idImdb)
	if !imdbIDPattern.MatchString(idImdb) {
		return nil, c.misuse("invalid imdb tt-const value %q", idImdb)
	}
	params := url.Values{}
	params.Set("tconst", idImdb)
	resp, err := imdbFetch(ctx, c, f, transport.Request{
		URL:      opts.baseURL(imdbMainDetailsURL),
		Params:   params,
		UseCache: opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	payload := Payload(resp.Payload)
	switch {
	case resp.Status == http.StatusBadRequest:
		return nil, c.misuse("bad request for %s", idImdb)
	case resp.Status == http.StatusNotFound, resp.Status == http.StatusServiceUnavailable, len(payload) == 0:
		return nil, c.notFound(idImdb)
	case resp.Status != http.StatusOK:
		return nil, c.unavailable(resp.Status)
	}
	return payload, nil
}

// IMDbMobileFind searches titles through the legacy IMDb mobile API.
func IMDbMobileFind(ctx context.Context, f Fetcher, title string, nr, tt bool, opts Options) (Payload, error) {
	c := call{provider: "imdb", operation: "mobile find"}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, c.misuse("title required")
	}
	params := url.Values{}
	params.Set("json", "1")
	params.Set("nr", boolFlag(nr))
	params.Set("tt", boolFlag(tt))
	params.Set("q", title)
	resp, err := imdbFetch(ctx, c, f, transport.Request{
		URL:      opts.baseURL(imdbMobileFindURL),
		Params:   params,
		UseCache: opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	payload := Payload(resp.Payload)
	switch {
	case resp.Status == http.StatusBadRequest, resp.Status == http.StatusServiceUnavailable, len(payload) == 0:
		return nil, c.notFound(title)
	case resp.Status != http.StatusOK:
		return nil, c.unavailable(resp.Status)
	}
	return payload, nil
}

// imdbFetch retries while the service reports it is overloaded, waiting
// (i+1) steps before attempt i+1. The last response is returned as is.
// Transport retries are disabled so every attempt is a single request.
func imdbFetch(ctx context.Context, c call, f Fetcher, req transport.Request) (transport.Response, error) {
	req.NoRetry = true
	var resp transport.Response
	for attempt := range imdbOverloadTries {
		var err error
		resp, err = c.fetch(ctx, f, req)
		if err != nil {
			return transport.Response{}, err
		}
		if resp.Status != http.StatusServiceUnavailable || attempt == imdbOverloadTries-1 {
			return resp, nil
		}
		if err := services.SleepWithContext(ctx, time.Duration(attempt+1)*imdbOverloadDelay); err != nil {
			return transport.Response{}, services.Wrap(services.ErrNetwork, c.provider, c.operation, "interrupted while backing off", err)
		}
	}
	return resp, nil
}

func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
