package testsupport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"mapi/internal/transport"
)

// HandlerFunc answers one fake request.
type HandlerFunc func(req transport.Request) (transport.Response, error)

type route struct {
	suffix  string
	handler HandlerFunc
}

// Fetcher is an in-memory transport.Fetcher. Requests are matched against
// routes by URL suffix in registration order; unmatched requests answer 404.
type Fetcher struct {
	t      testing.TB
	mu     sync.Mutex
	routes []route
	calls  []transport.Request
}

var _ transport.Fetcher = (*Fetcher)(nil)

// NewFetcher returns an empty fake fetcher.
func NewFetcher(t testing.TB) *Fetcher {
	return &Fetcher{t: t}
}

// Handle registers handler for every URL ending in suffix.
func (f *Fetcher) Handle(suffix string, handler HandlerFunc) *Fetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route{suffix: suffix, handler: handler})
	return f
}

// Reply registers a fixed JSON answer for every URL ending in suffix.
func (f *Fetcher) Reply(suffix string, status int, body string) *Fetcher {
	resp := JSON(f.t, status, body)
	return f.Handle(suffix, func(transport.Request) (transport.Response, error) {
		return resp, nil
	})
}

// Fetch implements transport.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, req transport.Request) (transport.Response, error) {
	if err := ctx.Err(); err != nil {
		return transport.Response{}, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, req)
	var handler HandlerFunc
	for _, r := range f.routes {
		if strings.HasSuffix(req.URL, r.suffix) {
			handler = r.handler
			break
		}
	}
	f.mu.Unlock()

	if handler == nil {
		return transport.Response{Status: http.StatusNotFound}, nil
	}
	return handler(req)
}

// Calls returns every request received so far.
func (f *Fetcher) Calls() []transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transport.Request(nil), f.calls...)
}

// CallCount counts requests whose URL ends in suffix.
func (f *Fetcher) CallCount(suffix string) int {
	count := 0
	for _, req := range f.Calls() {
		if strings.HasSuffix(req.URL, suffix) {
			count++
		}
	}
	return count
}

// JSON builds a response whose payload is the decoded body. An empty body
// yields a nil payload.
func JSON(t testing.TB, status int, body string) transport.Response {
	t.Helper()

	resp := transport.Response{Status: status}
	if strings.TrimSpace(body) == "" {
		return resp
	}
	if err := json.Unmarshal([]byte(body), &resp.Payload); err != nil {
		t.Fatalf("decode fixture %q: %v", body, err)
	}
	return resp
}

// Pages serves one JSON body per page query parameter, starting at page 1.
// Pages past the end answer 404.
func Pages(t testing.TB, bodies ...string) HandlerFunc {
	return func(req transport.Request) (transport.Response, error) {
		page := 1
		if raw := req.Params.Get("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				t.Errorf("bad page parameter %q", raw)
			}
			page = n
		}
		if page < 1 || page > len(bodies) {
			return transport.Response{Status: http.StatusNotFound}, nil
		}
		return JSON(t, http.StatusOK, bodies[page-1]), nil
	}
}
