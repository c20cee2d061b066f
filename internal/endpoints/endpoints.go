package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cast"

	"mapi/internal/services"
	"mapi/internal/transport"
)

// Fetcher issues HTTP requests on behalf of endpoint functions.
type Fetcher = transport.Fetcher

// Options are the per-call settings shared by all endpoint functions.
type Options struct {
	// BaseURL overrides the service's public API root.
	BaseURL string
	// Language selects the result language where the service supports one.
	Language string
	// Cache allows the transport to answer from, and store into, its cache.
	Cache bool
}

func (o Options) baseURL(fallback string) string {
	if base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/"); base != "" {
		return base
	}
	return fallback
}

// Payload is a decoded JSON object with lenient typed accessors.
type Payload map[string]any

// String returns the value at key rendered as text, or "" when absent.
func (p Payload) String(key string) string {
	value, ok := p[key]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(value))
}

// Int returns the value at key as an integer.
func (p Payload) Int(key string) (int, bool) {
	value, ok := p[key]
	if !ok || value == nil {
		return 0, false
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Map returns the nested object at key, or nil.
func (p Payload) Map(key string) Payload {
	value, ok := p[key].(map[string]any)
	if !ok {
		return nil
	}
	return Payload(value)
}

// List returns the objects in the array at key, skipping non-object items.
func (p Payload) List(key string) []Payload {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}
	items := make([]Payload, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			items = append(items, Payload(m))
		}
	}
	return items
}

// Has reports whether key holds a non-empty value.
func (p Payload) Has(key string) bool {
	value, ok := p[key]
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case bool:
		return v
	case float64:
		return v != 0
	}
	return true
}

type call struct {
	provider  string
	operation string
}

func (c call) misuse(format string, args ...any) error {
	return services.Wrap(services.ErrProviderMisuse, c.provider, c.operation, fmt.Sprintf(format, args...), nil)
}

func (c call) notFound(message string) error {
	return services.Wrap(services.ErrNotFound, c.provider, c.operation, message, nil)
}

func (c call) unavailable(status int) error {
	return services.Wrap(services.ErrNetwork, c.provider, c.operation,
		fmt.Sprintf("unexpected status %d; service down or unavailable?", status), nil)
}

func (c call) fetch(ctx context.Context, f Fetcher, req transport.Request) (transport.Response, error) {
	if f == nil {
		return transport.Response{}, services.Wrap(services.ErrConfiguration, c.provider, c.operation, "no fetcher configured", nil)
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	ctx = services.WithProvider(ctx, c.provider)
	resp, err := f.Fetch(ctx, req)
	if err != nil {
		return transport.Response{}, services.Wrap(services.ErrNetwork, c.provider, c.operation, "request failed", err)
	}
	return resp, nil
}
