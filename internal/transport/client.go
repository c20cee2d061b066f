package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mapi/internal/logging"
	"mapi/internal/services"
)

const (
	defaultTimeout    = time.Second
	defaultRetryDelay = 250 * time.Millisecond
	maxBodyBytes      = 16 << 20
)

// Request describes one remote call.
type Request struct {
	Method  string
	URL     string
	Params  url.Values
	Body    any
	Headers map[string]string
	// UseCache enables both reading from and writing to the response cache.
	UseCache bool
	// NoRetry sends the request once, for callers running their own retry loop.
	NoRetry bool
}

// Response carries the status code and the decoded JSON object, which is nil
// when the body was empty or not JSON.
type Response struct {
	Status    int
	Payload   map[string]any
	FromCache bool
}

// Fetcher is the transport contract consumed by endpoint functions.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// Options configures a Client.
type Options struct {
	Timeout           time.Duration
	RetryMax          int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	UserAgent         string
	Cache             *Cache
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client is the default Fetcher backed by net/http and an optional Cache.
type Client struct {
	httpClient *http.Client
	cache      *Cache
	limiter    *rate.Limiter
	retryMax   int
	retryDelay time.Duration
	userAgent  string
	logger     *slog.Logger
}

var _ Fetcher = (*Client)(nil)

// New builds a Client from opts, filling in defaults.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	retryMax := opts.RetryMax
	if retryMax < 0 {
		retryMax = 0
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return &Client{
		httpClient: httpClient,
		cache:      opts.Cache,
		limiter:    limiter,
		retryMax:   retryMax,
		retryDelay: retryDelay,
		userAgent:  strings.TrimSpace(opts.UserAgent),
		logger:     logging.NewComponentLogger(opts.Logger, "transport"),
	}
}

// Cache returns the response cache, or nil when caching is disabled.
func (c *Client) Cache() *Cache { return c.cache }

// Close releases the response cache.
func (c *Client) Close() error { return c.cache.Close() }

// Fetch performs req, consulting the cache first when req.UseCache is set.
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	endpoint, err := buildURL(req.URL, req.Params)
	if err != nil {
		return Response{}, services.Wrap(services.ErrProviderMisuse, "transport", "build url", req.URL, err)
	}

	var body []byte
	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return Response{}, services.Wrap(services.ErrProviderMisuse, "transport", "encode body", "", err)
		}
	}

	logger := logging.WithContext(ctx, c.logger)
	useCache := req.UseCache && c.cache != nil
	key := CacheKey(method, req.URL, req.Params, body, req.Headers)
	if useCache {
		entry, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			logging.WarnWithContext(logger, "response cache read failed", "cache_read_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run `mapi cache clear` if the cache file is corrupt"),
				logging.String(logging.FieldImpact, "request sent to the remote service"),
			)
		} else if ok {
			payload, _ := decodePayload(entry.Body)
			logger.Debug("response served from cache", logging.String("url", req.URL), logging.Int("status", entry.Status))
			return Response{Status: entry.Status, Payload: payload, FromCache: true}, nil
		}
	}

	status, raw, err := c.do(ctx, method, endpoint, body, req.Headers, !req.NoRetry)
	if err != nil {
		return Response{}, services.Wrap(services.ErrNetwork, "transport", strings.ToLower(method), req.URL, err)
	}

	payload, decodeErr := decodePayload(raw)
	if decodeErr != nil && status == http.StatusOK {
		return Response{}, services.Wrap(services.ErrNetwork, "transport", "decode", req.URL, decodeErr)
	}

	if useCache && (status == http.StatusOK || status == http.StatusNotFound) {
		if err := c.cache.Put(ctx, key, method, req.URL, status, raw); err != nil {
			logging.WarnWithContext(logger, "response cache write failed", "cache_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check free space and permissions of the cache directory"),
				logging.String(logging.FieldImpact, "the next identical request will hit the network"),
			)
		}
	}
	return Response{Status: status, Payload: payload}, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, headers map[string]string, retry bool) (int, []byte, error) {
	canRetry := retry && (method == http.MethodGet || method == http.MethodHead)
	attempts := 1
	if canRetry {
		attempts += c.retryMax
	}

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.retryDelay
			logging.WithContext(ctx, c.logger).Debug("retrying request",
				logging.String("url", endpoint),
				logging.Int("attempt", attempt+1),
				logging.Duration("delay", delay),
				logging.Error(lastErr),
			)
			if err := services.SleepWithContext(ctx, delay); err != nil {
				return 0, nil, err
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return 0, nil, err
			}
		}

		status, raw, err := c.roundTrip(ctx, method, endpoint, body, headers)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil || !isRetriable(err) {
				return 0, nil, err
			}
			continue
		}
		if isTransientStatus(status) && attempt < attempts-1 {
			lastErr = fmt.Errorf("status %d", status)
			continue
		}
		return status, raw, nil
	}
	return 0, nil, lastErr
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, body []byte, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	if req.Header.Get("User-Agent") == "" {
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		} else {
			req.Header.Set("User-Agent", globalUA.random())
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = int64(len(body))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func buildURL(raw string, params url.Values) (string, error) {
	endpoint, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return "", errors.New("absolute url required")
	}
	if len(params) > 0 {
		query := endpoint.Query()
		for key, values := range params {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String(), nil
}

func decodePayload(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("empty response body")
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode json object: %w", err)
	}
	return payload, nil
}

func isTransientStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// isRetriable reports whether a round trip error is a timeout or a
// connection-level failure.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, token := range []string{"connection reset", "connection refused", "eof", "timeout"} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
