// Package api implements the HTTP fetch wrapper for the dam water-level API.
// Every request is a GET against <origin>/api<endpoint>, paced by a shared
// rate limiter. Non-2xx responses fail with a *StatusError; nothing is
// retried.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/derickschaefer/aquarius/internal/observability"
)

const (
	// Prefix is the fixed path every endpoint is joined to.
	Prefix = "/api"

	defaultOrigin  = "http://localhost:3000"
	defaultTimeout = 30 * time.Second
	userAgent      = "aquarius-cli/1.0"
)

// ErrCircuitOpen is returned while the circuit breaker rejects requests.
var ErrCircuitOpen = errors.New("circuit breaker open")

// StatusError is returned for any non-success HTTP status.
type StatusError struct {
	Code int
	Text string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API Error: %d %s", e.Code, e.Text)
}

// Params holds query parameters. A nil value means "not set" and is omitted
// from the query string; a non-nil value is sent exactly, even when empty.
type Params map[string]*string

// Str returns a pointer to s, so that s is always sent.
func Str(s string) *string {
	return &s
}

// Opt returns nil for the empty string and a pointer to s otherwise.
func Opt(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Encode renders the set parameters as a URL query string (keys sorted).
func (p Params) Encode() string {
	v := url.Values{}
	for k, val := range p {
		if val != nil {
			v.Set(k, *val)
		}
	}
	return v.Encode()
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	Origin          string        // scheme://host[:port]; the /api prefix is appended
	Timeout         time.Duration // per-request timeout
	Rate            float64       // requests per second; <= 0 disables pacing
	BreakerFailures uint32        // consecutive failures before the breaker opens; 0 disables
	HTTPClient      *http.Client
	Logger          *slog.Logger
	Metrics         *observability.Metrics
}

// Client is the dam API HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	origin := strings.TrimRight(opts.Origin, "/")
	if origin == "" {
		origin = defaultOrigin
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	limit := rate.Inf
	burst := 1
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
		if b := int(opts.Rate); b > 1 {
			burst = b
		}
	}

	c := &Client{
		baseURL:    origin + Prefix,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
		metrics:    metrics,
	}
	if opts.BreakerFailures > 0 {
		threshold := opts.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "dam-api",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return c
}

// BaseURL returns the origin joined with the /api prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches endpoint and decodes the JSON body into out. The body is
// trusted; no schema validation is performed.
func (c *Client) Get(ctx context.Context, endpoint string, params Params, out interface{}) error {
	body, err := c.GetRaw(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "decode_error").Inc()
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// GetRaw fetches endpoint and returns the undecoded body of a 2xx response.
func (c *Client) GetRaw(ctx context.Context, endpoint string, params Params) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.buildURL(endpoint, params)
	reqID := uuid.NewString()
	c.logger.Debug("api request", "url", reqURL, "request_id", reqID)

	start := time.Now()
	resp, err := c.execute(ctx, reqURL, reqID)
	c.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		var se *StatusError
		switch {
		case errors.As(err, &se):
			c.metrics.APIRequests.WithLabelValues(endpoint, "http_error").Inc()
		case errors.Is(err, ErrCircuitOpen):
			c.metrics.APIRequests.WithLabelValues(endpoint, "circuit_open").Inc()
		default:
			c.metrics.APIRequests.WithLabelValues(endpoint, "transport_error").Inc()
		}
		return nil, err
	}

	c.logger.Debug("api response", "status", resp.status, "bytes", len(resp.body), "request_id", reqID)
	if resp.status < 200 || resp.status > 299 {
		c.metrics.APIRequests.WithLabelValues(endpoint, "http_error").Inc()
		return nil, &StatusError{Code: resp.status, Text: resp.statusText}
	}
	c.metrics.APIRequests.WithLabelValues(endpoint, "success").Inc()
	return resp.body, nil
}

// buildURL joins the base URL, endpoint and set parameters.
func (c *Client) buildURL(endpoint string, params Params) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	u := c.baseURL + endpoint
	if q := params.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

type rawResponse struct {
	status     int
	statusText string
	body       []byte
}

// execute performs one GET, through the circuit breaker when one is set.
// Server errors (5xx) count as breaker failures; 4xx do not.
func (c *Client) execute(ctx context.Context, reqURL, reqID string) (*rawResponse, error) {
	if c.breaker == nil {
		return c.do(ctx, reqURL, reqID)
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.do(ctx, reqURL, reqID)
		if err != nil {
			return nil, err
		}
		if resp.status >= 500 {
			return nil, &StatusError{Code: resp.status, Text: resp.statusText}
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}
	return out.(*rawResponse), nil
}

func (c *Client) do(ctx context.Context, reqURL, reqID string) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return &rawResponse{
		status:     resp.StatusCode,
		statusText: statusText(resp),
		body:       body,
	}, nil
}

// statusText returns the reason phrase the server sent, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != resp.Status && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
