// Package probe checks a running instance over HTTP, for container health checks and smoke tests.
package probe

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"

	"github.com/rainbow-me/myapp/common/headers"
	"github.com/rainbow-me/myapp/common/logger"
	myhttp "github.com/rainbow-me/myapp/http"
)

const (
	HealthPath     = "/healthz"
	StatusOK       = "ok"
	defaultTimeout = 5 * time.Second
)

// Health is the body served on HealthPath.
type Health struct {
	Status string `json:"status"`
}

// Result describes one successful probe.
type Result struct {
	Status    string
	RequestID string
	TraceID   string
	Latency   time.Duration
}

type Client struct {
	rest    *resty.Client
	baseURL string
}

type config struct {
	timeout    time.Duration
	httpClient *http.Client
}

type Option func(*config)

// WithTimeout bounds each probe. Default is 5 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// New returns a probe for the instance listening at baseURL, e.g. http://localhost:8080.
func New(baseURL string, log *logger.Logger, opts ...Option) *Client {
	cfg := &config{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{}
	}
	rest := myhttp.NewRestyWithClient(cfg.httpClient, log).
		SetTimeout(cfg.timeout).
		SetHeader(headers.HeaderAccept, "application/json")

	return &Client{rest: rest, baseURL: strings.TrimRight(baseURL, "/")}
}

// Health calls the health endpoint and fails unless it answers 200 with status "ok".
func (c *Client) Health(ctx context.Context) (Result, error) {
	var body Health
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&body).
		Get(c.baseURL + HealthPath)
	if err != nil {
		return Result{}, errors.Wrapf(err, "probe %s", c.baseURL)
	}
	if resp.StatusCode() != http.StatusOK {
		return Result{}, errors.Newf("probe %s: unexpected status %d", c.baseURL, resp.StatusCode())
	}
	if body.Status != StatusOK {
		return Result{}, errors.Newf("probe %s: unhealthy status %q", c.baseURL, body.Status)
	}
	return Result{
		Status:    body.Status,
		RequestID: resp.Header().Get(headers.HeaderXRequestID),
		TraceID:   resp.Header().Get(headers.HeaderXTraceID),
		Latency:   resp.Time(),
	}, nil
}
