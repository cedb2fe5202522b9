// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/pdiddy/gene-atlas/pkg/types"
)

// Prometheus metrics for outbound API calls.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gene_atlas_requests_total",
		Help: "Total outbound API requests by host and status",
	}, []string{"host", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gene_atlas_request_duration_seconds",
		Help:    "Outbound request duration in seconds by host",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 45},
	}, []string{"host"})

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gene_atlas_retries_total",
		Help: "Total transient-error retry attempts",
	})

	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gene_atlas_rate_limit_wait_seconds",
		Help:    "Time spent waiting on the shared rate limiter",
		Buckets: []float64{0.01, 0.05, 0.1, 0.34, 1, 5},
	})
)

// RequestError is a non-recoverable outbound call failure: a network
// error, exhausted retries, a non-2xx status, or an application-level
// error embedded in a PubMed response body.
type RequestError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request %s failed (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request %s failed (status %d)", e.URL, e.StatusCode)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a RequestError with HTTP 404.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound
}

const defaultTimeout = 45 * time.Second

// Client wraps an http.Client with the shared rate limiter, transient-error
// retry, and API error surfacing. One Client is shared by every source
// adapter; the underlying connection pool is safe for concurrent use.
type Client struct {
	http    *http.Client
	limiter *Limiter
	cfg     types.ClientConfig
	logger  zerolog.Logger
}

// NewClient builds a resilient client from cfg. When cfg.MinInterval is
// zero the limiter interval is derived from API key presence.
func NewClient(cfg types.ClientConfig, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	interval := cfg.MinInterval
	if interval == 0 {
		interval = IntervalFor(cfg.APIKey)
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: NewLimiter(interval),
		cfg:     cfg,
		logger:  logger.With().Str("component", "client").Logger(),
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.http = hc
}

// APIKey returns the configured NCBI API key, if any.
func (c *Client) APIKey() string {
	return c.cfg.APIKey
}

// Get issues a rate-limited GET to rawURL with params and returns the
// response body. Transient server errors are retried automatically; any
// non-recoverable failure comes back as a *RequestError. For db=pubmed
// requests the body is additionally inspected for an embedded <ERROR>
// element, which some E-utilities endpoints report inside an HTTP 200.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RequestError{URL: reqURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &RequestError{URL: reqURL, Err: err}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	host := req.URL.Host
	start := time.Now()
	resp, err := DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	requestDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(host, "network_error").Inc()
		c.logger.Warn().Err(err).Str("url", reqURL).Msg("request failed")
		return nil, &RequestError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(host, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("url", reqURL).Msg("request error status")
		return nil, &RequestError{URL: reqURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{URL: reqURL, StatusCode: resp.StatusCode, Err: err}
	}

	// PubMed reports some failures inside a 200 response body.
	if strings.Contains(reqURL, "db=pubmed") {
		if msg := embeddedError(body); msg != "" {
			c.logger.Warn().Str("url", reqURL).Str("api_error", msg).Msg("embedded API error")
			return nil, &RequestError{
				URL:        reqURL,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("PubMed API error: %s", msg),
			}
		}
	}

	return body, nil
}

// embeddedError extracts the text of an <ERROR> element from body, or ""
// when none is present. The scan is case-insensitive because E-utilities
// mixes <ERROR> and <error> across endpoints.
func embeddedError(body []byte) string {
	lower := strings.ToLower(string(body))
	if !strings.Contains(lower, "error") {
		return ""
	}

	start := strings.Index(lower, "<error")
	if start < 0 {
		return ""
	}
	open := strings.Index(lower[start:], ">")
	if open < 0 {
		return ""
	}
	rest := start + open + 1
	end := strings.Index(lower[rest:], "</error")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(string(body[rest : rest+end]))
}
