// Package upstream is the HTTP client for the remote search and data API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/alprsearch/internal/domain"
	"github.com/kailas-cloud/alprsearch/internal/domain/edm"
	"github.com/kailas-cloud/alprsearch/internal/domain/search/constraint"
	"github.com/kailas-cloud/alprsearch/internal/metrics"
)

// Remote API paths.
const (
	pathSearch        = "/datastore/search"
	pathEntitySetData = "/datastore/data/set/"
	pathPropertyTypes = "/datastore/edm/property/type"
)

// Operation labels for metrics and logs.
const (
	opSearch        = "search"
	opEntitySet     = "entity_set_search"
	opEntitySetData = "entity_set_data"
	opPropertyTypes = "property_types"
	opHealth        = "health"
)

const maxErrorBody = 4 << 10

// Config holds the remote API client settings.
type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// Client talks JSON to the remote search API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a rate-limited API client. Zero values fall back to
// a 30s timeout and 10 req/s with a burst of 5.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	limit := cfg.RateLimit
	if limit == 0 {
		limit = 10
	}
	burst := cfg.RateBurst
	if burst == 0 {
		burst = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout, Transport: cfg.Transport},
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
		logger:  logger,
	}
}

// ExecuteSearch runs a constraint-group search across entity sets.
func (c *Client) ExecuteSearch(ctx context.Context, req constraint.Request) (constraint.Results, error) {
	var out constraint.Results
	if err := c.do(ctx, opSearch, http.MethodPost, pathSearch, req, &out); err != nil {
		return constraint.Results{}, err
	}
	if out.Hits == nil {
		out.Hits = []map[string]any{}
	}
	return out, nil
}

// SearchEntitySet runs a free-text search over one entity set.
// With maxHits 0 only NumHits is meaningful.
func (c *Client) SearchEntitySet(ctx context.Context, entitySetID string, q constraint.EntitySetSearch) (constraint.Results, error) {
	var out constraint.Results
	path := pathSearch + "/" + url.PathEscape(entitySetID)
	if err := c.do(ctx, opEntitySet, http.MethodPost, path, q, &out); err != nil {
		return constraint.Results{}, err
	}
	return out, nil
}

// EntitySetData returns every entity of a set as FQN -> values maps.
func (c *Client) EntitySetData(ctx context.Context, entitySetID string) ([]map[string][]any, error) {
	var out []map[string][]any
	path := pathEntitySetData + url.PathEscape(entitySetID)
	if err := c.do(ctx, opEntitySetData, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PropertyTypes lists every property type of the data model.
func (c *Client) PropertyTypes(ctx context.Context) ([]edm.PropertyType, error) {
	var out []edm.PropertyType
	if err := c.do(ctx, opPropertyTypes, http.MethodGet, pathPropertyTypes, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HealthCheck verifies the API answers. Any non-5xx response counts as up.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathPropertyTypes, http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(opHealth, "error", start)
		return fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	c.observe(opHealth, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.NewUpstreamError(resp.StatusCode, "")
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRateLimited, err)
	}

	var reader io.Reader = http.NoBody
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, "error", start)
		c.logger.Warn("upstream request failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	c.observe(op, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := readDetail(resp.Body)
		c.logger.Warn("upstream returned error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail),
		)
		return fmt.Errorf("%s: %w", op, domain.NewUpstreamError(resp.StatusCode, detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, domain.NewUpstreamError(resp.StatusCode, err.Error()))
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) observe(op, status string, start time.Time) {
	metrics.UpstreamRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// readDetail extracts a "message" or "detail" field from a JSON error body,
// falling back to the raw (truncated) body.
func readDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var parsed struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Detail != "" {
			return parsed.Detail
		}
	}
	return strings.TrimSpace(string(raw))
}
