package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"market-sync/src/helpers"
	"market-sync/src/interfaces"
	"market-sync/src/logger"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// Client is the REST side of the sync layer: every call goes through the TTL
// cache first, then the circuit breaker, then the wire. Callers always get an
// MResponse envelope, never a raw *http.Response.
// -----------------------------------------------------------------------------

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   *ResponseCache
	breaker *CircuitBreaker
	clock   interfaces.IClock
	logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewClient(cfg models.MRequestConfig, baseURL, token string, clock interfaces.IClock, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond,
		},
		cache:   NewResponseCache(time.Duration(cfg.CacheTTLMs)*time.Millisecond, clock),
		breaker: NewCircuitBreaker(cfg.CircuitBreakerThreshold, int64(cfg.CircuitBreakerResetMs), clock),
		clock:   clock,
		logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Get issues a GET against path (relative to the base URL) with the given
// query parameters. Order of checks: cache, breaker, network. The cache key
// is the full resolved URL so the same path with different parameters caches
// independently.
func (c *Client) Get(ctx context.Context, path string, params map[string]string) (models.MResponse, error) {
	fullURL := c.resolve(path, params)

	if resp, ok := c.cache.Get(fullURL); ok {
		resp.FromCache = true
		c.logger.Debug("Cache hit for %s", fullURL)
		return resp, nil
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.Debug("Request short-circuited for %s", fullURL)
		return models.MResponse{Success: false, Error: err.Error()}, err
	}

	correlationID := uuid.NewString()
	start := c.clock.NowMs()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		// Settle the breaker; an admitted trial must never be left hanging
		c.breaker.RecordFailure()
		return models.MResponse{Success: false, Error: err.Error(), CorrelationID: correlationID},
			helpers.NewTransportError("request build failed", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", correlationID)
	req.Header.Set("X-Request-Start", strconv.FormatInt(start, 10))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		mapped := c.mapTransportError(err)
		c.logger.Warning("GET %s failed: %v", fullURL, err)
		return models.MResponse{
			Success:       false,
			Error:         mapped.Error(),
			CorrelationID: correlationID,
			LatencyMs:     c.clock.NowMs() - start,
		}, mapped
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.breaker.RecordFailure()
		return models.MResponse{
			Success:       false,
			Status:        httpResp.StatusCode,
			Error:         err.Error(),
			CorrelationID: correlationID,
			LatencyMs:     c.clock.NowMs() - start,
		}, helpers.NewTransportError("response read failed", err)
	}

	resp := models.MResponse{
		Status:        httpResp.StatusCode,
		Data:          body,
		CorrelationID: correlationID,
		LatencyMs:     c.clock.NowMs() - start,
	}

	if httpResp.StatusCode >= http.StatusInternalServerError {
		c.breaker.RecordFailure()
		resp.Success = false
		resp.Error = fmt.Sprintf("upstream returned %d", httpResp.StatusCode)
		return resp, helpers.NewTransportError(resp.Error, nil)
	}
	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		// A 4xx means the upstream is up and answering; it settles a trial
		// and clears the failure streak rather than counting against it
		c.breaker.RecordSuccess()
		resp.Success = false
		resp.Error = fmt.Sprintf("unexpected status %d", httpResp.StatusCode)
		return resp, fmt.Errorf("GET %s: %s", fullURL, resp.Error)
	}

	c.breaker.RecordSuccess()
	resp.Success = true
	c.cache.Set(fullURL, resp)
	return resp, nil
}

// -----------------------------------------------------------------------------

// GetJSON performs Get and unmarshals the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := c.Get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return helpers.NewProtocolError("response decode failed", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// resolve builds the full URL. url.Values.Encode sorts keys, so the same
// parameters always produce the same cache key.
func (c *Client) resolve(path string, params map[string]string) string {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) == 0 {
		return full
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return full + "?" + values.Encode()
}

// -----------------------------------------------------------------------------

func (c *Client) mapTransportError(err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return helpers.NewTimeoutError("request timed out", err)
	}
	return helpers.NewTransportError("request failed", err)
}

// -----------------------------------------------------------------------------
// Maintenance hooks
// -----------------------------------------------------------------------------

// SweepCache evicts expired cache entries, returning the eviction count.
func (c *Client) SweepCache() int {
	return c.cache.Sweep()
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// BreakerOpen reports whether the circuit breaker is currently open.
func (c *Client) BreakerOpen() bool {
	return c.breaker.IsOpen()
}
