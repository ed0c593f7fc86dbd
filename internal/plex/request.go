// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package plex

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aria/internal/logging"
	"github.com/tomtom215/aria/internal/metrics"
)

// requestConfig holds configuration for building HTTP requests.
type requestConfig struct {
	method   string
	endpoint string // metric label, not the URL path
	path     string
	query    url.Values
	body     []byte
	bodyType string
}

// doRequest executes a Plex API request and decodes the JSON response into
// result when non-nil. A 404 maps to ErrNotFound; other non-2xx statuses are
// errors. The per-call timeout and the global rate cap apply here.
func (c *Client) doRequest(ctx context.Context, cfg requestConfig, result interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	reqURL := c.baseURL + cfg.path
	var bodyReader *bytes.Reader
	if cfg.body != nil {
		bodyReader = bytes.NewReader(cfg.body)
	} else {
		bodyReader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, cfg.method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/json")
	if cfg.bodyType != "" {
		req.Header.Set("Content-Type", cfg.bodyType)
	}
	if len(cfg.query) > 0 {
		req.URL.RawQuery = cfg.query.Encode()
	}

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(req)
	metrics.PlexRequestDuration.WithLabelValues(cfg.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PlexRequestsTotal.WithLabelValues(cfg.endpoint, "error").Inc()
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.PlexRequestsTotal.WithLabelValues(cfg.endpoint, "404").Inc()
		return fmt.Errorf("%s: %w", cfg.path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.PlexRequestsTotal.WithLabelValues(cfg.endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return fmt.Errorf("%s: unexpected status %d %s", cfg.path, resp.StatusCode, resp.Status)
	}
	metrics.PlexRequestsTotal.WithLabelValues(cfg.endpoint, "ok").Inc()

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// doJSONRequest is a convenience wrapper for GET requests.
func (c *Client) doJSONRequest(ctx context.Context, endpoint, path string, result interface{}) error {
	return c.doRequest(ctx, requestConfig{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     path,
	}, result)
}

// doJSONRequestWithQuery is a convenience wrapper for GET requests with
// query parameters.
func (c *Client) doJSONRequestWithQuery(ctx context.Context, endpoint, path string, query url.Values, result interface{}) error {
	return c.doRequest(ctx, requestConfig{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     path,
		query:    query,
	}, result)
}

// doRequestWithRateLimit executes the request, handling HTTP 429 with
// bounded exponential backoff (1s, 2s, 4s, 8s, 16s) and honoring the
// Retry-After header. This is rate-limit compliance, not failure retry:
// transport errors are returned to the caller on the first attempt.
func (c *Client) doRequestWithRateLimit(req *http.Request) (*http.Response, error) {
	const maxRetries = 5
	baseDelay := 1 * time.Second

	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := c.execute(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		resp.Body.Close()
		if attempt == maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries", maxRetries)
		}

		retryDelay := baseDelay * (1 << attempt)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				retryDelay = seconds
			}
		}

		metrics.PlexRateLimitRetries.Inc()
		log := logging.Ctx(req.Context())
		log.Warn().Dur("retry_delay", retryDelay).Int("attempt", attempt+1).Msg("Plex API rate limited (HTTP 429), retrying")

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("unreachable: retry loop must return")
}

// execute runs the request through the circuit breaker when enabled.
func (c *Client) execute(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}
	return c.breaker.Do(c.httpClient, req)
}
