// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package api is the HTTP client for the theater backend.
//
// Every outgoing request goes through one pipeline: rate limiter,
// circuit breaker, per-request deadline, bounded retry with exponential
// backoff, and prometheus instrumentation. Callers get raw body bytes
// and typed errors; response decoding belongs to the owning component.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Doer abstracts the HTTP transport for testing.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures the Client.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:8085/v1".
	BaseURL string

	// Timeout is the default per-request deadline.
	// Default: 15 seconds.
	Timeout time.Duration

	// MaxRetries is how many times a transient failure is retried.
	// Default: 2 (three attempts total).
	MaxRetries int

	// RetryBase is the first backoff interval; it doubles per attempt
	// with jitter. Default: 300 ms.
	RetryBase time.Duration

	// RequestsPerSecond caps the outgoing request rate. Zero means
	// unlimited.
	RequestsPerSecond float64
}

// Client talks to the theater backend.
//
// # Thread Safety
//
// Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	httpc   Doer
	limiter *rate.Limiter
	breaker *CircuitBreaker
	metrics *Metrics
	logger  *slog.Logger
	cfg     Config

	// sleep is injected for tests; defaults to a context-aware sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

// RequestOpts tune a single request.
type RequestOpts struct {
	// Query is appended to the path's query string.
	Query url.Values

	// Timeout overrides Config.Timeout when positive.
	Timeout time.Duration

	// ForceRefresh adds no-cache hints and a cache-busting nonce so
	// every cache between the kiosk and the database is bypassed.
	ForceRefresh bool
}

// New creates a Client.
//
// # Inputs
//
//   - cfg: Client configuration. BaseURL is required.
//   - httpc: Transport; nil uses http.DefaultClient.
//   - metrics: Instruments; nil disables instrumentation.
//   - logger: Structured logger; nil uses slog.Default().
//
// # Outputs
//
//   - *Client: Ready-to-use client.
//   - error: Non-nil when BaseURL does not parse.
func New(cfg Config, httpc Doer, metrics *Metrics, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 300 * time.Millisecond
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		base:    base,
		httpc:   httpc,
		limiter: rate.NewLimiter(limit, 10),
		breaker: NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		sleep:   sleepCtx,
	}, nil
}

// GetJSON issues a GET and returns the response body.
func (c *Client) GetJSON(ctx context.Context, path string, opts RequestOpts) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, opts)
}

// PostJSON issues a POST with a JSON body and returns the response body.
func (c *Client) PostJSON(ctx context.Context, path string, body []byte, opts RequestOpts) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, body, opts)
}

// PutJSON issues a PUT with a JSON body and returns the response body.
func (c *Client) PutJSON(ctx context.Context, path string, body []byte, opts RequestOpts) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, body, opts)
}

// Delete issues a DELETE and returns the response body.
func (c *Client) Delete(ctx context.Context, path string, opts RequestOpts) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, opts)
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// do runs the full request pipeline.
//
// Retry policy: up to MaxRetries extra attempts on network errors and
// 5xx responses, exponential backoff with jitter. 4xx responses are
// never retried — the request is wrong, not the network.
func (c *Client) do(ctx context.Context, method, path string, body []byte, opts RequestOpts) ([]byte, error) {
	timeout := c.cfg.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.classify(err)
	}

	u := c.resolve(path, opts)

	var out []byte
	start := time.Now()
	err := c.breaker.Execute(func() error {
		var attemptErr error
		out, attemptErr = c.attemptWithRetry(ctx, method, u, body, opts)
		return attemptErr
	})
	c.observe(path, start, err)
	return out, err
}

// attemptWithRetry is the bounded retry loop around a single request.
func (c *Client) attemptWithRetry(ctx context.Context, method string, u *url.URL, body []byte, opts RequestOpts) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if c.metrics != nil {
				c.metrics.RetriesTotal.Inc()
			}
			backoff := c.cfg.RetryBase << (attempt - 1)
			backoff += time.Duration(rand.Int63n(int64(backoff) / 2))
			c.logger.Warn("retrying request",
				"method", method,
				"url", u.Path,
				"attempt", attempt,
				"backoff", backoff,
				"error", lastErr)
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, c.classify(err)
			}
		}

		out, err := c.attempt(ctx, method, u, body, opts)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// attempt performs exactly one HTTP round trip.
func (c *Client) attempt(ctx context.Context, method string, u *url.URL, body []byte, opts RequestOpts) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.ForceRefresh {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, c.classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return data, nil
}

// resolve joins path and query onto the base URL, appending the
// force-refresh nonce when requested.
func (c *Client) resolve(path string, opts RequestOpts) *url.URL {
	ref, err := url.Parse(path)
	if err != nil {
		ref = &url.URL{Path: path}
	}
	u := c.base.ResolveReference(ref)

	q := u.Query()
	for key, vals := range opts.Query {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	if opts.ForceRefresh {
		q.Set("_", uuid.NewString())
	}
	u.RawQuery = q.Encode()
	return u
}

// observe records metrics for a finished request.
func (c *Client) observe(path string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	var se *StatusError
	switch {
	case err == nil:
	case errors.As(err, &se):
		status = fmt.Sprintf("%dxx", se.Code/100)
	case errors.Is(err, ErrCircuitOpen):
		status = "circuit_open"
	case errors.Is(err, ErrTimeout):
		status = "timeout"
	default:
		status = "error"
	}
	c.metrics.RequestsTotal.WithLabelValues(path, status).Inc()
	c.metrics.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
}

// classify maps transport-level errors onto the package sentinels.
func (c *Client) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// retryable reports whether an error is worth another attempt.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Anything else from the transport is a network-level failure.
	return true
}

// sleepCtx sleeps or returns early when the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
