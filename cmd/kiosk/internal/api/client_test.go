// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDoer serves scripted responses in order, then repeats the last.
type fakeDoer struct {
	mu    sync.Mutex
	steps []fakeStep
	reqs  []*http.Request
}

type fakeStep struct {
	status int
	body   string
	err    error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	step := f.steps[len(f.steps)-1]
	if len(f.reqs) <= len(f.steps) {
		step = f.steps[len(f.reqs)-1]
	}
	if step.err != nil {
		return nil, step.err
	}
	return &http.Response{
		StatusCode: step.status,
		Body:       io.NopCloser(strings.NewReader(step.body)),
		Header:     http.Header{},
	}, nil
}

func (f *fakeDoer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func newTestClient(t *testing.T, doer *fakeDoer, cfg Config) *Client {
	t.Helper()
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://backend.local/v1/"
	}
	c, err := New(cfg, doer, nil, nil)
	require.NoError(t, err)
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return c
}

func TestClient_GetJSON(t *testing.T) {
	doer := &fakeDoer{steps: []fakeStep{{status: 200, body: `{"ok":true}`}}}
	c := newTestClient(t, doer, Config{})

	body, err := c.GetJSON(context.Background(), "theater-products/t1", RequestOpts{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	req := doer.reqs[0]
	assert.Equal(t, "/v1/theater-products/t1", req.URL.Path)
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	doer := &fakeDoer{steps: []fakeStep{
		{status: 503, body: "unavailable"},
		{status: 502, body: "bad gateway"},
		{status: 200, body: `{}`},
	}}
	c := newTestClient(t, doer, Config{MaxRetries: 2})

	_, err := c.GetJSON(context.Background(), "orders", RequestOpts{})
	require.NoError(t, err)
	assert.Equal(t, 3, doer.calls())
}

func TestClient_RetriesTransportErrors(t *testing.T) {
	doer := &fakeDoer{steps: []fakeStep{
		{err: errors.New("connection refused")},
		{status: 200, body: `{}`},
	}}
	c := newTestClient(t, doer, Config{MaxRetries: 2})

	_, err := c.GetJSON(context.Background(), "orders", RequestOpts{})
	require.NoError(t, err)
	assert.Equal(t, 2, doer.calls())
}

func TestClient_NeverRetriesClientErrors(t *testing.T) {
	doer := &fakeDoer{steps: []fakeStep{{status: 404, body: "no such theater"}}}
	c := newTestClient(t, doer, Config{MaxRetries: 2})

	_, err := c.GetJSON(context.Background(), "theater-products/nope", RequestOpts{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, doer.calls(), "4xx is the caller's fault, not the network's")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.Code)
	assert.Equal(t, "no such theater", se.Body)
}

func TestClient_ExhaustedRetriesSurfaceServerError(t *testing.T) {
	doer := &fakeDoer{steps: []fakeStep{{status: 500, body: "boom"}}}
	c := newTestClient(t, doer, Config{MaxRetries: 1})

	_, err := c.GetJSON(context.Background(), "orders", RequestOpts{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, 2, doer.calls())
}

func TestClient_ForceRefreshBustsCaches(t *testing.T) {
	doer := &fakeDoer{steps: []fakeStep{{status: 200, body: `{}`}}}
	c := newTestClient(t, doer, Config{})

	_, err := c.GetJSON(context.Background(), "theater-products/t1", RequestOpts{ForceRefresh: true})
	require.NoError(t, err)

	req := doer.reqs[0]
	assert.Equal(t, "no-cache", req.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", req.Header.Get("Pragma"))
	assert.NotEmpty(t, req.URL.Query().Get("_"), "cache-busting nonce is present")
}

func TestClient_QueryOptsAppend(t *testing.T) {
	doer := &fakeDoer{steps: []fakeStep{{status: 200, body: `{}`}}}
	c := newTestClient(t, doer, Config{})

	opts := RequestOpts{Query: map[string][]string{"stockSource": {"cafe"}}}
	_, err := c.GetJSON(context.Background(), "cafe-stock/t1", RequestOpts{Query: opts.Query})
	require.NoError(t, err)
	assert.Equal(t, "cafe", doer.reqs[0].URL.Query().Get("stockSource"))
}

func TestClient_PostSetsContentType(t *testing.T) {
	doer := &fakeDoer{steps: []fakeStep{{status: 201, body: `{}`}}}
	c := newTestClient(t, doer, Config{})

	_, err := c.PostJSON(context.Background(), "orders", []byte(`{"theaterId":"t1"}`), RequestOpts{})
	require.NoError(t, err)
	assert.Equal(t, "application/json", doer.reqs[0].Header.Get("Content-Type"))
}

func TestClient_ContextCancelStopsRetrying(t *testing.T) {
	doer := &fakeDoer{steps: []fakeStep{{status: 500, body: "boom"}}}
	c := newTestClient(t, doer, Config{MaxRetries: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetJSON(ctx, "orders", RequestOpts{})
	require.Error(t, err)
	assert.LessOrEqual(t, doer.calls(), 1)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "http://bad url with spaces"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, OpenTimeout: time.Hour})
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	}
	assert.Equal(t, CircuitOpen, cb.State())

	// While open, requests are rejected before reaching the backend.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		OpenTimeout:      time.Nanosecond,
	})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	require.Equal(t, CircuitOpen, cb.State())

	time.Sleep(time.Millisecond)

	// Two successes in half-open close the circuit.
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CircuitHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		OpenTimeout:      time.Nanosecond,
	})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	time.Sleep(time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errors.New("still down") }))
	assert.Equal(t, CircuitOpen, cb.State())
}
