// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/config"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/api"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/cart"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/events"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/order"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/pricing"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/storage"
	"github.com/jinterlante1206/KioskLocal/pkg/logging"
)

// Runtime bundles the wired components one command run needs.
type Runtime struct {
	Logger  *logging.Logger
	DB      *storage.DB
	Client  *api.Client
	Cache   *storage.TTLCache
	Loader  *catalog.Loader
	Bus     *events.Bus
	Watcher *events.BumpWatcher
	Orders  *order.Service
	Policy  pricing.Policy
}

// runtimeOpts select which optional components to wire.
type runtimeOpts struct {
	// quiet suppresses stderr logging while a TUI owns the terminal.
	quiet bool
	// watch starts the bump-file watcher.
	watch bool
}

// newRuntime wires the component graph from the loaded config.
//
// Close the returned Runtime when done; it owns the database handle,
// the log file, and the watcher goroutine.
func newRuntime(c config.KioskConfig, opts runtimeOpts) (*Runtime, error) {
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(c.Logging.Level),
		LogDir:  "~/.kiosk/logs",
		Service: "kiosk",
		JSON:    c.Logging.Format == "json",
		Quiet:   opts.quiet,
	})

	db, err := storage.Open(storage.Config{
		Path:           c.Storage.Path,
		SyncWrites:     true,
		Logger:         logger.Slog(),
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	})
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("open local database: %w", err)
	}

	client, err := api.New(api.Config{
		BaseURL:           c.API.BaseURL,
		Timeout:           time.Duration(c.API.TimeoutSeconds) * time.Second,
		MaxRetries:        c.API.MaxRetries,
		RequestsPerSecond: c.API.RequestsPerSecond,
	}, nil, api.NewMetrics(prometheus.DefaultRegisterer), logger.Slog())
	if err != nil {
		db.Close()
		logger.Close()
		return nil, err
	}

	ttl := storage.DefaultCacheTTL
	if c.Storage.CacheTTLMinutes > 0 {
		ttl = time.Duration(c.Storage.CacheTTLMinutes) * time.Minute
	}
	cache := storage.NewTTLCache(db, ttl)
	loader := catalog.NewLoader(client, cache, logger.Slog())

	bus := events.NewBus()
	var watcher *events.BumpWatcher
	if opts.watch {
		watcher, err = events.NewBumpWatcher(c.Storage.BumpDir, bus, logger.Slog())
		if err != nil {
			logger.Warn("bump watcher unavailable, stock pushes disabled", "error", err)
			watcher = nil
		}
	}

	orders := order.NewService(client, cache, bus, c.Storage.BumpDir, logger.Slog())

	return &Runtime{
		Logger:  logger,
		DB:      db,
		Client:  client,
		Cache:   cache,
		Loader:  loader,
		Bus:     bus,
		Watcher: watcher,
		Orders:  orders,
		Policy: pricing.Policy{
			FallbackTaxRate: c.Pricing.TaxRate,
			CurrencySymbol:  c.Pricing.CurrencySymbol,
		},
	}, nil
}

// OpenCart hydrates the durable cart for a theater.
func (r *Runtime) OpenCart(theaterID string) (*cart.Store, error) {
	return cart.Open(r.DB, theaterID, r.Logger.Slog())
}

// Close releases everything newRuntime acquired.
func (r *Runtime) Close() {
	if r.Watcher != nil {
		if err := r.Watcher.Close(); err != nil {
			r.Logger.Warn("watcher close failed", "error", err)
		}
	}
	if err := r.DB.Close(); err != nil {
		r.Logger.Warn("database close failed", "error", err)
	}
	r.Logger.Close()
}
