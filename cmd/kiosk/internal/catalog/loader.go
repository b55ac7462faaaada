// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/api"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/storage"
)

// ============================================================================
// Errors
// ============================================================================

var (
	// ErrCatalogLoad means the product list could not be fetched at all.
	// Sibling lists failing alone never raise it; they degrade to
	// snapshot warnings.
	ErrCatalogLoad = errors.New("catalog load failed")
)

// LoadTimeout bounds the whole five-list load, not each fetch.
const LoadTimeout = 30 * time.Second

// ============================================================================
// Collaborator interfaces
// ============================================================================

// Fetcher is the slice of the API client the loader needs.
type Fetcher interface {
	GetJSON(ctx context.Context, path string, opts api.RequestOpts) ([]byte, error)
	BaseURL() *url.URL
}

// Cache is the slice of the TTL cache the loader needs.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, payload []byte) error
}

var _ Fetcher = (*api.Client)(nil)
var _ Cache = (*storage.TTLCache)(nil)

// ============================================================================
// Loader
// ============================================================================

// Loader assembles a theater's catalog Snapshot from five list endpoints.
//
// # Description
//
// The five fetches run concurrently. Each list is its own failure
// domain: a banner outage must not take the product grid down with it.
// Raw list bodies are cached with a TTL; a cache hit serves immediately
// and kicks a background refresh so the next load sees fresh data.
//
// # Thread Safety
//
// Safe for concurrent use.
type Loader struct {
	fetcher Fetcher
	cache   Cache
	logger  *slog.Logger
	timeout time.Duration

	// refresh runs the background cache refresh. Injected so tests can
	// run it synchronously.
	refresh func(fn func())
}

// LoadOptions tune one Load call.
type LoadOptions struct {
	// ForceRefresh bypasses the local cache and sends no-cache hints so
	// upstream caches are bypassed too. The fresh bodies are re-cached.
	ForceRefresh bool
}

// NewLoader creates a Loader.
//
// # Inputs
//
//   - fetcher: API client. Required.
//   - cache: TTL cache; nil disables caching.
//   - logger: Structured logger; nil uses slog.Default().
func NewLoader(fetcher Fetcher, cache Cache, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
		timeout: LoadTimeout,
		refresh: func(fn func()) { go fn() },
	}
}

// listSpec describes one of the five catalog lists.
type listSpec struct {
	// name is the envelope field name and the cache resource prefix.
	name string
	path string
	// query is appended to every fetch of this list.
	query url.Values
}

func listSpecs(theaterID string) []listSpec {
	return []listSpec{
		{name: "products", path: "/theater-products/" + theaterID,
			query: url.Values{"stockSource": {"cafe"}}},
		{name: "categories", path: "/theater-categories/" + theaterID},
		{name: "kioskTypes", path: "/theater-kiosk-types/" + theaterID},
		{name: "banners", path: "/theater-banners/" + theaterID},
		{name: "combos", path: "/combo-offers/" + theaterID},
	}
}

// Load fetches and normalizes one theater's catalog.
//
// # Description
//
// Runs the five list fetches concurrently under one composite deadline.
// Per-list failures and unrecognized shapes become Warnings on the
// snapshot. Only a failed product fetch is fatal; it wraps
// ErrCatalogLoad. A snapshot with zero products sets Empty.
//
// # Inputs
//
//   - ctx: Cancels the whole load.
//   - theaterID: Owning theater. Required.
//   - opts: Load options.
//
// # Outputs
//
//   - *Snapshot: Normalized catalog. Nil only when error is non-nil.
//   - error: ErrCatalogLoad when the product list could not be fetched.
func (l *Loader) Load(ctx context.Context, theaterID string, opts LoadOptions) (*Snapshot, error) {
	if theaterID == "" {
		return nil, fmt.Errorf("%w: theater id is empty", ErrCatalogLoad)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	specs := listSpecs(theaterID)
	bodies := make([][]byte, len(specs))
	errs := make([]error, len(specs))

	// Isolated failure domains: every goroutine returns nil so one
	// list's failure cannot cancel its siblings.
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			bodies[i], errs[i] = l.fetchList(gctx, theaterID, spec, opts)
			return nil
		})
	}
	_ = g.Wait()

	snap := &Snapshot{TheaterID: theaterID, LoadedAt: time.Now()}
	for i, spec := range specs {
		if errs[i] != nil {
			if spec.name == "products" {
				return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, errs[i])
			}
			l.logger.Warn("catalog list fetch failed",
				"theater_id", theaterID, "list", spec.name, "error", errs[i])
			snap.Warnings = append(snap.Warnings,
				fmt.Sprintf("%s: %v", spec.name, errs[i]))
			continue
		}
		if err := l.assemble(snap, spec.name, bodies[i]); err != nil {
			if spec.name == "products" {
				return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
			}
			snap.Warnings = append(snap.Warnings,
				fmt.Sprintf("%s: %v", spec.name, err))
		}
	}

	l.normalizeImages(snap)
	snap.Empty = len(snap.Products) == 0
	if snap.Empty {
		l.logger.Warn("catalog is empty", "theater_id", theaterID)
	}

	l.logger.Info("catalog loaded",
		"theater_id", theaterID,
		"products", len(snap.Products),
		"combos", len(snap.Combos),
		"warnings", len(snap.Warnings),
		"forced", opts.ForceRefresh)
	return snap, nil
}

// fetchList returns one list's raw body, serving from cache when
// possible. A hit schedules a background refresh so the cache converges
// on fresh data without blocking the caller.
func (l *Loader) fetchList(ctx context.Context, theaterID string, spec listSpec, opts LoadOptions) ([]byte, error) {
	key := storage.Key(spec.name, theaterID, 0, 0, "")

	if l.cache != nil && !opts.ForceRefresh {
		if cached, ok, err := l.cache.Get(key); err == nil && ok {
			l.refresh(func() { l.refreshList(theaterID, spec, key) })
			return cached, nil
		}
	}

	body, err := l.fetcher.GetJSON(ctx, spec.path, api.RequestOpts{
		Query:        spec.query,
		ForceRefresh: opts.ForceRefresh,
	})
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		if err := l.cache.Set(key, body); err != nil {
			l.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return body, nil
}

// refreshList re-fetches one list into the cache. Best effort; runs
// detached from the load that triggered it.
func (l *Loader) refreshList(theaterID string, spec listSpec, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	body, err := l.fetcher.GetJSON(ctx, spec.path, api.RequestOpts{Query: spec.query})
	if err != nil {
		l.logger.Debug("background refresh failed",
			"theater_id", theaterID, "list", spec.name, "error", err)
		return
	}
	if err := l.cache.Set(key, body); err != nil {
		l.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// assemble decodes one list body into its snapshot slot. An
// unrecognized envelope shape leaves the slot empty and records a
// warning; only malformed JSON is an error.
func (l *Loader) assemble(snap *Snapshot, name string, body []byte) error {
	arr, ok, err := decodeList(body, name)
	if err != nil {
		return err
	}
	if !ok {
		snap.Warnings = append(snap.Warnings,
			fmt.Sprintf("%s: unrecognized response shape", name))
		return nil
	}
	return fillList(snap, name, arr)
}

func fillList(snap *Snapshot, name string, arr json.RawMessage) error {
	var err error
	switch name {
	case "products":
		snap.Products, err = parseProducts(arr)
	case "categories":
		snap.Categories, err = parseCategories(arr)
	case "kioskTypes":
		snap.KioskTypes, err = parseKioskTypes(arr)
	case "banners":
		snap.Banners, err = parseBanners(arr)
	case "combos":
		snap.Combos, err = parseCombos(arr)
	default:
		err = fmt.Errorf("unknown list %q", name)
	}
	return err
}

// normalizeImages rewrites every image reference in the snapshot into a
// directly loadable URL. Unresolvable references become "" and render
// as placeholders.
func (l *Loader) normalizeImages(snap *Snapshot) {
	base := l.fetcher.BaseURL()
	for i := range snap.Products {
		for j, img := range snap.Products[i].Images {
			snap.Products[i].Images[j] = NormalizeImageURL(img, base)
		}
	}
	for i := range snap.Categories {
		snap.Categories[i].ImageURL = NormalizeImageURL(snap.Categories[i].ImageURL, base)
	}
	for i := range snap.KioskTypes {
		snap.KioskTypes[i].ImageURL = NormalizeImageURL(snap.KioskTypes[i].ImageURL, base)
	}
	for i := range snap.Banners {
		snap.Banners[i].ImageURL = NormalizeImageURL(snap.Banners[i].ImageURL, base)
	}
	for i := range snap.Combos {
		snap.Combos[i].ImageURL = NormalizeImageURL(snap.Combos[i].ImageURL, base)
	}

	// Banner order is display order; keep it deterministic even when a
	// cached body and a fresh body interleave.
	sort.SliceStable(snap.Banners, func(i, j int) bool {
		return snap.Banners[i].SortOrder < snap.Banners[j].SortOrder
	})
}
