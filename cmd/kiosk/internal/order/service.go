// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/api"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/cart"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/events"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/pricing"
)

// ============================================================================
// Errors
// ============================================================================

var (
	// ErrOrderNotFound means neither an order id nor an order number
	// matched the search key.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderImmutable means the order's status forbids cancellation.
	ErrOrderImmutable = errors.New("order can no longer be changed")
)

// FindTimeout bounds an order lookup.
const FindTimeout = 15 * time.Second

// ============================================================================
// Collaborator interfaces
// ============================================================================

// Requester is the slice of the API client the service needs.
type Requester interface {
	GetJSON(ctx context.Context, path string, opts api.RequestOpts) ([]byte, error)
	PostJSON(ctx context.Context, path string, body []byte, opts api.RequestOpts) ([]byte, error)
	PutJSON(ctx context.Context, path string, body []byte, opts api.RequestOpts) ([]byte, error)
	Delete(ctx context.Context, path string, opts api.RequestOpts) ([]byte, error)
}

// Invalidator is the slice of the cache the fan-out needs.
type Invalidator interface {
	InvalidatePattern(prefix string) (int, error)
}

var _ Requester = (*api.Client)(nil)

// ============================================================================
// Service
// ============================================================================

// Service performs order operations against the backend and runs the
// local fan-out (cache invalidation, bump file, bus events) after each
// state-changing call succeeds.
type Service struct {
	client  Requester
	cache   Invalidator
	bus     *events.Bus
	bumpDir string
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a Service.
//
// # Inputs
//
//   - client: Backend transport. Required.
//   - cache: Cache to invalidate on fan-out; nil skips invalidation.
//   - bus: Event bus; nil skips broadcasting.
//   - bumpDir: Directory for bump files; empty skips the bump write.
//   - logger: Structured logger; nil uses slog.Default().
func NewService(client Requester, cache Invalidator, bus *events.Bus, bumpDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:  client,
		cache:   cache,
		bus:     bus,
		bumpDir: bumpDir,
		logger:  logger,
		now:     time.Now,
	}
}

// FindOrder looks an order up by id or order number.
//
// # Description
//
// Case-preserving exact lookup against the backend, bounded to
// FindTimeout. A 404 maps to ErrOrderNotFound.
func (s *Service) FindOrder(ctx context.Context, theaterID, key string) (*Order, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty search key", ErrOrderNotFound)
	}
	path := fmt.Sprintf("/orders/theater/%s/%s", theaterID, key)
	body, err := s.client.GetJSON(ctx, path, api.RequestOpts{Timeout: FindTimeout})
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, key)
		}
		return nil, surface(err)
	}
	return decodeOrder(body)
}

// SubmitOrder places the cart as a new order.
//
// On success the caller clears the cart; stock changed server-side, so
// the full fan-out runs here first.
func (s *Service) SubmitOrder(ctx context.Context, snap cart.Snapshot, totals pricing.Totals) (*Order, error) {
	payload := submitPayload(snap, totals)
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	body, err := s.client.PostJSON(ctx, "/orders", raw, api.RequestOpts{})
	if err != nil {
		return nil, surface(err)
	}
	placed, err := decodeOrder(body)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		"theater_id", snap.TheaterID,
		"order_id", placed.ID,
		"order_number", placed.OrderNumber,
		"lines", len(snap.Lines),
		"total", totals.Total)
	s.fanOut(snap.TheaterID)
	return placed, nil
}

// CancelOrder cancels a whole order.
//
// # Description
//
// Allowed only while the order is pending or in progress. The backend
// restores inventory; afterwards the local order is marked cancelled,
// this theater's order/product/stock cache patterns are invalidated,
// and orderUpdated plus stockUpdated broadcast.
func (s *Service) CancelOrder(ctx context.Context, o *Order) error {
	if !o.Mutable() {
		return fmt.Errorf("%w: status is %s", ErrOrderImmutable, o.Status)
	}

	path := fmt.Sprintf("/orders/theater/%s/%s/status", o.TheaterID, o.ID)
	raw, _ := json.Marshal(map[string]string{"status": string(StatusCancelled)})
	if _, err := s.client.PutJSON(ctx, path, raw, api.RequestOpts{}); err != nil {
		return surface(err)
	}

	o.Status = StatusCancelled
	s.logger.Info("order cancelled", "theater_id", o.TheaterID, "order_id", o.ID)
	s.fanOut(o.TheaterID)
	return nil
}

// CancelLine cancels one line of an order.
//
// # Description
//
// Same preconditions as CancelOrder. A 404 means someone already
// cancelled the line; that is success with an informational log, not
// an error. The order is re-fetched afterwards so the caller sees the
// recomputed totals.
//
// # Outputs
//
//   - *Order: The re-fetched order. May be nil when the re-fetch
//     itself failed after a successful cancel; the fan-out still ran.
//   - error: ErrOrderImmutable, or a transport error.
func (s *Service) CancelLine(ctx context.Context, o *Order, lineID string) (*Order, error) {
	if !o.Mutable() {
		return nil, fmt.Errorf("%w: status is %s", ErrOrderImmutable, o.Status)
	}

	path := fmt.Sprintf("/orders/theater/%s/%s/products/%s", o.TheaterID, o.ID, lineID)
	if _, err := s.client.Delete(ctx, path, api.RequestOpts{}); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			s.logger.Info("line already cancelled",
				"order_id", o.ID, "line_id", lineID)
		} else {
			return nil, surface(err)
		}
	}

	s.fanOut(o.TheaterID)

	refreshed, err := s.FindOrder(ctx, o.TheaterID, o.ID)
	if err != nil {
		s.logger.Warn("re-fetch after line cancel failed",
			"order_id", o.ID, "error", err)
		return nil, nil
	}
	return refreshed, nil
}

// fanOut is the post-mutation broadcast. Local state is already
// updated when this runs; listeners re-fetching will see consistent
// server state.
func (s *Service) fanOut(theaterID string) {
	if s.cache != nil {
		for _, resource := range []string{"orders", "products", "cafeStock"} {
			prefix := resource + "_" + theaterID
			if n, err := s.cache.InvalidatePattern(prefix); err != nil {
				s.logger.Warn("cache invalidation failed", "prefix", prefix, "error", err)
			} else if n > 0 {
				s.logger.Debug("cache invalidated", "prefix", prefix, "entries", n)
			}
		}
	}
	if s.bumpDir != "" {
		if err := events.WriteBump(s.bumpDir, theaterID, s.now()); err != nil {
			s.logger.Warn("stock bump write failed", "theater_id", theaterID, "error", err)
		}
	}
	if s.bus != nil {
		now := s.now()
		s.bus.Publish(events.Event{Type: events.OrderUpdated, TheaterID: theaterID, Source: "order-service", Timestamp: now})
		s.bus.Publish(events.Event{Type: events.StockUpdated, TheaterID: theaterID, Source: "order-service", Timestamp: now})
	}
}

// ============================================================================
// Wire helpers
// ============================================================================

// decodeOrder accepts both the {"data": {...}} envelope and a bare
// order object.
func decodeOrder(body []byte) (*Order, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	raw := json.RawMessage(body)
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}

	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	if o.ID == "" {
		return nil, fmt.Errorf("decode order: missing id")
	}
	return &o, nil
}

// submitPayload shapes a cart into the order-create request body.
func submitPayload(snap cart.Snapshot, totals pricing.Totals) map[string]any {
	items := make([]map[string]any, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		items = append(items, map[string]any{
			"productId":       line.ID,
			"name":            line.Name,
			"productQuantity": line.Size,
			"price":           line.UnitPrice,
			"quantity":        line.Count,
			"kind":            string(line.Kind),
		})
	}
	return map[string]any{
		"theaterId":   snap.TheaterID,
		"products":    items,
		"subtotal":    totals.Subtotal,
		"taxAmount":   totals.Tax,
		"totalAmount": totals.Total,
	}
}

// surface maps transport errors onto user-facing semantics: 5xx
// becomes "try again", everything else passes through verbatim.
func surface(err error) error {
	if errors.Is(err, api.ErrServer) {
		return fmt.Errorf("backend error, try again: %w", err)
	}
	return err
}
