// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package posmock

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrImmutable means the order's status forbids the change.
	ErrImmutable = errors.New("order is not mutable")
	// ErrInsufficientStock means an order line exceeds current stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// TheaterData is everything the mock knows about one theater.
type TheaterData struct {
	Products   []Product
	Categories []Category
	KioskTypes []KioskType
	Banners    []Banner
	Combos     []ComboOffer
}

// Store holds the mock backend's state in memory.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	theaters map[string]*TheaterData
	orders   map[string]*Order
	seq      int
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		theaters: make(map[string]*TheaterData),
		orders:   make(map[string]*Order),
		now:      time.Now,
	}
}

// SetTheater installs (or replaces) a theater's catalog.
func (s *Store) SetTheater(theaterID string, data TheaterData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := data
	s.theaters[theaterID] = &copied
}

// Catalog returns the catalog for a theater, or ErrNotFound.
func (s *Store) Catalog(theaterID string) (TheaterData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	td, ok := s.theaters[theaterID]
	if !ok {
		return TheaterData{}, ErrNotFound
	}
	return *td, nil
}

// ============================================================================
// Orders
// ============================================================================

// CreateOrder validates stock, decrements inventory, computes totals
// server-side, and stores the new order.
func (s *Store) CreateOrder(req CreateOrderRequest) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	td, ok := s.theaters[req.TheaterID]
	if !ok {
		return nil, ErrNotFound
	}

	// Tally what the whole order needs per product, expanding combos
	// into their components, then validate once before touching stock.
	need := make(map[string]float64)
	for _, item := range req.Items {
		if item.Kind == "combo" {
			c := findCombo(td, item.ProductID)
			if c == nil {
				return nil, fmt.Errorf("%w: combo %s", ErrNotFound, item.ProductID)
			}
			for _, entry := range c.Entries {
				p := findProduct(td, entry.ProductID)
				if p == nil {
					return nil, fmt.Errorf("%w: product %s", ErrNotFound, entry.ProductID)
				}
				need[p.ID] += float64(item.Count*entry.Count) * perPiece(p)
			}
			continue
		}
		p := findProduct(td, item.ProductID)
		if p == nil {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, item.ProductID)
		}
		need[p.ID] += float64(item.Count) * perPiece(p)
	}
	for id, units := range need {
		if p := findProduct(td, id); p.Inventory.CurrentStock < units {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}
	}
	for _, item := range req.Items {
		s.adjustStock(td, item.ProductID, item.Kind, -item.Count)
	}

	s.seq++
	o := &Order{
		ID:          uuid.NewString(),
		OrderNumber: fmt.Sprintf("K%04d", s.seq),
		TheaterID:   req.TheaterID,
		Status:      "pending",
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
	}
	if req.Subtotal > 0 {
		o.taxRate = req.Tax / req.Subtotal
	}
	o.taxAdditive = req.Total > req.Subtotal+0.005
	for _, item := range req.Items {
		o.Items = append(o.Items, OrderItem{
			LineID:    uuid.NewString(),
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			UnitPrice: item.UnitPrice,
			Count:     item.Count,
			Kind:      item.Kind,
		})
	}
	recomputeTotals(o)

	s.orders[o.ID] = o
	return cloneOrder(o), nil
}

// FindOrder looks an order up by id or order number within a theater.
func (s *Store) FindOrder(theaterID, key string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.orders[key]; ok && o.TheaterID == theaterID {
		return cloneOrder(o), nil
	}
	for _, o := range s.orders {
		if o.TheaterID == theaterID && strings.EqualFold(o.OrderNumber, key) {
			return cloneOrder(o), nil
		}
	}
	return nil, ErrNotFound
}

// UpdateStatus changes an order's status. Cancelling restores the
// inventory the order had consumed.
func (s *Store) UpdateStatus(theaterID, orderID, status string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.TheaterID != theaterID {
		return nil, ErrNotFound
	}
	if status == "cancelled" {
		if !mutable(o.Status) {
			return nil, ErrImmutable
		}
		if td, ok := s.theaters[o.TheaterID]; ok {
			for _, item := range o.Items {
				if !item.Cancelled {
					s.adjustStock(td, item.ProductID, item.Kind, item.Count)
				}
			}
		}
	}
	o.Status = status
	return cloneOrder(o), nil
}

// CancelLine removes one line from a mutable order, restores its
// inventory, and recomputes the totals.
func (s *Store) CancelLine(theaterID, orderID, lineID string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.TheaterID != theaterID {
		return nil, ErrNotFound
	}
	if !mutable(o.Status) {
		return nil, ErrImmutable
	}

	idx := -1
	for i := range o.Items {
		if o.Items[i].LineID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	item := o.Items[idx]
	if td, ok := s.theaters[o.TheaterID]; ok {
		s.adjustStock(td, item.ProductID, item.Kind, item.Count)
	}
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	recomputeTotals(o)
	if len(o.Items) == 0 {
		o.Status = "cancelled"
	}
	return cloneOrder(o), nil
}

// ============================================================================
// Internals
// ============================================================================

// adjustStock moves a product's (or a combo's components') stock by
// delta multiples of the purchase unit. Callers hold the lock.
func (s *Store) adjustStock(td *TheaterData, id, kind string, delta int) {
	if kind == "combo" {
		c := findCombo(td, id)
		if c == nil {
			return
		}
		for _, entry := range c.Entries {
			if p := findProduct(td, entry.ProductID); p != nil {
				p.Inventory.CurrentStock += float64(delta*entry.Count) * perPiece(p)
			}
		}
		return
	}
	if p := findProduct(td, id); p != nil {
		p.Inventory.CurrentStock += float64(delta) * perPiece(p)
	}
}

func findProduct(td *TheaterData, id string) *Product {
	for i := range td.Products {
		if td.Products[i].ID == id {
			return &td.Products[i]
		}
	}
	return nil
}

func findCombo(td *TheaterData, id string) *ComboOffer {
	for i := range td.Combos {
		if td.Combos[i].ID == id {
			return &td.Combos[i]
		}
	}
	return nil
}

// perPiece is the base units one purchased piece consumes.
func perPiece(p *Product) float64 {
	if p.NoQty > 0 {
		return p.NoQty
	}
	return 1
}

func mutable(status string) bool {
	return status == "pending" || status == "in-progress"
}

func recomputeTotals(o *Order) {
	var subtotal float64
	for _, item := range o.Items {
		subtotal += round2(item.UnitPrice * float64(item.Count))
	}
	o.Subtotal = round2(subtotal)
	o.Tax = round2(o.Subtotal * o.taxRate)
	if o.taxAdditive {
		o.Total = round2(o.Subtotal + o.Tax)
	} else {
		o.Total = o.Subtotal
	}
}

func round2(v float64) float64 {
	return math.Trunc(v*100+math.Copysign(0.5, v)) / 100
}

func cloneOrder(o *Order) *Order {
	copied := *o
	copied.Items = append([]OrderItem(nil), o.Items...)
	return &copied
}
