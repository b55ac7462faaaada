// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cart is the order-in-progress: an ordered list of lines with
// durable per-theater persistence.
//
// The store is deliberately dumb. Stock gating happens before AddItem
// is called and pricing happens on a Snapshot afterwards; the store
// only guarantees atomic mutations, insertion order, and that the cart
// survives a process restart.
package cart

import (
	"strings"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
)

// Kind says what a line's ID refers to.
type Kind string

const (
	// KindProduct lines reference a simple product.
	KindProduct Kind = "product"

	// KindCombo lines reference a combo offer.
	KindCombo Kind = "combo"
)

// PendingPrefix marks locally minted ids for optimistic writes that the
// server has not acknowledged yet.
const PendingPrefix = "pending-"

// Line is one cart entry. Price and tax fields are captured at add time
// so a catalog refresh mid-order cannot reprice lines already in the
// cart.
type Line struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Name      string          `json:"name"`
	Size      string          `json:"size,omitempty"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	UnitPrice float64         `json:"unitPrice"`
	TaxRate   float64         `json:"taxRate"`
	TaxMode   catalog.TaxMode `json:"taxMode"`
	Count     int             `json:"count"`
}

// Pending reports whether the line still carries a locally minted id.
func (l *Line) Pending() bool {
	return strings.HasPrefix(l.ID, PendingPrefix)
}
