// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stock

import (
	"strings"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/cart"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
)

// ============================================================================
// Decisions
// ============================================================================

// ReasonCode classifies why an add was refused.
type ReasonCode string

const (
	ReasonInactive          ReasonCode = "Inactive"
	ReasonUnavailable       ReasonCode = "Unavailable"
	ReasonInsufficientStock ReasonCode = "InsufficientStock"
	ReasonMissingComponent  ReasonCode = "MissingComponent"
	ReasonSizeMismatch      ReasonCode = "SizeMismatch"
)

// Reason carries the refusal details. Which fields are set depends on
// the code: InsufficientStock fills Required/Available/Unit,
// MissingComponent and SizeMismatch fill ProductID (and Size).
type Reason struct {
	Code      ReasonCode
	ProductID string
	Size      string
	Required  float64
	Available float64
	Unit      string
}

// Decision is the answer to a CanAdd question.
type Decision struct {
	OK     bool
	Reason *Reason
}

func allow() Decision { return Decision{OK: true} }

func refuse(r Reason) Decision { return Decision{Reason: &r} }

// ============================================================================
// Consumption tally
// ============================================================================

// Opts tune a consumption or availability query.
type Opts struct {
	// ExcludeComboID leaves one combo's own cart presence out of the
	// tally. Set to the combo under evaluation so that incrementing an
	// already-present combo does not double-book its own consumption.
	ExcludeComboID string
}

// Consumption returns how much of a product's base-unit stock the cart
// already pledges.
//
// # Description
//
// The single tally both availability paths share. It sums:
//
//   - product lines matching the id, at count times unitsPerPiece
//   - combo lines whose offer contains the product, at combo count
//     times the entry's per-combo count times unitsPerPiece
//
// Combo lines whose offer is no longer in the snapshot contribute
// nothing; their stock truth is gone and the next merge will surface
// that to the user.
func Consumption(productID string, lines []cart.Line, snap *catalog.Snapshot, opts Opts) float64 {
	product := snap.ProductByID(productID)
	if product == nil {
		return 0
	}
	perPiece := product.UnitsPerPiece()

	total := 0.0
	for _, line := range lines {
		switch line.Kind {
		case cart.KindProduct:
			if line.ID == productID {
				total += float64(line.Count) * perPiece
			}
		case cart.KindCombo:
			if line.ID == opts.ExcludeComboID {
				continue
			}
			combo := snap.ComboByID(line.ID)
			if combo == nil {
				continue
			}
			for _, entry := range combo.Entries {
				if entry.ProductID == productID {
					total += float64(line.Count) * float64(entry.Count) * perPiece
				}
			}
		}
	}
	return total
}

// ============================================================================
// Availability
// ============================================================================

// CanAddProduct reports whether the cart can hold n pieces of a simple
// product.
//
// n is the desired total count for the product's own line, not an
// increment. Stock pledged by combos containing the product still
// counts against it.
func CanAddProduct(p *catalog.Product, n int, lines []cart.Line, snap *catalog.Snapshot) Decision {
	if !p.IsActive {
		return refuse(Reason{Code: ReasonInactive, ProductID: p.ID})
	}
	if !p.Available() {
		return refuse(Reason{Code: ReasonUnavailable, ProductID: p.ID})
	}

	perPiece := p.UnitsPerPiece()
	existing := productLineCount(p.ID, lines)
	pledged := Consumption(p.ID, lines, snap, Opts{})

	// The line's own pledge is replaced by the desired total.
	required := pledged - float64(existing)*perPiece + float64(n)*perPiece
	if p.Inventory.CurrentStock < required {
		return refuse(Reason{
			Code:      ReasonInsufficientStock,
			ProductID: p.ID,
			Required:  float64(n) * perPiece,
			Available: p.Inventory.CurrentStock - (pledged - float64(existing)*perPiece),
			Unit:      BaseUnit(p),
		})
	}
	return allow()
}

// CanAddCombo reports whether the cart can hold n of a combo offer.
//
// Every entry must resolve to an active product whose stock covers
// n times the entry's per-combo pieces after everything else in the
// cart has pledged its share. The combo's own cart presence is excluded
// from the tally so that n means "desired total count".
func CanAddCombo(c *catalog.ComboOffer, n int, lines []cart.Line, snap *catalog.Snapshot) Decision {
	if !c.IsActive {
		return refuse(Reason{Code: ReasonInactive, ProductID: c.ID})
	}

	for _, entry := range c.Entries {
		p := snap.ProductByID(entry.ProductID)
		if p == nil {
			return refuse(Reason{Code: ReasonMissingComponent, ProductID: entry.ProductID})
		}
		if entry.Size != "" && !sizeMatches(entry.Size, p.Quantity) {
			return refuse(Reason{
				Code:      ReasonSizeMismatch,
				ProductID: entry.ProductID,
				Size:      entry.Size,
			})
		}
		if !p.IsActive {
			return refuse(Reason{Code: ReasonInactive, ProductID: entry.ProductID})
		}
		if !p.Available() {
			return refuse(Reason{Code: ReasonUnavailable, ProductID: entry.ProductID})
		}

		perPiece := p.UnitsPerPiece()
		pledged := Consumption(entry.ProductID, lines, snap, Opts{ExcludeComboID: c.ID})
		required := float64(n) * float64(entry.Count) * perPiece
		if p.Inventory.CurrentStock < pledged+required {
			return refuse(Reason{
				Code:      ReasonInsufficientStock,
				ProductID: entry.ProductID,
				Required:  required,
				Available: p.Inventory.CurrentStock - pledged,
				Unit:      BaseUnit(p),
			})
		}
	}
	return allow()
}

// CanAdd resolves an id against the snapshot and asks the matching
// availability question. Unknown ids refuse with MissingComponent.
func CanAdd(id string, n int, lines []cart.Line, snap *catalog.Snapshot) Decision {
	if p := snap.ProductByID(id); p != nil {
		return CanAddProduct(p, n, lines, snap)
	}
	if c := snap.ComboByID(id); c != nil {
		return CanAddCombo(c, n, lines, snap)
	}
	return refuse(Reason{Code: ReasonMissingComponent, ProductID: id})
}

// IsOutOfStock reports whether one more of the item would be refused.
func IsOutOfStock(id string, lines []cart.Line, snap *catalog.Snapshot) bool {
	existing := 0
	if snap.ProductByID(id) != nil {
		existing = productLineCount(id, lines)
	} else {
		existing = comboLineCount(id, lines)
	}
	return !CanAdd(id, existing+1, lines, snap).OK
}

// ============================================================================
// Helpers
// ============================================================================

func productLineCount(id string, lines []cart.Line) int {
	for _, line := range lines {
		if line.Kind == cart.KindProduct && line.ID == id {
			return line.Count
		}
	}
	return 0
}

func comboLineCount(id string, lines []cart.Line) int {
	for _, line := range lines {
		if line.Kind == cart.KindCombo && line.ID == id {
			return line.Count
		}
	}
	return 0
}

// sizeMatches compares size labels ignoring case and surrounding space,
// so "150 ml" pins the "150 ML" variant.
func sizeMatches(pin, label string) bool {
	return strings.EqualFold(strings.TrimSpace(pin), strings.TrimSpace(label))
}
