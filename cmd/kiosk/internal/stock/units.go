// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stock answers "can N more of this item go in the cart?" for
// simple products and combo offers.
//
// All functions are pure: they read a catalog snapshot and the current
// cart lines and never touch the network or the store. The same
// consumption tally backs both the product path and the combo path, so
// a combo can never book stock a product line already holds.
package stock

import (
	"regexp"
	"strings"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
)

// DefaultUnit is the countable fallback when no unit can be derived.
const DefaultUnit = "Nos"

// trailingUnit matches a unit token at the end of a size label such as
// "150 ML" or "1.5L".
var trailingUnit = regexp.MustCompile(`(?i)(ML|KG|NOS|G|L)\s*$`)

// BaseUnit derives the unit a product's stock is counted in.
//
// # Description
//
// Priority order, first non-empty wins:
//
//  1. the explicit unit field
//  2. the inventory block's unit
//  3. the quantityUnit field
//  4. a unit token extracted from the trailing end of the size label
//  5. the declared unitOfMeasure
//
// Falls back to "Nos" (countable pieces).
func BaseUnit(p *catalog.Product) string {
	for _, candidate := range []string{p.Unit, p.Inventory.Unit, p.QuantityUnit} {
		if u := strings.TrimSpace(candidate); u != "" {
			return canonicalUnit(u)
		}
	}
	if m := trailingUnit.FindString(strings.TrimSpace(p.Quantity)); m != "" {
		return canonicalUnit(m)
	}
	if u := strings.TrimSpace(p.UnitOfMeasure); u != "" {
		return canonicalUnit(u)
	}
	return DefaultUnit
}

// canonicalUnit maps spelling variants onto the canonical unit strings.
// Unknown units pass through trimmed; free-form units are legal.
func canonicalUnit(u string) string {
	switch strings.ToLower(strings.TrimSpace(u)) {
	case "ml", "millilitre", "milliliter":
		return "ML"
	case "l", "ltr", "liter", "litre":
		return "L"
	case "g", "gm", "gram", "grams":
		return "g"
	case "kg", "kilogram", "kilograms":
		return "kg"
	case "nos", "no", "piece", "pieces", "pcs", "unit", "units":
		return DefaultUnit
	default:
		return strings.TrimSpace(u)
	}
}
