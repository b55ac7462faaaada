// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pricing turns a cart snapshot into display totals.
//
// The engine is pure. Same inputs give same outputs, there is no I/O,
// and aggregates are computed from rounded per-line values so the
// footer total always equals the sum of the printed lines.
package pricing

import (
	"math"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/cart"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
)

// Policy carries the theater-level pricing defaults.
type Policy struct {
	// FallbackTaxRate applies to lines that carry no rate of their own.
	// A fraction, e.g. 0.05 for 5%.
	FallbackTaxRate float64

	// CurrencySymbol is prefixed when totals are rendered.
	CurrencySymbol string
}

// LineTotal is one priced cart line.
type LineTotal struct {
	ID        string
	Name      string
	Size      string
	Count     int
	UnitPrice float64

	// Subtotal is the rounded gross for the line. Inclusive-tax lines
	// contribute their full gross; their tax is inside it.
	Subtotal float64

	// Tax is the rounded tax attributable to the line.
	Tax float64

	Mode catalog.TaxMode
}

// Totals is the priced cart.
type Totals struct {
	Currency string
	Lines    []LineTotal

	// Subtotal is the sum of line grosses.
	Subtotal float64

	// Tax is the sum of line taxes, inclusive and exclusive alike.
	Tax float64

	// Total is Subtotal plus only the exclusive taxes; inclusive taxes
	// are already inside their lines' grosses.
	Total float64
}

// Round2 rounds half away from zero to two decimals, the convention
// receipts print in.
func Round2(v float64) float64 {
	return math.Trunc(v*100+math.Copysign(0.5, v)) / 100
}

// Compute prices a cart snapshot.
//
// # Description
//
// Per line, gross is unit price times count. The line's own tax rate
// wins; a line without one uses the policy fallback. Inclusive tax is
// extracted as gross·r/(1+r), exclusive tax is gross·r added on top.
// Every line value is rounded before it enters an aggregate.
func Compute(snap cart.Snapshot, policy Policy) Totals {
	out := Totals{Currency: policy.CurrencySymbol}

	for _, line := range snap.Lines {
		gross := Round2(line.UnitPrice * float64(line.Count))

		rate := line.TaxRate
		if rate == 0 {
			rate = policy.FallbackTaxRate
		}

		var tax float64
		if line.TaxMode == catalog.TaxInclusive {
			tax = Round2(gross * rate / (1 + rate))
		} else {
			tax = Round2(gross * rate)
			out.Total += tax
		}

		out.Lines = append(out.Lines, LineTotal{
			ID:        line.ID,
			Name:      line.Name,
			Size:      line.Size,
			Count:     line.Count,
			UnitPrice: line.UnitPrice,
			Subtotal:  gross,
			Tax:       tax,
			Mode:      line.TaxMode,
		})
		out.Subtotal += gross
		out.Tax += tax
	}

	out.Subtotal = Round2(out.Subtotal)
	out.Tax = Round2(out.Tax)
	out.Total = Round2(out.Total + out.Subtotal)
	return out
}
