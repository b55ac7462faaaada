// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/cart"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
)

// testSnapshot builds a cafe with a 600 ML drink (5 pieces of stock),
// a countable snack, and a combo holding two drinks.
func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		TheaterID: "t1",
		Products: []catalog.Product{
			{
				ID:       "cola",
				Name:     "Cola",
				IsActive: true,
				Quantity: "600 ML",
				NoQty:    600,
				Inventory: catalog.Inventory{
					CurrentStock: 3000,
					Unit:         "ML",
				},
			},
			{
				ID:       "samosa",
				Name:     "Samosa",
				IsActive: true,
				Inventory: catalog.Inventory{
					CurrentStock: 3,
					Unit:         "Nos",
				},
			},
		},
		Combos: []catalog.ComboOffer{
			{
				ID:       "movie-night",
				Name:     "Movie Night",
				IsActive: true,
				Entries: []catalog.ComboEntry{
					{ProductID: "cola", Count: 2, Size: "600 ML"},
				},
			},
		},
	}
}

func productLine(id string, count int) cart.Line {
	return cart.Line{ID: id, Kind: cart.KindProduct, Count: count}
}

func comboLine(id string, count int) cart.Line {
	return cart.Line{ID: id, Kind: cart.KindCombo, Count: count}
}

func TestConsumption_SharedTally(t *testing.T) {
	snap := testSnapshot()
	lines := []cart.Line{
		productLine("cola", 1),      // 600 ML
		comboLine("movie-night", 2), // 2 × 2 × 600 = 2400 ML
	}

	assert.Equal(t, 3000.0, Consumption("cola", lines, snap, Opts{}))

	// Excluding the combo under evaluation leaves only the product line.
	assert.Equal(t, 600.0,
		Consumption("cola", lines, snap, Opts{ExcludeComboID: "movie-night"}))
}

func TestConsumption_UnknownEntriesContributeNothing(t *testing.T) {
	snap := testSnapshot()
	lines := []cart.Line{comboLine("gone-combo", 3)}

	assert.Zero(t, Consumption("cola", lines, snap, Opts{}))
	assert.Zero(t, Consumption("missing-product", lines, snap, Opts{}))
}

func TestCanAddProduct_CombosPledgeAgainstIt(t *testing.T) {
	snap := testSnapshot()
	lines := []cart.Line{comboLine("movie-night", 2)} // pledges 2400 ML

	p := snap.ProductByID("cola")

	// One more piece fits exactly: 2400 + 600 = 3000.
	assert.True(t, CanAddProduct(p, 1, lines, snap).OK)

	// Two pieces would need 3600.
	d := CanAddProduct(p, 2, lines, snap)
	require.False(t, d.OK)
	require.NotNil(t, d.Reason)
	assert.Equal(t, ReasonInsufficientStock, d.Reason.Code)
	assert.Equal(t, 1200.0, d.Reason.Required)
	assert.Equal(t, 600.0, d.Reason.Available)
	assert.Equal(t, "ML", d.Reason.Unit)
}

// n is the desired total, so raising an existing line's count replaces
// its own pledge instead of stacking on it.
func TestCanAddProduct_DesiredTotalReplacesOwnPledge(t *testing.T) {
	snap := testSnapshot()
	lines := []cart.Line{productLine("cola", 4)} // 2400 ML pledged

	p := snap.ProductByID("cola")
	assert.True(t, CanAddProduct(p, 5, lines, snap).OK)
	assert.False(t, CanAddProduct(p, 6, lines, snap).OK)
}

func TestCanAddProduct_Flags(t *testing.T) {
	snap := testSnapshot()
	p := snap.ProductByID("cola")

	p.IsActive = false
	assert.Equal(t, ReasonInactive, CanAddProduct(p, 1, nil, snap).Reason.Code)

	p.IsActive = true
	unavailable := false
	p.IsAvailable = &unavailable
	assert.Equal(t, ReasonUnavailable, CanAddProduct(p, 1, nil, snap).Reason.Code)
}

func TestCanAddCombo_ExcludesItsOwnPresence(t *testing.T) {
	snap := testSnapshot()
	c := snap.ComboByID("movie-night")
	lines := []cart.Line{comboLine("movie-night", 1)}

	// Desired totals, not increments: 2 combos need 2400 of 3000 ML.
	assert.True(t, CanAddCombo(c, 2, lines, snap).OK)

	d := CanAddCombo(c, 3, lines, snap)
	require.False(t, d.OK)
	assert.Equal(t, ReasonInsufficientStock, d.Reason.Code)
	assert.Equal(t, 3600.0, d.Reason.Required)
	assert.Equal(t, 3000.0, d.Reason.Available)
}

func TestCanAddCombo_ProductLinesPledgeAgainstIt(t *testing.T) {
	snap := testSnapshot()
	c := snap.ComboByID("movie-night")
	lines := []cart.Line{productLine("cola", 3)} // 1800 ML pledged

	assert.True(t, CanAddCombo(c, 1, lines, snap).OK)
	assert.False(t, CanAddCombo(c, 2, lines, snap).OK)
}

func TestCanAddCombo_MissingComponent(t *testing.T) {
	snap := testSnapshot()
	snap.Combos = append(snap.Combos, catalog.ComboOffer{
		ID: "broken", IsActive: true,
		Entries: []catalog.ComboEntry{{ProductID: "gone", Count: 1}},
	})

	d := CanAddCombo(snap.ComboByID("broken"), 1, nil, snap)
	require.False(t, d.OK)
	assert.Equal(t, ReasonMissingComponent, d.Reason.Code)
	assert.Equal(t, "gone", d.Reason.ProductID)
}

func TestCanAddCombo_SizePin(t *testing.T) {
	snap := testSnapshot()
	c := snap.ComboByID("movie-night")

	// Case and whitespace do not break the pin.
	c.Entries[0].Size = "  600 ml "
	assert.True(t, CanAddCombo(c, 1, nil, snap).OK)

	// A different size refuses.
	c.Entries[0].Size = "150 ML"
	d := CanAddCombo(c, 1, nil, snap)
	require.False(t, d.OK)
	assert.Equal(t, ReasonSizeMismatch, d.Reason.Code)
	assert.Equal(t, "150 ML", d.Reason.Size)
}

func TestCanAddCombo_InactiveComponent(t *testing.T) {
	snap := testSnapshot()
	snap.ProductByID("cola").IsActive = false

	d := CanAddCombo(snap.ComboByID("movie-night"), 1, nil, snap)
	require.False(t, d.OK)
	assert.Equal(t, ReasonInactive, d.Reason.Code)
	assert.Equal(t, "cola", d.Reason.ProductID)
}

func TestCanAdd_ResolvesKind(t *testing.T) {
	snap := testSnapshot()

	assert.True(t, CanAdd("cola", 1, nil, snap).OK)
	assert.True(t, CanAdd("movie-night", 1, nil, snap).OK)

	d := CanAdd("nothing", 1, nil, snap)
	require.False(t, d.OK)
	assert.Equal(t, ReasonMissingComponent, d.Reason.Code)
}

// Stock never tightens when the cart shrinks: a legal add stays legal
// after any line pledging the same product is decremented or removed.
func TestCanAdd_HoldsAfterCartShrinks(t *testing.T) {
	snap := testSnapshot()
	base := []cart.Line{
		productLine("cola", 1),      // 600 ML
		comboLine("movie-night", 1), // 1200 ML
	}
	// Raising the cola line to 3 fills stock exactly: 1800 + 1200 = 3000.
	require.True(t, CanAdd("cola", 3, base, snap).OK)

	shrunk := map[string][]cart.Line{
		"product line decremented": {productLine("cola", 0), comboLine("movie-night", 1)},
		"product line removed":     {comboLine("movie-night", 1)},
		"combo line decremented":   {productLine("cola", 1), comboLine("movie-night", 0)},
		"combo line removed":       {productLine("cola", 1)},
		"cart emptied":             nil,
	}
	for name, lines := range shrunk {
		assert.True(t, CanAdd("cola", 3, lines, snap).OK, name)
	}

	// The same holds for a combo add gated by a product line's pledge.
	require.True(t, CanAdd("movie-night", 1, []cart.Line{productLine("cola", 3)}, snap).OK)
	assert.True(t, CanAdd("movie-night", 1, []cart.Line{productLine("cola", 2)}, snap).OK)
	assert.True(t, CanAdd("movie-night", 1, nil, snap).OK)
}

func TestIsOutOfStock(t *testing.T) {
	snap := testSnapshot()

	// Samosa has 3 countable pieces.
	lines := []cart.Line{productLine("samosa", 2)}
	assert.False(t, IsOutOfStock("samosa", lines, snap))

	lines[0].Count = 3
	assert.True(t, IsOutOfStock("samosa", lines, snap))

	// Combo stock derives from its components.
	lines = []cart.Line{comboLine("movie-night", 2)}
	assert.True(t, IsOutOfStock("movie-night", lines, snap))
	assert.False(t, IsOutOfStock("movie-night", []cart.Line{comboLine("movie-night", 1)}, snap))
}
