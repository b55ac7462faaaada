// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog loads and normalizes the per-theater catalog: products,
// categories, kiosk types, banners, and combo offers.
//
// The loader is the only place that understands the backend's response
// shapes. Everything downstream (stock engine, views) consumes the
// normalized Snapshot and never branches on wire format.
package catalog

import (
	"strings"
	"time"
)

// TaxMode says whether a price already contains its tax.
type TaxMode string

const (
	// TaxInclusive means the tax is extracted from the gross price.
	TaxInclusive TaxMode = "Inclusive"

	// TaxExclusive means the tax is added on top of the price.
	TaxExclusive TaxMode = "Exclusive"
)

// NormalizeTaxMode maps the backend's inconsistent spellings onto TaxMode.
//
// The backend emits "Inclusive", "INCLUDE", "EXCLUDE", "EXCLUSIVE", and
// empty strings depending on which service wrote the row. The per-line
// value is ground truth; an unrecognized or empty value is Exclusive.
func NormalizeTaxMode(s string) TaxMode {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INCLUSIVE", "INCLUDE", "INCL":
		return TaxInclusive
	default:
		return TaxExclusive
	}
}

// Pricing is the nested pricing block on a product.
type Pricing struct {
	BasePrice          float64 `json:"basePrice"`
	SalePrice          float64 `json:"salePrice,omitempty"`
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
	TaxRate            float64 `json:"taxRate"`
	GstType            string  `json:"gstType,omitempty"`
}

// Inventory is the nested stock block on a product.
type Inventory struct {
	// CurrentStock is counted in the product's base unit, not in
	// sellable pieces. A "150 ML" drink with CurrentStock 450 has
	// three pieces left.
	CurrentStock float64 `json:"currentStock"`
	Unit         string  `json:"unit,omitempty"`
}

// Product is one sellable catalog entry for a theater.
type Product struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	IsActive   bool      `json:"isActive"`
	Pricing    Pricing   `json:"pricing"`
	Inventory  Inventory `json:"inventory"`

	// Quantity is the free-form size label shown to the customer,
	// e.g. "150 ML" or "LARGE".
	Quantity string `json:"quantity,omitempty"`

	// NoQty is how much base-unit stock one sold piece consumes.
	// Zero or absent means 1.
	NoQty float64 `json:"noQty,omitempty"`

	// Unit fields, in derivation priority order (see stock.BaseUnit).
	Unit          string `json:"unit,omitempty"`
	QuantityUnit  string `json:"quantityUnit,omitempty"`
	UnitOfMeasure string `json:"unitOfMeasure,omitempty"`

	Images       []string `json:"images,omitempty"`
	CategoryID   string   `json:"categoryId,omitempty"`
	KioskTypeID  string   `json:"kioskTypeId,omitempty"`
	IsVegetarian bool     `json:"isVeg,omitempty"`

	// IsAvailable is a pointer because the backend omits it for rows
	// written before the flag existed; absent means available.
	IsAvailable *bool `json:"isAvailable,omitempty"`
}

// Available reports the effective availability flag.
func (p *Product) Available() bool {
	return p.IsAvailable == nil || *p.IsAvailable
}

// EffectivePrice is the price a new cart line captures: sale price when
// one is set, base price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.Pricing.SalePrice > 0 && p.Pricing.SalePrice < p.Pricing.BasePrice {
		return p.Pricing.SalePrice
	}
	return p.Pricing.BasePrice
}

// UnitsPerPiece returns NoQty with the documented default of 1.
func (p *Product) UnitsPerPiece() float64 {
	if p.NoQty > 0 {
		return p.NoQty
	}
	return 1
}

// Category classifies products for display.
type Category struct {
	ID       string `json:"_id"`
	Name     string `json:"categoryName"`
	IsActive bool   `json:"isActive"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// KioskType is a top-level menu partition shown as a sidebar tab.
type KioskType struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Banner is a promotional image shown above the menu.
type Banner struct {
	ID        string `json:"_id"`
	ImageURL  string `json:"imageUrl"`
	IsActive  bool   `json:"isActive"`
	SortOrder int    `json:"sortOrder"`
}

// ComboEntry is one component of a combo offer.
type ComboEntry struct {
	ProductID string `json:"productId"`

	// Count is how many pieces of the product the combo contains.
	Count int `json:"quantity"`

	// Size optionally pins which variant of the product is meant.
	// Empty means any variant with a matching id.
	Size string `json:"productQuantity,omitempty"`
}

// ComboOffer bundles products at a fixed offer price. A combo has no
// stock of its own; availability derives from its entries.
type ComboOffer struct {
	ID                 string       `json:"_id"`
	Name               string       `json:"name"`
	Description        string       `json:"description,omitempty"`
	OfferPrice         float64      `json:"offerPrice"`
	DiscountPercentage float64      `json:"discountPercentage,omitempty"`
	GstTaxRate         float64      `json:"gstTaxRate"`
	GstType            string       `json:"gstType,omitempty"`
	ImageURL           string       `json:"imageUrl,omitempty"`
	IsActive           bool         `json:"isActive"`
	Entries            []ComboEntry `json:"products"`
}

// Snapshot is an immutable in-memory bundle of one theater's catalog at
// one instant. Lists hold active entries only; combo entries are kept
// verbatim for the stock engine.
type Snapshot struct {
	TheaterID  string
	Products   []Product
	Categories []Category
	KioskTypes []KioskType
	Banners    []Banner
	Combos     []ComboOffer

	// Warnings records per-list failures and unrecognized shapes.
	// A snapshot with warnings still renders.
	Warnings []string

	// Empty is set when no products loaded at all. Observable but
	// not fatal.
	Empty bool

	LoadedAt time.Time
}

// ProductByID returns the product with the given id, or nil.
func (s *Snapshot) ProductByID(id string) *Product {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i]
		}
	}
	return nil
}

// ComboByID returns the combo with the given id, or nil.
func (s *Snapshot) ComboByID(id string) *ComboOffer {
	for i := range s.Combos {
		if s.Combos[i].ID == id {
			return &s.Combos[i]
		}
	}
	return nil
}

// Tab is one sidebar filter tab.
type Tab struct {
	ID   string
	Name string
}

// Synthetic tab ids. They never collide with backend ids, which are
// Mongo object ids.
const (
	TabAll   = "__all__"
	TabCombo = "__combo__"
)

// Tabs returns the sidebar tabs: "All", one per active kiosk type, and
// "Combo" when the theater has combo offers.
func (s *Snapshot) Tabs() []Tab {
	tabs := []Tab{{ID: TabAll, Name: "All"}}
	for _, kt := range s.KioskTypes {
		tabs = append(tabs, Tab{ID: kt.ID, Name: kt.Name})
	}
	if len(s.Combos) > 0 {
		tabs = append(tabs, Tab{ID: TabCombo, Name: "Combo"})
	}
	return tabs
}
