// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
)

// decodeList extracts a JSON array from one of the three envelope shapes
// the backend is known to emit for list endpoints:
//
//  1. {"data": {"<name>": [...]}}
//  2. {"data": [...]}
//  3. {"<name>": [...]}
//
// # Description
//
// The first matching shape wins. When no shape matches, decodeList
// returns (nil, false, nil): the caller treats the list as empty and
// records a warning, but loading succeeds. Malformed JSON is an error.
//
// # Inputs
//
//   - body: Raw response body.
//   - name: The list's field name, e.g. "products".
//
// # Outputs
//
//   - json.RawMessage: The array, or nil when no shape matched.
//   - bool: True when a recognized shape was found.
//   - error: Non-nil only for malformed JSON.
func decodeList(body []byte, name string) (json.RawMessage, bool, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false, fmt.Errorf("decode %s response: %w", name, err)
	}

	if data, ok := envelope["data"]; ok {
		// Shape 2: data is already the array.
		if isArray(data) {
			return data, true, nil
		}
		// Shape 1: data is an object holding the named array.
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(data, &inner); err == nil {
			if arr, ok := inner[name]; ok && isArray(arr) {
				return arr, true, nil
			}
		}
	}

	// Shape 3: the named array at top level.
	if arr, ok := envelope[name]; ok && isArray(arr) {
		return arr, true, nil
	}

	return nil, false, nil
}

// isArray reports whether a raw message is a JSON array.
func isArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// parseProducts decodes and filters the product list. Inactive products
// are dropped at the boundary; nothing downstream re-checks isActive on
// simple products (combos re-check their components, which may go
// inactive between loads).
func parseProducts(arr json.RawMessage) ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(arr, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	active := products[:0]
	for _, p := range products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func parseCategories(arr json.RawMessage) ([]Category, error) {
	var categories []Category
	if err := json.Unmarshal(arr, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func parseKioskTypes(arr json.RawMessage) ([]KioskType, error) {
	var kioskTypes []KioskType
	if err := json.Unmarshal(arr, &kioskTypes); err != nil {
		return nil, fmt.Errorf("decode kiosk types: %w", err)
	}
	active := kioskTypes[:0]
	for _, kt := range kioskTypes {
		if kt.IsActive {
			active = append(active, kt)
		}
	}
	return active, nil
}

// parseBanners decodes, filters, and orders the banner list by
// ascending sort order.
func parseBanners(arr json.RawMessage) ([]Banner, error) {
	var banners []Banner
	if err := json.Unmarshal(arr, &banners); err != nil {
		return nil, fmt.Errorf("decode banners: %w", err)
	}
	active := banners[:0]
	for _, b := range banners {
		if b.IsActive {
			active = append(active, b)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].SortOrder < active[j].SortOrder
	})
	return active, nil
}

// parseCombos decodes and filters the combo list. Entries are preserved
// verbatim; the stock engine needs the original counts and size pins.
// Combos with no entries are dropped — availability of an empty combo
// is undefined and the admin UI should never have saved one.
func parseCombos(arr json.RawMessage) ([]ComboOffer, error) {
	var combos []ComboOffer
	if err := json.Unmarshal(arr, &combos); err != nil {
		return nil, fmt.Errorf("decode combo offers: %w", err)
	}
	active := combos[:0]
	for _, c := range combos {
		if c.IsActive && len(c.Entries) > 0 {
			active = append(active, c)
		}
	}
	return active, nil
}
