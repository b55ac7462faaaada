// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package posmock

// SeedDemo installs a small concession catalog for one theater:
// a bottled drink with measured stock, a snack sold by the piece, a
// bucket sold in multi-unit pieces, and a combo spanning them.
func SeedDemo(s *Store, theaterID string) {
	avail := true
	s.SetTheater(theaterID, TheaterData{
		Products: []Product{
			{
				ID:       "prod-cola",
				Name:     "Cola",
				IsActive: true,
				Pricing:  Pricing{BasePrice: 120, TaxRate: 0.05, GstType: "inclusive"},
				Inventory: Inventory{
					CurrentStock: 3000,
					Unit:         "ML",
				},
				Quantity:    "600 ML",
				NoQty:       600,
				KioskTypeID: "kt-drinks",
				CategoryID:  "cat-beverages",
				IsAvailable: &avail,
				Images:      []string{"/static/cola.png"},
			},
			{
				ID:       "prod-samosa",
				Name:     "Samosa",
				IsActive: true,
				Pricing:  Pricing{BasePrice: 60, SalePrice: 50, TaxRate: 0.05, GstType: "exclusive"},
				Inventory: Inventory{
					CurrentStock: 40,
					Unit:         "Nos",
				},
				KioskTypeID: "kt-snacks",
				CategoryID:  "cat-snacks",
				IsAvailable: &avail,
			},
			{
				ID:       "prod-popcorn",
				Name:     "Popcorn Bucket",
				IsActive: true,
				Pricing:  Pricing{BasePrice: 250, TaxRate: 0.05, GstType: "inclusive"},
				Inventory: Inventory{
					CurrentStock: 5000,
					Unit:         "G",
				},
				Quantity:    "500 G",
				NoQty:       500,
				KioskTypeID: "kt-snacks",
				CategoryID:  "cat-snacks",
				IsAvailable: &avail,
			},
		},
		Categories: []Category{
			{ID: "cat-beverages", Name: "Beverages", IsActive: true},
			{ID: "cat-snacks", Name: "Snacks", IsActive: true},
		},
		KioskTypes: []KioskType{
			{ID: "kt-drinks", Name: "Drinks", IsActive: true},
			{ID: "kt-snacks", Name: "Snacks", IsActive: true},
		},
		Banners: []Banner{
			{ID: "ban-1", ImageURL: "/static/matinee.png", IsActive: true, SortOrder: 2},
			{ID: "ban-2", ImageURL: "/static/combo-deal.png", IsActive: true, SortOrder: 1},
		},
		Combos: []ComboOffer{
			{
				ID:         "combo-movie-night",
				Name:       "Movie Night",
				OfferPrice: 330,
				GstTaxRate: 0.05,
				GstType:    "inclusive",
				IsActive:   true,
				Entries: []ComboEntry{
					{ProductID: "prod-popcorn", Count: 1},
					{ProductID: "prod-cola", Count: 2, Size: "600 ML"},
				},
			},
		},
	})
}
