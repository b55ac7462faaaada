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

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
)

func TestBaseUnit_PriorityChain(t *testing.T) {
	cases := []struct {
		name string
		p    catalog.Product
		want string
	}{
		{
			name: "explicit unit wins",
			p: catalog.Product{
				Unit:      "ml",
				Inventory: catalog.Inventory{Unit: "KG"},
			},
			want: "ML",
		},
		{
			name: "inventory unit second",
			p: catalog.Product{
				Inventory:    catalog.Inventory{Unit: "gm"},
				QuantityUnit: "L",
			},
			want: "g",
		},
		{
			name: "quantityUnit third",
			p:    catalog.Product{QuantityUnit: "ltr"},
			want: "L",
		},
		{
			name: "size label suffix fourth",
			p:    catalog.Product{Quantity: "150 ML"},
			want: "ML",
		},
		{
			name: "size label without spacing",
			p:    catalog.Product{Quantity: "1.5L"},
			want: "L",
		},
		{
			name: "non-unit size label skipped",
			p: catalog.Product{
				Quantity:      "LARGE",
				UnitOfMeasure: "pieces",
			},
			want: "Nos",
		},
		{
			name: "unitOfMeasure fifth",
			p:    catalog.Product{UnitOfMeasure: "kilogram"},
			want: "kg",
		},
		{
			name: "nothing set falls back to Nos",
			p:    catalog.Product{},
			want: "Nos",
		},
		{
			name: "free-form unit passes through",
			p:    catalog.Product{Unit: " scoops "},
			want: "scoops",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BaseUnit(&tc.p))
		})
	}
}
