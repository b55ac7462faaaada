// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
	"github.com/jinterlante1206/KioskLocal/pkg/ux"
)

// runCatalog prints the cafe catalog for the configured theater.
func runCatalog(cmd *cobra.Command, args []string) error {
	if err := requireTheater(); err != nil {
		return err
	}

	rt, err := newRuntime(cfg, runtimeOpts{})
	if err != nil {
		return err
	}
	defer rt.Close()

	var snap *catalog.Snapshot
	err = ux.WithSpinner("Loading the cafe catalog", func() error {
		var loadErr error
		snap, loadErr = rt.Loader.Load(context.Background(), cfg.Theater.ID,
			catalog.LoadOptions{ForceRefresh: forceRefresh})
		return loadErr
	})
	if err != nil {
		ux.Error("Could not load the catalog: " + err.Error())
		return err
	}

	for _, w := range snap.Warnings {
		ux.Warning(w)
	}
	if snap.Empty {
		ux.Muted("The catalog is empty.")
		return nil
	}

	ux.Title(fmt.Sprintf("Catalog for %s", cfg.Theater.ID))

	if len(snap.Products) > 0 {
		ux.Info(fmt.Sprintf("Products (%d)", len(snap.Products)))
		for i := range snap.Products {
			p := &snap.Products[i]
			line := fmt.Sprintf("  %-32s %10s  stock %.0f", p.Name,
				ux.Price(cfg.Pricing.CurrencySymbol, p.EffectivePrice()),
				p.Inventory.CurrentStock)
			if !p.Available() {
				line += "  (unavailable)"
			}
			fmt.Println(line)
		}
	}

	if len(snap.Combos) > 0 {
		ux.Info(fmt.Sprintf("Combos (%d)", len(snap.Combos)))
		for i := range snap.Combos {
			c := &snap.Combos[i]
			fmt.Printf("  %-32s %10s  %d components\n", c.Name,
				ux.Price(cfg.Pricing.CurrencySymbol, c.OfferPrice), len(c.Entries))
		}
	}

	ux.Muted(fmt.Sprintf("%d categories, %d kiosk types, %d banners",
		len(snap.Categories), len(snap.KioskTypes), len(snap.Banners)))
	return nil
}
