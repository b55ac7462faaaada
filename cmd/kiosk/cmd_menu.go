// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/order"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/tui"
)

// runMenu starts the full-screen ordering terminal.
func runMenu(cmd *cobra.Command, args []string) error {
	if err := requireTheater(); err != nil {
		return err
	}

	rt, err := newRuntime(cfg, runtimeOpts{quiet: true, watch: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	cartStore, err := rt.OpenCart(cfg.Theater.ID)
	if err != nil {
		return fmt.Errorf("open cart: %w", err)
	}

	checkout := order.NewCheckout(rt.Orders, cartStore, rt.Policy, rt.Logger.Slog())

	model, cleanup := tui.NewModel(tui.Deps{
		Loader:    rt.Loader,
		Cart:      cartStore,
		Checkout:  checkout,
		Bus:       rt.Bus,
		Policy:    rt.Policy,
		TheaterID: cfg.Theater.ID,
		Theater:   cfg.Theater.Name,
		Logger:    rt.Logger.Slog(),
	})
	defer cleanup()

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal session failed: %w", err)
	}
	return nil
}
