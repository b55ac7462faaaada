// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/order"
	"github.com/jinterlante1206/KioskLocal/pkg/ux"
)

// runOrderFind prints one order.
func runOrderFind(cmd *cobra.Command, args []string) error {
	if err := requireTheater(); err != nil {
		return err
	}

	rt, err := newRuntime(cfg, runtimeOpts{})
	if err != nil {
		return err
	}
	defer rt.Close()

	o, err := rt.Orders.FindOrder(context.Background(), cfg.Theater.ID, args[0])
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			ux.Warning("No order matches " + args[0])
			return nil
		}
		return err
	}
	printOrder(o)
	return nil
}

// runOrderCancel cancels a whole order after confirmation.
func runOrderCancel(cmd *cobra.Command, args []string) error {
	if err := requireTheater(); err != nil {
		return err
	}

	rt, err := newRuntime(cfg, runtimeOpts{})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	o, err := rt.Orders.FindOrder(ctx, cfg.Theater.ID, args[0])
	if err != nil {
		return err
	}
	if !o.Mutable() {
		ux.Warning(fmt.Sprintf("Order %s is %s and can no longer be cancelled.",
			o.OrderNumber, o.Status))
		return nil
	}

	if !assumeYes {
		ok, err := confirm(fmt.Sprintf("Cancel order %s (%d lines, %s%.2f)?",
			o.OrderNumber, len(o.Items), cfg.Pricing.CurrencySymbol, o.Total))
		if err != nil {
			return err
		}
		if !ok {
			ux.Muted("Left the order alone.")
			return nil
		}
	}

	if err := rt.Orders.CancelOrder(ctx, o); err != nil {
		return err
	}
	ux.Success(fmt.Sprintf("Order %s cancelled; its stock is back on the shelf.", o.OrderNumber))
	return nil
}

// runOrderCancelLine cancels one line of an order.
func runOrderCancelLine(cmd *cobra.Command, args []string) error {
	if err := requireTheater(); err != nil {
		return err
	}

	rt, err := newRuntime(cfg, runtimeOpts{})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	o, err := rt.Orders.FindOrder(ctx, cfg.Theater.ID, args[0])
	if err != nil {
		return err
	}
	lineID := args[1]

	label := lineID
	if item := o.ItemByLine(lineID); item != nil {
		label = fmt.Sprintf("%s ×%d", item.Name, item.Count)
	}

	if !assumeYes {
		ok, err := confirm(fmt.Sprintf("Cancel %s from order %s?", label, o.OrderNumber))
		if err != nil {
			return err
		}
		if !ok {
			ux.Muted("Left the order alone.")
			return nil
		}
	}

	updated, err := rt.Orders.CancelLine(ctx, o, lineID)
	if err != nil {
		return err
	}
	ux.Success("Line cancelled.")
	if updated != nil {
		printOrder(updated)
	}
	return nil
}

// confirm asks a yes/no question on the terminal.
func confirm(title string) (bool, error) {
	ok := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Cancel it").
			Negative("Keep it").
			Value(&ok),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func printOrder(o *order.Order) {
	var b strings.Builder
	for _, item := range o.Items {
		label := item.Name
		if item.Size != "" {
			label += " (" + item.Size + ")"
		}
		b.WriteString(fmt.Sprintf("%-36s ×%-3d %10s\n", label, item.Count,
			ux.Price(cfg.Pricing.CurrencySymbol, item.UnitPrice)))
	}
	b.WriteString(fmt.Sprintf("\nStatus: %s\n", o.Status))
	ux.Box(fmt.Sprintf("Order %s", o.OrderNumber), strings.TrimRight(b.String(), "\n"))
	ux.Summary(cfg.Pricing.CurrencySymbol, o.Subtotal, o.Tax, o.Total)
}
