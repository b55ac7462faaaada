// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/config"
)

// --- Global Command Variables ---
var (
	cfg config.KioskConfig

	configPath   string
	theaterFlag  string
	forceRefresh bool
	assumeYes    bool

	rootCmd = &cobra.Command{
		Use:   "kiosk",
		Short: "A self-service concession terminal for theater cafes",
		Long: `kiosk runs the concession ordering terminal: browse the cafe
menu, build a cart, and place orders against the theater backend.
The cart and the catalog cache live in a local database so a power
cut never loses a shopper's selections.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				loaded, err := config.LoadFrom(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			} else {
				if err := config.Load(); err != nil {
					return err
				}
				cfg = config.Global
			}
			if theaterFlag != "" {
				cfg.Theater.ID = theaterFlag
			}
			return nil
		},
	}

	// --- Shopper-facing ---
	menuCmd = &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive ordering screen",
		RunE:  runMenu, // Defined in cmd_menu.go
	}

	catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Print the current cafe catalog",
		RunE:  runCatalog, // Defined in cmd_catalog.go
	}

	// --- Staff order management ---
	orderCmd = &cobra.Command{
		Use:   "order",
		Short: "Look up and manage placed orders",
	}
	orderFindCmd = &cobra.Command{
		Use:   "find [order id or number]",
		Short: "Show an order by its id or order number",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrderFind, // Defined in cmd_orders.go
	}
	orderCancelCmd = &cobra.Command{
		Use:   "cancel [order id or number]",
		Short: "Cancel a whole order and restore its stock",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrderCancel, // Defined in cmd_orders.go
	}
	orderCancelLineCmd = &cobra.Command{
		Use:   "cancel-line [order id or number] [line id]",
		Short: "Cancel a single line of an order",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrderCancelLine, // Defined in cmd_orders.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to kiosk.yaml (default ~/.kiosk/kiosk.yaml)")
	rootCmd.PersistentFlags().StringVar(&theaterFlag, "theater", "",
		"theater id override")

	catalogCmd.Flags().BoolVar(&forceRefresh, "refresh", false,
		"bypass every cache between here and the database")

	orderCancelCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false,
		"skip the confirmation prompt")
	orderCancelLineCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false,
		"skip the confirmation prompt")

	orderCmd.AddCommand(orderFindCmd, orderCancelCmd, orderCancelLineCmd)
	rootCmd.AddCommand(menuCmd, catalogCmd, orderCmd)
}

// requireTheater gives the operator a pointed message instead of a
// validation stack when no theater is configured yet.
func requireTheater() error {
	if cfg.Theater.ID == "" {
		return fmt.Errorf("no theater configured: set theater.id in the config or pass --theater")
	}
	return nil
}
