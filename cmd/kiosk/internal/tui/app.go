// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tui implements the kiosk's interactive screens using bubbletea.
//
// # Description
//
// Three screens share one root model: the menu (browse and add), the
// cart (review and edit), and payment (the checkout state machine's
// face). Views render domain state; they own none of it. Cart
// mutations go through the cart store, availability questions go to
// the stock engine, and checkout progress arrives as messages from the
// order package.
//
// # Thread Safety
//
// TUI components are designed for single-threaded use within the
// bubbletea event loop. External updates (cart observers, bus events,
// checkout transitions) are funneled through one channel and re-enter
// the loop as messages.
package tui

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/cart"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/events"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/order"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/pricing"
)

// =============================================================================
// Screens
// =============================================================================

// Screen identifies which view owns the display.
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenCart
	ScreenPayment
)

// =============================================================================
// Messages
// =============================================================================

// CatalogLoadedMsg carries a fresh snapshot into the loop.
type CatalogLoadedMsg struct {
	Snapshot *catalog.Snapshot
}

// CatalogErrMsg reports a failed load.
type CatalogErrMsg struct {
	Err error
}

// CartChangedMsg mirrors a cart store mutation.
type CartChangedMsg struct {
	Snapshot cart.Snapshot
}

// CheckoutMsg mirrors a checkout state transition.
type CheckoutMsg struct {
	State order.CheckoutState
}

// BusEventMsg mirrors an application event; stockUpdated triggers a
// forced reload.
type BusEventMsg struct {
	Event events.Event
}

// =============================================================================
// Deps and Model
// =============================================================================

// Deps are the domain collaborators the TUI renders.
type Deps struct {
	Loader    *catalog.Loader
	Cart      *cart.Store
	Checkout  *order.Checkout
	Bus       *events.Bus
	Policy    pricing.Policy
	TheaterID string
	Theater   string
	Logger    *slog.Logger
}

// Model is the root bubbletea model.
type Model struct {
	deps   Deps
	screen Screen
	width  int
	height int

	menu    MenuModel
	cartUI  CartModel
	payment PaymentModel

	// updates funnels external events into the loop.
	updates chan tea.Msg

	loadErr  error
	quitting bool
}

// NewModel wires the root model and its external subscriptions.
//
// The returned cleanup function unsubscribes the observers; call it
// after the program exits.
func NewModel(deps Deps) (Model, func()) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	updates := make(chan tea.Msg, 32)

	unsubCart := deps.Cart.Subscribe(func(snap cart.Snapshot) {
		select {
		case updates <- CartChangedMsg{Snapshot: snap}:
		default:
		}
	})
	deps.Checkout.OnChange(func(state order.CheckoutState) {
		select {
		case updates <- CheckoutMsg{State: state}:
		default:
		}
	})
	var unsubBus func()
	if deps.Bus != nil {
		unsubBus = deps.Bus.Subscribe(func(ev events.Event) {
			select {
			case updates <- BusEventMsg{Event: ev}:
			default:
			}
		})
	}

	m := Model{
		deps:    deps,
		screen:  ScreenMenu,
		menu:    NewMenuModel(deps),
		cartUI:  NewCartModel(deps),
		payment: NewPaymentModel(deps),
		updates: updates,
	}
	cleanup := func() {
		unsubCart()
		if unsubBus != nil {
			unsubBus()
		}
	}
	return m, cleanup
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCatalog(false),
		m.waitForUpdate(),
		m.payment.spinner.Tick,
	)
}

// loadCatalog fetches the snapshot off the event loop.
func (m Model) loadCatalog(force bool) tea.Cmd {
	loader := m.deps.Loader
	theaterID := m.deps.TheaterID
	return func() tea.Msg {
		snap, err := loader.Load(context.Background(), theaterID,
			catalog.LoadOptions{ForceRefresh: force})
		if err != nil {
			return CatalogErrMsg{Err: err}
		}
		return CatalogLoadedMsg{Snapshot: snap}
	}
}

// waitForUpdate re-arms the external update pump.
func (m Model) waitForUpdate() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		return <-ch
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.resize(msg.Width, msg.Height)
		m.cartUI.resize(msg.Width, msg.Height)

	case CatalogLoadedMsg:
		m.loadErr = nil
		m.menu.setSnapshot(msg.Snapshot)
		m.cartUI.setSnapshot(msg.Snapshot)

	case CatalogErrMsg:
		m.loadErr = msg.Err

	case CartChangedMsg:
		m.menu.setCart(msg.Snapshot)
		m.cartUI.setCart(msg.Snapshot)

	case CheckoutMsg:
		m.payment.setState(msg.State)
		switch msg.State {
		case order.StateEditing:
			m.screen = ScreenMenu
		case order.StateReviewing, order.StateProcessing,
			order.StateSubmitting, order.StateConfirmed:
			m.screen = ScreenPayment
		}
		return m, m.waitForUpdate()

	case BusEventMsg:
		var cmd tea.Cmd
		if msg.Event.Type == events.StockUpdated {
			cmd = m.loadCatalog(true)
		}
		return m, tea.Batch(cmd, m.waitForUpdate())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.payment, cmd = m.payment.Update(msg)
	if _, isExternal := msg.(CartChangedMsg); isExternal {
		return m, tea.Batch(cmd, m.waitForUpdate())
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenMenu:
		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "c":
			m.screen = ScreenCart
			return m, nil
		case "r":
			return m, m.loadCatalog(true)
		}
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd

	case ScreenCart:
		switch msg.String() {
		case "esc", "q":
			m.screen = ScreenMenu
			return m, nil
		case "p":
			if err := m.deps.Checkout.Proceed(); err == nil {
				m.screen = ScreenPayment
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.cartUI, cmd = m.cartUI.Update(msg)
		return m, cmd

	case ScreenPayment:
		var cmd tea.Cmd
		m.payment, cmd = m.payment.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return "Thanks for visiting!\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.screen {
	case ScreenMenu:
		if m.loadErr != nil {
			b.WriteString(errStyle.Render("Could not load the menu: " + m.loadErr.Error()))
			b.WriteString("\n" + footStyle.Render("r retry · q quit"))
			break
		}
		b.WriteString(m.menu.View())
	case ScreenCart:
		b.WriteString(m.cartUI.View())
	case ScreenPayment:
		b.WriteString(m.payment.View())
	}
	return b.String()
}

func (m Model) renderHeader() string {
	name := m.deps.Theater
	if name == "" {
		name = "Concessions"
	}
	badge := ""
	if n := m.cartUI.cart.TotalItems(); n > 0 {
		badge = badgeStyle.Render(strconv.Itoa(n))
	}
	return headerStyle.Render(" "+name+" ") + " " + badge
}
