// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/cart"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/pricing"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/stock"
)

// CartModel is the review-and-edit screen: the line list with counts
// and the totals footer. Increments go through the same stock gate as
// the menu's add control.
type CartModel struct {
	deps     Deps
	cart     cart.Snapshot
	snapshot *catalog.Snapshot
	cursor   int
	width    int
	height   int
	notice   string
}

// NewCartModel creates the cart screen.
func NewCartModel(deps Deps) CartModel {
	return CartModel{deps: deps, cart: deps.Cart.Snapshot()}
}

func (m *CartModel) resize(w, h int) {
	m.width = w
	m.height = h
}

func (m *CartModel) setSnapshot(snap *catalog.Snapshot) {
	m.snapshot = snap
}

func (m *CartModel) setCart(snap cart.Snapshot) {
	m.cart = snap
	if m.cursor >= len(snap.Lines) && m.cursor > 0 {
		m.cursor = len(snap.Lines) - 1
	}
}

// Update handles cart keys.
func (m CartModel) Update(msg tea.Msg) (CartModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.notice = ""

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.cart.Lines)-1 {
			m.cursor++
		}
	case "+":
		m.incrementCurrent()
	case "-":
		if line := m.current(); line != nil {
			_ = m.deps.Cart.SetCount(line.ID, line.Count-1)
		}
	case "x", "delete", "backspace":
		if line := m.current(); line != nil {
			_ = m.deps.Cart.RemoveItem(line.ID)
		}
	case "X":
		_ = m.deps.Cart.Clear()
	}
	return m, nil
}

// incrementCurrent raises the selected line's count only when the
// stock gate approves the new total against the current snapshot.
func (m *CartModel) incrementCurrent() {
	line := m.current()
	if line == nil {
		return
	}
	if m.snapshot == nil {
		m.notice = "Menu is still loading; try again in a moment."
		return
	}
	decision := stock.CanAdd(line.ID, line.Count+1, m.cart.Lines, m.snapshot)
	if !decision.OK {
		m.notice = refusalText(decision.Reason, m.snapshot)
		return
	}
	_ = m.deps.Cart.SetCount(line.ID, line.Count+1)
}

func (m *CartModel) current() *cart.Line {
	if m.cursor < 0 || m.cursor >= len(m.cart.Lines) {
		return nil
	}
	return &m.cart.Lines[m.cursor]
}

// View renders the lines and the priced footer.
func (m CartModel) View() string {
	if len(m.cart.Lines) == 0 {
		return emptyStyle.Render("Your cart is empty.") + "\n" +
			footStyle.Render("esc back to menu")
	}

	totals := pricing.Compute(m.cart, m.deps.Policy)

	var b strings.Builder
	for i, lt := range totals.Lines {
		row := fmt.Sprintf("%-34s ×%-3d %12s",
			truncate(lineLabel(lt), 34), lt.Count,
			fmt.Sprintf("%s%.2f", totals.Currency, lt.Subtotal))
		if i == m.cursor {
			b.WriteString(rowActiveStyle.Render(row))
		} else {
			b.WriteString(row)
		}
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(strings.Repeat("─", 52)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%-38s %12s\n", "Subtotal",
		fmt.Sprintf("%s%.2f", totals.Currency, totals.Subtotal)))
	b.WriteString(fmt.Sprintf("%-38s %12s\n", "Tax",
		fmt.Sprintf("%s%.2f", totals.Currency, totals.Tax)))
	b.WriteString(rowActiveStyle.Render(fmt.Sprintf("%-38s %12s", "Total",
		fmt.Sprintf("%s%.2f", totals.Currency, totals.Total))))
	b.WriteString("\n\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(footStyle.Render("↑/↓ move · +/- count · x remove · X clear · p pay · esc back"))
	return b.String()
}

func lineLabel(lt pricing.LineTotal) string {
	if lt.Size != "" {
		return lt.Name + " (" + lt.Size + ")"
	}
	return lt.Name
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
