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
	"github.com/charmbracelet/lipgloss"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/cart"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/catalog"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/stock"
)

// menuEntry is one row of the menu list: a product or a combo.
type menuEntry struct {
	id    string
	kind  cart.Kind
	name  string
	size  string
	price float64
}

// MenuModel is the browse-and-add screen: kiosk-type tabs in a
// sidebar, banner strip on top, stock-gated add controls.
type MenuModel struct {
	deps Deps

	snapshot *catalog.Snapshot
	cart     cart.Snapshot

	tabs     []catalog.Tab
	tabIndex int
	cursor   int
	entries  []menuEntry

	width  int
	height int
	notice string
}

// NewMenuModel creates the menu screen.
func NewMenuModel(deps Deps) MenuModel {
	return MenuModel{deps: deps, cart: deps.Cart.Snapshot()}
}

func (m *MenuModel) resize(w, h int) {
	m.width = w
	m.height = h
}

func (m *MenuModel) setSnapshot(snap *catalog.Snapshot) {
	m.snapshot = snap
	m.tabs = snap.Tabs()
	if m.tabIndex >= len(m.tabs) {
		m.tabIndex = 0
	}
	m.rebuildEntries()
}

func (m *MenuModel) setCart(snap cart.Snapshot) {
	m.cart = snap
}

// rebuildEntries flattens the active tab into list rows.
func (m *MenuModel) rebuildEntries() {
	m.entries = m.entries[:0]
	if m.snapshot == nil || len(m.tabs) == 0 {
		return
	}
	tab := m.tabs[m.tabIndex]

	if tab.ID == catalog.TabCombo || tab.ID == catalog.TabAll {
		if tab.ID == catalog.TabAll {
			for _, p := range m.snapshot.Products {
				m.entries = append(m.entries, menuEntry{
					id: p.ID, kind: cart.KindProduct, name: p.Name,
					size: p.Quantity, price: p.EffectivePrice(),
				})
			}
		}
		for _, c := range m.snapshot.Combos {
			m.entries = append(m.entries, menuEntry{
				id: c.ID, kind: cart.KindCombo, name: c.Name,
				price: c.OfferPrice,
			})
		}
	} else {
		for _, p := range m.snapshot.Products {
			if p.KioskTypeID == tab.ID {
				m.entries = append(m.entries, menuEntry{
					id: p.ID, kind: cart.KindProduct, name: p.Name,
					size: p.Quantity, price: p.EffectivePrice(),
				})
			}
		}
	}
	if m.cursor >= len(m.entries) {
		m.cursor = 0
	}
}

// Update handles menu keys.
func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.notice = ""

	switch key.String() {
	case "left", "h":
		if m.tabIndex > 0 {
			m.tabIndex--
			m.cursor = 0
			m.rebuildEntries()
		}
	case "right", "l", "tab":
		if m.tabIndex < len(m.tabs)-1 {
			m.tabIndex++
			m.cursor = 0
			m.rebuildEntries()
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "+", "enter", " ":
		m.addCurrent()
	case "-":
		m.decrementCurrent()
	}
	return m, nil
}

// addCurrent runs the gate-then-add step synchronously against the
// current snapshot so a stock check can never interleave with the add
// it approved.
func (m *MenuModel) addCurrent() {
	if m.snapshot == nil || m.cursor >= len(m.entries) {
		return
	}
	entry := m.entries[m.cursor]

	existing := m.lineCount(entry.id)
	decision := stock.CanAdd(entry.id, existing+1, m.cart.Lines, m.snapshot)
	if !decision.OK {
		m.notice = refusalText(decision.Reason, m.snapshot)
		return
	}

	line := cart.Line{
		ID:        entry.id,
		Kind:      entry.kind,
		Name:      entry.name,
		Size:      entry.size,
		UnitPrice: entry.price,
	}
	if entry.kind == cart.KindProduct {
		if p := m.snapshot.ProductByID(entry.id); p != nil {
			line.TaxRate = p.Pricing.TaxRate
			line.TaxMode = catalog.NormalizeTaxMode(p.Pricing.GstType)
			if len(p.Images) > 0 {
				line.ImageURL = p.Images[0]
			}
		}
	} else if c := m.snapshot.ComboByID(entry.id); c != nil {
		line.TaxRate = c.GstTaxRate
		line.TaxMode = catalog.NormalizeTaxMode(c.GstType)
		line.ImageURL = c.ImageURL
	}

	if err := m.deps.Cart.AddItem(line); err != nil {
		m.deps.Logger.Warn("cart add failed", "item_id", entry.id, "error", err)
	}
}

func (m *MenuModel) decrementCurrent() {
	if m.cursor >= len(m.entries) {
		return
	}
	entry := m.entries[m.cursor]
	if n := m.lineCount(entry.id); n > 0 {
		_ = m.deps.Cart.SetCount(entry.id, n-1)
	}
}

func (m *MenuModel) lineCount(id string) int {
	for _, line := range m.cart.Lines {
		if line.ID == id {
			return line.Count
		}
	}
	return 0
}

// View renders the banner strip, tab sidebar, and item list.
func (m MenuModel) View() string {
	if m.snapshot == nil {
		return "Loading the menu...\n"
	}
	if m.snapshot.Empty {
		return emptyStyle.Render("Nothing on the menu right now. Check back soon.") + "\n"
	}

	var b strings.Builder

	if banner := m.renderBanners(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}

	sidebar := m.renderTabs()
	list := m.renderList()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, "  ", list))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(footStyle.Render("←/→ tabs · ↑/↓ move · + add · - remove · c cart · r refresh · q quit"))
	return b.String()
}

func (m MenuModel) renderBanners() string {
	if len(m.snapshot.Banners) == 0 {
		return ""
	}
	// Terminals don't render images; show the promo strip as labels.
	labels := make([]string, 0, len(m.snapshot.Banners))
	for i := range m.snapshot.Banners {
		labels = append(labels, fmt.Sprintf("promo %d", i+1))
	}
	return bannerStyle.Render(strings.Join(labels, " · "))
}

func (m MenuModel) renderTabs() string {
	var b strings.Builder
	for i, tab := range m.tabs {
		if i == m.tabIndex {
			b.WriteString(tabActiveStyle.Render("▸ " + tab.Name))
		} else {
			b.WriteString(tabStyle.Render("  " + tab.Name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m MenuModel) renderList() string {
	if len(m.entries) == 0 {
		return emptyStyle.Render("No items in this tab.")
	}
	var b strings.Builder
	for i, entry := range m.entries {
		row := m.renderEntry(entry)
		if i == m.cursor {
			b.WriteString(rowActiveStyle.Render(row))
		} else {
			b.WriteString(row)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m MenuModel) renderEntry(entry menuEntry) string {
	name := entry.name
	if entry.size != "" {
		name += " " + mutedStyle.Render("("+entry.size+")")
	}
	price := priceStyle.Render(fmt.Sprintf("%s%.2f", m.deps.Policy.CurrencySymbol, entry.price))

	badge := ""
	if stock.IsOutOfStock(entry.id, m.cart.Lines, m.snapshot) {
		badge = outStyle.Render(" OUT ")
	} else if n := m.lineCount(entry.id); n > 0 {
		badge = countStyle.Render(fmt.Sprintf(" ×%d ", n))
	}
	return fmt.Sprintf("%-40s %10s %s", name, price, badge)
}

// refusalText turns a stock refusal into a shopper-facing sentence.
func refusalText(r *stock.Reason, snap *catalog.Snapshot) string {
	if r == nil {
		return ""
	}
	name := r.ProductID
	if p := snap.ProductByID(r.ProductID); p != nil {
		name = p.Name
	}
	switch r.Code {
	case stock.ReasonInsufficientStock:
		return fmt.Sprintf("Only %.0f %s of %s left.", r.Available, r.Unit, name)
	case stock.ReasonMissingComponent:
		return fmt.Sprintf("%s is no longer available.", name)
	case stock.ReasonSizeMismatch:
		return fmt.Sprintf("The %s size of %s is no longer offered.", r.Size, name)
	case stock.ReasonUnavailable, stock.ReasonInactive:
		return fmt.Sprintf("%s is not available right now.", name)
	default:
		return "That item cannot be added right now."
	}
}

// =============================================================================
// Styles
// =============================================================================

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("88"))

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("94")).
			Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Border(lipgloss.NormalBorder(), false, false, true, false)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	rowActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	outStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	footStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)
