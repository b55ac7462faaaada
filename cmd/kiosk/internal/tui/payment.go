// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/order"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/pricing"
)

// PaymentModel is the checkout state machine's face: review summary,
// processing spinner, confirmation, and the error surface.
type PaymentModel struct {
	deps    Deps
	state   order.CheckoutState
	spinner spinner.Model
}

// NewPaymentModel creates the payment screen.
func NewPaymentModel(deps Deps) PaymentModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	return PaymentModel{
		deps:    deps,
		state:   order.StateEditing,
		spinner: sp,
	}
}

func (m *PaymentModel) setState(state order.CheckoutState) {
	m.state = state
}

// Update handles payment keys and the spinner tick.
func (m PaymentModel) Update(msg tea.Msg) (PaymentModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.state {
		case order.StateReviewing:
			switch msg.String() {
			case "enter", "p":
				_ = m.deps.Checkout.Pay(context.Background())
			case "esc", "q":
				_ = m.deps.Checkout.Cancel()
			}
		case order.StateProcessing:
			if msg.String() == "esc" {
				// The close button: cancels the handshake timer.
				_ = m.deps.Checkout.Abort()
			}
		case order.StateConfirmed:
			if msg.String() == "enter" || msg.String() == "esc" {
				_ = m.deps.Checkout.Cancel()
			}
		}
	}
	return m, nil
}

// View renders the current checkout state.
func (m PaymentModel) View() string {
	switch m.state {
	case order.StateReviewing:
		return m.renderReview()

	case order.StateProcessing:
		return fmt.Sprintf("\n  %s Processing payment...\n\n%s",
			m.spinner.View(),
			footStyle.Render("esc cancel"))

	case order.StateSubmitting:
		return fmt.Sprintf("\n  %s Placing your order...\n", m.spinner.View())

	case order.StateConfirmed:
		placed := m.deps.Checkout.PlacedOrder()
		number := ""
		if placed != nil {
			number = placed.OrderNumber
		}
		return fmt.Sprintf("\n  %s\n  Order %s confirmed. Enjoy the show!\n",
			confirmStyle.Render("✓"), number)

	default:
		return ""
	}
}

func (m PaymentModel) renderReview() string {
	totals := pricing.Compute(m.deps.Cart.Snapshot(), m.deps.Policy)

	var b strings.Builder
	b.WriteString(rowActiveStyle.Render("Review your order"))
	b.WriteString("\n\n")
	for _, lt := range totals.Lines {
		b.WriteString(fmt.Sprintf("  %-32s ×%-3d %10s\n",
			truncate(lineLabel(lt), 32), lt.Count,
			fmt.Sprintf("%s%.2f", totals.Currency, lt.Subtotal)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Total due: %s\n",
		rowActiveStyle.Render(fmt.Sprintf("%s%.2f", totals.Currency, totals.Total))))

	if err := m.deps.Checkout.LastError(); err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("  Payment did not go through: " + err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footStyle.Render("enter pay · esc back to cart"))
	return b.String()
}

var confirmStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("42"))
