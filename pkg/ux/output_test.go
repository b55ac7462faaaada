// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// Helper to capture stdout. The pipe is not a terminal, so styling is
// disabled and output uses the plain format.
func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// Helper to capture stderr
func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render_Success(t *testing.T) {
	result := IconSuccess.Render()
	if result == "" {
		t.Error("expected non-empty result for IconSuccess")
	}
}

func TestIcon_Render_Warning(t *testing.T) {
	result := IconWarning.Render()
	if result == "" {
		t.Error("expected non-empty result for IconWarning")
	}
}

func TestIcon_Render_Error(t *testing.T) {
	result := IconError.Render()
	if result == "" {
		t.Error("expected non-empty result for IconError")
	}
}

func TestIcon_Render_Pending(t *testing.T) {
	result := IconPending.Render()
	if result == "" {
		t.Error("expected non-empty result for IconPending")
	}
}

func TestIcon_Render_Default(t *testing.T) {
	// Icons that don't have specific styling pass through unchanged.
	icons := []Icon{IconArrow, IconBullet, IconTicket, IconFilm}
	for _, icon := range icons {
		result := icon.Render()
		if result != string(icon) {
			t.Errorf("expected %q for %q, got %q", string(icon), icon, result)
		}
	}
}

// =============================================================================
// Message Tests (plain mode)
// =============================================================================

func TestTitle_Plain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	output := captureStdout(func() {
		Title("Concessions")
	})

	if output != "Concessions\n" {
		t.Errorf("expected plain title, got %q", output)
	}
}

func TestSuccess_Plain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	output := captureStdout(func() {
		Success("Order placed")
	})

	if output != "OK: Order placed\n" {
		t.Errorf("expected 'OK: Order placed', got %q", output)
	}
}

func TestWarning_PlainGoesToStderr(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	output := captureStderr(func() {
		Warning("Stock running low")
	})

	if output != "WARN: Stock running low\n" {
		t.Errorf("expected 'WARN: Stock running low', got %q", output)
	}
}

func TestError_PlainGoesToStderr(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	output := captureStderr(func() {
		Error("Order not found")
	})

	if output != "ERROR: Order not found\n" {
		t.Errorf("expected 'ERROR: Order not found', got %q", output)
	}
}

func TestInfo_Plain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	output := captureStdout(func() {
		Info("Loading menu")
	})

	if output != "Loading menu\n" {
		t.Errorf("expected plain 'Loading menu', got %q", output)
	}
}

func TestMuted_Plain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	output := captureStdout(func() {
		Muted("cached 12s ago")
	})

	if output != "cached 12s ago\n" {
		t.Errorf("expected plain muted text, got %q", output)
	}
}

// =============================================================================
// Box Tests
// =============================================================================

func TestBox_Plain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	output := captureStdout(func() {
		Box("Order K0001", "2 items")
	})

	if output != "Order K0001: 2 items\n" {
		t.Errorf("expected 'Order K0001: 2 items', got %q", output)
	}
}

func TestWarningBox_PlainGoesToStderr(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	output := captureStderr(func() {
		WarningBox("Menu unavailable", "showing cached data")
	})

	if output != "WARN Menu unavailable: showing cached data\n" {
		t.Errorf("expected plain warning box, got %q", output)
	}
}

// =============================================================================
// Price and Summary Tests
// =============================================================================

func TestPrice_Plain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	result := Price("₹", 157.5)
	if result != "₹157.50" {
		t.Errorf("expected '₹157.50', got %q", result)
	}
}

func TestPrice_RoundsDisplayToTwoDecimals(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	result := Price("$", 10)
	if result != "$10.00" {
		t.Errorf("expected '$10.00', got %q", result)
	}
}

func TestSummary_Plain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	output := captureStdout(func() {
		Summary("₹", 150, 7.5, 157.5)
	})

	if output != "SUMMARY: subtotal=150.00 tax=7.50 total=157.50\n" {
		t.Errorf("expected machine summary line, got %q", output)
	}
}

// =============================================================================
// ProgressBar Tests
// =============================================================================

func TestProgressBar_Plain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	result := ProgressBar(5, 10, 20)
	if result != "5/10" {
		t.Errorf("expected '5/10', got %q", result)
	}
}

func TestProgressBar_PlainEmpty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	result := ProgressBar(0, 10, 20)
	if result != "0/10" {
		t.Errorf("expected '0/10', got %q", result)
	}
}

func TestProgressBar_PlainFull(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	result := ProgressBar(10, 10, 20)
	if result != "10/10" {
		t.Errorf("expected '10/10', got %q", result)
	}
}

// =============================================================================
// repeatChar Tests
// =============================================================================

func TestRepeatChar_Positive(t *testing.T) {
	result := repeatChar('X', 5)
	if result != "XXXXX" {
		t.Errorf("expected 'XXXXX', got %q", result)
	}
}

func TestRepeatChar_Zero(t *testing.T) {
	result := repeatChar('X', 0)
	if result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestRepeatChar_Negative(t *testing.T) {
	result := repeatChar('X', -5)
	if result != "" {
		t.Errorf("expected empty string for negative count, got %q", result)
	}
}

func TestRepeatChar_Unicode(t *testing.T) {
	result := repeatChar('█', 3)
	if result != "███" {
		t.Errorf("expected '███', got %q", result)
	}
}

// =============================================================================
// Icon Constants Tests
// =============================================================================

func TestIconConstants(t *testing.T) {
	icons := map[string]Icon{
		"Success": IconSuccess,
		"Warning": IconWarning,
		"Error":   IconError,
		"Pending": IconPending,
		"Arrow":   IconArrow,
		"Bullet":  IconBullet,
		"Ticket":  IconTicket,
		"Film":    IconFilm,
	}

	for name, icon := range icons {
		if string(icon) == "" {
			t.Errorf("icon %s is empty", name)
		}
	}
}
