// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/cart"
	"github.com/jinterlante1206/KioskLocal/cmd/kiosk/internal/pricing"
)

// CheckoutState is one step of the checkout flow.
type CheckoutState string

const (
	StateEditing    CheckoutState = "Editing"
	StateReviewing  CheckoutState = "Reviewing"
	StateProcessing CheckoutState = "Processing"
	StateSubmitting CheckoutState = "Submitting"
	StateConfirmed  CheckoutState = "Confirmed"
)

// ErrBadTransition means the requested step is not legal from the
// current state.
var ErrBadTransition = errors.New("not allowed from the current checkout state")

// MinProcessing is the payment-handshake floor. The Processing screen
// shows for at least this long even when submission would be instant.
const MinProcessing = 2500 * time.Millisecond

// ConfirmLinger is how long the confirmation screen shows before the
// flow returns to Editing on its own.
const ConfirmLinger = 3 * time.Second

// Submitter places orders; satisfied by *Service.
type Submitter interface {
	SubmitOrder(ctx context.Context, snap cart.Snapshot, totals pricing.Totals) (*Order, error)
}

// Cart is the slice of the cart store the checkout needs.
type Cart interface {
	Snapshot() cart.Snapshot
	Clear() error
}

// Checkout drives the payment flow state machine.
//
// # Description
//
// Transitions:
//
//	Editing --Proceed--> Reviewing --Pay--> Processing --timer--> Submitting
//	Submitting --ok--> Confirmed --auto--> Editing   (cart cleared)
//	Submitting --err--> Reviewing                    (cart intact)
//
// Cancel walks back one state and is refused while Processing or
// Submitting; Abort is the close button's escape hatch that cancels
// the payment timer while still in Processing.
//
// # Thread Safety
//
// Safe for concurrent use. The OnChange callback runs without the
// internal lock held.
type Checkout struct {
	svc    Submitter
	cart   Cart
	policy pricing.Policy
	logger *slog.Logger

	minProcessing time.Duration
	confirmLinger time.Duration

	// timer is injected for tests; defaults to time.After.
	timer func(d time.Duration) <-chan time.Time

	mu      sync.Mutex
	state   CheckoutState
	lastErr error
	placed  *Order
	abort   chan struct{}

	onChange func(CheckoutState)
}

// NewCheckout creates a Checkout in Editing.
func NewCheckout(svc Submitter, c Cart, policy pricing.Policy, logger *slog.Logger) *Checkout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checkout{
		svc:           svc,
		cart:          c,
		policy:        policy,
		logger:        logger,
		minProcessing: MinProcessing,
		confirmLinger: ConfirmLinger,
		timer:         func(d time.Duration) <-chan time.Time { return time.After(d) },
		state:         StateEditing,
	}
}

// OnChange registers the state observer. At most one; the TUI is the
// only consumer.
func (c *Checkout) OnChange(fn func(CheckoutState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// State returns the current state.
func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error that bounced the flow back to Reviewing,
// if any.
func (c *Checkout) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// PlacedOrder returns the confirmed order, once there is one.
func (c *Checkout) PlacedOrder() *Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.placed
}

// Proceed moves Editing to Reviewing. An empty cart stays in Editing.
func (c *Checkout) Proceed() error {
	c.mu.Lock()
	if c.state != StateEditing {
		defer c.mu.Unlock()
		return fmt.Errorf("proceed: %w", ErrBadTransition)
	}
	if len(c.cart.Snapshot().Lines) == 0 {
		defer c.mu.Unlock()
		return fmt.Errorf("proceed: cart is empty: %w", ErrBadTransition)
	}
	c.transition(StateReviewing)
	return nil
}

// Cancel walks back one state. Refused while Processing or Submitting.
func (c *Checkout) Cancel() error {
	c.mu.Lock()
	switch c.state {
	case StateReviewing:
		c.lastErr = nil
		c.transition(StateEditing)
		return nil
	case StateConfirmed:
		c.transition(StateEditing)
		return nil
	case StateEditing:
		c.mu.Unlock()
		return nil
	default:
		defer c.mu.Unlock()
		return fmt.Errorf("cancel while %s: %w", c.state, ErrBadTransition)
	}
}

// Abort cancels the payment timer from the Processing screen's close
// button and returns to Reviewing. Once Submitting has started the
// order is on the wire and Abort is refused.
func (c *Checkout) Abort() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateProcessing {
		return fmt.Errorf("abort while %s: %w", c.state, ErrBadTransition)
	}
	if c.abort == nil {
		// An abort is already in flight; the state flips to Reviewing
		// once the payment goroutine observes it.
		return nil
	}
	close(c.abort)
	c.abort = nil
	return nil
}

// Pay moves Reviewing to Processing and runs the payment simulation
// plus submission in the background. State changes surface through
// OnChange.
func (c *Checkout) Pay(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateReviewing {
		defer c.mu.Unlock()
		return fmt.Errorf("pay: %w", ErrBadTransition)
	}
	c.lastErr = nil
	abort := make(chan struct{})
	c.abort = abort
	c.transition(StateProcessing)

	go c.run(ctx, abort)
	return nil
}

// run is the Processing -> Submitting -> terminal-state sequence.
func (c *Checkout) run(ctx context.Context, abort chan struct{}) {
	select {
	case <-c.timer(c.minProcessing):
	case <-abort:
		c.mu.Lock()
		c.transition(StateReviewing)
		return
	case <-ctx.Done():
		c.mu.Lock()
		c.lastErr = ctx.Err()
		c.transition(StateReviewing)
		return
	}

	c.mu.Lock()
	c.abort = nil
	c.transition(StateSubmitting)

	snap := c.cart.Snapshot()
	totals := pricing.Compute(snap, c.policy)
	placed, err := c.svc.SubmitOrder(ctx, snap, totals)

	c.mu.Lock()
	if err != nil {
		// The cart is untouched; the user can retry from Reviewing.
		c.lastErr = err
		c.logger.Warn("order submission failed", "error", err)
		c.transition(StateReviewing)
		return
	}

	c.placed = placed
	c.transition(StateConfirmed)
	if err := c.cart.Clear(); err != nil {
		c.logger.Warn("cart clear after confirm failed", "error", err)
	}

	linger := c.timer(c.confirmLinger)
	go func() {
		<-linger
		c.mu.Lock()
		if c.state == StateConfirmed {
			c.transition(StateEditing)
			return
		}
		c.mu.Unlock()
	}()
}

// transition records the new state and notifies. Called with the lock
// held; releases it.
func (c *Checkout) transition(next CheckoutState) {
	c.state = next
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(next)
	}
}
