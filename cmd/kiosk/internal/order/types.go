// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package order owns the checkout flow and the order search/cancel
// sub-flow against the theater backend.
package order

import "time"

// Status is an order's lifecycle state on the server.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Item is one line of a placed order.
type Item struct {
	LineID    string  `json:"_id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Size      string  `json:"productQuantity,omitempty"`
	UnitPrice float64 `json:"price"`
	Count     int     `json:"quantity"`
}

// Order is a placed order as the backend reports it.
type Order struct {
	ID          string    `json:"_id"`
	OrderNumber string    `json:"orderNumber"`
	TheaterID   string    `json:"theaterId"`
	Status      Status    `json:"status"`
	Items       []Item    `json:"products"`
	Subtotal    float64   `json:"subtotal"`
	Tax         float64   `json:"taxAmount"`
	Total       float64   `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Mutable reports whether the order can still be cancelled or edited.
// Completed and cancelled orders are immutable.
func (o *Order) Mutable() bool {
	return o.Status == StatusPending || o.Status == StatusInProgress
}

// ItemByLine returns the item with the given line id, or nil.
func (o *Order) ItemByLine(lineID string) *Item {
	for i := range o.Items {
		if o.Items[i].LineID == lineID {
			return &o.Items[i]
		}
	}
	return nil
}
