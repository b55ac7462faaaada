// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package posmock is an in-memory stand-in for the theater backend.
//
// It serves the catalog list endpoints, order create/find, and the two
// cancel operations with server-side inventory restore, using the same
// response envelopes the real backend emits. Development and the
// end-to-end tests run against it; nothing in it is production code.
package posmock

// Product is one sellable item in a theater's cafe.
type Product struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	IsActive      bool      `json:"isActive"`
	Pricing       Pricing   `json:"pricing"`
	Inventory     Inventory `json:"inventory"`
	Quantity      string    `json:"quantity,omitempty"`
	NoQty         float64   `json:"noQty,omitempty"`
	Unit          string    `json:"unit,omitempty"`
	QuantityUnit  string    `json:"quantityUnit,omitempty"`
	UnitOfMeasure string    `json:"unitOfMeasure,omitempty"`
	Images        []string  `json:"images,omitempty"`
	CategoryID    string    `json:"categoryId,omitempty"`
	KioskTypeID   string    `json:"kioskTypeId,omitempty"`
	IsAvailable   *bool     `json:"isAvailable,omitempty"`
}

type Pricing struct {
	BasePrice          float64 `json:"basePrice"`
	SalePrice          float64 `json:"salePrice,omitempty"`
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
	TaxRate            float64 `json:"taxRate"`
	GstType            string  `json:"gstType,omitempty"`
}

type Inventory struct {
	CurrentStock float64 `json:"currentStock"`
	Unit         string  `json:"unit,omitempty"`
}

type Category struct {
	ID       string `json:"_id"`
	Name     string `json:"categoryName"`
	IsActive bool   `json:"isActive"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type KioskType struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type Banner struct {
	ID        string `json:"_id"`
	ImageURL  string `json:"imageUrl"`
	IsActive  bool   `json:"isActive"`
	SortOrder int    `json:"sortOrder"`
}

type ComboEntry struct {
	ProductID string `json:"productId"`
	Count     int    `json:"quantity"`
	Size      string `json:"productQuantity,omitempty"`
}

type ComboOffer struct {
	ID         string       `json:"_id"`
	Name       string       `json:"name"`
	OfferPrice float64      `json:"offerPrice"`
	GstTaxRate float64      `json:"gstTaxRate"`
	GstType    string       `json:"gstType,omitempty"`
	ImageURL   string       `json:"imageUrl,omitempty"`
	IsActive   bool         `json:"isActive"`
	Entries    []ComboEntry `json:"products"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	LineID    string  `json:"_id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Size      string  `json:"productQuantity,omitempty"`
	UnitPrice float64 `json:"price"`
	Count     int     `json:"quantity"`
	Kind      string  `json:"kind,omitempty"`
	Cancelled bool    `json:"cancelled,omitempty"`
}

// Order is a placed order.
type Order struct {
	ID          string      `json:"_id"`
	OrderNumber string      `json:"orderNumber"`
	TheaterID   string      `json:"theaterId"`
	Status      string      `json:"status"`
	Items       []OrderItem `json:"products"`
	Subtotal    float64     `json:"subtotal"`
	Tax         float64     `json:"taxAmount"`
	Total       float64     `json:"totalAmount"`
	CreatedAt   string      `json:"createdAt"`

	// taxRate and taxAdditive capture the creation-time tax shape,
	// used to recompute totals after a line cancel.
	taxRate     float64
	taxAdditive bool
}

// ============================================================================
// Request bindings
// ============================================================================

// CreateOrderRequest is the order-create body.
type CreateOrderRequest struct {
	TheaterID string                   `json:"theaterId" binding:"required"`
	Items     []CreateOrderItemRequest `json:"products" binding:"required,min=1,dive"`
	Subtotal  float64                  `json:"subtotal" binding:"gte=0"`
	Tax       float64                  `json:"taxAmount" binding:"gte=0"`
	Total     float64                  `json:"totalAmount" binding:"gte=0"`
}

// CreateOrderItemRequest is one requested line.
type CreateOrderItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Size      string  `json:"productQuantity"`
	UnitPrice float64 `json:"price" binding:"gte=0"`
	Count     int     `json:"quantity" binding:"required,gt=0"`
	Kind      string  `json:"kind" binding:"omitempty,oneof=product combo"`
}

// UpdateStatusRequest is the order-status body.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in-progress completed cancelled"`
}
