// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package posmock

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server binds the store to HTTP handlers.
type Server struct {
	store  *Store
	logger *slog.Logger
}

// NewServer creates a server over the given store.
func NewServer(store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, logger: logger}
}

// ============================================================================
// Catalog handlers
// ============================================================================

// GetProducts serves the product list wrapped in the nested envelope.
func (s *Server) GetProducts(c *gin.Context) {
	td, err := s.store.Catalog(c.Param("theaterId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"products": td.Products}})
}

func (s *Server) GetCategories(c *gin.Context) {
	td, err := s.store.Catalog(c.Param("theaterId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"categories": td.Categories}})
}

func (s *Server) GetKioskTypes(c *gin.Context) {
	td, err := s.store.Catalog(c.Param("theaterId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"kioskTypes": td.KioskTypes}})
}

func (s *Server) GetBanners(c *gin.Context) {
	td, err := s.store.Catalog(c.Param("theaterId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"banners": td.Banners}})
}

// GetCombos serves combos in the flat envelope: the data field is the
// array itself, unlike the other list endpoints.
func (s *Server) GetCombos(c *gin.Context) {
	td, err := s.store.Catalog(c.Param("theaterId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": td.Combos})
}

// ============================================================================
// Order handlers
// ============================================================================

// CreateOrder validates and places an order, decrementing inventory.
func (s *Server) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o, err := s.store.CreateOrder(req)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("order placed",
		"order_id", o.ID, "order_number", o.OrderNumber,
		"theater_id", o.TheaterID, "lines", len(o.Items))
	c.JSON(http.StatusCreated, gin.H{"data": o})
}

// GetOrder looks up an order by id or order number.
func (s *Server) GetOrder(c *gin.Context) {
	o, err := s.store.FindOrder(c.Param("theaterId"), c.Param("orderId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": o})
}

// UpdateOrderStatus changes an order's status; cancelling restores
// inventory.
func (s *Server) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o, err := s.store.UpdateStatus(c.Param("theaterId"), c.Param("orderId"), req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("order status changed",
		"order_id", o.ID, "status", o.Status)
	c.JSON(http.StatusOK, gin.H{"data": o})
}

// CancelOrderLine removes one line from an order.
func (s *Server) CancelOrderLine(c *gin.Context) {
	o, err := s.store.CancelLine(c.Param("theaterId"), c.Param("orderId"), c.Param("lineId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("order line cancelled",
		"order_id", o.ID, "lines_left", len(o.Items))
	c.JSON(http.StatusOK, gin.H{"data": o})
}

// fail maps store errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrImmutable), errors.Is(err, ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
