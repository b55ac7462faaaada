// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package posmock

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP-level instruments.
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

// NewMetrics registers the server metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posmock_requests_total",
			Help: "HTTP requests served, by route, method, and status.",
		}, []string{"route", "method", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "posmock_request_duration_seconds",
			Help:    "Request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(m.Requests, m.Latency)
	return m
}

// instrument records per-request counters and latency.
func instrument(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, c.Request.Method,
			strconv.Itoa(c.Writer.Status())).Inc()
		m.Latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// RegisterRoutes mounts all mock endpoints under /v1.
func RegisterRoutes(r *gin.Engine, srv *Server, m *Metrics) {
	if m != nil {
		r.Use(instrument(m))
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	v1 := r.Group("/v1")
	{
		v1.GET("/theater-products/:theaterId", srv.GetProducts)
		v1.GET("/theater-categories/:theaterId", srv.GetCategories)
		v1.GET("/theater-kiosk-types/:theaterId", srv.GetKioskTypes)
		v1.GET("/theater-banners/:theaterId", srv.GetBanners)
		v1.GET("/combo-offers/:theaterId", srv.GetCombos)

		v1.POST("/orders", srv.CreateOrder)
		v1.GET("/orders/theater/:theaterId/:orderId", srv.GetOrder)
		v1.PUT("/orders/theater/:theaterId/:orderId/status", srv.UpdateOrderStatus)
		v1.DELETE("/orders/theater/:theaterId/:orderId/products/:lineId", srv.CancelOrderLine)
	}
}
