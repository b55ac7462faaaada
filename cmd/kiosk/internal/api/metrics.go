// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus instruments for the API client.
//
// Registration is the caller's choice: pass prometheus.DefaultRegisterer
// from the binary, or a private registry in tests.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    prometheus.Counter
}

// NewMetrics creates and registers the client metrics.
//
// # Inputs
//
//   - reg: Registerer to attach the collectors to. May be nil, in which
//     case the instruments are created but not registered (useful when
//     several clients share a process in tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_api_requests_total",
			Help: "API requests by path and status class.",
		}, []string{"path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kiosk_api_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_api_retries_total",
			Help: "Requests that were retried after a transient failure.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.RetriesTotal)
	}
	return m
}
