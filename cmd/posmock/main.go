// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// posmock runs the in-memory theater backend used for kiosk
// development and end-to-end testing.
package main

import (
	"flag"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jinterlante1206/KioskLocal/pkg/logging"
	"github.com/jinterlante1206/KioskLocal/services/posmock"
)

func main() {
	var (
		port      = flag.String("port", "8085", "listen port")
		theaterID = flag.String("theater", "theater-demo", "theater id to seed")
		debug     = flag.Bool("debug", false, "verbose gin logging")
	)
	flag.Parse()

	logger := logging.New(logging.Config{Level: logging.LevelInfo, Service: "posmock"})
	defer logger.Close()

	store := posmock.NewStore()
	posmock.SeedDemo(store, *theaterID)

	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	srv := posmock.NewServer(store, logger.Slog())
	metrics := posmock.NewMetrics(prometheus.DefaultRegisterer)
	posmock.RegisterRoutes(router, srv, metrics)

	logger.Info("posmock listening", "port", *port, "theater_id", *theaterID)
	if err := router.Run(":" + *port); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
