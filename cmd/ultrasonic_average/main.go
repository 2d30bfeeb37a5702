// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/ultrasonic_plotter/internal/app"
	"github.com/relabs-tech/ultrasonic_plotter/internal/config"
	"github.com/relabs-tech/ultrasonic_plotter/internal/history"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to configuration file")
	verbose := flag.Bool("v", false, "log skipped lines and every published sample")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.Println("starting ultrasonic plotter (two-digit readings with running average)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunPlotter(config.Get(), history.VariantAverage); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
