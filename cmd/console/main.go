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
	average := flag.Bool("average", false, "accept two-digit readings only and print the running average")
	flag.Parse()

	log.Println("starting ultrasonic console (no chart)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	variant := history.VariantRaw
	if *average {
		variant = history.VariantAverage
	}
	if err := app.RunConsole(config.Get(), variant); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
