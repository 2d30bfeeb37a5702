// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/ultrasonic_plotter/internal/config"
	"github.com/relabs-tech/ultrasonic_plotter/internal/history"
	"github.com/relabs-tech/ultrasonic_plotter/internal/sensors"
)

// RunConsole prints accepted samples without drawing a chart. It stops at
// end of stream.
func RunConsole(cfg *config.Config, variant history.Variant) error {
	src, err := sensors.OpenDevice(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	return printSamples(src, history.New(variant), func(line string) { fmt.Println(line) })
}

func printSamples(src sensors.Source, acc *history.Accumulator, out func(string)) error {
	for {
		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			log.WithField("samples", acc.Len()).Println("console: end of stream")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read device: %w", err)
		}

		s, ok, err := acc.Add(line)
		if err != nil {
			return err
		}
		if ok {
			out(formatSample(s))
		}
	}
}
