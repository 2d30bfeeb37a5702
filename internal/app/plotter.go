// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/ultrasonic_plotter/internal/config"
	"github.com/relabs-tech/ultrasonic_plotter/internal/history"
	"github.com/relabs-tech/ultrasonic_plotter/internal/plot"
	"github.com/relabs-tech/ultrasonic_plotter/internal/sensors"
)

// TickInterval returns the redraw period: the configured one, or 1s for the
// raw variant and 1ms for the average variant.
func TickInterval(cfg *config.Config, variant history.Variant) time.Duration {
	if cfg.TickInterval > 0 {
		return time.Duration(cfg.TickInterval) * time.Millisecond
	}
	if variant == history.VariantAverage {
		return time.Millisecond
	}
	return time.Second
}

// RunPlotter reads the sensor and keeps the chart up to date until the
// chart window is closed, the process is interrupted, or a fatal error occurs.
func RunPlotter(cfg *config.Config, variant history.Variant) error {
	src, err := sensors.OpenDevice(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	acc := history.New(variant)
	labels := plot.Labels{Title: cfg.ChartTitle, XLabel: cfg.XLabel, YLabel: cfg.YLabel}
	window := plot.NewWindow(labels, variant == history.VariantAverage, cfg.HistoryWindow)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	renderers, sinks, err := buildOutputs(ctx, cfg, acc, labels)
	if err != nil {
		return err
	}
	p := NewPipeline(acc, window, renderers, sinks)
	defer func() {
		if err := p.Close(); err != nil {
			log.WithError(err).Warn("plotter: closing outputs")
		}
	}()

	for _, r := range renderers {
		if w, ok := r.(plot.Interactive); ok {
			go func() {
				select {
				case <-w.Done():
					cancel()
				case <-ctx.Done():
				}
			}()
		}
	}

	tick := TickInterval(cfg, variant)
	log.WithFields(log.Fields{"variant": variant, "tick": tick, "device": cfg.DevicePath}).Info("plotter: running")

	err = drive(ctx, p, src, tick, cfg.LineBuffer)
	log.WithFields(log.Fields{"samples": acc.Len(), "frames": p.Frames()}).Info("plotter: stopped")
	return err
}

// buildOutputs creates the renderers and sinks enabled in cfg. Outputs that
// were already created are closed if a later one fails.
func buildOutputs(ctx context.Context, cfg *config.Config, acc *history.Accumulator, labels plot.Labels) ([]plot.Renderer, []Sink, error) {
	var (
		renderers []plot.Renderer
		sinks     []Sink
	)
	fail := func(err error) ([]plot.Renderer, []Sink, error) {
		for _, r := range renderers {
			r.Close()
		}
		for _, s := range sinks {
			s.Close()
		}
		return nil, nil, err
	}

	if cfg.PNGOutputPath != "" {
		renderers = append(renderers, plot.NewPNGFile(cfg.PNGOutputPath, cfg.PNGWidth, cfg.PNGHeight))
		log.Printf("plotter: writing chart to %s", cfg.PNGOutputPath)
	}
	if cfg.DisplayI2CBus != "" {
		oled, err := plot.NewOLED(cfg.DisplayI2CBus, time.Duration(cfg.DisplayUpdateInterval)*time.Millisecond)
		if err != nil {
			return fail(err)
		}
		renderers = append(renderers, oled)
	}
	if cfg.WebServerPort > 0 {
		web := NewWebView(acc, cfg.PNGWidth, cfg.PNGHeight)
		if err := web.Start(ctx, fmt.Sprintf(":%d", cfg.WebServerPort)); err != nil {
			return fail(err)
		}
		renderers = append(renderers, web)
		sinks = append(sinks, web)
	}
	if cfg.MQTTBroker != "" {
		pub, err := NewMQTTPublisher(cfg)
		if err != nil {
			return fail(fmt.Errorf("mqtt: %w", err))
		}
		sinks = append(sinks, pub)
	}
	// The terminal goes last so a failing output above never leaves the
	// console in raw mode.
	if cfg.TerminalEnabled {
		term, err := plot.NewTerminal(labels)
		if err != nil {
			return fail(err)
		}
		renderers = append(renderers, term)
	}
	if len(renderers) == 0 {
		log.Warn("plotter: no chart output enabled, samples are only accumulated")
	}
	return renderers, sinks, nil
}

// drive runs the reader goroutine and the redraw ticker until ctx is done or
// a fatal error occurs. End of stream only stops reading; the chart stays.
func drive(ctx context.Context, p *Pipeline, src sensors.Source, tick time.Duration, buffer int) error {
	if buffer < 1 {
		buffer = 1
	}
	lines := make(chan string, buffer)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go readLines(src, lines, readErr, stop)

	if err := redraw(p); err != nil {
		return closedIsClean(err)
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("plotter: shutting down")
			return nil
		case err := <-readErr:
			return fmt.Errorf("read device: %w", err)
		case <-ticker.C:
		}

	drain:
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					log.Println("device: end of stream, chart stays open")
					lines = nil
					break drain
				}
				if err := p.Feed(line); err != nil {
					return err
				}
			default:
				break drain
			}
		}

		if err := redraw(p); err != nil {
			return closedIsClean(err)
		}
	}
}

func redraw(p *Pipeline) error {
	_, err := p.Redraw()
	return err
}

// closedIsClean maps a user-closed window to a normal exit.
func closedIsClean(err error) error {
	if errors.Is(err, plot.ErrWindowClosed) {
		log.Println("plotter: chart window closed")
		return nil
	}
	return err
}

// readLines forwards device lines until end of stream, a read error, or stop.
func readLines(src sensors.Source, out chan<- string, errc chan<- error, stop <-chan struct{}) {
	for {
		line, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				close(out)
			} else {
				errc <- err
			}
			return
		}
		select {
		case out <- line:
		case <-stop:
			return
		}
	}
}
