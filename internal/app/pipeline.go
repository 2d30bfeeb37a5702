// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/ultrasonic_plotter/internal/distance"
	"github.com/relabs-tech/ultrasonic_plotter/internal/history"
	"github.com/relabs-tech/ultrasonic_plotter/internal/plot"
)

// Sink receives every accepted sample, in order.
type Sink interface {
	Publish(distance.Sample) error
	Close() error
}

// Pipeline turns device lines into samples and samples into frames.
// It is owned by a single goroutine.
type Pipeline struct {
	acc       *history.Accumulator
	window    *plot.Window
	renderers []plot.Renderer
	sinks     []Sink

	dirty  bool
	drawn  bool
	frames int
}

// NewPipeline wires an accumulator to its chart window and outputs.
func NewPipeline(acc *history.Accumulator, window *plot.Window, renderers []plot.Renderer, sinks []Sink) *Pipeline {
	return &Pipeline{acc: acc, window: window, renderers: renderers, sinks: sinks}
}

// Feed applies one trimmed device line. Only a malformed reading is an error;
// sink failures are logged.
func (p *Pipeline) Feed(line string) error {
	s, ok, err := p.acc.Add(line)
	if err != nil {
		return err
	}
	if !ok {
		log.WithField("line", line).Debug("plotter: line skipped")
		return nil
	}

	p.window.Append(s)
	p.dirty = true

	for _, sink := range p.sinks {
		if err := sink.Publish(s); err != nil {
			log.WithError(err).WithField("index", s.Index).Warn("plotter: sink publish failed")
		}
	}
	return nil
}

// Redraw renders the current frame if anything changed since the last one.
// The first call always draws, so an empty chart shows up before any data.
func (p *Pipeline) Redraw() (bool, error) {
	if p.drawn && !p.dirty {
		return false, nil
	}
	f := p.window.Frame()
	for _, r := range p.renderers {
		if err := r.Render(f); err != nil {
			return false, fmt.Errorf("render: %w", err)
		}
	}
	p.drawn = true
	p.dirty = false
	p.frames++
	return true, nil
}

// Frames returns how many frames were rendered.
func (p *Pipeline) Frames() int { return p.frames }

// Accumulator exposes the history fed by this pipeline.
func (p *Pipeline) Accumulator() *history.Accumulator { return p.acc }

// Close releases all outputs and returns the first error.
func (p *Pipeline) Close() error {
	var first error
	for _, r := range p.renderers {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	for _, s := range p.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
