// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"io"
	"sync"

	"github.com/relabs-tech/ultrasonic_plotter/internal/distance"
	"github.com/relabs-tech/ultrasonic_plotter/internal/plot"
)

// scriptedSource returns its lines, then io.EOF (eof), err, or blocks until closed.
type scriptedSource struct {
	mu    sync.Mutex
	lines []string
	eof   bool
	err   error

	closed chan struct{}
	once   sync.Once
}

func newScriptedSource(lines ...string) *scriptedSource {
	return &scriptedSource{lines: lines, closed: make(chan struct{})}
}

func (s *scriptedSource) Next() (string, error) {
	s.mu.Lock()
	if len(s.lines) > 0 {
		line := s.lines[0]
		s.lines = s.lines[1:]
		s.mu.Unlock()
		return line, nil
	}
	s.mu.Unlock()

	switch {
	case s.err != nil:
		return "", s.err
	case s.eof:
		return "", io.EOF
	}
	<-s.closed
	return "", io.EOF
}

func (s *scriptedSource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type recordingRenderer struct {
	mu     sync.Mutex
	frames []plot.Frame
	err    error
	closed bool
}

func (r *recordingRenderer) Render(f plot.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return r.err
}

func (r *recordingRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recordingRenderer) last() (plot.Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return plot.Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

type recordingSink struct {
	mu      sync.Mutex
	samples []distance.Sample
	err     error
	closed  bool
}

func (s *recordingSink) Publish(sample distance.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
	return s.err
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
