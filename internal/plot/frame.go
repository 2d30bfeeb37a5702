// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package plot

import (
	"math"

	"github.com/gammazero/deque"

	"github.com/relabs-tech/ultrasonic_plotter/internal/distance"
)

// Series names shown in legends.
const (
	SeriesDistance = "distance"
	SeriesAverage  = "average"
)

// Labels are the static texts of a chart.
type Labels struct {
	Title  string
	XLabel string
	YLabel string
}

// Series is one named line of (x, y) points.
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// Frame is everything a renderer needs to draw one chart.
type Frame struct {
	Labels
	Series []Series
}

// Empty reports whether no series has any point.
func (f Frame) Empty() bool {
	for _, s := range f.Series {
		if len(s.X) > 0 {
			return false
		}
	}
	return true
}

// ShowLegend reports whether the chart carries more than one series.
func (f Frame) ShowLegend() bool { return len(f.Series) > 1 }

// Bounds returns the extent of all points. Degenerate spans are widened by one
// so every renderer gets a drawable range.
func (f Frame) Bounds() (minX, maxX, minY, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range f.Series {
		for i := range s.X {
			minX = math.Min(minX, s.X[i])
			maxX = math.Max(maxX, s.X[i])
			minY = math.Min(minY, s.Y[i])
			maxY = math.Max(maxY, s.Y[i])
		}
	}
	if math.IsInf(minX, 1) {
		return 0, 1, 0, 1
	}
	if maxX <= minX {
		maxX = minX + 1
	}
	if maxY <= minY {
		minY, maxY = minY-1, maxY+1
	}
	return minX, maxX, minY, maxY
}

// Window keeps the points currently on screen. Samples are appended as they
// arrive; once the limit is reached the oldest point is dropped.
type Window struct {
	labels  Labels
	average bool
	limit   int // 0 = unbounded

	points deque.Deque[distance.Sample]
}

// NewWindow creates a window. withAverage adds the running average series.
func NewWindow(labels Labels, withAverage bool, limit int) *Window {
	return &Window{labels: labels, average: withAverage, limit: limit}
}

// Append adds samples in index order.
func (w *Window) Append(samples ...distance.Sample) {
	for _, s := range samples {
		w.points.PushBack(s)
		if w.limit > 0 && w.points.Len() > w.limit {
			w.points.PopFront()
		}
	}
}

// Len returns the number of samples in the window.
func (w *Window) Len() int { return w.points.Len() }

// Frame builds the chart for the current window contents.
func (w *Window) Frame() Frame {
	n := w.points.Len()
	dist := Series{Name: SeriesDistance, X: make([]float64, 0, n), Y: make([]float64, 0, n)}
	for i := 0; i < n; i++ {
		s := w.points.At(i)
		if !s.Numeric {
			continue
		}
		dist.X = append(dist.X, float64(s.Index))
		dist.Y = append(dist.Y, s.Value)
	}

	f := Frame{Labels: w.labels, Series: []Series{dist}}
	if !w.average {
		return f
	}

	avg := Series{Name: SeriesAverage, X: make([]float64, 0, n), Y: make([]float64, 0, n)}
	for i := 0; i < n; i++ {
		s := w.points.At(i)
		if !s.HasAverage() {
			continue
		}
		avg.X = append(avg.X, float64(s.Index))
		avg.Y = append(avg.Y, *s.Average)
	}
	f.Series = append(f.Series, avg)
	return f
}

// Renderer draws frames somewhere.
type Renderer interface {
	Render(Frame) error
	Close() error
}

// Interactive is a renderer the user can close, such as a terminal window.
// Done is closed once the user asked to quit.
type Interactive interface {
	Renderer
	Done() <-chan struct{}
}
