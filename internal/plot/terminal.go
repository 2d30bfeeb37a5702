// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package plot

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gizak/termui"
	log "github.com/sirupsen/logrus"
)

var seriesTermMarkup = map[string]string{
	SeriesDistance: "fg-blue",
	SeriesAverage:  "fg-yellow",
}

// Terminal draws the chart in the console. Pressing q closes it.
type Terminal struct {
	labels Labels

	mu     sync.Mutex
	header *termui.Par
	legend *termui.Par
	chart  *overlayChart
	last   Frame

	logOut    io.Writer
	done      chan struct{}
	closeOnce sync.Once
}

// NewTerminal takes over the terminal and starts the event loop. The standard
// logger is muted until Close so log lines do not tear the screen.
func NewTerminal(labels Labels) (*Terminal, error) {
	if err := termui.Init(); err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}

	t := &Terminal{labels: labels, done: make(chan struct{}), logOut: log.StandardLogger().Out}
	log.SetOutput(io.Discard)

	t.header = termui.NewPar("")
	t.header.Height = 3
	t.header.TextFgColor = termui.ColorWhite
	t.header.BorderLabel = " " + labels.Title + " "
	t.header.BorderFg = termui.ColorCyan
	t.header.Text = "waiting for readings... (q)uit"

	t.legend = termui.NewPar("")
	t.legend.Height = 1
	t.legend.Border = false

	t.chart = newOverlayChart()
	t.chart.BorderLabel = " " + labels.YLabel + " "

	quit := func(termui.Event) { termui.StopLoop() }
	termui.Handle("/sys/kbd/q", quit)
	termui.Handle("/sys/kbd/C-c", quit)
	termui.Handle("/sys/wnd/resize", func(termui.Event) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.redraw()
	})

	t.redraw()

	go func() {
		termui.Loop()
		close(t.done)
	}()
	return t, nil
}

// Done is closed when the user quits.
func (t *Terminal) Done() <-chan struct{} { return t.done }

// Render replaces the chart contents with f.
func (t *Terminal) Render(f Frame) error {
	select {
	case <-t.done:
		return ErrWindowClosed
	default:
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if f.Empty() {
		return nil
	}
	t.last = f
	t.header.Text = headerText(f) + "  (q)uit"
	t.legend.Text = legendText(f)
	t.redraw()
	return nil
}

// redraw must be called with mu held. The chart is sized before the frame
// is applied so the visible tail follows the terminal width.
func (t *Terminal) redraw() {
	termui.Body.Rows = nil
	termui.Body.AddRows(termui.NewRow(termui.NewCol(12, 0, t.header)))
	if !t.last.Empty() {
		h := termui.TermHeight() - t.header.Height - t.legend.Height
		if h < 6 {
			h = 6
		}
		t.chart.Height = h
		termui.Body.AddRows(
			termui.NewRow(termui.NewCol(12, 0, t.chart)),
			termui.NewRow(termui.NewCol(12, 0, t.legend)),
		)
	}
	termui.Body.Width = termui.TermWidth()
	termui.Body.Align()

	t.chart.SetFrame(t.last)
	termui.Clear()
	termui.Render(termui.Body)
}

// Close restores the terminal. It is safe to call more than once.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		termui.StopLoop()
		termui.Close()
		log.SetOutput(t.logOut)
	})
	return nil
}

// headerText summarises the latest point of every series.
func headerText(f Frame) string {
	var parts []string
	for _, s := range f.Series {
		if n := len(s.Y); n > 0 {
			parts = append(parts, fmt.Sprintf("%s %.1f @ %.0f", s.Name, s.Y[n-1], s.X[n-1]))
		}
	}
	return strings.Join(parts, " | ")
}

// legendText names every series in its line colour.
func legendText(f Frame) string {
	var legend []string
	for _, s := range f.Series {
		if len(s.Y) > 0 {
			legend = append(legend, fmt.Sprintf("[%s](%s)", s.Name, seriesTermMarkup[s.Name]))
		}
	}
	return " " + strings.Join(legend, "  ") + "   x: " + f.XLabel
}
