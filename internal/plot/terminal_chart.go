// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package plot

import (
	"fmt"
	"image"
	"math"

	"github.com/gizak/termui"
)

const (
	// yLabelWidth is the column reserved for the value labels left of the axis.
	yLabelWidth = 7
	brailleBase = '\u2800'
)

// brailleDots[row][col] is the dot bit of a braille cell, row 0 at the top.
var brailleDots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

var seriesTermColors = map[string]termui.Attribute{
	SeriesDistance: termui.ColorBlue,
	SeriesAverage:  termui.ColorYellow,
}

// overlayChart draws all series of a frame on one braille plot with shared
// axes. Each braille cell holds 2x4 dots, one x step per horizontal dot.
// Bounds are recomputed from the visible points on every frame.
type overlayChart struct {
	termui.Block
	AxesColor termui.Attribute

	series     []Series
	minX, maxX float64
	minY, maxY float64
}

func newOverlayChart() *overlayChart {
	return &overlayChart{Block: *termui.NewBlock(), AxesColor: termui.ColorWhite}
}

// plotArea is the part of the inner area where dots go; the two bottom rows
// hold the x axis and its labels.
func (c *overlayChart) plotArea() image.Rectangle {
	inner := c.InnerBounds()
	return image.Rect(inner.Min.X+yLabelWidth+1, inner.Min.Y, inner.Max.X, inner.Max.Y-2)
}

// capacity is the number of x steps that fit the plot width.
func (c *overlayChart) capacity() int {
	if n := 2 * c.plotArea().Dx(); n > 1 {
		return n
	}
	return 2
}

// SetFrame keeps the newest points of f that fit the current width.
func (c *overlayChart) SetFrame(f Frame) {
	lastX := math.Inf(-1)
	for _, s := range f.Series {
		if n := len(s.X); n > 0 {
			lastX = math.Max(lastX, s.X[n-1])
		}
	}

	c.series = c.series[:0]
	if math.IsInf(lastX, -1) {
		return
	}
	cutoff := lastX - float64(c.capacity()-1)
	for _, s := range f.Series {
		from := 0
		for from < len(s.X) && s.X[from] < cutoff {
			from++
		}
		if from < len(s.X) {
			c.series = append(c.series, Series{Name: s.Name, X: s.X[from:], Y: s.Y[from:]})
		}
	}
	c.minX, c.maxX, c.minY, c.maxY = Frame{Series: c.series}.Bounds()
}

// Buffer implements termui.Bufferer.
func (c *overlayChart) Buffer() termui.Buffer {
	buf := c.Block.Buffer()
	area := c.plotArea()
	if len(c.series) == 0 || area.Dx() < 1 || area.Dy() < 1 {
		return buf
	}

	c.drawAxes(buf, area)

	dotsX, dotsY := 2*area.Dx(), 4*area.Dy()
	cells := make(map[image.Point]rune)
	colors := make(map[image.Point]termui.Attribute)
	for _, s := range c.series {
		for i := range s.X {
			dx := int(math.Round(s.X[i] - c.minX))
			if dx < 0 || dx >= dotsX {
				continue
			}
			dy := int(math.Round((s.Y[i] - c.minY) / (c.maxY - c.minY) * float64(dotsY-1)))
			pt := image.Pt(area.Min.X+dx/2, area.Max.Y-1-dy/4)
			cells[pt] |= brailleDots[3-dy%4][dx%2]
			colors[pt] = seriesTermColors[s.Name]
		}
	}
	for pt, dots := range cells {
		buf.Set(pt.X, pt.Y, termui.Cell{Ch: brailleBase + dots, Fg: colors[pt], Bg: c.Bg})
	}
	return buf
}

func (c *overlayChart) drawAxes(buf termui.Buffer, area image.Rectangle) {
	axisX, axisY := area.Min.X-1, area.Max.Y
	buf.Set(axisX, axisY, termui.Cell{Ch: termui.ORIGIN, Fg: c.AxesColor, Bg: c.Bg})
	for x := area.Min.X; x < area.Max.X; x++ {
		buf.Set(x, axisY, termui.Cell{Ch: termui.HDASH, Fg: c.AxesColor, Bg: c.Bg})
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		buf.Set(axisX, y, termui.Cell{Ch: termui.VDASH, Fg: c.AxesColor, Bg: c.Bg})
	}

	c.text(buf, area.Min.X-yLabelWidth-1, area.Min.Y, fmt.Sprintf("%*.1f", yLabelWidth, c.maxY))
	c.text(buf, area.Min.X-yLabelWidth-1, area.Max.Y-1, fmt.Sprintf("%*.1f", yLabelWidth, c.minY))

	first := fmt.Sprintf("%.0f", c.minX)
	last := fmt.Sprintf("%.0f", c.lastX())
	c.text(buf, area.Min.X, axisY+1, first)
	if x := area.Max.X - len(last); x > area.Min.X+len(first) {
		c.text(buf, x, axisY+1, last)
	}
}

func (c *overlayChart) lastX() float64 {
	last := c.minX
	for _, s := range c.series {
		last = math.Max(last, s.X[len(s.X)-1])
	}
	return last
}

func (c *overlayChart) text(buf termui.Buffer, x, y int, s string) {
	for i, r := range s {
		buf.Set(x+i, y, termui.Cell{Ch: r, Fg: c.AxesColor, Bg: c.Bg})
	}
}
