// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func litInColumn(img *image1bit.VerticalLSB, x int) []int {
	var ys []int
	for y := oledPlotTop; y < oledHeight; y++ {
		if img.BitAt(x, y) == image1bit.On {
			ys = append(ys, y)
		}
	}
	return ys
}

func TestDrawOLEDFrameScalesSparkline(t *testing.T) {
	w := NewWindow(testLabels, false, 0)
	w.Append(averageSamples(10, 90)...)

	img := drawOLEDFrame(w.Frame())
	assert.Equal(t, []int{oledHeight - 1}, litInColumn(img, 0))
	assert.Equal(t, []int{oledPlotTop}, litInColumn(img, 1))
	assert.Empty(t, litInColumn(img, 2))
}

func TestDrawOLEDFrameKeepsNewestPoints(t *testing.T) {
	values := make([]float64, oledWidth+10)
	for i := range values {
		values[i] = 50
	}
	values[len(values)-1] = 60

	w := NewWindow(testLabels, false, 0)
	w.Append(averageSamples(values...)...)

	img := drawOLEDFrame(w.Frame())
	assert.Equal(t, []int{oledPlotTop}, litInColumn(img, oledWidth-1))
}

func TestOLEDHeadline(t *testing.T) {
	w := NewWindow(testLabels, true, 0)
	w.Append(averageSamples(10, 21)...)
	assert.Equal(t, "21cm avg 15.5", oledHeadline(w.Frame()))
}
