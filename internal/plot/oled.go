// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package plot

import (
	"fmt"
	"image"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

const (
	oledWidth  = 128
	oledHeight = 64
	// sparkline area below the text line
	oledPlotTop = 16
)

// OLED mirrors the chart on a 128x64 SSD1306 panel: the latest values on
// the first line and a sparkline of the distance underneath.
type OLED struct {
	bus   i2c.BusCloser
	dev   *ssd1306.Dev
	every time.Duration
	last  time.Time
}

// NewOLED opens the panel on the named I2C bus ("" = first bus). Updates are
// throttled to one per interval.
func NewOLED(busName string, interval time.Duration) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: ssd1306 initialized on bus %q", busName)

	o := &OLED{bus: bus, dev: dev, every: interval}
	if err := dev.Draw(dev.Bounds(), drawOLEDText("Ultrasonic", "Waiting..."), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}
	return o, nil
}

// Render draws f unless the previous update is more recent than the interval.
func (o *OLED) Render(f Frame) error {
	if f.Empty() {
		return nil
	}
	now := time.Now()
	if now.Sub(o.last) < o.every {
		return nil
	}
	o.last = now
	return o.dev.Draw(o.dev.Bounds(), drawOLEDFrame(f), image.Point{})
}

// Close blanks the panel and releases the bus.
func (o *OLED) Close() error {
	if err := o.dev.Halt(); err != nil {
		log.Printf("display: halt: %v", err)
	}
	return o.bus.Close()
}

func newOLEDImage() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, oledWidth, oledHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawOLEDText(lines ...string) *image1bit.VerticalLSB {
	img, drawer := newOLEDImage()
	for i, l := range lines {
		drawer.Dot = fixed.P(0, 13*(i+2))
		drawer.DrawString(l)
	}
	return img
}

// drawOLEDFrame renders the newest points of every series that fit the panel
// width. The first series is drawn solid, the others dotted.
func drawOLEDFrame(f Frame) *image1bit.VerticalLSB {
	img, drawer := newOLEDImage()

	drawer.Dot = fixed.P(0, 12)
	drawer.DrawString(oledHeadline(f))

	tails := make([]Series, 0, len(f.Series))
	for _, s := range f.Series {
		from := 0
		if len(s.Y) > oledWidth {
			from = len(s.Y) - oledWidth
		}
		tails = append(tails, Series{Name: s.Name, X: s.X[from:], Y: s.Y[from:]})
	}
	_, _, minY, maxY := Frame{Series: tails}.Bounds()

	plotH := oledHeight - oledPlotTop - 1
	for si, s := range tails {
		for i, y := range s.Y {
			if si > 0 && i%2 == 1 {
				continue
			}
			py := oledHeight - 1 - int(math.Round((y-minY)/(maxY-minY)*float64(plotH)))
			img.SetBit(i, py, image1bit.On)
		}
	}
	return img
}

func oledHeadline(f Frame) string {
	var text string
	for _, s := range f.Series {
		n := len(s.Y)
		if n == 0 {
			continue
		}
		switch s.Name {
		case SeriesDistance:
			text += fmt.Sprintf("%.0fcm ", s.Y[n-1])
		case SeriesAverage:
			text += fmt.Sprintf("avg %.1f", s.Y[n-1])
		}
	}
	return text
}
