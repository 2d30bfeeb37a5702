// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package plot

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var seriesColors = map[string]drawing.Color{
	SeriesDistance: chart.ColorBlue,
	SeriesAverage:  chart.ColorOrange,
}

// RenderPNG draws f as a PNG image of the given size into w.
func RenderPNG(w io.Writer, f Frame, width, height int) error {
	if f.Empty() {
		return ErrNoData
	}
	minX, maxX, minY, maxY := f.Bounds()

	ch := chart.Chart{
		Title:  f.Title,
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name:  f.XLabel,
			Range: &chart.ContinuousRange{Min: minX, Max: maxX},
		},
		YAxis: chart.YAxis{
			Name:  f.YLabel,
			Range: &chart.ContinuousRange{Min: minY, Max: maxY},
		},
	}
	for _, s := range f.Series {
		if len(s.X) == 0 {
			continue
		}
		ch.Series = append(ch.Series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: s.X,
			YValues: s.Y,
			Style: chart.Style{
				StrokeColor: seriesColors[s.Name],
				StrokeWidth: 2,
			},
		})
	}
	if f.ShowLegend() {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

// PNGFile is a renderer that keeps the latest chart in a file on disk.
type PNGFile struct {
	path          string
	width, height int
}

// NewPNGFile creates a renderer writing to path.
func NewPNGFile(path string, width, height int) *PNGFile {
	return &PNGFile{path: path, width: width, height: height}
}

// Render replaces the file atomically so viewers never see a partial image.
func (p *PNGFile) Render(f Frame) error {
	var buf bytes.Buffer
	if err := RenderPNG(&buf, f, p.width, p.height); err != nil {
		if err == ErrNoData {
			return nil
		}
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".chart-*.png")
	if err != nil {
		return fmt.Errorf("png output: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("png output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("png output: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("png output: %w", err)
	}
	log.WithField("path", p.path).Debug("png: chart written")
	return nil
}

// Close is a no-op; the last chart stays on disk.
func (p *PNGFile) Close() error { return nil }
