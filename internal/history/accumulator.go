// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package history

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/relabs-tech/ultrasonic_plotter/internal/distance"
)

// Variant selects how device lines become samples.
type Variant int

const (
	// VariantRaw keeps every line as text; numeric lines are also plotted.
	VariantRaw Variant = iota
	// VariantAverage accepts two-digit readings only and tracks their running mean.
	VariantAverage
)

func (v Variant) String() string {
	switch v {
	case VariantRaw:
		return "raw"
	case VariantAverage:
		return "average"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// readingWidth is the character length of a valid reading in the average variant.
const readingWidth = 2

// Accumulator is the append-only history of accepted samples.
// Add must only be called from one goroutine; readers may take snapshots concurrently.
type Accumulator struct {
	variant Variant

	mu      sync.RWMutex
	samples []distance.Sample
	sum     int64 // exact sum of accepted values, average variant
}

// New creates an empty accumulator for the given variant.
func New(variant Variant) *Accumulator {
	return &Accumulator{variant: variant}
}

// Variant returns the policy this accumulator applies.
func (a *Accumulator) Variant() Variant { return a.variant }

// Add applies the variant policy to one trimmed device line.
// It reports whether the line became a sample. A rejected line leaves the
// history untouched. In the average variant a two-character line that is not
// two ASCII digits yields a *MalformedReadingError.
func (a *Accumulator) Add(line string) (distance.Sample, bool, error) {
	switch a.variant {
	case VariantRaw:
		return a.addRaw(line), true, nil
	case VariantAverage:
		return a.addReading(line)
	default:
		return distance.Sample{}, false, fmt.Errorf("unknown variant %v", a.variant)
	}
}

func (a *Accumulator) addRaw(line string) distance.Sample {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := distance.Sample{Index: len(a.samples), Raw: line}
	if v, err := strconv.ParseFloat(line, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		s.Value = v
		s.Numeric = true
	}
	a.samples = append(a.samples, s)
	return s
}

func (a *Accumulator) addReading(line string) (distance.Sample, bool, error) {
	if utf8.RuneCountInString(line) != readingWidth {
		return distance.Sample{}, false, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	v, err := ParseReading(line)
	if err != nil {
		return distance.Sample{}, false, &MalformedReadingError{Line: line, Index: len(a.samples)}
	}

	a.sum += int64(v)
	n := len(a.samples) + 1
	avg := float64(a.sum) / float64(n)
	s := distance.Sample{
		Index:   len(a.samples),
		Raw:     line,
		Value:   float64(v),
		Numeric: true,
		Average: &avg,
	}
	a.samples = append(a.samples, s)
	return s, true, nil
}

// ParseReading converts a reading made of exactly two ASCII digits ("00".."99").
func ParseReading(line string) (int, error) {
	if len(line) != readingWidth {
		return 0, ErrMalformedReading
	}
	v := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c < '0' || c > '9' {
			return 0, ErrMalformedReading
		}
		v = v*10 + int(c-'0')
	}
	return v, nil
}

// Len returns the number of accepted samples.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.samples)
}

// Last returns the most recent sample.
func (a *Accumulator) Last() (distance.Sample, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.samples) == 0 {
		return distance.Sample{}, false
	}
	return a.samples[len(a.samples)-1], true
}

// Snapshot returns a copy of the whole history.
func (a *Accumulator) Snapshot() []distance.Sample {
	return a.Since(0)
}

// Since returns a copy of the samples with index >= n.
func (a *Accumulator) Since(n int) []distance.Sample {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(a.samples) {
		return nil
	}
	out := make([]distance.Sample, len(a.samples)-n)
	copy(out, a.samples[n:])
	return out
}

// Indices returns the time axis sequence.
func (a *Accumulator) Indices() []int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]int, len(a.samples))
	for i, s := range a.samples {
		out[i] = s.Index
	}
	return out
}

// Values returns the raw value sequence as text.
func (a *Accumulator) Values() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.samples))
	for i, s := range a.samples {
		out[i] = s.Raw
	}
	return out
}

// Readings returns the numeric value sequence; non-numeric raw lines are NaN.
func (a *Accumulator) Readings() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]float64, len(a.samples))
	for i, s := range a.samples {
		if s.Numeric {
			out[i] = s.Value
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Averages returns the running average sequence. It is empty for the raw variant.
func (a *Accumulator) Averages() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.variant != VariantAverage {
		return nil
	}
	out := make([]float64, len(a.samples))
	for i, s := range a.samples {
		out[i] = *s.Average
	}
	return out
}
