// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package distance

// Sample represents a single accepted ultrasonic reading.
type Sample struct {
	Index int    `json:"index"` // position on the time axis, starts at 0
	Raw   string `json:"raw"`   // trimmed device line

	Value   float64 `json:"value"`             // cm, valid when Numeric is true
	Numeric bool    `json:"numeric"`           // false for raw lines that are not numbers
	Average *float64 `json:"average,omitempty"` // running mean, set by the average variant only
}

// HasAverage reports whether the sample carries a running mean.
func (s Sample) HasAverage() bool { return s.Average != nil }
