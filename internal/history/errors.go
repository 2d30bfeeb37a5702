// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package history

import (
	"errors"
	"fmt"
)

// ErrMalformedReading is returned for a line that has the shape of a reading
// but cannot be converted to a distance.
var ErrMalformedReading = errors.New("malformed reading")

// MalformedReadingError carries the offending line and its sample position.
type MalformedReadingError struct {
	Line  string
	Index int // index the reading would have taken
}

func (e *MalformedReadingError) Error() string {
	return fmt.Sprintf("%v at index %d: %q is not two ASCII digits", ErrMalformedReading, e.Index, e.Line)
}

func (e *MalformedReadingError) Unwrap() error { return ErrMalformedReading }
