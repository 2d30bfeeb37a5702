// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package plot

import "errors"

var (
	// ErrNoData is returned when a frame has nothing to draw yet.
	ErrNoData = errors.New("no data to plot")
	// ErrWindowClosed is returned by a renderer whose window the user closed.
	ErrWindowClosed = errors.New("chart window closed")
)
