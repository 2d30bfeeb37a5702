// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"
)

type mockSource struct {
	start  time.Time
	period time.Duration

	closed chan struct{}
	once   sync.Once

	emitted int // lines returned so far
}

// NewMockSource creates a source that emits a smooth two-digit distance
// every 100ms, the rate a typical HC-SR04 sketch prints at.
func NewMockSource() Source {
	return &mockSource{
		start:  time.Now(),
		period: 100 * time.Millisecond,
		closed: make(chan struct{}),
	}
}

func (m *mockSource) Next() (string, error) {
	select {
	case <-m.closed:
		return "", io.EOF
	case <-time.After(m.period):
	}
	m.emitted++
	return mockDistance(time.Since(m.start).Seconds()), nil
}

// mockDistance keeps the curve inside 10..99 cm.
func mockDistance(elapsed float64) string {
	d := 55 + 35*math.Sin(elapsed*0.8) + 8*math.Sin(elapsed*3.1)
	d = math.Max(10, math.Min(99, d))
	return fmt.Sprintf("%02d", int(d))
}

func (m *mockSource) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}
