// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/ultrasonic_plotter/internal/config"
)

type closeCounter struct {
	io.Reader
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestLineReaderDiscardsFirstLine(t *testing.T) {
	rc := &closeCounter{Reader: strings.NewReader("9\r\n 10 \n20\n\n30")}
	lr, err := NewLineReader(rc)
	require.NoError(t, err)

	var got []string
	for {
		line, err := lr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, line)
	}
	assert.Equal(t, []string{"10", "20", "", "30"}, got)

	require.NoError(t, lr.Close())
	require.NoError(t, lr.Close())
	assert.Equal(t, 1, rc.closed)
}

func TestLineReaderEmptyDevice(t *testing.T) {
	lr, err := NewLineReader(io.NopCloser(strings.NewReader("")))
	require.NoError(t, err)

	_, err = lr.Next()
	assert.Equal(t, io.EOF, err)
}

func TestLineReaderOnlyDiscardedLine(t *testing.T) {
	lr, err := NewLineReader(io.NopCloser(strings.NewReader("garbage\n")))
	require.NoError(t, err)

	_, err = lr.Next()
	assert.Equal(t, io.EOF, err)
}

func TestOpenDeviceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ardu0")
	require.NoError(t, os.WriteFile(path, []byte("4\n42\n"), 0o644))

	cfg := config.Default()
	cfg.DevicePath = path
	src, err := OpenDevice(cfg)
	require.NoError(t, err)
	defer src.Close()

	line, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "42", line)
}

func TestOpenDeviceMissing(t *testing.T) {
	cfg := config.Default()
	cfg.DevicePath = filepath.Join(t.TempDir(), "missing")
	_, err := OpenDevice(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open device")
}

func TestMockSource(t *testing.T) {
	src := NewMockSource()
	line, err := src.Next()
	require.NoError(t, err)
	assert.Len(t, line, 2)

	require.NoError(t, src.Close())
	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
}

func TestOpenDeviceMockDiscardsFirstLine(t *testing.T) {
	cfg := config.Default()
	cfg.DevicePath = MockDevicePath
	src, err := OpenDevice(cfg)
	require.NoError(t, err)
	defer src.Close()

	m, ok := src.(*mockSource)
	require.True(t, ok)
	assert.Equal(t, 1, m.emitted)

	line, err := src.Next()
	require.NoError(t, err)
	assert.Len(t, line, 2)
	assert.Equal(t, 2, m.emitted)
}

func TestMockDistanceRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		s := mockDistance(float64(i) * 0.05)
		require.Len(t, s, 2, s)
		assert.GreaterOrEqual(t, s, "10")
		assert.LessOrEqual(t, s, "99")
	}
}
