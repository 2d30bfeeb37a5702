// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/ultrasonic_plotter/internal/config"
)

// MockDevicePath selects the synthetic source instead of a real device.
const MockDevicePath = "mock"

// Source yields one trimmed device line per call.
type Source interface {
	Next() (string, error)
	Close() error
}

// LineReader reads newline-terminated readings from a device stream.
type LineReader struct {
	rc     io.ReadCloser
	reader *bufio.Reader

	closeOnce sync.Once
	closeErr  error
}

// OpenDevice opens the sensor described by cfg and discards its first line.
// With SERIAL_BAUD_RATE > 0 the port is configured 8N1 at that rate; otherwise
// the path is opened as a plain file and is expected to be configured already.
func OpenDevice(cfg *config.Config) (Source, error) {
	if cfg.DevicePath == MockDevicePath {
		log.Println("device: using mock ultrasonic source")
		return discardFirst(NewMockSource())
	}

	var (
		rc  io.ReadCloser
		err error
	)
	if cfg.SerialBaudRate > 0 {
		serialOpts := serial.OpenOptions{
			PortName:              cfg.DevicePath,
			BaudRate:              uint(cfg.SerialBaudRate),
			DataBits:              8,
			StopBits:              1,
			MinimumReadSize:       1,
			ParityMode:            serial.PARITY_NONE,
			InterCharacterTimeout: 0,
		}
		rc, err = serial.Open(serialOpts)
		if err != nil {
			return nil, fmt.Errorf("open serial port %s: %w", cfg.DevicePath, err)
		}
		log.Printf("device: serial port opened on %s at %d baud", cfg.DevicePath, cfg.SerialBaudRate)
	} else {
		rc, err = os.Open(cfg.DevicePath)
		if err != nil {
			return nil, fmt.Errorf("open device: %w", err)
		}
		log.Printf("device: opened %s", cfg.DevicePath)
	}

	lr, err := NewLineReader(rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return lr, nil
}

// NewLineReader wraps rc and reads and discards the first line, which is
// usually a partial sample left over in the device buffer.
func NewLineReader(rc io.ReadCloser) (*LineReader, error) {
	lr := &LineReader{rc: rc, reader: bufio.NewReader(rc)}
	discarded, err := lr.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("discard first line: %w", err)
	}
	log.WithField("line", strings.TrimSpace(discarded)).Debug("device: discarded first line")
	return lr, nil
}

// discardFirst drops one line from src, like NewLineReader does for a device.
func discardFirst(src Source) (Source, error) {
	discarded, err := src.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		src.Close()
		return nil, fmt.Errorf("discard first line: %w", err)
	}
	log.WithField("line", discarded).Debug("device: discarded first line")
	return src, nil
}

// Next blocks until a full line is available and returns it without
// surrounding whitespace. A trailing partial line is returned once before io.EOF.
func (r *LineReader) Next() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Close releases the device. It is safe to call more than once.
func (r *LineReader) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.rc.Close()
	})
	return r.closeErr
}
