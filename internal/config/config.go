// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file the binaries look for when -config is not given.
const DefaultPath = "ultrasonic_config.txt"

// Config holds all application configuration values.
type Config struct {
	// Device
	DevicePath     string `yaml:"device_path"`
	SerialBaudRate int    `yaml:"serial_baud_rate"` // 0 = open as a plain, pre-configured file
	LineBuffer     int    `yaml:"line_buffer"`      // lines queued between reader and plotter

	// Timing
	TickInterval          int `yaml:"tick_interval_ms"`        // milliseconds, 0 = variant default
	DisplayUpdateInterval int `yaml:"display_update_interval"` // milliseconds

	// Chart
	HistoryWindow   int    `yaml:"history_window"` // points kept on screen, 0 = whole session
	ChartTitle      string `yaml:"chart_title"`
	XLabel          string `yaml:"x_label"`
	YLabel          string `yaml:"y_label"`
	TerminalEnabled bool   `yaml:"terminal_enabled"`
	PNGOutputPath   string `yaml:"png_output_path"`
	PNGWidth        int    `yaml:"png_width"`
	PNGHeight       int    `yaml:"png_height"`

	// Web Server
	WebServerPort int `yaml:"web_server_port"` // 0 = disabled

	// MQTT
	MQTTBroker          string `yaml:"mqtt_broker"` // empty = disabled
	MQTTClientID        string `yaml:"mqtt_client_id"`
	MQTTClientIDConsole string `yaml:"mqtt_client_id_console"`
	TopicDistance       string `yaml:"topic_distance"`

	// Display
	DisplayI2CBus string `yaml:"display_i2c_bus"` // empty = no OLED
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DevicePath:            "/dev/ardu0",
		LineBuffer:            64,
		DisplayUpdateInterval: 250,
		ChartTitle:            "Ultrasonic sensor value",
		XLabel:                "Time(s)",
		YLabel:                "Value(cm)",
		TerminalEnabled:       true,
		PNGWidth:              800,
		PNGHeight:             480,
		MQTTClientID:          "ultrasonic-plotter",
		MQTTClientIDConsole:   "ultrasonic-console-subscriber",
		TopicDistance:         "ultrasonic/distance",
	}
}

// Load reads the configuration file and returns a Config struct.
// Files ending in .yaml or .yml are decoded as YAML, everything else as KEY=VALUE lines.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg *Config
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		cfg, err = parseYAML(file)
	default:
		cfg, err = parseKeyValue(file)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func parseYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing yaml config: %w", err)
	}
	return cfg, nil
}

func parseKeyValue(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Device
	case "DEVICE_PATH":
		c.DevicePath = value
	case "SERIAL_BAUD_RATE":
		return setInt(&c.SerialBaudRate, key, value)
	case "LINE_BUFFER":
		return setInt(&c.LineBuffer, key, value)

	// Timing
	case "TICK_INTERVAL_MS":
		return setInt(&c.TickInterval, key, value)
	case "DISPLAY_UPDATE_INTERVAL":
		return setInt(&c.DisplayUpdateInterval, key, value)

	// Chart
	case "HISTORY_WINDOW":
		return setInt(&c.HistoryWindow, key, value)
	case "CHART_TITLE":
		c.ChartTitle = value
	case "X_LABEL":
		c.XLabel = value
	case "Y_LABEL":
		c.YLabel = value
	case "TERMINAL_ENABLED":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid TERMINAL_ENABLED %q: %w", value, err)
		}
		c.TerminalEnabled = enabled
	case "PNG_OUTPUT_PATH":
		c.PNGOutputPath = value
	case "PNG_WIDTH":
		return setInt(&c.PNGWidth, key, value)
	case "PNG_HEIGHT":
		return setInt(&c.PNGHeight, key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		return setInt(&c.WebServerPort, key, value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "TOPIC_DISTANCE":
		c.TopicDistance = value

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

// validate checks that all required fields are set and in range.
func (c *Config) validate() error {
	if c.DevicePath == "" {
		return fmt.Errorf("DEVICE_PATH is required")
	}
	if c.SerialBaudRate < 0 {
		return fmt.Errorf("SERIAL_BAUD_RATE must be >= 0, got %d", c.SerialBaudRate)
	}
	if c.LineBuffer <= 0 {
		return fmt.Errorf("LINE_BUFFER must be > 0, got %d", c.LineBuffer)
	}
	if c.TickInterval < 0 {
		return fmt.Errorf("TICK_INTERVAL_MS must be >= 0, got %d", c.TickInterval)
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("HISTORY_WINDOW must be >= 0, got %d", c.HistoryWindow)
	}
	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", c.WebServerPort)
	}
	if c.PNGOutputPath != "" || c.WebServerPort != 0 {
		if c.PNGWidth <= 0 || c.PNGHeight <= 0 {
			return fmt.Errorf("PNG_WIDTH and PNG_HEIGHT must be > 0")
		}
	}
	if c.MQTTBroker != "" && c.TopicDistance == "" {
		return fmt.Errorf("TOPIC_DISTANCE is required when MQTT_BROKER is set")
	}
	if c.DisplayI2CBus != "" && c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL is required when DISPLAY_I2C_BUS is set")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = LoadOrDefault(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
