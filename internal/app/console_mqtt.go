// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/ultrasonic_plotter/internal/config"
	"github.com/relabs-tech/ultrasonic_plotter/internal/distance"
)

// RunConsoleMQTT prints the samples another plotter publishes until Ctrl+C.
func RunConsoleMQTT(cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("console: MQTT_BROKER is not configured")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicDistance, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s distance.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: sample unmarshal error: %v", err)
			return
		}
		fmt.Println(formatSample(s))
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicDistance)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func formatSample(s distance.Sample) string {
	switch {
	case !s.Numeric:
		return fmt.Sprintf("[DIST] #%-6d raw=%q", s.Index, s.Raw)
	case s.HasAverage():
		return fmt.Sprintf("[DIST] #%-6d value=%6.1f  avg=%6.2f", s.Index, s.Value, *s.Average)
	default:
		return fmt.Sprintf("[DIST] #%-6d value=%6.1f", s.Index, s.Value)
	}
}
