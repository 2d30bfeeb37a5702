// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/ultrasonic_plotter/internal/config"
	"github.com/relabs-tech/ultrasonic_plotter/internal/distance"
)

// MQTTPublisher publishes every accepted sample as JSON.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

// NewMQTTPublisher connects to the broker configured in cfg.
func NewMQTTPublisher(cfg *config.Config) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("mqtt: connected to MQTT broker at %s", cfg.MQTTBroker)

	return &MQTTPublisher{client: client, topic: cfg.TopicDistance}, nil
}

// Publish sends s to the distance topic and waits for the broker.
func (m *MQTTPublisher) Publish(s distance.Sample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("mqtt: marshal sample: %w", err)
	}

	token := m.client.Publish(m.topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt: publish %s: %w", m.topic, token.Error())
	}
	log.WithField("index", s.Index).Debug("mqtt: published sample")
	return nil
}

// Close disconnects from the broker.
func (m *MQTTPublisher) Close() error {
	m.client.Disconnect(250)
	log.Println("mqtt: disconnected")
	return nil
}
