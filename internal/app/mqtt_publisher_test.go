// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/ultrasonic_plotter/internal/distance"
)

type doneToken struct{ err error }

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *doneToken) Error() error { return t.err }

// fakeClient implements the parts of mqtt.Client the publisher uses.
type fakeClient struct {
	mqtt.Client

	topics       []string
	payloads     [][]byte
	err          error
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return &doneToken{err: c.err}
}

func (c *fakeClient) Disconnect(quiesce uint) { c.disconnected = true }

func TestMQTTPublisherPublishesJSON(t *testing.T) {
	client := &fakeClient{}
	pub := &MQTTPublisher{client: client, topic: "ultrasonic/distance"}

	avg := 20.0
	s := distance.Sample{Index: 2, Raw: "30", Value: 30, Numeric: true, Average: &avg}
	require.NoError(t, pub.Publish(s))

	require.Len(t, client.payloads, 1)
	assert.Equal(t, "ultrasonic/distance", client.topics[0])
	assert.JSONEq(t, `{"index":2,"raw":"30","value":30,"numeric":true,"average":20}`, string(client.payloads[0]))

	var back distance.Sample
	require.NoError(t, json.Unmarshal(client.payloads[0], &back))
	assert.Equal(t, s, back)

	require.NoError(t, pub.Close())
	assert.True(t, client.disconnected)
}

func TestMQTTPublisherError(t *testing.T) {
	brokerErr := errors.New("not connected")
	pub := &MQTTPublisher{client: &fakeClient{err: brokerErr}, topic: "ultrasonic/distance"}

	err := pub.Publish(distance.Sample{Raw: "10", Value: 10, Numeric: true})
	assert.ErrorIs(t, err, brokerErr)
}
