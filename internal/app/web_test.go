// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/ultrasonic_plotter/internal/distance"
	"github.com/relabs-tech/ultrasonic_plotter/internal/history"
	"github.com/relabs-tech/ultrasonic_plotter/internal/plot"
)

func newTestWebView(t *testing.T) (*WebView, *history.Accumulator, *httptest.Server) {
	t.Helper()
	acc := history.New(history.VariantAverage)
	v := NewWebView(acc, 320, 240)
	srv := httptest.NewServer(v.Handler())
	t.Cleanup(func() {
		v.Close()
		srv.Close()
	})
	return v, acc, srv
}

func TestWebHistory(t *testing.T) {
	_, acc, srv := newTestWebView(t)

	for _, line := range []string{"10", "20"} {
		_, _, err := acc.Add(line)
		require.NoError(t, err)
	}

	resp, err := http.Get(srv.URL + "/api/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Variant string            `json:"variant"`
		Samples []distance.Sample `json:"samples"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "average", body.Variant)
	require.Len(t, body.Samples, 2)
	require.NotNil(t, body.Samples[1].Average)
	assert.Equal(t, 15.0, *body.Samples[1].Average)
}

func TestWebHistoryEmpty(t *testing.T) {
	_, _, srv := newTestWebView(t)

	resp, err := http.Get(srv.URL + "/api/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"samples":[]`)
}

func TestWebChart(t *testing.T) {
	v, acc, srv := newTestWebView(t)

	resp, err := http.Get(srv.URL + "/chart.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	w := plot.NewWindow(testLabels, true, 0)
	for _, line := range []string{"10", "30"} {
		s, _, err := acc.Add(line)
		require.NoError(t, err)
		w.Append(s)
	}
	require.NoError(t, v.Render(w.Frame()))

	resp, err = http.Get(srv.URL + "/chart.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestWebIndex(t *testing.T) {
	_, _, srv := newTestWebView(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/chart.png")
	assert.Contains(t, string(data), "/ws")
}

func TestWebSocketStream(t *testing.T) {
	v, _, srv := newTestWebView(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return v.Clients() == 1 }, time.Second, time.Millisecond)

	avg := 37.5
	want := distance.Sample{Index: 3, Raw: "42", Value: 42, Numeric: true, Average: &avg}
	require.NoError(t, v.Publish(want))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got distance.Sample
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, want, got)

	require.NoError(t, v.Close())
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Equal(t, 0, v.Clients())
}

func TestWebSocketClientGone(t *testing.T) {
	v, _, srv := newTestWebView(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return v.Clients() == 1 }, time.Second, time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return v.Clients() == 0 }, time.Second, time.Millisecond)
	assert.NoError(t, v.Publish(distance.Sample{Index: 0, Raw: "10", Value: 10, Numeric: true}))
}
