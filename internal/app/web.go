// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/ultrasonic_plotter/internal/distance"
	"github.com/relabs-tech/ultrasonic_plotter/internal/history"
	"github.com/relabs-tech/ultrasonic_plotter/internal/plot"
)

//go:embed static
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientQueue is how many samples a slow websocket client may lag behind
// before it is disconnected.
const clientQueue = 256

type wsClient struct {
	conn *websocket.Conn
	send chan distance.Sample
}

// WebView serves the chart over HTTP. It is a renderer (the latest frame
// backs /chart.png) and a sink (new samples are pushed to /ws clients).
type WebView struct {
	acc           *history.Accumulator
	width, height int

	frameMu sync.RWMutex
	frame   plot.Frame

	clientsMu sync.Mutex
	clients   map[*wsClient]struct{}

	server    *http.Server
	closeOnce sync.Once
}

// NewWebView creates a web view over acc. Charts are width x height pixels.
func NewWebView(acc *history.Accumulator, width, height int) *WebView {
	return &WebView{
		acc:     acc,
		width:   width,
		height:  height,
		clients: make(map[*wsClient]struct{}),
	}
}

// Handler returns the HTTP routes of the view.
func (v *WebView) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := struct {
			Variant string            `json:"variant"`
			Samples []distance.Sample `json:"samples"`
		}{
			Variant: v.acc.Variant().String(),
			Samples: v.acc.Snapshot(),
		}
		if resp.Samples == nil {
			resp.Samples = []distance.Sample{}
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	mux.HandleFunc("/chart.png", func(w http.ResponseWriter, r *http.Request) {
		v.frameMu.RLock()
		f := v.frame
		v.frameMu.RUnlock()

		var buf bytes.Buffer
		if err := plot.RenderPNG(&buf, f, v.width, v.height); err != nil {
			if errors.Is(err, plot.ErrNoData) {
				http.Error(w, "no data yet", http.StatusServiceUnavailable)
				return
			}
			log.Printf("web: chart render error: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(buf.Bytes())
	})

	mux.HandleFunc("/ws", v.handleWebSocket)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("/", http.FileServer(http.FS(static)))
	return mux
}

// Start listens on addr and serves until ctx is done or Close is called.
func (v *WebView) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("web: listen %s: %w", addr, err)
	}
	v.server = &http.Server{
		Handler:           v.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	log.Printf("web: server listening on %s", ln.Addr())

	go func() {
		if err := v.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("web: server error: %v", err)
		}
	}()
	return nil
}

func (v *WebView) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan distance.Sample, clientQueue)}
	v.clientsMu.Lock()
	v.clients[c] = struct{}{}
	v.clientsMu.Unlock()
	log.Printf("web: websocket client connected from %s", r.RemoteAddr)

	go func() {
		for s := range c.send {
			if err := conn.WriteJSON(s); err != nil {
				log.Printf("web: websocket write error: %v", err)
				conn.Close()
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	// Incoming messages are ignored; reading detects the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: websocket error: %v", err)
			}
			break
		}
	}
	v.removeClient(c)
}

func (v *WebView) removeClient(c *wsClient) {
	v.clientsMu.Lock()
	defer v.clientsMu.Unlock()
	if _, ok := v.clients[c]; ok {
		delete(v.clients, c)
		close(c.send)
	}
}

// Render keeps f for /chart.png.
func (v *WebView) Render(f plot.Frame) error {
	v.frameMu.Lock()
	v.frame = f
	v.frameMu.Unlock()
	return nil
}

// Publish queues s for every websocket client. Clients that fell too far
// behind are dropped.
func (v *WebView) Publish(s distance.Sample) error {
	v.clientsMu.Lock()
	defer v.clientsMu.Unlock()

	var dropped int
	for c := range v.clients {
		select {
		case c.send <- s:
		default:
			delete(v.clients, c)
			close(c.send)
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("web: dropped %d slow websocket client(s)", dropped)
	}
	return nil
}

// Clients returns the number of connected websocket clients.
func (v *WebView) Clients() int {
	v.clientsMu.Lock()
	defer v.clientsMu.Unlock()
	return len(v.clients)
}

// Close disconnects all clients and stops the server.
func (v *WebView) Close() error {
	var err error
	v.closeOnce.Do(func() {
		v.clientsMu.Lock()
		for c := range v.clients {
			delete(v.clients, c)
			close(c.send)
		}
		v.clientsMu.Unlock()

		if v.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err = v.server.Shutdown(ctx)
		}
	})
	return err
}
