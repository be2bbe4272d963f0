package server

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"codeberg.org/veldr/pointerstat/internal/logger"
	"codeberg.org/veldr/pointerstat/internal/metrics"
)

// The hub fans refresh snapshots out to WebSocket clients and feeds their
// configuration edits back into the measurement state. Each client gets
// its own write pump so one slow reader cannot stall the broadcast; a
// client whose queue fills is disconnected.

// envelope is the wire format for outbound frames
type envelope struct {
	Type string      `json:"type"`
	Ts   *time.Time  `json:"ts,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// command is the wire format for inbound client edits
type command struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

const (
	defaultSendBuf      = 32
	defaultBroadcastBuf = 128
)

type Hub struct {
	state *metrics.State

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.Mutex
	clients map[*Client]struct{}
	window  string

	sendBuf int
}

// NewHub constructs a hub around the shared state. windowMS seeds the
// averaging-window text later edited by clients. Call Run to start it.
func NewHub(state *metrics.State, windowMS int) *Hub {
	return &Hub{
		state:      state,
		broadcast:  make(chan []byte, defaultBroadcastBuf),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		clients:    make(map[*Client]struct{}),
		window:     strconv.Itoa(windowMS),
		sendBuf:    defaultSendBuf,
	}
}

// Window returns the current averaging-window text. The text is owned
// here, on the presentation side; the estimator parses it per refresh.
func (h *Hub) Window() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.window
}

// Run processes hub events until ctx is cancelled, then disconnects all
// clients.
func (h *Hub) Run(ctx context.Context) {
	logger.Debug().Msg("State hub started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("State hub stopping")
			h.closeAllClients()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			logger.Info().Str("remote_addr", c.remoteAddr).Int("clients", n).Msg("Client connected")

		case c := <-h.unregister:
			h.removeClient(c, "unregister")

		case msg := <-h.broadcast:
			// Collect slow clients while locked, drop them after unlocking
			var slow []*Client

			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.Unlock()

			for _, c := range slow {
				h.removeClient(c, "slow_client")
			}
		}
	}
}

// BroadcastSnapshot enqueues one refresh snapshot for all clients.
// It never blocks; when the hub queue is full the frame is dropped.
func (h *Hub) BroadcastSnapshot(snap metrics.Snapshot) {
	now := time.Now()
	msg, err := json.Marshal(envelope{Type: "snapshot", Ts: &now, Data: snap})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode snapshot")
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		logger.Warn().Int("bytes", len(msg)).Msg("Broadcast queue full, dropping frame")
	}
}

// apply executes one client edit against the measurement state
func (h *Hub) apply(cmd command, remoteAddr string) {
	switch cmd.Type {
	case "set_dpi":
		if !h.state.SetDPI(cmd.Value) {
			logger.Debug().Str("value", cmd.Value).Str("remote_addr", remoteAddr).
				Msg("Rejected dpi edit, prior value retained")
		}

	case "set_window":
		ms, err := strconv.ParseFloat(cmd.Value, 64)
		if err != nil || ms <= 0 {
			logger.Debug().Str("value", cmd.Value).Str("remote_addr", remoteAddr).
				Msg("Rejected window edit, prior value retained")
			return
		}
		h.mu.Lock()
		h.window = cmd.Value
		h.mu.Unlock()

	case "reset_max_speed":
		h.state.ResetMaxSpeed()

	default:
		logger.Debug().Str("type", cmd.Type).Str("remote_addr", remoteAddr).
			Msg("Ignoring unknown command")
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.conn != nil {
			_ = c.conn.Close()
		}
		safeCloseChan(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) removeClient(c *Client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		if c.conn != nil {
			_ = c.conn.Close()
		}
		// Closing send signals writePump to exit
		safeCloseChan(c.send)

		logger.Info().Str("remote_addr", c.remoteAddr).Str("reason", reason).Int("clients", n).
			Msg("Client disconnected")
	}
}

func safeCloseChan(ch chan []byte) {
	defer func() {
		_ = recover() // ignore "close of closed channel"
	}()
	close(ch)
}
