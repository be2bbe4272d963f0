package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/veldr/pointerstat/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, ctx context.Context, h *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(h.Handler(ctx))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestSnapshotBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := metrics.NewState(1600)
	h := NewHub(state, 5000)
	go h.Run(ctx)

	conn := dialTestHub(t, ctx, h)

	// Give the hub a moment to register the client
	time.Sleep(50 * time.Millisecond)

	snap := state.Refresh(time.Now(), h.Window())
	h.BroadcastSnapshot(snap)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Type string           `json:"type"`
		Data metrics.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &env))
	assert.Equal(t, "snapshot", env.Type)
	assert.InDelta(t, 1600.0, env.Data.DPI, 1e-9)
}

func TestClientCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := metrics.NewState(1600)
	h := NewHub(state, 5000)
	go h.Run(ctx)

	conn := dialTestHub(t, ctx, h)

	require.NoError(t, conn.WriteJSON(command{Type: "set_dpi", Value: "800"}))
	require.Eventually(t, func() bool {
		return state.DPI() == 800
	}, time.Second, 5*time.Millisecond, "dpi edit must reach the shared state")

	require.NoError(t, conn.WriteJSON(command{Type: "set_window", Value: "2500"}))
	require.Eventually(t, func() bool {
		return h.Window() == "2500"
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidEditsRetainPriorValues(t *testing.T) {
	state := metrics.NewState(1600)
	h := NewHub(state, 5000)

	h.apply(command{Type: "set_dpi", Value: "abc"}, "test")
	h.apply(command{Type: "set_dpi", Value: "-5"}, "test")
	assert.InDelta(t, 1600.0, state.DPI(), 1e-9)

	h.apply(command{Type: "set_window", Value: "garbage"}, "test")
	h.apply(command{Type: "set_window", Value: "-100"}, "test")
	assert.Equal(t, "5000", h.Window())
}

func TestResetMaxSpeedCommand(t *testing.T) {
	start := time.Now()
	state := metrics.NewStateAt(1600, start)
	h := NewHub(state, 1000)

	state.RecordMotion(3200, 0, start.Add(100*time.Millisecond))
	snap := state.Refresh(start.Add(200*time.Millisecond), h.Window())
	require.Positive(t, snap.MaxSpeed)

	h.apply(command{Type: "reset_max_speed"}, "test")
	snap = state.Refresh(start.Add(3*time.Second), h.Window())
	assert.Zero(t, snap.MaxSpeed)
}
