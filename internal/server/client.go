package server

import (
	"context"
	"encoding/json"
	"time"

	"codeberg.org/veldr/pointerstat/internal/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second
)

type Client struct {
	hub *Hub

	conn *websocket.Conn
	send chan []byte

	remoteAddr string
}

func newClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, hub.sendBuf),
		remoteAddr: remoteAddr,
	}
}

// writePump writes queued frames to the socket. It exits on write error
// or when the send channel is closed by the hub.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed: hub is disconnecting us
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug().Str("remote_addr", c.remoteAddr).Err(err).Msg("Write pump exiting")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug().Str("remote_addr", c.remoteAddr).Err(err).Msg("Ping failed, write pump exiting")
				return
			}
		}
	}
}

// readPump parses inbound command frames and applies them to the shared
// state. It exits on read error, then unregisters the client.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		default:
		}
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug().Str("remote_addr", c.remoteAddr).Err(err).Msg("Read pump exiting")
			return
		}

		var cmd command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			logger.Debug().Str("remote_addr", c.remoteAddr).Err(err).Msg("Ignoring malformed command")
			continue
		}

		c.hub.apply(cmd, c.remoteAddr)
	}
}
