package server

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/veldr/pointerstat/internal/errors"
	"codeberg.org/veldr/pointerstat/internal/logger"
	"github.com/gorilla/websocket"
)

const shutdownTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The endpoint binds to loopback by default; browser UIs served from
	// file:// or another local port are the expected clients.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler returns the HTTP handler exposing the state endpoint
func (h *Hub) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("WebSocket upgrade failed")
			return
		}

		c := newClient(h, conn, r.RemoteAddr)
		select {
		case h.register <- c:
		case <-ctx.Done():
			_ = conn.Close()
			return
		}

		go c.writePump(ctx)
		go c.readPump(ctx)
	})

	return mux
}

// Serve runs the state endpoint until ctx is cancelled
func Serve(ctx context.Context, addr string, h *Hub) error {
	errFactory := errors.New()

	srv := &http.Server{
		Addr:    addr,
		Handler: h.Handler(ctx),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", addr).Msg("State endpoint listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errFactory.Wrap(errors.ErrShutdownFailed, err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errFactory.Wrap(errors.ErrServeFailed, err)
		}
		return nil
	}
}
