package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/fingerpaint/internal/app"
	"github.com/ayusman/fingerpaint/internal/logger"
	"github.com/ayusman/fingerpaint/internal/metrics"
)

const (
	writeWait        = 2 * time.Second
	statusBufferSize = 4
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusHandler pushes every published frame status to WebSocket clients as JSON.
type StatusHandler struct {
	pub     *app.Publisher
	metrics *metrics.Manager
	log     logger.Logger
}

// NewStatusHandler creates a new StatusHandler reading from pub.
func NewStatusHandler(pub *app.Publisher, m *metrics.Manager, log logger.Logger) *StatusHandler {
	return &StatusHandler{pub: pub, metrics: m, log: log}
}

// ServeHTTP handles WebSocket upgrade requests. The latest status is sent
// immediately, then one message per frame; slow clients skip frames.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.AddStatusListeners(1)
	defer h.metrics.AddStatusListeners(-1)

	updates, cancel := h.pub.Subscribe(statusBufferSize)
	defer cancel()

	// Reading detects the client going away; the payloads are ignored.
	ctx, stop := context.WithCancel(r.Context())
	defer stop()
	go func() {
		defer stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if st := h.pub.View().Status; st.Seq > 0 {
		if err := h.write(conn, st); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := h.write(conn, st); err != nil {
				h.log.Debug(ctx, "status client gone", logger.Error(err))
				return
			}
		}
	}
}

func (h *StatusHandler) write(conn *websocket.Conn, st app.Status) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(st)
}
