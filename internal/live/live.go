// Package live pushes wizard state to browsers over a websocket.
package live

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/green-analyzer/internal/wizard"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// message is the outgoing websocket frame.
type message struct {
	Type  string        `json:"type"` // "state"
	State *wizard.State `json:"state"`
}

// Hub serves the state stream of one controller.
type Hub struct {
	c        *wizard.Controller
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHub returns a hub over c. A nil checkOrigin accepts every origin.
func NewHub(c *wizard.Controller, logger *slog.Logger, checkOrigin func(*http.Request) bool) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Hub{
		c:        c,
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

// RegisterRoutes mounts GET /ws/state.
func (h *Hub) RegisterRoutes(r chi.Router) {
	r.Get("/ws/state", h.handleWebSocket)
}

// handleWebSocket sends the current state, then every change until the
// client goes away. Incoming frames are only read to observe the close.
func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.c.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go h.readLoop(conn, closed)

	if !h.send(conn, h.c.State()) {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case st, ok := <-updates:
			if !ok || !h.send(conn, st) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *Hub) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read", "error", err)
			}
			return
		}
	}
}

func (h *Hub) send(conn *websocket.Conn, st wizard.State) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(message{Type: "state", State: &st}); err != nil {
		h.logger.Debug("websocket write", "error", err)
		return false
	}
	return true
}
