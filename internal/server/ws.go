package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/swipekeys/internal/gesture"
	"github.com/ayusman/swipekeys/internal/hud"
)

const (
	// hudInterval limits HUD updates per client to about 15 per second.
	// Frames that carry a swipe are always sent.
	hudInterval  = 66 * time.Millisecond
	writeTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard only
	},
}

// HUDHandler pushes recognizer state to dashboard clients over WebSocket.
type HUDHandler struct {
	publisher *hud.Publisher
	logger    *slog.Logger
	interval  time.Duration
}

// NewHUDHandler creates a new HUDHandler.
func NewHUDHandler(p *hud.Publisher, logger *slog.Logger) *HUDHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HUDHandler{publisher: p, logger: logger, interval: hudInterval}
}

// ServeHTTP upgrades the connection and streams hud.Frame values as JSON
// until the client goes away or the publisher closes.
func (h *HUDHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	frames, cancel := h.publisher.Subscribe()
	defer cancel()

	// Reads are only needed to notice the client closing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var lastSent time.Time
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case f, ok := <-frames:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeTimeout))
				return
			}
			now := time.Now()
			if f.Fired == gesture.None && now.Sub(lastSent) < h.interval {
				continue
			}
			conn.SetWriteDeadline(now.Add(writeTimeout))
			if err := conn.WriteJSON(f); err != nil {
				h.logger.Debug("websocket write failed", "err", err)
				return
			}
			lastSent = now
		}
	}
}
