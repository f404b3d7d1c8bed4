package http

import (
	"log"
	"net/http"
	"time"

	"ai-quiz-room/internal/app"
	"github.com/gorilla/websocket"
)

// WSHandler streams room snapshots to every connected client, one push per
// interval. Clients never send anything meaningful; the read loop exists
// only to notice disconnects.
type WSHandler struct {
	service  *app.RoomService
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoomService) *WSHandler {
	return NewWSHandlerWithInterval(service, time.Second)
}

// NewWSHandlerWithInterval is test-only for fast pushes.
func NewWSHandlerWithInterval(service *app.RoomService, interval time.Duration) *WSHandler {
	return &WSHandler{
		service:  service,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the connection and pushes snapshots until the client goes
// away. One subscriber dropping only ends its own loop.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(h.service.Snapshot()); err != nil {
				return
			}
		}
	}
}
