package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ctmes/ProfTwo/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer already
	},
}

// FeedHandler upgrades clients to a WebSocket and relays the event bus:
// stage progress, run completions, scroll requests, library changes.
type FeedHandler struct {
	bus *events.Bus
}

func NewFeedHandler(bus *events.Bus) *FeedHandler {
	return &FeedHandler{bus: bus}
}

// Serve handles one WebSocket client for its whole lifetime.
func (h *FeedHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	ch, cancel := h.bus.Subscribe()
	go h.writePump(conn, ch, cancel)
	go h.readPump(conn, cancel)
}

// readPump drains (and discards) client frames so pings/pongs and close
// handshakes work.
func (h *FeedHandler) readPump(conn *websocket.Conn, cancel func()) {
	defer func() {
		cancel()
		conn.Close()
	}()

	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

// writePump forwards bus events to the client and keeps the connection
// alive with pings.
func (h *FeedHandler) writePump(conn *websocket.Conn, ch <-chan events.Event, cancel func()) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		cancel()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-ch:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
