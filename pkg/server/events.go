// licita/pkg/server/events.go

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rgehrsitz/licita/pkg/logging"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is read-only and carries no document content.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes stats snapshots to every connected websocket client.
type Hub struct {
	stats    *Stats
	interval time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewHub(stats *Stats, interval time.Duration) *Hub {
	return &Hub{
		stats:    stats,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP upgrades the connection, sends the current snapshot and keeps
// the client registered until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Warn().Err(err).Msg("Error upgrading to WebSocket")
		return
	}
	defer conn.Close()

	message, err := json.Marshal(h.stats.Snapshot())
	if err != nil {
		logging.Logger.Error().Err(err).Msg("Error marshaling stats")
		return
	}

	h.mu.Lock()
	err = write(conn, message)
	if err == nil {
		h.clients[conn] = true
	}
	h.mu.Unlock()
	if err != nil {
		return
	}
	logging.Logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Client connected")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	logging.Logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Client disconnected")
}

// Run broadcasts on every tick until ctx is done, then drops all clients.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.Broadcast()
		}
	}
}

func (h *Hub) Broadcast() {
	message, err := json.Marshal(h.stats.Snapshot())
	if err != nil {
		logging.Logger.Error().Err(err).Msg("Error marshaling stats")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := write(client, message); err != nil {
			logging.Logger.Debug().Err(err).Msg("Error sending message to client")
			client.Close()
			delete(h.clients, client)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

func write(conn *websocket.Conn, message []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, message)
}
