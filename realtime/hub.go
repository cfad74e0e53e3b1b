package realtime

import (
	"encoding/json"
	"sync"

	"github.com/Devesh-Pathak7/Splite-Eat/utils"
	"github.com/gorilla/websocket"
)

// Event names published by the half-order coordinator.
const (
	EventSessionCreated   = "session.created"
	EventSessionJoined    = "session.joined"
	EventSessionExpired   = "session.expired"
	EventSessionCancelled = "session.cancelled"
	EventPairedCreated    = "paired.created"
	EventOrderCreated     = "order.created"
)

// Publisher is what the coordinator talks to. The coordinator only ever
// calls Publish after a transaction has committed; the fan-out never
// calls back.
type Publisher interface {
	Publish(event string, data interface{})
}

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans coordinator events out to every connected dashboard client
// over websocket. Connections register with a role label so operators can
// see who is listening.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]string),
	}
}

// RegisterClient adds a connection to the broadcast set.
func (h *Hub) RegisterClient(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

// UnregisterClient drops a connection and closes it.
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish broadcasts one event to every connected client. Send failures
// drop only the failing client's delivery; polling ListActive remains the
// correctness fallback.
func (h *Hub) Publish(event string, data interface{}) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s event: %v", event, err)
		return
	}

	for conn, role := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s client: %v", event, role, err)
			continue
		}
	}
}
