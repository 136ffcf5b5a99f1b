package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ConversationKey identifies one (character, user) chat for hub routing.
func ConversationKey(characterID, userID uint) string {
	return fmt.Sprintf("%d:%d", characterID, userID)
}

// Hub fans AI turns out to clients watching a conversation, so the UI does
// not have to poll for the deferred reply.
type Hub struct {
	mu            sync.RWMutex
	conversations map[string]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		conversations: make(map[string]map[*websocket.Conn]bool),
	}
}

func (h *Hub) AddConnection(key string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conversations[key] == nil {
		h.conversations[key] = make(map[*websocket.Conn]bool)
	}
	h.conversations[key][conn] = true
	log.Printf("ws: client connected to conversation %s (total: %d)", key, len(h.conversations[key]))
}

func (h *Hub) RemoveConnection(key string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conversations[key]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.conversations, key)
		}
		log.Printf("ws: client disconnected from conversation %s", key)
	}
}

func (h *Hub) Broadcast(key string, message WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.conversations[key]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws: write error: %v", err)
			conn.Close()
			delete(conns, conn)
		}
	}
}
