package sync

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub tracks websocket connections per user.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*websocket.Conn]struct{}
}

type Stats struct {
	Users   int `json:"users"`
	Clients int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(userID string, ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[userID]
	if !ok {
		set = make(map[*websocket.Conn]struct{})
		h.clients[userID] = set
	}
	set[ws] = struct{}{}
}

func (h *Hub) Remove(userID string, ws *websocket.Conn) {
	h.mu.Lock()
	h.removeLocked(userID, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) removeLocked(userID string, ws *websocket.Conn) {
	set := h.clients[userID]
	delete(set, ws)
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

// Publish sends v as JSON to every connection of userID. Connections that
// fail to take the write are dropped.
func (h *Hub) Publish(userID string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.clients[userID] {
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			h.removeLocked(userID, ws)
		}
	}
}

// Notify publishes an Event of type typ stamped with the current time.
func (h *Hub) Notify(userID, typ, recipeID, key string) {
	h.Publish(userID, Event{
		Type:     typ,
		UserID:   userID,
		RecipeID: recipeID,
		Key:      key,
		At:       time.Now().UTC(),
	})
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := Stats{Users: len(h.clients)}
	for _, set := range h.clients {
		st.Clients += len(set)
	}
	return st
}
