package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types broadcast to admin subscribers
const (
	EventAlbumCreated           = "album_created"
	EventAlbumDeleted           = "album_deleted"
	EventAlbumProtectionChanged = "album_protection_changed"
	EventImageCreated           = "image_created"
	EventImageUpdated           = "image_updated"
	EventImageDeleted           = "image_deleted"
)

const eventWriteTimeout = 5 * time.Second

// Event represents a catalogue change
type Event struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	AlbumID   string `json:"album_id,omitempty"`
	Protected *bool  `json:"protected,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// EventHub manages admin WebSocket connections
type EventHub struct {
	mu   sync.RWMutex
	subs map[string]*subscriber
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[string]*subscriber)}
}

// Register adds a connection and returns the id to unregister it with
func (h *EventHub) Register(conn *websocket.Conn) string {
	id := uuid.New().String()

	h.mu.Lock()
	h.subs[id] = &subscriber{conn: conn}
	h.mu.Unlock()

	log.Info().Str("subscriber_id", id).Msg("WebSocket subscriber registered")
	return id
}

// Unregister closes and removes a connection
func (h *EventHub) Unregister(id string) {
	h.mu.Lock()
	sub, exists := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	if exists {
		sub.conn.Close()
		log.Info().Str("subscriber_id", id).Msg("WebSocket subscriber unregistered")
	}
}

// Count returns the number of live subscribers
func (h *EventHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish sends evt to every subscriber, dropping the ones that cannot keep up
func (h *EventHub) Publish(evt Event) {
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Str("type", evt.Type).Msg("Failed to marshal event")
		return
	}

	h.mu.RLock()
	targets := make(map[string]*subscriber, len(h.subs))
	for id, sub := range h.subs {
		targets[id] = sub
	}
	h.mu.RUnlock()

	for id, sub := range targets {
		if err := sub.send(data); err != nil {
			log.Warn().Err(err).Str("subscriber_id", id).Msg("Dropping event subscriber")
			h.Unregister(id)
		}
	}
}

// Close disconnects every subscriber
func (h *EventHub) Close() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Unregister(id)
	}
}

func (s *subscriber) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
