package handlers

import (
	"net/http"

	"github.com/blackpiratelive/gallery-app/internal/middleware"
	"github.com/blackpiratelive/gallery-app/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins, the admin token gates the stream
	},
}

// EventsHandler streams catalogue changes to admin clients
type EventsHandler struct {
	hub  *services.EventHub
	gate *middleware.AdminGate
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *services.EventHub, gate *middleware.AdminGate) *EventsHandler {
	return &EventsHandler{
		hub:  hub,
		gate: gate,
	}
}

// Stream handles GET /api/events. Browsers cannot set headers on a websocket handshake,
// so the admin secret may also arrive as ?token=.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if !h.gate.Check(r) && !h.gate.CheckToken(r.URL.Query().Get("token")) {
		respondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	id := h.hub.Register(conn)
	defer h.hub.Unregister(id)

	// Subscribers only listen; reading drives ping/close handling until the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("subscriber_id", id).Msg("WebSocket error")
			}
			return
		}
	}
}
