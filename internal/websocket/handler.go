package websocket

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/mkessler/dialpace/internal/config"
	"github.com/mkessler/dialpace/internal/metrics"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is delegated to the CORS middleware
		return true
	},
}

// Handler handles WebSocket upgrade requests
type Handler struct {
	hub    *Hub
	config *config.Config
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		config: cfg,
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests. Clients may pass a
// comma-separated "campaigns" query parameter to subscribe to a subset
// of campaigns; without it they receive every decision event.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var campaignIDs []string
	if raw := r.URL.Query().Get("campaigns"); raw != "" {
		campaignIDs = strings.Split(raw, ",")
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	metrics.Get().RecordWebSocketConnect()

	// Create new client
	client := NewClient(h.hub, conn, h.config, h.logger, campaignIDs)

	// Register client with hub
	h.hub.register <- client

	// Start client pumps
	client.Start()
}
