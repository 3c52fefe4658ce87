package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkessler/dialpace/internal/auth"
	"github.com/mkessler/dialpace/internal/cache"
	"github.com/mkessler/dialpace/internal/pacing"
	"github.com/mkessler/dialpace/internal/storage"
	"github.com/rs/zerolog"
)

// AdminHandler handles destructive maintenance operations
type AdminHandler struct {
	tracker *cache.CampaignTracker
	engine  *pacing.Engine
	store   storage.Store
	logger  zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(tracker *cache.CampaignTracker, engine *pacing.Engine, store storage.Store, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		tracker: tracker,
		engine:  engine,
		store:   store,
		logger:  logger,
	}
}

// RequireAdmin middleware — only admin role allowed
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || !auth.HasRole(claims, "admin") {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ResetMemory drops all in-memory campaign state and telemetry history
func (h *AdminHandler) ResetMemory(w http.ResponseWriter, r *http.Request) {
	campaigns := h.tracker.GetAll()
	for _, c := range campaigns {
		h.tracker.Remove(c.CampaignID)
		h.engine.RemoveCampaign(c.CampaignID)
	}

	h.logger.Info().Int("campaigns", len(campaigns)).Msg("in-memory state reset")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":          "in-memory state reset",
		"campaignsCleared": len(campaigns),
	})
}

// TruncateStorage wipes all persisted decision records
func (h *AdminHandler) TruncateStorage(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TruncateAll(); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate decision storage")
		http.Error(w, fmt.Sprintf(`{"error":"failed to truncate: %s"}`, err), http.StatusInternalServerError)
		return
	}

	h.logger.Info().Msg("decision storage truncated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "decision storage truncated",
	})
}
