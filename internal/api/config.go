package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkessler/dialpace/internal/pacing"
	"github.com/rs/zerolog"
)

// ConfigHandler exposes the live pacing configuration
type ConfigHandler struct {
	engine *pacing.Engine
	logger zerolog.Logger
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(engine *pacing.Engine, logger zerolog.Logger) *ConfigHandler {
	return &ConfigHandler{
		engine: engine,
		logger: logger.With().Str("component", "config_handler").Logger(),
	}
}

// GetConfig returns the current engine configuration
// GET /api/config
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.engine.GetConfig())
}

// UpdateConfig applies a partial configuration change. Omitted fields keep
// their current value; an update producing an inconsistent configuration is
// rejected and the previous configuration stays in effect.
// PUT /api/config
func (h *ConfigHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var update pacing.ConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.engine.UpdateConfig(update); err != nil {
		http.Error(w, fmt.Sprintf("invalid configuration: %v", err), http.StatusBadRequest)
		return
	}

	cfg := h.engine.GetConfig()
	h.logger.Info().
		Float64("target_abandonment_rate", cfg.TargetAbandonmentRate).
		Float64("min_dial_ratio", cfg.MinDialRatio).
		Float64("max_dial_ratio", cfg.MaxDialRatio).
		Float64("safety_buffer", cfg.SafetyBuffer).
		Msg("pacing configuration updated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}
