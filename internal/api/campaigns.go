package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkessler/dialpace/internal/cache"
	"github.com/mkessler/dialpace/internal/pacing"
	"github.com/mkessler/dialpace/internal/types"
	"github.com/rs/zerolog"
)

// CampaignHandler provides REST endpoints for campaign state and
// on-demand pacing decisions
type CampaignHandler struct {
	tracker *cache.CampaignTracker
	engine  *pacing.Engine
	logger  zerolog.Logger
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(tracker *cache.CampaignTracker, engine *pacing.Engine, logger zerolog.Logger) *CampaignHandler {
	return &CampaignHandler{
		tracker: tracker,
		engine:  engine,
		logger:  logger.With().Str("component", "campaign_handler").Logger(),
	}
}

// ListCampaigns returns all tracked campaigns
// GET /api/campaigns
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns := h.tracker.GetAll()
	if campaigns == nil {
		campaigns = []types.CampaignInfo{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaigns)
}

// GetCampaign returns one campaign's state
// GET /api/campaigns/{campaignId}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignId")

	info, ok := h.tracker.Get(campaignID)
	if !ok {
		http.Error(w, "campaign not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// GetDecision computes a pacing decision on demand from the campaign's
// latest telemetry. An optional "mode" query parameter overrides the
// campaign's configured mode for this one evaluation.
// GET /api/campaigns/{campaignId}/decision?mode=power
func (h *CampaignHandler) GetDecision(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignId")

	info, ok := h.tracker.Get(campaignID)
	if !ok {
		http.Error(w, "campaign not found", http.StatusNotFound)
		return
	}

	mode := info.Mode
	switch r.URL.Query().Get("mode") {
	case "":
	case string(types.ModePredictive):
		mode = types.ModePredictive
	case string(types.ModePower):
		mode = types.ModePower
	default:
		http.Error(w, "mode must be predictive or power", http.StatusBadRequest)
		return
	}

	var decision types.DialingDecision
	if mode == types.ModePower {
		decision = h.engine.CalculatePowerDialingDecision(campaignID, info.LastSnapshot)
	} else {
		decision = h.engine.CalculateDialingDecision(campaignID, info.LastSnapshot)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decision)
}

// PauseCampaign excludes a campaign from pacing cycles
// POST /api/campaigns/{campaignId}/pause
func (h *CampaignHandler) PauseCampaign(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, true)
}

// ResumeCampaign re-enables pacing for a paused campaign
// POST /api/campaigns/{campaignId}/resume
func (h *CampaignHandler) ResumeCampaign(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, false)
}

func (h *CampaignHandler) setPaused(w http.ResponseWriter, r *http.Request, paused bool) {
	campaignID := chi.URLParam(r, "campaignId")

	if !h.tracker.SetPaused(campaignID, paused) {
		http.Error(w, "campaign not found", http.StatusNotFound)
		return
	}

	h.logger.Info().Str("campaign_id", campaignID).Bool("paused", paused).Msg("campaign pause state changed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaignId": campaignID,
		"paused":     paused,
	})
}

// SetMode switches a campaign between predictive and power dialing
// PUT /api/campaigns/{campaignId}/mode
func (h *CampaignHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignId")

	var req struct {
		Mode types.PacingMode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Mode != types.ModePredictive && req.Mode != types.ModePower {
		http.Error(w, "mode must be predictive or power", http.StatusBadRequest)
		return
	}

	if !h.tracker.SetMode(campaignID, req.Mode) {
		http.Error(w, "campaign not found", http.StatusNotFound)
		return
	}

	h.logger.Info().Str("campaign_id", campaignID).Str("mode", string(req.Mode)).Msg("campaign mode changed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaignId": campaignID,
		"mode":       req.Mode,
	})
}

// DeleteCampaign removes a campaign from the tracker and drops its
// telemetry history
// DELETE /api/campaigns/{campaignId}
func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignId")

	if !h.tracker.Remove(campaignID) {
		http.Error(w, "campaign not found", http.StatusNotFound)
		return
	}
	h.engine.RemoveCampaign(campaignID)

	h.logger.Info().Str("campaign_id", campaignID).Msg("campaign removed")

	w.WriteHeader(http.StatusNoContent)
}
