package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mkessler/dialpace/internal/storage"
	"github.com/mkessler/dialpace/internal/types"
	"github.com/rs/zerolog"
)

// DecisionsHandler provides REST access to persisted dialing decisions
type DecisionsHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewDecisionsHandler creates a new DecisionsHandler
func NewDecisionsHandler(store storage.Store, logger zerolog.Logger) *DecisionsHandler {
	return &DecisionsHandler{
		store:  store,
		logger: logger.With().Str("component", "decisions_handler").Logger(),
	}
}

// GetDecisions returns stored decision records for a day, optionally
// filtered to one campaign. The date defaults to today.
// GET /api/decisions?date=YYYY-MM-DD&campaign=camp-1
func (h *DecisionsHandler) GetDecisions(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var (
		records []types.DecisionRecord
		err     error
	)
	if campaignID := r.URL.Query().Get("campaign"); campaignID != "" {
		records, err = h.store.GetCampaignDecisions(campaignID, date)
	} else {
		records, err = h.store.GetDecisionRecords(date)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to get decision records")
		http.Error(w, "failed to retrieve decisions", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []types.DecisionRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
