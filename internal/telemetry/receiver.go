package telemetry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mkessler/dialpace/internal/cache"
	"github.com/mkessler/dialpace/internal/metrics"
	"github.com/mkessler/dialpace/internal/pacing"
	"github.com/mkessler/dialpace/internal/types"
	"github.com/rs/zerolog"
)

// Receiver handles incoming telemetry snapshots from the call-outcome
// pipeline. Range validation happens here, at the boundary; the pacing
// engine itself never rejects input.
type Receiver struct {
	tracker           *cache.CampaignTracker
	engine            *pacing.Engine
	logger            zerolog.Logger
	snapshotsReceived int64
	lastReceived      time.Time
	mu                sync.RWMutex
}

// NewReceiver creates a new telemetry receiver
func NewReceiver(tracker *cache.CampaignTracker, engine *pacing.Engine, logger zerolog.Logger) *Receiver {
	return &Receiver{
		tracker: tracker,
		engine:  engine,
		logger:  logger,
	}
}

// HandleTelemetry receives one telemetry snapshot per campaign per cycle
func (r *Receiver) HandleTelemetry(w http.ResponseWriter, req *http.Request) {
	m := metrics.Get()

	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var snapshot types.TelemetrySnapshot
	if err := json.NewDecoder(req.Body).Decode(&snapshot); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode telemetry snapshot")
		m.RecordTelemetryError()
		http.Error(w, "invalid telemetry snapshot", http.StatusBadRequest)
		return
	}

	m.RecordTelemetryReceived()

	if err := validateSnapshot(snapshot); err != nil {
		r.logger.Warn().Err(err).Str("campaign_id", snapshot.CampaignID).Msg("rejected telemetry snapshot")
		m.RecordTelemetryError()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now()
	}

	// Update the live registry and the engine's smoothing window
	r.tracker.Update(snapshot)
	r.engine.RecordMetrics(snapshot.CampaignID, snapshot)

	m.RecordTelemetryProcessed()

	// Update stats
	atomic.AddInt64(&r.snapshotsReceived, 1)
	r.mu.Lock()
	r.lastReceived = time.Now()
	r.mu.Unlock()

	// Log periodically
	count := atomic.LoadInt64(&r.snapshotsReceived)
	if count%1000 == 0 {
		r.logger.Info().
			Int64("total_received", count).
			Int("campaigns", r.tracker.Count()).
			Msg("telemetry snapshots received")
	}

	w.WriteHeader(http.StatusOK)
}

// GetStats returns receiver statistics
func (r *Receiver) GetStats(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	lastReceived := r.lastReceived
	r.mu.RUnlock()

	stats := map[string]interface{}{
		"snapshots_received": atomic.LoadInt64(&r.snapshotsReceived),
		"last_received":      lastReceived,
		"campaigns_tracked":  r.tracker.Count(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// validateSnapshot rejects snapshots with out-of-range fields before they
// reach the engine
func validateSnapshot(m types.TelemetrySnapshot) error {
	if m.CampaignID == "" {
		return fmt.Errorf("campaignId is required")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"answerRate", m.AnswerRate},
		{"agentUtilization", m.AgentUtilization},
		{"abandonmentRate", m.AbandonmentRate},
	} {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", f.name, f.value)
		}
	}
	if m.AverageCallDuration < 0 {
		return fmt.Errorf("averageCallDuration must be >= 0, got %v", m.AverageCallDuration)
	}
	if m.AvailableAgents < 0 || m.ActiveCalls < 0 || m.QueueDepth < 0 {
		return fmt.Errorf("agent and call counts must be >= 0")
	}
	return nil
}
