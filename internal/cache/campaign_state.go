package cache

import (
	"sync"
	"time"

	"github.com/mkessler/dialpace/internal/types"
)

const (
	// StaleThreshold is the default duration after which a campaign with
	// no fresh telemetry is considered stale and excluded from pacing
	StaleThreshold = 30 * time.Second
)

// CampaignTracker maintains the live state of all campaigns being paced
type CampaignTracker struct {
	campaigns map[string]*types.CampaignInfo // campaignID -> current state
	mu        sync.RWMutex
}

// NewCampaignTracker creates a new campaign tracker
func NewCampaignTracker() *CampaignTracker {
	return &CampaignTracker{
		campaigns: make(map[string]*types.CampaignInfo),
	}
}

// Update records a telemetry snapshot for a campaign, registering the
// campaign on first sight. A paused campaign stays paused; a stale one
// becomes active again.
func (t *CampaignTracker) Update(snapshot types.TelemetrySnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	existing, exists := t.campaigns[snapshot.CampaignID]
	if !exists {
		t.campaigns[snapshot.CampaignID] = &types.CampaignInfo{
			CampaignID:   snapshot.CampaignID,
			Status:       types.CampaignActive,
			Mode:         types.ModePredictive,
			LastSnapshot: snapshot,
			LastUpdate:   now,
			FirstSeen:    now,
		}
		return
	}

	existing.LastSnapshot = snapshot
	existing.LastUpdate = now
	if existing.Status == types.CampaignStale {
		existing.Status = types.CampaignActive
	}
}

// Get returns a copy of one campaign's state
func (t *CampaignTracker) Get(campaignID string) (types.CampaignInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	info, ok := t.campaigns[campaignID]
	if !ok {
		return types.CampaignInfo{}, false
	}
	return *info, true
}

// GetAll returns all tracked campaigns
func (t *CampaignTracker) GetAll() []types.CampaignInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]types.CampaignInfo, 0, len(t.campaigns))
	for _, info := range t.campaigns {
		out = append(out, *info)
	}
	return out
}

// GetActive returns campaigns eligible for pacing this cycle
func (t *CampaignTracker) GetActive() []types.CampaignInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]types.CampaignInfo, 0, len(t.campaigns))
	for _, info := range t.campaigns {
		if info.Status == types.CampaignActive {
			out = append(out, *info)
		}
	}
	return out
}

// SetPaused pauses or resumes a campaign. Returns false if the campaign
// is unknown.
func (t *CampaignTracker) SetPaused(campaignID string, paused bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	info, ok := t.campaigns[campaignID]
	if !ok {
		return false
	}
	if paused {
		info.Status = types.CampaignPaused
	} else {
		info.Status = types.CampaignActive
	}
	return true
}

// SetMode switches a campaign between predictive and power pacing.
// Returns false if the campaign is unknown.
func (t *CampaignTracker) SetMode(campaignID string, mode types.PacingMode) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	info, ok := t.campaigns[campaignID]
	if !ok {
		return false
	}
	info.Mode = mode
	return true
}

// Remove drops a campaign from the tracker. Returns false if unknown.
func (t *CampaignTracker) Remove(campaignID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.campaigns[campaignID]; !ok {
		return false
	}
	delete(t.campaigns, campaignID)
	return true
}

// MarkStale flags active campaigns with no telemetry within threshold
func (t *CampaignTracker) MarkStale(threshold time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-threshold)
	for _, info := range t.campaigns {
		if info.Status == types.CampaignActive && info.LastUpdate.Before(cutoff) {
			info.Status = types.CampaignStale
		}
	}
}

// RemoveStale removes campaigns that have been stale for longer than maxAge,
// returning the IDs that were dropped
func (t *CampaignTracker) RemoveStale(maxAge time.Duration) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	var removed []string
	for id, info := range t.campaigns {
		if info.Status == types.CampaignStale && info.LastUpdate.Before(cutoff) {
			delete(t.campaigns, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Count returns the total number of tracked campaigns
func (t *CampaignTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.campaigns)
}

// SetAlerts replaces a campaign's active alerts
func (t *CampaignTracker) SetAlerts(campaignID string, alerts []types.CampaignAlert) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if info, ok := t.campaigns[campaignID]; ok {
		info.Alerts = alerts
	}
}
