package alerts

import (
	"testing"

	"github.com/mkessler/dialpace/internal/types"
)

func TestCheckCampaignAlerts(t *testing.T) {
	campaigns := []types.CampaignInfo{
		{
			CampaignID:   "healthy",
			LastSnapshot: types.TelemetrySnapshot{AbandonmentRate: 0.02, AvailableAgents: 5, QueueDepth: 100},
		},
		{
			CampaignID:   "warning",
			LastSnapshot: types.TelemetrySnapshot{AbandonmentRate: 0.06, AvailableAgents: 5, QueueDepth: 100},
		},
		{
			CampaignID:   "breaker",
			LastSnapshot: types.TelemetrySnapshot{AbandonmentRate: 0.09, AvailableAgents: 5, QueueDepth: 100},
		},
		{
			CampaignID:   "starved",
			LastSnapshot: types.TelemetrySnapshot{AbandonmentRate: 0.01, AvailableAgents: 0, QueueDepth: 40},
		},
	}

	CheckCampaignAlerts(campaigns, 0.05)

	if len(campaigns[0].Alerts) != 0 {
		t.Errorf("healthy campaign should have no alerts, got %v", campaigns[0].Alerts)
	}

	if len(campaigns[1].Alerts) != 1 || campaigns[1].Alerts[0].Rule != "abandonment_high" {
		t.Errorf("expected abandonment_high warning, got %v", campaigns[1].Alerts)
	}
	if campaigns[1].Alerts[0].Severity != types.SeverityWarning {
		t.Errorf("expected warning severity, got %s", campaigns[1].Alerts[0].Severity)
	}

	if len(campaigns[2].Alerts) != 1 || campaigns[2].Alerts[0].Rule != "abandonment_breaker" {
		t.Errorf("expected abandonment_breaker alert, got %v", campaigns[2].Alerts)
	}
	if campaigns[2].Alerts[0].Severity != types.SeverityCritical {
		t.Errorf("expected critical severity, got %s", campaigns[2].Alerts[0].Severity)
	}

	if len(campaigns[3].Alerts) != 1 || campaigns[3].Alerts[0].Rule != "agents_starved" {
		t.Errorf("expected agents_starved alert, got %v", campaigns[3].Alerts)
	}
}

func TestCheckCampaignAlertsClearsPrevious(t *testing.T) {
	campaigns := []types.CampaignInfo{
		{
			CampaignID:   "recovered",
			Alerts:       []types.CampaignAlert{{Rule: "abandonment_high"}},
			LastSnapshot: types.TelemetrySnapshot{AbandonmentRate: 0.01, AvailableAgents: 5, QueueDepth: 100},
		},
	}

	CheckCampaignAlerts(campaigns, 0.05)

	if len(campaigns[0].Alerts) != 0 {
		t.Errorf("expected stale alerts cleared, got %v", campaigns[0].Alerts)
	}
}
