package alerts

import (
	"fmt"

	"github.com/mkessler/dialpace/internal/types"
)

// CheckCampaignAlerts evaluates alert rules for a slice of campaigns
// against the configured abandonment target, mutating each campaign's
// Alerts field in place.
func CheckCampaignAlerts(campaigns []types.CampaignInfo, targetAbandonmentRate float64) {
	for i := range campaigns {
		campaigns[i].Alerts = nil
		m := campaigns[i].LastSnapshot

		switch {
		case m.AbandonmentRate > targetAbandonmentRate*1.5:
			campaigns[i].Alerts = append(campaigns[i].Alerts, types.CampaignAlert{
				Rule:     "abandonment_breaker",
				Severity: types.SeverityCritical,
				Message:  fmt.Sprintf("abandonment %.1f%% tripped the circuit breaker (target %.1f%%)", m.AbandonmentRate*100, targetAbandonmentRate*100),
			})
		case m.AbandonmentRate > targetAbandonmentRate:
			campaigns[i].Alerts = append(campaigns[i].Alerts, types.CampaignAlert{
				Rule:     "abandonment_high",
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("abandonment %.1f%% above target %.1f%%", m.AbandonmentRate*100, targetAbandonmentRate*100),
			})
		}

		if m.QueueDepth > 0 && m.AvailableAgents == 0 {
			campaigns[i].Alerts = append(campaigns[i].Alerts, types.CampaignAlert{
				Rule:     "agents_starved",
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("%d contacts queued with no available agents", m.QueueDepth),
			})
		}
	}
}
