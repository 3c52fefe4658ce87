package types

import "time"

// PacingMode selects which decision algorithm a campaign is paced with
type PacingMode string

const (
	ModePredictive PacingMode = "predictive"
	ModePower      PacingMode = "power"
)

// CampaignStatus represents the lifecycle state of a tracked campaign
type CampaignStatus string

const (
	CampaignActive CampaignStatus = "active"
	CampaignPaused CampaignStatus = "paused"
	CampaignStale  CampaignStatus = "stale" // no telemetry within the stale threshold
)

// AlertSeverity represents the severity of a campaign alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// CampaignAlert represents an alert condition for a campaign
type CampaignAlert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// TelemetrySnapshot is one cycle of live campaign telemetry as reported
// by the call-outcome pipeline. Rate fields are fractions in [0,1];
// count fields are non-negative. Range enforcement happens at the HTTP
// boundary, not in the pacing engine.
type TelemetrySnapshot struct {
	CampaignID          string    `json:"campaignId"`
	Timestamp           time.Time `json:"timestamp"`
	AnswerRate          float64   `json:"answerRate"`          // calls answered / calls placed
	AverageCallDuration float64   `json:"averageCallDuration"` // seconds
	AgentUtilization    float64   `json:"agentUtilization"`    // 0-1
	AbandonmentRate     float64   `json:"abandonmentRate"`     // 0-1
	AvailableAgents     int       `json:"availableAgents"`
	ActiveCalls         int       `json:"activeCalls"`
	QueueDepth          int       `json:"queueDepth"` // contacts dialable right now
}

// PredictedOutcome carries the engine's forward-looking estimates for one
// dial batch. Diagnostic only; the engine never feeds these back into
// later decisions.
type PredictedOutcome struct {
	ExpectedAnswers        float64 `json:"expectedAnswers"`
	ExpectedAbandonments   float64 `json:"expectedAbandonments"`
	AgentUtilizationImpact float64 `json:"agentUtilizationImpact"`
}

// DialingDecision is the engine's output for one pacing cycle.
// DialRatio is always the computed clamped ratio, even when ShouldDial is
// false, so dashboards can chart what the engine would have done.
type DialingDecision struct {
	CampaignID       string           `json:"campaignId"`
	Mode             PacingMode       `json:"mode"`
	Timestamp        time.Time        `json:"timestamp"`
	ShouldDial       bool             `json:"shouldDial"`
	DialRatio        float64          `json:"dialRatio"`
	CallsToPlace     int              `json:"callsToPlace"`
	Reasoning        string           `json:"reasoning"`
	PredictedOutcome PredictedOutcome `json:"predictedOutcome"`
}

// CampaignInfo is the live registry entry for a campaign being paced
type CampaignInfo struct {
	CampaignID   string            `json:"campaignId"`
	Status       CampaignStatus    `json:"status"`
	Mode         PacingMode        `json:"mode"`
	LastSnapshot TelemetrySnapshot `json:"lastSnapshot"`
	LastUpdate   time.Time         `json:"lastUpdate"` // last telemetry received
	FirstSeen    time.Time         `json:"firstSeen"`
	Alerts       []CampaignAlert   `json:"alerts,omitempty"`
}

// DecisionEvent is the payload broadcast to dashboard clients every cycle
type DecisionEvent struct {
	Type     string          `json:"type"` // always "decision"
	Decision DialingDecision `json:"decision"`
}
