package pacing

import (
	"fmt"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mkessler/dialpace/internal/types"
	"github.com/rs/zerolog"
)

const (
	// epsilon is the floor applied to every smoothed divisor so degenerate
	// telemetry (zero answer rate, zero talk time) clamps instead of
	// crashing the pacing loop
	epsilon = 0.001

	// smoothingSpan is how many recent history points contribute to an
	// estimate alongside the current snapshot
	smoothingSpan = 10

	// currentWeight and historyWeight split the estimate between the
	// current snapshot and the recent history
	currentWeight = 0.3
	historyWeight = 0.7

	// DefaultMaxCampaigns bounds the per-campaign history map; least
	// recently paced campaigns are evicted beyond this
	DefaultMaxCampaigns = 1024
)

// Engine computes dialing decisions for outbound campaigns. It holds a
// bounded telemetry window per campaign to smooth its estimates and a
// single mutable configuration shared across campaigns.
//
// The engine never errors on telemetry input: degenerate values are
// clamped or short-circuited so a bad sample cannot halt dialing.
type Engine struct {
	mu      sync.RWMutex
	cfg     Config
	windows *lru.Cache[string, *window]
	logger  zerolog.Logger
}

// NewEngine creates a caller-owned pacing engine. maxCampaigns bounds how
// many campaign histories are retained; pass 0 for the default.
func NewEngine(cfg Config, maxCampaigns int, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pacing config: %w", err)
	}
	if maxCampaigns <= 0 {
		maxCampaigns = DefaultMaxCampaigns
	}

	windows, err := lru.New[string, *window](maxCampaigns)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign window cache: %w", err)
	}

	return &Engine{
		cfg:     cfg,
		windows: windows,
		logger:  logger,
	}, nil
}

// GetConfig returns a copy of the current configuration
func (e *Engine) GetConfig() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// UpdateConfig merges the non-nil fields of u into the configuration.
// The merged result is validated before it is applied; an invalid update
// is rejected and the previous configuration stays in effect.
func (e *Engine) UpdateConfig(u ConfigUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	merged := e.cfg.merge(u)
	if err := merged.Validate(); err != nil {
		return fmt.Errorf("rejected config update: %w", err)
	}
	e.cfg = merged
	return nil
}

// RecordMetrics appends a telemetry snapshot to the campaign's history
// window. This is the only mutator of history; decision calls never
// record implicitly.
func (e *Engine) RecordMetrics(campaignID string, m types.TelemetrySnapshot) {
	e.windowFor(campaignID).append(m)
}

// RemoveCampaign drops a campaign's history window
func (e *Engine) RemoveCampaign(campaignID string) {
	e.windows.Remove(campaignID)
}

// HistorySize returns the number of retained snapshots for a campaign
func (e *Engine) HistorySize(campaignID string) int {
	if w, ok := e.windows.Peek(campaignID); ok {
		return w.size()
	}
	return 0
}

// CampaignCount returns the number of campaigns with retained history
func (e *Engine) CampaignCount() int {
	return e.windows.Len()
}

// CalculateDialingDecision produces a predictive dialing decision for the
// campaign given its current telemetry. It reads the campaign's history
// for smoothing but does not append to it.
func (e *Engine) CalculateDialingDecision(campaignID string, current types.TelemetrySnapshot) types.DialingDecision {
	return e.calculate(campaignID, current, e.GetConfig(), types.ModePredictive)
}

// CalculatePowerDialingDecision runs the same algorithm against a
// throughput-biased configuration: doubled abandonment target, 1.5x max
// ratio, 0.9 safety buffer. The persisted configuration is not touched.
func (e *Engine) CalculatePowerDialingDecision(campaignID string, current types.TelemetrySnapshot) types.DialingDecision {
	cfg := e.GetConfig()
	cfg.TargetAbandonmentRate *= 2
	cfg.MaxDialRatio *= 1.5
	cfg.SafetyBuffer = 0.9
	return e.calculate(campaignID, current, cfg, types.ModePower)
}

func (e *Engine) calculate(campaignID string, current types.TelemetrySnapshot, cfg Config, mode types.PacingMode) types.DialingDecision {
	history := e.historyOf(campaignID)

	answerHist := make([]float64, len(history))
	durationHist := make([]float64, len(history))
	abandonHist := make([]float64, len(history))
	for i, s := range history {
		answerHist[i] = s.AnswerRate
		durationHist[i] = s.AverageCallDuration
		abandonHist[i] = s.AbandonmentRate
	}

	answerRate := smoothedEstimate(current.AnswerRate, answerHist)
	callDuration := smoothedEstimate(current.AverageCallDuration, durationHist)
	abandonRate := smoothedEstimate(current.AbandonmentRate, abandonHist)

	ratio := dialRatio(cfg, current.AgentUtilization, answerRate, abandonRate, callDuration)
	calls := callVolume(ratio, current)
	outcome := predictOutcome(calls, answerRate, current.AvailableAgents)

	// Abandonment rate of this batch if placed now
	predictedRate := outcome.ExpectedAbandonments / math.Max(1, float64(calls))

	shouldDial := true
	var reason string
	switch {
	case current.AvailableAgents <= 0:
		shouldDial = false
		reason = "no available agents"
	case current.QueueDepth <= 0:
		shouldDial = false
		reason = "no contacts in queue"
	case calls == 0:
		shouldDial = false
		reason = "computed call volume is zero"
	case predictedRate > cfg.TargetAbandonmentRate*1.2:
		shouldDial = false
		reason = fmt.Sprintf("predicted abandonment %.3f exceeds ceiling %.3f", predictedRate, cfg.TargetAbandonmentRate*1.2)
	case current.AbandonmentRate > cfg.TargetAbandonmentRate*1.5:
		shouldDial = false
		reason = fmt.Sprintf("abandonment circuit breaker: current %.3f above %.3f", current.AbandonmentRate, cfg.TargetAbandonmentRate*1.5)
	default:
		reason = fmt.Sprintf("placing %d calls at ratio %.2f for %d available agents", calls, ratio, current.AvailableAgents)
	}

	if !shouldDial {
		calls = 0
	}
	if mode == types.ModePower {
		reason = "power dialing: " + reason
	}

	e.logger.Debug().
		Str("campaign_id", campaignID).
		Str("mode", string(mode)).
		Bool("should_dial", shouldDial).
		Float64("dial_ratio", ratio).
		Int("calls_to_place", calls).
		Int("history_size", len(history)).
		Msg("dialing decision computed")

	return types.DialingDecision{
		CampaignID:       campaignID,
		Mode:             mode,
		Timestamp:        time.Now(),
		ShouldDial:       shouldDial,
		DialRatio:        ratio,
		CallsToPlace:     calls,
		Reasoning:        reason,
		PredictedOutcome: outcome,
	}
}

// historyOf returns a copy of the campaign's retained snapshots, oldest
// first; empty if nothing has been recorded
func (e *Engine) historyOf(campaignID string) []types.TelemetrySnapshot {
	if w, ok := e.windows.Get(campaignID); ok {
		return w.tail()
	}
	return nil
}

// windowFor returns the campaign's window, creating it on first use
func (e *Engine) windowFor(campaignID string) *window {
	if w, ok := e.windows.Get(campaignID); ok {
		return w
	}
	w := &window{}
	if prev, found, _ := e.windows.PeekOrAdd(campaignID, w); found {
		return prev
	}
	return w
}

// smoothedEstimate blends the current value with up to the 10 most recent
// history points. The current snapshot carries weight 0.30; the i-th of
// the recent points (1-indexed, oldest to newest) carries (i/10)*0.70.
// The sum is normalized by the total weight actually applied, so short
// histories are not diluted toward zero.
func smoothedEstimate(current float64, history []float64) float64 {
	if len(history) == 0 {
		return current
	}

	recent := history
	if len(recent) > smoothingSpan {
		recent = recent[len(recent)-smoothingSpan:]
	}

	sum := current * currentWeight
	total := currentWeight
	for i, v := range recent {
		w := float64(i+1) / smoothingSpan * historyWeight
		sum += v * w
		total += w
	}
	return sum / total
}

// dialRatio derives the clamped calls-per-agent ratio from the smoothed
// estimates. The base ratio is the reciprocal of the answer rate, tuned
// by bounded utilization, abandonment and call-duration factors, then
// derated by the safety buffer.
func dialRatio(cfg Config, utilization, answerRate, abandonRate, callDuration float64) float64 {
	base := 1.0 / math.Max(epsilon, answerRate)
	utilizationFactor := clamp(utilization*1.2, 0.5, 1.5)
	abandonmentFactor := math.Min(1.2, cfg.TargetAbandonmentRate/math.Max(epsilon, abandonRate))
	durationFactor := clamp(120.0/math.Max(epsilon, callDuration), 0.8, 1.3)

	optimal := base * utilizationFactor * abandonmentFactor * durationFactor * cfg.SafetyBuffer
	return clamp(optimal, cfg.MinDialRatio, cfg.MaxDialRatio)
}

// callVolume converts the dial ratio into a whole number of calls,
// capped by queue depth pressure and throttled by calls already active.
// Zero available agents means zero calls regardless of everything else.
func callVolume(ratio float64, m types.TelemetrySnapshot) int {
	if m.AvailableAgents <= 0 {
		return 0
	}

	base := float64(m.AvailableAgents) * ratio
	queueFactor := math.Min(1.5, float64(m.QueueDepth)/math.Max(1, float64(m.AvailableAgents)*10))
	activeFactor := math.Max(0.5, 1-float64(m.ActiveCalls)/(float64(m.AvailableAgents)*2))

	calls := int(math.Floor(base * queueFactor * activeFactor))
	if calls < 0 {
		return 0
	}
	return calls
}

// predictOutcome estimates the result of placing the batch. Abandonment
// is modeled as answered calls in excess of the agents free to take them.
// AgentUtilizationImpact is the fraction of the free-agent pool the batch
// is projected to occupy.
func predictOutcome(calls int, answerRate float64, availableAgents int) types.PredictedOutcome {
	answers := float64(calls) * answerRate

	rate := 0.0
	if answers > 0 {
		rate = math.Max(0, answers-float64(availableAgents)) / answers
	}

	return types.PredictedOutcome{
		ExpectedAnswers:        answers,
		ExpectedAbandonments:   answers * rate,
		AgentUtilizationImpact: math.Min(1, answers/math.Max(1, float64(availableAgents))),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
