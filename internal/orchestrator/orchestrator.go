package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mkessler/dialpace/internal/alerts"
	"github.com/mkessler/dialpace/internal/cache"
	"github.com/mkessler/dialpace/internal/dispatch"
	"github.com/mkessler/dialpace/internal/metrics"
	"github.com/mkessler/dialpace/internal/pacing"
	"github.com/mkessler/dialpace/internal/storage"
	"github.com/mkessler/dialpace/internal/types"
	"github.com/mkessler/dialpace/internal/websocket"
	"github.com/rs/zerolog"
)

// Orchestrator drives the pacing loop. Each cycle it evaluates every
// active campaign, dispatches the resulting dial batches, persists the
// decisions and broadcasts them to dashboard clients.
type Orchestrator struct {
	tracker    *cache.CampaignTracker
	engine     *pacing.Engine
	dialer     dispatch.Dialer
	store      storage.Store
	hub        *websocket.Hub
	interval   time.Duration
	staleAfter time.Duration
	purgeAfter time.Duration
	logger     zerolog.Logger
}

// New creates a new Orchestrator
func New(tracker *cache.CampaignTracker, engine *pacing.Engine, dialer dispatch.Dialer, store storage.Store, hub *websocket.Hub, interval, staleAfter, purgeAfter time.Duration, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		tracker:    tracker,
		engine:     engine,
		dialer:     dialer,
		store:      store,
		hub:        hub,
		interval:   interval,
		staleAfter: staleAfter,
		purgeAfter: purgeAfter,
		logger:     logger,
	}
}

// Start runs pacing cycles until the context is cancelled
func (o *Orchestrator) Start(ctx context.Context) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.logger.Info().Dur("interval", o.interval).Msg("orchestrator started")

	for {
		select {
		case <-ctx.Done():
			o.logger.Info().Msg("orchestrator stopped")
			return

		case <-ticker.C:
			o.RunCycle(ctx)
		}
	}
}

// RunCycle performs one full pacing pass over all active campaigns
func (o *Orchestrator) RunCycle(ctx context.Context) {
	cycleStart := time.Now()
	m := metrics.Get()

	// Campaigns with no fresh telemetry drop out of pacing; long-dead
	// ones are purged entirely
	o.tracker.MarkStale(o.staleAfter)
	for _, id := range o.tracker.RemoveStale(o.purgeAfter) {
		o.engine.RemoveCampaign(id)
		o.logger.Info().Str("campaign_id", id).Msg("purged stale campaign")
	}

	active := o.tracker.GetActive()
	for _, campaign := range active {
		decision := o.decide(campaign)
		m.RecordDecision(decision.Mode, decision.ShouldDial)

		if decision.ShouldDial && decision.CallsToPlace > 0 {
			o.dispatchBatch(ctx, decision)
		}

		go o.persistDecision(campaign, decision)
		o.hub.BroadcastDecision(decision)

		o.logger.Debug().
			Str("campaign_id", campaign.CampaignID).
			Str("mode", string(decision.Mode)).
			Bool("should_dial", decision.ShouldDial).
			Float64("dial_ratio", decision.DialRatio).
			Int("calls", decision.CallsToPlace).
			Str("reasoning", decision.Reasoning).
			Msg("pacing decision")
	}

	// Refresh alert state across the whole registry, not just active
	// campaigns, so paused ones keep their alerts visible
	all := o.tracker.GetAll()
	alerts.CheckCampaignAlerts(all, o.engine.GetConfig().TargetAbandonmentRate)
	for _, campaign := range all {
		o.tracker.SetAlerts(campaign.CampaignID, campaign.Alerts)
	}
	m.UpdateCampaignStats(all)

	m.RecordPacingCycle(time.Since(cycleStart))

	o.logger.Debug().
		Int("active_campaigns", len(active)).
		Int("total_campaigns", len(all)).
		Int("clients", o.hub.ClientCount()).
		Dur("cycle_duration", time.Since(cycleStart)).
		Msg("pacing cycle completed")
}

// decide evaluates one campaign with its configured pacing mode
func (o *Orchestrator) decide(campaign types.CampaignInfo) types.DialingDecision {
	if campaign.Mode == types.ModePower {
		return o.engine.CalculatePowerDialingDecision(campaign.CampaignID, campaign.LastSnapshot)
	}
	return o.engine.CalculateDialingDecision(campaign.CampaignID, campaign.LastSnapshot)
}

// dispatchBatch hands a dial batch to the gateway
func (o *Orchestrator) dispatchBatch(ctx context.Context, decision types.DialingDecision) {
	m := metrics.Get()

	attemptIDs, err := o.dialer.PlaceCalls(ctx, decision.CampaignID, decision.CallsToPlace)
	if err != nil {
		m.RecordDispatchError()
		o.logger.Error().Err(err).
			Str("campaign_id", decision.CampaignID).
			Int("calls", decision.CallsToPlace).
			Msg("failed to dispatch dial batch")
		return
	}

	m.RecordCallsPlaced(len(attemptIDs))
}

// persistDecision writes a decision to storage. Runs on its own goroutine
// so a slow store never delays the pacing cycle.
func (o *Orchestrator) persistDecision(campaign types.CampaignInfo, decision types.DialingDecision) {
	record := types.DecisionRecord{
		DateKey:              decision.Timestamp.UTC().Format("2006-01-02"),
		DecisionID:           uuid.New().String(),
		CampaignID:           decision.CampaignID,
		Mode:                 string(decision.Mode),
		Timestamp:            decision.Timestamp.UTC().Format(time.RFC3339),
		ShouldDial:           decision.ShouldDial,
		DialRatio:            decision.DialRatio,
		CallsToPlace:         decision.CallsToPlace,
		Reasoning:            decision.Reasoning,
		ExpectedAnswers:      decision.PredictedOutcome.ExpectedAnswers,
		ExpectedAbandonments: decision.PredictedOutcome.ExpectedAbandonments,
		UtilizationImpact:    decision.PredictedOutcome.AgentUtilizationImpact,
		AvailableAgents:      campaign.LastSnapshot.AvailableAgents,
		QueueDepth:           campaign.LastSnapshot.QueueDepth,
	}

	if err := o.store.SaveDecisionRecord(record); err != nil {
		o.logger.Error().Err(err).
			Str("campaign_id", decision.CampaignID).
			Msg("failed to persist decision record")
	}
}
