package orchestrator

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mkessler/dialpace/internal/cache"
	"github.com/mkessler/dialpace/internal/pacing"
	"github.com/mkessler/dialpace/internal/types"
	"github.com/mkessler/dialpace/internal/websocket"
	"github.com/rs/zerolog"
)

// fakeDialer records dispatched batches
type fakeDialer struct {
	mu      sync.Mutex
	batches map[string]int
	fail    bool
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{batches: make(map[string]int)}
}

func (d *fakeDialer) PlaceCalls(ctx context.Context, campaignID string, count int) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fail {
		return nil, context.DeadlineExceeded
	}
	d.batches[campaignID] += count
	ids := make([]string, count)
	return ids, nil
}

func (d *fakeDialer) callsFor(campaignID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.batches[campaignID]
}

// fakeStore records persisted decisions
type fakeStore struct {
	mu      sync.Mutex
	records []types.DecisionRecord
}

func (s *fakeStore) SaveDecisionRecord(record types.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *fakeStore) GetDecisionRecords(dateKey string) ([]types.DecisionRecord, error) {
	return nil, nil
}

func (s *fakeStore) GetCampaignDecisions(campaignID, dateKey string) ([]types.DecisionRecord, error) {
	return nil, nil
}

func (s *fakeStore) TruncateAll() error { return nil }

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *fakeStore) last() types.DecisionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[len(s.records)-1]
}

func healthySnapshot(id string) types.TelemetrySnapshot {
	return types.TelemetrySnapshot{
		CampaignID:          id,
		Timestamp:           time.Now(),
		AnswerRate:          0.3,
		AverageCallDuration: 90,
		AgentUtilization:    0.8,
		AbandonmentRate:     0.02,
		AvailableAgents:     10,
		ActiveCalls:         5,
		QueueDepth:          200,
	}
}

func newTestOrchestrator(t *testing.T, dialer *fakeDialer, store *fakeStore) (*Orchestrator, *cache.CampaignTracker, *pacing.Engine) {
	t.Helper()

	logger := zerolog.New(&bytes.Buffer{})
	engine, err := pacing.NewEngine(pacing.DefaultConfig(), pacing.DefaultMaxCampaigns, logger)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	tracker := cache.NewCampaignTracker()
	hub := websocket.NewHub(logger)
	go hub.Run()

	o := New(tracker, engine, dialer, store, hub,
		10*time.Millisecond, time.Minute, time.Hour, logger)
	return o, tracker, engine
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestCycleDispatchesHealthyCampaign(t *testing.T) {
	dialer := newFakeDialer()
	store := &fakeStore{}
	o, tracker, engine := newTestOrchestrator(t, dialer, store)

	snapshot := healthySnapshot("camp-1")
	tracker.Update(snapshot)
	engine.RecordMetrics("camp-1", snapshot)

	o.RunCycle(context.Background())

	if dialer.callsFor("camp-1") == 0 {
		t.Error("expected calls dispatched for healthy campaign")
	}

	waitFor(t, func() bool { return store.count() == 1 })

	record := store.last()
	if record.CampaignID != "camp-1" {
		t.Errorf("expected camp-1, got %s", record.CampaignID)
	}
	if !record.ShouldDial {
		t.Errorf("expected dialing decision, reasoning: %s", record.Reasoning)
	}
	if record.CallsToPlace != dialer.callsFor("camp-1") {
		t.Errorf("record calls %d != dispatched calls %d", record.CallsToPlace, dialer.callsFor("camp-1"))
	}
}

func TestCycleSkipsPausedCampaign(t *testing.T) {
	dialer := newFakeDialer()
	store := &fakeStore{}
	o, tracker, engine := newTestOrchestrator(t, dialer, store)

	snapshot := healthySnapshot("camp-1")
	tracker.Update(snapshot)
	engine.RecordMetrics("camp-1", snapshot)
	tracker.SetPaused("camp-1", true)

	o.RunCycle(context.Background())

	if dialer.callsFor("camp-1") != 0 {
		t.Error("paused campaign must not be dialed")
	}
	if store.count() != 0 {
		t.Error("paused campaign must not produce decision records")
	}
}

func TestCyclePowerMode(t *testing.T) {
	dialer := newFakeDialer()
	store := &fakeStore{}
	o, tracker, engine := newTestOrchestrator(t, dialer, store)

	snapshot := healthySnapshot("camp-1")
	tracker.Update(snapshot)
	engine.RecordMetrics("camp-1", snapshot)
	tracker.SetMode("camp-1", types.ModePower)

	o.RunCycle(context.Background())

	waitFor(t, func() bool { return store.count() == 1 })
	if store.last().Mode != string(types.ModePower) {
		t.Errorf("expected power mode record, got %s", store.last().Mode)
	}
}

func TestCycleNoDialStillRecordsDecision(t *testing.T) {
	dialer := newFakeDialer()
	store := &fakeStore{}
	o, tracker, engine := newTestOrchestrator(t, dialer, store)

	snapshot := healthySnapshot("camp-1")
	snapshot.QueueDepth = 0
	tracker.Update(snapshot)
	engine.RecordMetrics("camp-1", snapshot)

	o.RunCycle(context.Background())

	if dialer.callsFor("camp-1") != 0 {
		t.Error("campaign with empty queue must not be dialed")
	}

	waitFor(t, func() bool { return store.count() == 1 })

	record := store.last()
	if record.ShouldDial {
		t.Error("expected no-dial decision")
	}
	if record.DialRatio == 0 {
		t.Error("dial ratio must be populated even when not dialing")
	}
}

func TestCycleSurvivesDispatchFailure(t *testing.T) {
	dialer := newFakeDialer()
	dialer.fail = true
	store := &fakeStore{}
	o, tracker, engine := newTestOrchestrator(t, dialer, store)

	snapshot := healthySnapshot("camp-1")
	tracker.Update(snapshot)
	engine.RecordMetrics("camp-1", snapshot)

	o.RunCycle(context.Background())

	// The decision is still persisted and the loop keeps going
	waitFor(t, func() bool { return store.count() == 1 })
	if dialer.callsFor("camp-1") != 0 {
		t.Error("failed dispatch must not count placed calls")
	}
}

func TestCycleSetsAlerts(t *testing.T) {
	dialer := newFakeDialer()
	store := &fakeStore{}
	o, tracker, engine := newTestOrchestrator(t, dialer, store)

	snapshot := healthySnapshot("camp-1")
	snapshot.AbandonmentRate = 0.2
	tracker.Update(snapshot)
	engine.RecordMetrics("camp-1", snapshot)

	o.RunCycle(context.Background())

	info, _ := tracker.Get("camp-1")
	if len(info.Alerts) == 0 {
		t.Fatal("expected alerts for campaign far above abandonment target")
	}

	found := false
	for _, alert := range info.Alerts {
		if alert.Severity == types.SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Error("expected a critical alert at 4x the abandonment target")
	}
}

func TestCyclePurgesStaleCampaigns(t *testing.T) {
	dialer := newFakeDialer()
	store := &fakeStore{}
	o, tracker, engine := newTestOrchestrator(t, dialer, store)

	// Immediate staleness and purge
	o.staleAfter = -time.Millisecond
	o.purgeAfter = -time.Millisecond

	snapshot := healthySnapshot("camp-1")
	tracker.Update(snapshot)
	engine.RecordMetrics("camp-1", snapshot)

	o.RunCycle(context.Background())

	if tracker.Count() != 0 {
		t.Error("expected stale campaign to be purged from tracker")
	}
	if engine.HistorySize("camp-1") != 0 {
		t.Error("expected purged campaign history to be dropped")
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	dialer := newFakeDialer()
	store := &fakeStore{}
	o, tracker, engine := newTestOrchestrator(t, dialer, store)

	snapshot := healthySnapshot("camp-1")
	tracker.Update(snapshot)
	engine.RecordMetrics("camp-1", snapshot)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Start(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return dialer.callsFor("camp-1") > 0 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("orchestrator did not stop after context cancellation")
	}
}
