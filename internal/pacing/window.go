package pacing

import (
	"sync"

	"github.com/mkessler/dialpace/internal/types"
)

// windowCap is the maximum number of snapshots retained per campaign;
// the oldest entry is evicted first
const windowCap = 100

// window is the bounded, time-ordered telemetry history of one campaign.
// Its mutex serializes concurrent writers for the same campaign; windows
// of different campaigns are fully independent.
type window struct {
	mu        sync.Mutex
	snapshots []types.TelemetrySnapshot
}

// append adds a snapshot, evicting from the front when over capacity
func (w *window) append(m types.TelemetrySnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.snapshots = append(w.snapshots, m)
	for len(w.snapshots) > windowCap {
		w.snapshots = w.snapshots[1:]
	}
}

// tail returns a copy of the retained snapshots, oldest first
func (w *window) tail() []types.TelemetrySnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]types.TelemetrySnapshot, len(w.snapshots))
	copy(out, w.snapshots)
	return out
}

// size returns the number of retained snapshots
func (w *window) size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.snapshots)
}
