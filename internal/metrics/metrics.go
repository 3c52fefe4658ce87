package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mkessler/dialpace/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Telemetry ingest metrics
	TelemetryReceivedTotal  int64
	TelemetryProcessedTotal int64
	TelemetryErrorsTotal    int64

	// Decision metrics
	decisionsByMode  map[types.PacingMode]int64
	DialDecisions    int64
	NoDialDecisions  int64
	CallsPlacedTotal int64
	DispatchErrors   int64

	// Pacing loop metrics
	PacingCyclesTotal int64
	lastCycleDuration time.Duration

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	WebSocketMessagesTotal       int64
	WebSocketErrorsTotal         int64
	activeConnections            int64

	// Campaign metrics
	campaignsByStatus map[types.CampaignStatus]int
	totalCampaigns    int

	// HTTP metrics
	httpRequestsTotal    map[string]map[int]int64 // endpoint -> status -> count
	httpRequestDurations map[string][]float64     // endpoint -> durations

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			decisionsByMode:      make(map[types.PacingMode]int64),
			campaignsByStatus:    make(map[types.CampaignStatus]int),
			httpRequestsTotal:    make(map[string]map[int]int64),
			httpRequestDurations: make(map[string][]float64),
			startTime:            time.Now(),
		}
	})
	return instance
}

// RecordTelemetryReceived increments the telemetry received counter
func (m *Metrics) RecordTelemetryReceived() {
	m.mu.Lock()
	m.TelemetryReceivedTotal++
	m.mu.Unlock()
}

// RecordTelemetryProcessed increments the telemetry processed counter
func (m *Metrics) RecordTelemetryProcessed() {
	m.mu.Lock()
	m.TelemetryProcessedTotal++
	m.mu.Unlock()
}

// RecordTelemetryError increments the telemetry error counter
func (m *Metrics) RecordTelemetryError() {
	m.mu.Lock()
	m.TelemetryErrorsTotal++
	m.mu.Unlock()
}

// RecordDecision records one dialing decision
func (m *Metrics) RecordDecision(mode types.PacingMode, shouldDial bool) {
	m.mu.Lock()
	m.decisionsByMode[mode]++
	if shouldDial {
		m.DialDecisions++
	} else {
		m.NoDialDecisions++
	}
	m.mu.Unlock()
}

// RecordCallsPlaced adds to the placed-calls counter
func (m *Metrics) RecordCallsPlaced(count int) {
	m.mu.Lock()
	m.CallsPlacedTotal += int64(count)
	m.mu.Unlock()
}

// RecordDispatchError increments the dispatch error counter
func (m *Metrics) RecordDispatchError() {
	m.mu.Lock()
	m.DispatchErrors++
	m.mu.Unlock()
}

// RecordPacingCycle records one pass of the pacing loop
func (m *Metrics) RecordPacingCycle(duration time.Duration) {
	m.mu.Lock()
	m.PacingCyclesTotal++
	m.lastCycleDuration = duration
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordWebSocketMessage increments message counter
func (m *Metrics) RecordWebSocketMessage() {
	m.mu.Lock()
	m.WebSocketMessagesTotal++
	m.mu.Unlock()
}

// RecordWebSocketError increments WebSocket error counter
func (m *Metrics) RecordWebSocketError() {
	m.mu.Lock()
	m.WebSocketErrorsTotal++
	m.mu.Unlock()
}

// UpdateCampaignStats updates campaign distribution metrics
func (m *Metrics) UpdateCampaignStats(campaigns []types.CampaignInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.campaignsByStatus = make(map[types.CampaignStatus]int)
	m.totalCampaigns = len(campaigns)

	for _, c := range campaigns {
		m.campaignsByStatus[c.Status]++
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++

	// Keep last 100 durations for percentile calculation
	if len(m.httpRequestDurations[endpoint]) >= 100 {
		m.httpRequestDurations[endpoint] = m.httpRequestDurations[endpoint][1:]
	}
	m.httpRequestDurations[endpoint] = append(m.httpRequestDurations[endpoint], duration.Seconds())
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("dialpace_uptime_seconds", time.Since(m.startTime).Seconds())

		// Telemetry metrics
		write("dialpace_telemetry_received_total", m.TelemetryReceivedTotal)
		write("dialpace_telemetry_processed_total", m.TelemetryProcessedTotal)
		write("dialpace_telemetry_errors_total", m.TelemetryErrorsTotal)

		// Decision metrics
		for mode, count := range m.decisionsByMode {
			write("dialpace_decisions_total", count, "mode", string(mode))
		}
		write("dialpace_dial_decisions_total", m.DialDecisions)
		write("dialpace_nodial_decisions_total", m.NoDialDecisions)
		write("dialpace_calls_placed_total", m.CallsPlacedTotal)
		write("dialpace_dispatch_errors_total", m.DispatchErrors)

		// Pacing loop metrics
		write("dialpace_pacing_cycles_total", m.PacingCyclesTotal)
		write("dialpace_pacing_cycle_duration_seconds", m.lastCycleDuration.Seconds())

		// WebSocket metrics
		write("dialpace_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("dialpace_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("dialpace_websocket_active_connections", m.activeConnections)
		write("dialpace_websocket_messages_total", m.WebSocketMessagesTotal)
		write("dialpace_websocket_errors_total", m.WebSocketErrorsTotal)

		// Campaign metrics
		write("dialpace_campaigns_total", m.totalCampaigns)
		for status, count := range m.campaignsByStatus {
			write("dialpace_campaigns_by_status", count, "status", string(status))
		}

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("dialpace_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}
