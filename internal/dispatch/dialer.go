package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dialer places outbound call attempts through a telephony gateway.
// The pacing service only tells the gateway how many calls to originate;
// contact selection and call handling live on the gateway side.
type Dialer interface {
	PlaceCalls(ctx context.Context, campaignID string, count int) ([]string, error)
}

// DialBatch is the request sent to the telephony gateway
type DialBatch struct {
	BatchID    string    `json:"batchId"`
	CampaignID string    `json:"campaignId"`
	AttemptIDs []string  `json:"attemptIds"`
	IssuedAt   time.Time `json:"issuedAt"`
}

// GatewayDialer dispatches dial batches to an HTTP telephony gateway
type GatewayDialer struct {
	gatewayURL string
	client     *http.Client
	logger     zerolog.Logger
}

// NewGatewayDialer creates a dialer that POSTs batches to the gateway
func NewGatewayDialer(gatewayURL string, timeout time.Duration, logger zerolog.Logger) *GatewayDialer {
	return &GatewayDialer{
		gatewayURL: gatewayURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// PlaceCalls sends one dial batch of count attempts and returns the
// attempt IDs on success
func (d *GatewayDialer) PlaceCalls(ctx context.Context, campaignID string, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	attemptIDs := make([]string, count)
	for i := range attemptIDs {
		attemptIDs[i] = uuid.New().String()
	}

	batch := DialBatch{
		BatchID:    uuid.New().String(),
		CampaignID: campaignID,
		AttemptIDs: attemptIDs,
		IssuedAt:   time.Now(),
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dial batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.gatewayURL+"/calls/originate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create dial request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telephony gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("telephony gateway returned status %d", resp.StatusCode)
	}

	d.logger.Debug().
		Str("campaign_id", campaignID).
		Str("batch_id", batch.BatchID).
		Int("count", count).
		Msg("dial batch dispatched")

	return attemptIDs, nil
}

// NoopDialer is used when no telephony gateway is configured; decisions
// are still computed, broadcast and persisted, but no calls go out
type NoopDialer struct{}

func NewNoopDialer() *NoopDialer { return &NoopDialer{} }

func (d *NoopDialer) PlaceCalls(_ context.Context, _ string, _ int) ([]string, error) {
	return nil, nil
}

// NewDialer creates the appropriate dialer based on configuration
func NewDialer(gatewayURL string, timeout time.Duration, logger zerolog.Logger) Dialer {
	if gatewayURL == "" {
		logger.Info().Msg("no telephony gateway configured, dial dispatch disabled")
		return NewNoopDialer()
	}
	logger.Info().Str("gateway_url", gatewayURL).Msg("telephony gateway dialer initialized")
	return NewGatewayDialer(gatewayURL, timeout, logger)
}
