package storage

import "github.com/mkessler/dialpace/internal/types"

// Store defines the decision-record storage interface
type Store interface {
	SaveDecisionRecord(record types.DecisionRecord) error
	GetDecisionRecords(dateKey string) ([]types.DecisionRecord, error)
	GetCampaignDecisions(campaignID, dateKey string) ([]types.DecisionRecord, error)
	TruncateAll() error
}

// NoopStore is a no-op implementation when DynamoDB is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveDecisionRecord(_ types.DecisionRecord) error { return nil }
func (s *NoopStore) GetDecisionRecords(_ string) ([]types.DecisionRecord, error) {
	return nil, nil
}
func (s *NoopStore) GetCampaignDecisions(_, _ string) ([]types.DecisionRecord, error) {
	return nil, nil
}
func (s *NoopStore) TruncateAll() error { return nil }
