package types

// DecisionRecord represents a persisted dialing decision for DynamoDB
type DecisionRecord struct {
	DateKey              string  `json:"dateKey" dynamodbav:"DateKey"`       // YYYY-MM-DD (partition key)
	DecisionID           string  `json:"decisionId" dynamodbav:"DecisionID"` // sort key
	CampaignID           string  `json:"campaignId" dynamodbav:"CampaignID"`
	Mode                 string  `json:"mode" dynamodbav:"Mode"`
	Timestamp            string  `json:"timestamp" dynamodbav:"Timestamp"` // RFC3339
	ShouldDial           bool    `json:"shouldDial" dynamodbav:"ShouldDial"`
	DialRatio            float64 `json:"dialRatio" dynamodbav:"DialRatio"`
	CallsToPlace         int     `json:"callsToPlace" dynamodbav:"CallsToPlace"`
	Reasoning            string  `json:"reasoning" dynamodbav:"Reasoning"`
	ExpectedAnswers      float64 `json:"expectedAnswers" dynamodbav:"ExpectedAnswers"`
	ExpectedAbandonments float64 `json:"expectedAbandonments" dynamodbav:"ExpectedAbandonments"`
	UtilizationImpact    float64 `json:"utilizationImpact" dynamodbav:"UtilizationImpact"`
	AvailableAgents      int     `json:"availableAgents" dynamodbav:"AvailableAgents"`
	QueueDepth           int     `json:"queueDepth" dynamodbav:"QueueDepth"`
}
