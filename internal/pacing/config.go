package pacing

import (
	"fmt"
	"time"
)

// Config holds the tunables for the pacing engine
type Config struct {
	TargetAbandonmentRate float64       `json:"targetAbandonmentRate"` // service-level ceiling, 0-1
	MinDialRatio          float64       `json:"minDialRatio"`          // calls per available agent, >= 1.0
	MaxDialRatio          float64       `json:"maxDialRatio"`
	PacingInterval        time.Duration `json:"pacingInterval"`   // suggested re-evaluation period; the orchestrator owns scheduling
	AgentWrapTime         float64       `json:"agentWrapTime"`    // seconds; reserved, not consumed by the current formulas
	CallConnectDelay      float64       `json:"callConnectDelay"` // seconds; reserved, not consumed by the current formulas
	SafetyBuffer          float64       `json:"safetyBuffer"`     // derating on the optimal ratio, 0-1
}

// DefaultConfig returns the standard pacing configuration
func DefaultConfig() Config {
	return Config{
		TargetAbandonmentRate: 0.05,
		MinDialRatio:          1.1,
		MaxDialRatio:          3.0,
		PacingInterval:        5 * time.Second,
		AgentWrapTime:         15,
		CallConnectDelay:      2,
		SafetyBuffer:          0.85,
	}
}

// Validate checks the internal consistency of the configuration
func (c Config) Validate() error {
	if c.TargetAbandonmentRate <= 0 || c.TargetAbandonmentRate >= 1 {
		return fmt.Errorf("targetAbandonmentRate must be in (0,1), got %v", c.TargetAbandonmentRate)
	}
	if c.MinDialRatio < 1.0 {
		return fmt.Errorf("minDialRatio must be >= 1.0, got %v", c.MinDialRatio)
	}
	if c.MaxDialRatio <= c.MinDialRatio {
		return fmt.Errorf("maxDialRatio (%v) must be greater than minDialRatio (%v)", c.MaxDialRatio, c.MinDialRatio)
	}
	if c.SafetyBuffer <= 0 || c.SafetyBuffer > 1 {
		return fmt.Errorf("safetyBuffer must be in (0,1], got %v", c.SafetyBuffer)
	}
	if c.PacingInterval <= 0 {
		return fmt.Errorf("pacingInterval must be positive, got %v", c.PacingInterval)
	}
	return nil
}

// ConfigUpdate is a partial configuration change. Nil fields keep their
// current value.
type ConfigUpdate struct {
	TargetAbandonmentRate *float64       `json:"targetAbandonmentRate,omitempty"`
	MinDialRatio          *float64       `json:"minDialRatio,omitempty"`
	MaxDialRatio          *float64       `json:"maxDialRatio,omitempty"`
	PacingInterval        *time.Duration `json:"pacingInterval,omitempty"`
	AgentWrapTime         *float64       `json:"agentWrapTime,omitempty"`
	CallConnectDelay      *float64       `json:"callConnectDelay,omitempty"`
	SafetyBuffer          *float64       `json:"safetyBuffer,omitempty"`
}

// merge applies the non-nil fields of u on top of c
func (c Config) merge(u ConfigUpdate) Config {
	if u.TargetAbandonmentRate != nil {
		c.TargetAbandonmentRate = *u.TargetAbandonmentRate
	}
	if u.MinDialRatio != nil {
		c.MinDialRatio = *u.MinDialRatio
	}
	if u.MaxDialRatio != nil {
		c.MaxDialRatio = *u.MaxDialRatio
	}
	if u.PacingInterval != nil {
		c.PacingInterval = *u.PacingInterval
	}
	if u.AgentWrapTime != nil {
		c.AgentWrapTime = *u.AgentWrapTime
	}
	if u.CallConnectDelay != nil {
		c.CallConnectDelay = *u.CallConnectDelay
	}
	if u.SafetyBuffer != nil {
		c.SafetyBuffer = *u.SafetyBuffer
	}
	return c
}
