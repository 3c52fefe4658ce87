package pacing

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "default",
			mutate: func(c *Config) {},
		},
		{
			name:    "target abandonment zero",
			mutate:  func(c *Config) { c.TargetAbandonmentRate = 0 },
			wantErr: true,
		},
		{
			name:    "target abandonment one",
			mutate:  func(c *Config) { c.TargetAbandonmentRate = 1 },
			wantErr: true,
		},
		{
			name:    "min ratio below one",
			mutate:  func(c *Config) { c.MinDialRatio = 0.9 },
			wantErr: true,
		},
		{
			name:    "max not above min",
			mutate:  func(c *Config) { c.MaxDialRatio = c.MinDialRatio },
			wantErr: true,
		},
		{
			name:    "safety buffer zero",
			mutate:  func(c *Config) { c.SafetyBuffer = 0 },
			wantErr: true,
		},
		{
			name:    "safety buffer above one",
			mutate:  func(c *Config) { c.SafetyBuffer = 1.1 },
			wantErr: true,
		},
		{
			name:   "safety buffer exactly one",
			mutate: func(c *Config) { c.SafetyBuffer = 1 },
		},
		{
			name:    "non-positive interval",
			mutate:  func(c *Config) { c.PacingInterval = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := DefaultConfig()

	max := 4.0
	interval := 10 * time.Second
	merged := cfg.merge(ConfigUpdate{MaxDialRatio: &max, PacingInterval: &interval})

	if merged.MaxDialRatio != 4.0 {
		t.Errorf("expected max ratio 4.0, got %v", merged.MaxDialRatio)
	}
	if merged.PacingInterval != 10*time.Second {
		t.Errorf("expected interval 10s, got %v", merged.PacingInterval)
	}
	if merged.MinDialRatio != cfg.MinDialRatio {
		t.Errorf("expected min ratio untouched, got %v", merged.MinDialRatio)
	}

	// merge must not mutate the receiver
	if cfg.MaxDialRatio != 3.0 {
		t.Errorf("merge mutated the original config: %v", cfg.MaxDialRatio)
	}
}
