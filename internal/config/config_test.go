package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("expected port 8080, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.PacingInterval != 5*time.Second {
					t.Errorf("expected PacingInterval 5s, got %v", cfg.PacingInterval)
				}
				if cfg.Engine.TargetAbandonmentRate != 0.05 {
					t.Errorf("expected default target 0.05, got %v", cfg.Engine.TargetAbandonmentRate)
				}
				if cfg.MaxTrackedCampaigns != 1024 {
					t.Errorf("expected 1024 tracked campaigns, got %d", cfg.MaxTrackedCampaigns)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":                    "9000",
				"LOG_LEVEL":               "debug",
				"PACING_INTERVAL":         "2s",
				"TARGET_ABANDONMENT_RATE": "0.03",
				"MAX_DIAL_RATIO":          "5.0",
				"ALLOWED_ORIGINS":         "http://example.com,http://test.com",
				"DIALER_GATEWAY_URL":      "http://gateway:9999",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.PacingInterval != 2*time.Second {
					t.Errorf("expected PacingInterval 2s, got %v", cfg.PacingInterval)
				}
				if cfg.Engine.TargetAbandonmentRate != 0.03 {
					t.Errorf("expected target 0.03, got %v", cfg.Engine.TargetAbandonmentRate)
				}
				if cfg.Engine.MaxDialRatio != 5.0 {
					t.Errorf("expected max ratio 5.0, got %v", cfg.Engine.MaxDialRatio)
				}
				if cfg.Engine.PacingInterval != 2*time.Second {
					t.Errorf("expected engine interval 2s, got %v", cfg.Engine.PacingInterval)
				}
				if len(cfg.AllowedOrigins) != 2 {
					t.Errorf("expected 2 allowed origins, got %d", len(cfg.AllowedOrigins))
				}
				if cfg.DialerGatewayURL != "http://gateway:9999" {
					t.Errorf("expected gateway URL, got %s", cfg.DialerGatewayURL)
				}
			},
		},
		{
			name: "invalid WS_READ_TIMEOUT",
			env: map[string]string{
				"WS_READ_TIMEOUT": "invalid",
			},
			wantErr: true,
		},
		{
			name: "invalid PACING_INTERVAL",
			env: map[string]string{
				"PACING_INTERVAL": "often",
			},
			wantErr: true,
		},
		{
			name: "invalid TARGET_ABANDONMENT_RATE",
			env: map[string]string{
				"TARGET_ABANDONMENT_RATE": "lots",
			},
			wantErr: true,
		},
		{
			name: "inconsistent engine bounds rejected",
			env: map[string]string{
				"MIN_DIAL_RATIO": "4.0",
				"MAX_DIAL_RATIO": "2.0",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Load config
			cfg, err := Load()

			// Check error
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Run custom checks
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestWebSocketConstants(t *testing.T) {
	// Clear environment and set clean defaults
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// PongWait should equal WSReadTimeout
	if cfg.PongWait != cfg.WSReadTimeout {
		t.Errorf("PongWait (%v) should equal WSReadTimeout (%v)", cfg.PongWait, cfg.WSReadTimeout)
	}

	// PingPeriod should be less than PongWait
	if cfg.PingPeriod >= cfg.PongWait {
		t.Errorf("PingPeriod (%v) should be less than PongWait (%v)", cfg.PingPeriod, cfg.PongWait)
	}

	// MaxMessageSize should be set
	if cfg.MaxMessageSize <= 0 {
		t.Errorf("MaxMessageSize should be positive, got %d", cfg.MaxMessageSize)
	}
}
