package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mkessler/dialpace/internal/pacing"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// WebSocket settings
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	// Pacing loop
	PacingInterval      time.Duration
	CampaignStaleAfter  time.Duration
	CampaignPurgeAfter  time.Duration
	MaxTrackedCampaigns int

	// Telephony gateway
	DialerGatewayURL string
	DialerTimeout    time.Duration

	// Engine defaults, merged over pacing.DefaultConfig()
	Engine pacing.Config
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DialerGatewayURL: getEnv("DIALER_GATEWAY_URL", ""),
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	config.PacingInterval, err = getDuration("PACING_INTERVAL", "5s")
	if err != nil {
		return nil, err
	}
	config.CampaignStaleAfter, err = getDuration("CAMPAIGN_STALE_AFTER", "30s")
	if err != nil {
		return nil, err
	}
	config.CampaignPurgeAfter, err = getDuration("CAMPAIGN_PURGE_AFTER", "1h")
	if err != nil {
		return nil, err
	}
	config.DialerTimeout, err = getDuration("DIALER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	config.MaxTrackedCampaigns, err = strconv.Atoi(getEnv("MAX_TRACKED_CAMPAIGNS", "1024"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_TRACKED_CAMPAIGNS: %w", err)
	}

	config.Engine, err = loadEngineConfig(config.PacingInterval)
	if err != nil {
		return nil, err
	}

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// loadEngineConfig merges env overrides over the engine defaults and
// validates the result so the server refuses to start on a broken config
func loadEngineConfig(interval time.Duration) (pacing.Config, error) {
	cfg := pacing.DefaultConfig()
	cfg.PacingInterval = interval

	var err error
	if cfg.TargetAbandonmentRate, err = getFloat("TARGET_ABANDONMENT_RATE", cfg.TargetAbandonmentRate); err != nil {
		return cfg, err
	}
	if cfg.MinDialRatio, err = getFloat("MIN_DIAL_RATIO", cfg.MinDialRatio); err != nil {
		return cfg, err
	}
	if cfg.MaxDialRatio, err = getFloat("MAX_DIAL_RATIO", cfg.MaxDialRatio); err != nil {
		return cfg, err
	}
	if cfg.SafetyBuffer, err = getFloat("SAFETY_BUFFER", cfg.SafetyBuffer); err != nil {
		return cfg, err
	}
	if cfg.AgentWrapTime, err = getFloat("AGENT_WRAP_TIME", cfg.AgentWrapTime); err != nil {
		return cfg, err
	}
	if cfg.CallConnectDelay, err = getFloat("CALL_CONNECT_DELAY", cfg.CallConnectDelay); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid engine config: %w", err)
	}
	return cfg, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
