package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mkessler/dialpace/internal/api"
	"github.com/mkessler/dialpace/internal/auth"
	"github.com/mkessler/dialpace/internal/cache"
	"github.com/mkessler/dialpace/internal/config"
	"github.com/mkessler/dialpace/internal/dispatch"
	"github.com/mkessler/dialpace/internal/metrics"
	"github.com/mkessler/dialpace/internal/orchestrator"
	"github.com/mkessler/dialpace/internal/pacing"
	"github.com/mkessler/dialpace/internal/storage"
	"github.com/mkessler/dialpace/internal/telemetry"
	"github.com/mkessler/dialpace/internal/websocket"
	"github.com/mkessler/dialpace/pkg/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Dur("pacing_interval", cfg.PacingInterval).
		Msg("starting dialpace server")

	// Create context for background services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pacing engine
	engine, err := pacing.NewEngine(cfg.Engine, cfg.MaxTrackedCampaigns, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pacing engine")
	}

	// Campaign registry
	tracker := cache.NewCampaignTracker()

	// Decision storage
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize decision storage")
	}

	// Telephony gateway
	dialer := dispatch.NewDialer(cfg.DialerGatewayURL, cfg.DialerTimeout, log.Logger)

	// WebSocket hub
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	// Pacing loop
	pacer := orchestrator.New(tracker, engine, dialer, store, hub,
		cfg.PacingInterval, cfg.CampaignStaleAfter, cfg.CampaignPurgeAfter, log.Logger)
	go pacer.Start(ctx)

	// HTTP handlers
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)
	telemetryReceiver := telemetry.NewReceiver(tracker, engine, log.Logger)
	campaignHandler := api.NewCampaignHandler(tracker, engine, log.Logger)
	configHandler := api.NewConfigHandler(engine, log.Logger)
	decisionsHandler := api.NewDecisionsHandler(store, log.Logger)
	adminHandler := api.NewAdminHandler(tracker, engine, store, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	// Internal routes (no auth - for the call-outcome pipeline)
	r.Route("/internal", func(r chi.Router) {
		r.Post("/telemetry", telemetryReceiver.HandleTelemetry)
		r.Get("/telemetry/stats", telemetryReceiver.GetStats)
	})

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/ws", wsHandler.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Get("/campaigns", campaignHandler.ListCampaigns)
			r.Route("/campaigns/{campaignId}", func(r chi.Router) {
				r.Get("/", campaignHandler.GetCampaign)
				r.Get("/decision", campaignHandler.GetDecision)
				r.Post("/pause", campaignHandler.PauseCampaign)
				r.Post("/resume", campaignHandler.ResumeCampaign)
				r.Put("/mode", campaignHandler.SetMode)
				r.Delete("/", campaignHandler.DeleteCampaign)
			})

			r.Get("/config", configHandler.GetConfig)
			r.Get("/decisions", decisionsHandler.GetDecisions)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(api.RequireAdmin)
				r.Put("/config", configHandler.UpdateConfig)
				r.Post("/admin/reset", adminHandler.ResetMemory)
				r.Post("/admin/truncate", adminHandler.TruncateStorage)
			})
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the pacing loop
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"dialpace"}`)
}
