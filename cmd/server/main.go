package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/aulas/aulas-bff/internal/api"
	"github.com/aulas/aulas-bff/internal/auth"
	"github.com/aulas/aulas-bff/internal/backend"
	"github.com/aulas/aulas-bff/internal/config"
	"github.com/aulas/aulas-bff/internal/cron"
	"github.com/aulas/aulas-bff/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logg := logger.Get()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	client := backend.NewClient(cfg)

	reader, err := auth.NewClaimsReader(cfg)
	if err != nil {
		logg.Fatal().Err(err).Str("jwks_url", cfg.JWKSURL).Msg("Failed to load signing keys")
	}
	gate := auth.NewGate(cfg, reader)

	// Start cron jobs
	monitor := cron.NewMonitor(client)
	jobs, err := cron.StartJobs(cfg.HealthCheckSchedule, monitor)
	if err != nil {
		logg.Fatal().Err(err).Str("schedule", cfg.HealthCheckSchedule).Msg("Invalid health check schedule")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.SetupRouter(cfg, client, gate, monitor),
	}

	go func() {
		logg.Info().Str("addr", srv.Addr).Str("backend", cfg.APIURL).Msg("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info().Msg("Shutting down server...")

	if jobs != nil {
		<-jobs.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logg.Error().Err(err).Msg("Server forced to shutdown")
	}

	logg.Info().Msg("Server exited")
}
