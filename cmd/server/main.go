package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/neurobank/internal/ai"
	"github.com/vytor/neurobank/internal/api"
	"github.com/vytor/neurobank/internal/clock"
	"github.com/vytor/neurobank/internal/config"
	"github.com/vytor/neurobank/internal/db"
	"github.com/vytor/neurobank/internal/jobs"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/repository/sqlite"
	"github.com/vytor/neurobank/internal/services"
	"github.com/vytor/neurobank/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Neurobank Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("stats_timezone=%s", cfg.StatsTimezone)
	log.Debug("ai_enabled=%t model=%s", cfg.AIEnabled(), cfg.OpenAIModel)
	log.Debug("maintenance_worker_count=%d", cfg.MaintenanceWorkerCount)
	log.Debug("maintenance_queue_size=%d", cfg.MaintenanceQueueSize)
	log.Debug("maintenance_at=%s", cfg.MaintenanceAt)
	log.Debug("maintenance_prune_stats=%t", cfg.MaintenancePruneStats)
	log.Debug("review_refresh_minutes=%d", cfg.ReviewRefreshMinutes)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	userRepo := sqlite.NewUserRepository(database.DB)
	noteRepo := sqlite.NewNoteRepository(database.DB)
	flashcardRepo := sqlite.NewFlashcardRepository(database.DB)

	var generator ai.Generator = ai.Unavailable{}
	if cfg.AIEnabled() {
		generator = ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			BaseURL:     cfg.OpenAIBaseURL,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
		})
	} else {
		log.Warn("OPENAI_API_KEY not set, AI features disabled")
	}

	// Services
	wall := clock.System{}
	statsService := services.NewStatsService(
		sqlite.NewStatsRepository(database.DB), noteRepo, flashcardRepo, userRepo,
		clock.NewCalendar(wall, cfg.Location()),
	)
	flashcardService := services.NewFlashcardService(flashcardRepo, userRepo, statsService, wall)
	userService := services.NewUserService(userRepo, wall, 0)

	srv := &api.Server{
		Flashcards: flashcardService,
		Stats:      statsService,
		Notes:      services.NewNoteService(noteRepo, userRepo, statsService, flashcardService, generator, wall),
		Folders:    services.NewNoteFolderService(sqlite.NewNoteFolderRepository(database.DB), userRepo, wall),
		Decks:      services.NewDeckService(sqlite.NewDeckRepository(database.DB), userRepo, wall),
		Tasks:      services.NewTaskService(sqlite.NewTaskRepository(database.DB), userRepo, wall),
		Users:      userService,
		DB:         database,
	}

	// Background maintenance
	ctx, cancel := context.WithCancel(context.Background())
	maintenancePool := worker.NewPool(cfg.MaintenanceWorkerCount, cfg.MaintenanceQueueSize)
	maintenancePool.Start(ctx)

	maintenance := jobs.NewMaintenance(maintenancePool, userService, flashcardService, statsService)
	maintenance.PruneStats = cfg.MaintenancePruneStats
	scheduler := jobs.NewScheduler(maintenance, cfg.Location(), cfg.MaintenanceAt, cfg.ReviewRefreshMinutes)
	if err := scheduler.Start(ctx); err != nil {
		log.Error("failed to start scheduler: %v", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping scheduler")
	scheduler.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping maintenance pool")
	cancel()
	maintenancePool.Stop()

	log.Info("===========================================")
	log.Info("Neurobank Server Stopped")
	log.Info("===========================================")
}
