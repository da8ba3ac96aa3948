package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/lessonforge/lessonforge-backend/internal/ai"
	"github.com/lessonforge/lessonforge-backend/internal/api/rest"
	"github.com/lessonforge/lessonforge-backend/internal/config"
	"github.com/lessonforge/lessonforge-backend/internal/pkg/artifactcache"
	"github.com/lessonforge/lessonforge-backend/internal/pkg/logger"
	"github.com/lessonforge/lessonforge-backend/internal/repository"
	"github.com/lessonforge/lessonforge-backend/internal/scheduler"
	"github.com/lessonforge/lessonforge-backend/internal/service"
	"github.com/lessonforge/lessonforge-backend/migrations"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.StdLogger(cfg.LogLevel)
	log.Info("lessonforge backend starting", "port", cfg.Port)

	// Durable stores: SQLite by default, PostgreSQL when a DSN is configured.
	var store *repository.Store
	if cfg.PostgresDSN != "" {
		store, err = repository.NewPostgresStore(cfg.PostgresDSN)
	} else {
		store, err = repository.NewSQLiteStore(cfg.DatabasePath)
	}
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	migrationSQL, err := migrations.FS.ReadFile("001_initial_schema.sql")
	if err != nil {
		log.Error("failed to read embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := store.RunMigrations(string(migrationSQL)); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	stores := repository.Stores{Tracker: store, Cache: store, Source: store}
	hot := artifactcache.New(cfg.HotCacheSize)

	aiTimeout := time.Duration(cfg.AITimeoutSec) * time.Second
	translator := ai.NewTranslationClient(cfg.TranslationURL, aiTimeout, cfg.AIRateLimitPerSec, cfg.AIRateLimitBurst)
	generator := ai.NewGenerationClient(cfg.GenerationURL, aiTimeout, cfg.AIRateLimitPerSec, cfg.AIRateLimitBurst)
	if cfg.TranslationURL == "" || cfg.GenerationURL == "" {
		log.Warn("AI collaborator URL not configured; misses requiring translation or generation will fail",
			"translation_url", cfg.TranslationURL, "generation_url", cfg.GenerationURL)
	}

	resolver := service.NewResolver(stores, hot, translator, generator, cfg.FallbackLanguages, log)
	preloader := service.NewPreloader(stores, translator, log)
	evaluator := service.NewEvaluator(store, cfg.FrequentShareThreshold, log)
	cleaner := service.NewCleaner(stores, hot, cfg.CleanupMaxLessons, log)
	orchestrator := service.NewOrchestrator(evaluator, cleaner, log)

	sched := scheduler.New(time.Duration(cfg.SchedulerTickMS)*time.Millisecond, log)
	sched.Register(scheduler.Job{
		Name:       "preload",
		Rule:       scheduler.DailyRule{Hour: cfg.PreloadHour},
		RunAtStart: true,
		Run: func(ctx context.Context) (any, error) {
			return preloader.Run(ctx, service.PreloadOptions{MaxLessons: cfg.PreloadMaxLessons})
		},
	})
	sched.Register(scheduler.Job{
		Name: "evaluation-cycle",
		Rule: scheduler.MonthDaysRule{Days: cfg.EvaluationDays, Hour: cfg.EvaluationHour},
		Run: func(ctx context.Context) (any, error) {
			return orchestrator.Run(ctx)
		},
	})
	sched.Start(ctx)
	defer sched.Stop()

	router := mux.NewRouter()
	router.Use(rest.RequestID, rest.Logging(log))
	healthz := rest.NewHealthzHandler(store)
	router.HandleFunc("/healthz/live", healthz.Live).Methods("GET")
	router.HandleFunc("/healthz/ready", healthz.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	rest.SetupRoutes(apiRouter, rest.NewHandler(resolver, store, sched))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"*"},
	})

	server := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: corsHandler.Handler(router),
	}

	go func() {
		log.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("lessonforge backend stopped")
}
