package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-autopilot/internal/config"
	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/infra/adapters/ats"
	"job-autopilot/internal/infra/audit"
	"job-autopilot/internal/infra/browser"
	pg "job-autopilot/internal/infra/db/postgres"
	"job-autopilot/internal/infra/docgen"
	"job-autopilot/internal/infra/logging"
	"job-autopilot/internal/infra/metrics"
	red "job-autopilot/internal/infra/redis"
	"job-autopilot/internal/infra/sched"
	"job-autopilot/internal/infra/sources"
	"job-autopilot/internal/infra/web"
	"job-autopilot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, headed browser)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	jobRepo := pg.NewJobRepo(pool)
	profileRepo := pg.NewProfileRepo(pool)
	auditRepo := pg.NewAuditRepo(pool, logger)
	auditSink := audit.NewMultiSink(auditRepo, audit.NewLogSink(logger))

	// ---- Browser and submission ----
	chrome := browser.NewChromeBrowser(&cfg.Browser, logger)
	defer chrome.Close()
	docGen := docgen.NewTextGenerator(cfg.Browser.ArtifactDir, logger)
	artifacts := docgen.NewFileArtifactStore(cfg.Browser.ArtifactDir)
	driver := usecase.NewSubmissionDriver(
		chrome, ats.NewFillers(logger), docGen, artifacts,
		cfg.Browser.IdleThreshold, logger,
	)

	// ---- Use cases ----
	filter := usecase.NewFilterEngine(logger)
	selector := usecase.NewResumeSelector(nil, auditSink, logger)
	state := model.NewRunState()
	processor := usecase.NewQueueProcessor(
		jobRepo, profileRepo, auditSink, filter, selector, driver, state,
		locker, rateLimiter,
		usecase.QueueConfig{
			DefaultLimit:     cfg.Queue.DefaultLimit,
			FailureThreshold: cfg.Queue.FailureThreshold,
			UserID:           model.DefaultProfileID,
			LockTTL:          cfg.Redis.LockTTL,
			ProviderRateMax:  cfg.Queue.ProviderRateMax,
			ProviderRateWin:  cfg.Queue.ProviderRateWin,
		},
		logger,
	)

	srcs, err := sources.FromConfig(cfg.Sources, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("sources")
	}
	txManager := pg.NewTxManager(pool)
	ingest := usecase.NewIngestUseCase(srcs, jobRepo, txManager, auditSink, logger)
	retention := usecase.NewRetentionUseCase(jobRepo, cfg.Retention.StaleAfterDays, cfg.Retention.PurgeAfterDays, logger)

	// ---- Scheduler ----
	runner := sched.NewRunner(cfg.Scheduler.CronSpec, cfg.Scheduler.DryRun, ingest, processor, retention, logger)
	if err := runner.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("scheduler")
	}

	// ---- Control API ----
	metrics.MustRegister()
	authMgr := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, "", cfg.Admin.SessionTTL)
	webServer := web.NewServer(processor, auditRepo, auditSink, profileRepo, ingest, authMgr, cfg.Admin.APIKey, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: webServer.Handler(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("control API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	processor.Stop()
	runner.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
