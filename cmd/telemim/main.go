package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/telemim/telemim-ops/internal/app"
	"github.com/telemim/telemim-ops/internal/auth"
	"github.com/telemim/telemim-ops/internal/finance"
	"github.com/telemim/telemim-ops/internal/helpers"
	"github.com/telemim/telemim-ops/internal/moves"
	"github.com/telemim/telemim-ops/internal/notify"
	"github.com/telemim/telemim-ops/internal/platform/cache"
	"github.com/telemim/telemim-ops/internal/platform/db"
	"github.com/telemim/telemim-ops/internal/reports"
	"github.com/telemim/telemim-ops/internal/residents"
	"github.com/telemim/telemim-ops/internal/routing"
	"github.com/telemim/telemim-ops/internal/shared"
	"github.com/telemim/telemim-ops/internal/staff"
	"github.com/telemim/telemim-ops/jobs"
	"github.com/telemim/telemim-ops/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "telemim_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	staffRepo := staff.NewRepository(pool)
	staffService := staff.NewService(staffRepo, auditLogger)
	staffHandler := staff.NewHandler(logger, staffService)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(staffRepo, authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, auditLogger)

	notifyRepo := notify.NewRepository(pool)
	notifyService := notify.NewService(notifyRepo, logger)
	notifyHandler := notify.NewHandler(logger, notifyService)

	residentsRepo := residents.NewRepository(pool)
	residentsService := residents.NewService(residentsRepo, auditLogger)
	residentsHandler := residents.NewHandler(logger, residentsService)

	helpersRepo := helpers.NewRepository(pool)
	helpersService := helpers.NewService(helpersRepo, auditLogger)
	helpersHandler := helpers.NewHandler(logger, helpersService)

	movesRepo := moves.NewRepository(pool)
	movesService := moves.NewService(movesRepo, &moves.NotifyAdapter{Service: notifyService}, auditLogger)
	movesHandler := moves.NewHandler(logger, movesService)

	financeRepo := finance.NewRepository(pool)
	financeService := finance.NewService(financeRepo, idempotencyStore, auditLogger)
	financeHandler := finance.NewHandler(logger, financeService)

	aiClient := routing.NewClient(logger, cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout)
	routingHandler := routing.NewHandler(logger, aiClient)

	reportsService := reports.NewService(movesRepo, financeRepo, helpersRepo, aiClient)
	reportsHandler := reports.NewHandler(logger, reportsService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, movesService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		LoadActor:      authService.LoadActor,
		Audit:          auditLogger,

		AuthHandler:      authHandler,
		StaffHandler:     staffHandler,
		ResidentsHandler: residentsHandler,
		MovesHandler:     movesHandler,
		HelpersHandler:   helpersHandler,
		FinanceHandler:   financeHandler,
		NotifyHandler:    notifyHandler,
		ReportsHandler:   reportsHandler,
		RoutingHandler:   routingHandler,
		ReportHandler:    reportHandler,
		JobHandler:       jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped cleanly")
}
