package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chainops/chainops/internal/app"
	"github.com/chainops/chainops/internal/auth"
	"github.com/chainops/chainops/internal/groups"
	"github.com/chainops/chainops/internal/locations"
	"github.com/chainops/chainops/internal/observability"
	"github.com/chainops/chainops/internal/platform/cache"
	"github.com/chainops/chainops/internal/platform/db"
	"github.com/chainops/chainops/internal/pricing"
	"github.com/chainops/chainops/internal/roles"
	"github.com/chainops/chainops/internal/shared"
	"github.com/chainops/chainops/internal/teams"
	"github.com/chainops/chainops/internal/users"
	"github.com/chainops/chainops/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "chainops_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}

	groupsRepo := groups.NewRepository(dbpool)
	groupsService := groups.NewService(groupsRepo, auditLogger, logger)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, groupsService, auditLogger, logger)
	usersHandler := users.NewHandler(logger, usersService)

	groupsHandler := groups.NewHandler(logger, groupsService, usersService)

	teamsRepo := teams.NewRepository(dbpool)
	teamsService := teams.NewService(teamsRepo, auditLogger, logger)
	teamsHandler := teams.NewHandler(logger, teamsService)

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService)

	locationsRepo := locations.NewRepository(dbpool)
	locationsCache := locations.NewCache(redisClient, cfg.LocationCacheTTL)
	locationsService := locations.NewService(locationsRepo, locationsCache)
	locationsHandler := locations.NewHandler(logger, locationsService)

	pricingRepo := pricing.NewRepository(dbpool)
	pricingService := pricing.NewService(pricingRepo, auditLogger, logger)
	pricingHandler := pricing.NewHandler(logger, pricingService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	// Warm the location directory cache through the worker on boot.
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("jobs client", slog.Any("error", err))
	} else {
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		if _, err := jobsClient.EnqueueLocationRefresh(ctx); err != nil {
			logger.Warn("enqueue location refresh", slog.Any("error", err))
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		UsersHandler:     usersHandler,
		TeamsHandler:     teamsHandler,
		RolesHandler:     rolesHandler,
		GroupsHandler:    groupsHandler,
		LocationsHandler: locationsHandler,
		PricingHandler:   pricingHandler,
		JobsHandler:      jobsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
