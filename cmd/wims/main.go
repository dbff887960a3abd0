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

	"github.com/wims-erp/wims/internal/app"
	"github.com/wims-erp/wims/internal/auth"
	"github.com/wims-erp/wims/internal/bills"
	"github.com/wims-erp/wims/internal/clients"
	"github.com/wims-erp/wims/internal/dashboard"
	"github.com/wims-erp/wims/internal/observability"
	"github.com/wims-erp/wims/internal/orders"
	"github.com/wims-erp/wims/internal/permissions"
	"github.com/wims-erp/wims/internal/platform/cache"
	"github.com/wims-erp/wims/internal/platform/localstore"
	"github.com/wims-erp/wims/internal/shared"
	"github.com/wims-erp/wims/internal/users"
	"github.com/wims-erp/wims/jobs"
	"github.com/wims-erp/wims/report"
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

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionTTL, cfg.SessionRememberTTL, cfg.IsProduction())
	store := localstore.New(redisClient)

	userRepo := users.NewRepository(store)
	userService := users.NewService(userRepo)
	userHandler := users.NewHandler(logger, userService)

	authService := auth.NewService(userService)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	clientRepo := clients.NewRepository(store)
	clientService := clients.NewService(clientRepo)
	clientHandler := clients.NewHandler(logger, clientService)

	permissionService := permissions.NewService()
	permissionHandler := permissions.NewHandler(logger, permissionService)

	orderRepo := orders.NewRepository(store)
	orderService := orders.NewService(orderRepo, clientService, permissionService, cfg.CompletionPolicy())
	orderHandler := orders.NewHandler(logger, orderService)

	billRepo := bills.NewRepository(store)
	billService := bills.NewService(billRepo, orderService, clientService)
	billHandler := bills.NewHandler(logger, billService)

	dashboardService := dashboard.NewService(userRepo, clientRepo, orderRepo, billRepo, redisClient)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	metrics := observability.NewMetrics()

	company := report.CompanyInfo{
		Name:      cfg.CompanyName,
		Address:   cfg.CompanyAddress,
		Phone:     cfg.CompanyPhone,
		GSTNumber: cfg.CompanyGSTIN,
	}
	reportClient := report.NewClient(cfg.GotenbergURL)
	invoiceRenderer, err := report.NewInvoiceRenderer()
	if err != nil {
		logger.Error("init invoice renderer", slog.Any("error", err))
		os.Exit(1)
	}
	reportHandler := report.NewHandler(reportClient, invoiceRenderer, billService, company, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobsClient, billService, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		UsersHandler:       userHandler,
		ClientsHandler:     clientHandler,
		OrdersHandler:      orderHandler,
		BillsHandler:       billHandler,
		PermissionsHandler: permissionHandler,
		DashboardHandler:   dashboardHandler,
		ReportHandler:      reportHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
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
