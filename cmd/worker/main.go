package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/wims-erp/wims/internal/app"
	"github.com/wims-erp/wims/internal/bills"
	"github.com/wims-erp/wims/internal/clients"
	"github.com/wims-erp/wims/internal/dashboard"
	jobmetrics "github.com/wims-erp/wims/internal/jobs"
	"github.com/wims-erp/wims/internal/orders"
	"github.com/wims-erp/wims/internal/platform/cache"
	"github.com/wims-erp/wims/internal/platform/localstore"
	"github.com/wims-erp/wims/internal/users"
	"github.com/wims-erp/wims/jobs"
	"github.com/wims-erp/wims/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	store := localstore.New(redisClient)
	userRepo := users.NewRepository(store)
	clientRepo := clients.NewRepository(store)
	orderRepo := orders.NewRepository(store)
	billRepo := bills.NewRepository(store)

	dashboardService := dashboard.NewService(userRepo, clientRepo, orderRepo, billRepo, redisClient)

	clientService := clients.NewService(clientRepo)
	orderService := orders.NewService(orderRepo, clientService, nil, cfg.CompletionPolicy())
	billService := bills.NewService(billRepo, orderService, clientService)

	metrics := jobmetrics.NewMetrics(nil)
	refreshJob := jobs.NewDashboardRefreshJob(dashboardService, logger, metrics)

	company := report.CompanyInfo{
		Name:      cfg.CompanyName,
		Address:   cfg.CompanyAddress,
		Phone:     cfg.CompanyPhone,
		GSTNumber: cfg.CompanyGSTIN,
	}
	pdfClient := report.NewClient(cfg.GotenbergURL)
	invoiceRenderer, err := report.NewInvoiceRenderer()
	if err != nil {
		logger.Error("init invoice renderer", slog.Any("error", err))
		os.Exit(1)
	}
	renderJob := jobs.NewInvoiceRenderJob(billService, invoiceRenderer, pdfClient, company, cfg.InvoiceExportDir, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardRefresh, Handler: refreshJob.Handle},
			{Type: jobs.TaskInvoiceRender, Handler: renderJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "@every 30s", Task: jobs.NewDashboardRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
