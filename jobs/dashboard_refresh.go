package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/wims-erp/wims/internal/dashboard"
	jobmetrics "github.com/wims-erp/wims/internal/jobs"
)

// Refresher recomputes the dashboard summary.
type Refresher interface {
	Refresh(ctx context.Context) (*dashboard.Summary, error)
}

// DashboardRefreshJob keeps the cached dashboard summary warm so the
// admin landing page never pays for a cold aggregate.
type DashboardRefreshJob struct {
	service Refresher
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewDashboardRefreshJob constructs the refresh job.
func NewDashboardRefreshJob(service Refresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardRefreshJob {
	return &DashboardRefreshJob{service: service, logger: logger, metrics: metrics}
}

// Handle processes TaskDashboardRefresh tasks.
func (j *DashboardRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("dashboard_refresh")
	summary, err := j.service.Refresh(ctx)
	if err != nil {
		j.logger.Error("dashboard refresh job failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger.Debug("dashboard summary refreshed",
		slog.Int("orders", summary.TotalOrders),
		slog.String("revenue", summary.RevenueDisplay))
	return tracker.End(nil)
}
