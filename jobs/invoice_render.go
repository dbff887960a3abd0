package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/wims-erp/wims/internal/jobs"
	"github.com/wims-erp/wims/report"
)

// InvoiceRenderJob renders bills to PDF in the background and drops the
// result into the export directory.
type InvoiceRenderJob struct {
	bills    report.BillSource
	renderer *report.InvoiceRenderer
	pdf      *report.Client
	company  report.CompanyInfo
	outDir   string
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
}

// NewInvoiceRenderJob constructs the render job.
func NewInvoiceRenderJob(source report.BillSource, renderer *report.InvoiceRenderer, pdf *report.Client, company report.CompanyInfo, outDir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *InvoiceRenderJob {
	return &InvoiceRenderJob{
		bills:    source,
		renderer: renderer,
		pdf:      pdf,
		company:  company,
		outDir:   outDir,
		logger:   logger,
		metrics:  metrics,
	}
}

// Handle processes TaskInvoiceRender tasks.
func (j *InvoiceRenderJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("invoice_render")

	var payload InvoiceRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}

	bill, err := j.bills.Get(ctx, payload.BillID)
	if err != nil {
		j.logger.Error("invoice render: load bill", slog.String("bill", payload.BillID), slog.Any("error", err))
		return tracker.End(err)
	}

	html, err := j.renderer.Render(report.BuildInvoiceData(bill, j.company))
	if err != nil {
		return tracker.End(err)
	}
	pdf, err := j.pdf.RenderHTML(ctx, html)
	if err != nil {
		j.logger.Error("invoice render: gotenberg", slog.String("bill", payload.BillID), slog.Any("error", err))
		return tracker.End(err)
	}

	if err := os.MkdirAll(j.outDir, 0o755); err != nil {
		return tracker.End(err)
	}
	path := filepath.Join(j.outDir, bill.BillNumber+".pdf")
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return tracker.End(err)
	}

	j.logger.Info("invoice rendered", slog.String("bill", bill.BillNumber), slog.String("path", path))
	return tracker.End(nil)
}
