package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardRefresh recomputes the cached dashboard summary.
	TaskDashboardRefresh = "dashboard:refresh"
	// TaskInvoiceRender renders a bill to PDF via Gotenberg.
	TaskInvoiceRender = "bill:render_invoice"
)

// InvoiceRenderPayload identifies the bill to render.
type InvoiceRenderPayload struct {
	BillID string `json:"billId"`
}

// NewDashboardRefreshTask constructs the refresh task. It carries no
// payload; the job always recomputes from the live stores.
func NewDashboardRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardRefresh, nil)
}

// NewInvoiceRenderTask constructs a render task for one bill.
func NewInvoiceRenderTask(billID string) (*asynq.Task, error) {
	data, err := json.Marshal(InvoiceRenderPayload{BillID: billID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceRender, data), nil
}
