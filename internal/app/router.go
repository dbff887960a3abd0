package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wims-erp/wims/internal/auth"
	"github.com/wims-erp/wims/internal/bills"
	"github.com/wims-erp/wims/internal/clients"
	"github.com/wims-erp/wims/internal/dashboard"
	"github.com/wims-erp/wims/internal/observability"
	"github.com/wims-erp/wims/internal/orders"
	"github.com/wims-erp/wims/internal/permissions"
	"github.com/wims-erp/wims/internal/shared"
	"github.com/wims-erp/wims/internal/users"
	"github.com/wims-erp/wims/jobs"
	"github.com/wims-erp/wims/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	ClientsHandler     *clients.Handler
	OrdersHandler      *orders.Handler
	BillsHandler       *bills.Handler
	PermissionsHandler *permissions.Handler
	DashboardHandler   *dashboard.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with WIMS defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/clients", params.ClientsHandler.MountRoutes)
	r.Route("/orders", params.OrdersHandler.MountRoutes)
	r.Route("/bills", func(r chi.Router) {
		params.BillsHandler.MountRoutes(r)
		if params.ReportHandler != nil {
			r.Get("/{id}/invoice.pdf", params.ReportHandler.InvoicePDF)
		}
		if params.JobHandler != nil {
			r.Post("/{id}/export", params.JobHandler.ExportInvoice)
		}
	})
	r.Route("/permissions", params.PermissionsHandler.MountRoutes)
	r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	if params.ReportHandler != nil {
		r.Route("/reports", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
