package report

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wims-erp/wims/internal/bills"
	"github.com/wims-erp/wims/internal/platform/httpx"
)

// BillSource resolves bills for rendering.
type BillSource interface {
	Get(ctx context.Context, id string) (*bills.Bill, error)
}

// Handler serves invoice PDFs.
type Handler struct {
	client   *Client
	renderer *InvoiceRenderer
	bills    BillSource
	company  CompanyInfo
	logger   *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, renderer *InvoiceRenderer, source BillSource, company CompanyInfo, logger *slog.Logger) *Handler {
	return &Handler{
		client:   client,
		renderer: renderer,
		bills:    source,
		company:  company,
		logger:   logger,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// InvoicePDF renders the bill named by the "id" route parameter and
// streams the PDF inline. It mounts under the bills subtree.
func (h *Handler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	billID := chi.URLParam(r, "id")
	bill, err := h.bills.Get(r.Context(), billID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	html, err := h.renderer.Render(BuildInvoiceData(bill, h.company))
	if err != nil {
		h.logger.Error("render invoice html", slog.String("bill", billID), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render invoice pdf", slog.String("bill", billID), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+bill.BillNumber+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
