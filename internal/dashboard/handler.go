package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wims-erp/wims/internal/platform/httpx"
	"github.com/wims-erp/wims/internal/shared"
)

// Handler exposes the dashboard summary. Admin-only.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a dashboard handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the dashboard endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(shared.RequireUser)
	r.Use(shared.RequireRole(shared.RoleAdmin))

	r.Get("/", h.summary)
	r.Post("/refresh", h.refresh)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Refresh(r.Context())
	if err != nil {
		h.logger.Error("dashboard refresh failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
