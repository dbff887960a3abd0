package permissions

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wims-erp/wims/internal/platform/httpx"
	"github.com/wims-erp/wims/internal/shared"
)

// Handler exposes the permission queue over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a permission handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

type submitRequest struct {
	Type     RequestType `json:"type" validate:"required,oneof=login order_edit price_adjustment"`
	TargetID string      `json:"targetId,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

type resolveRequest struct {
	Approve bool `json:"approve"`
}

// MountRoutes registers the permission endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(shared.RequireUser)

	r.Get("/", h.list)
	r.Post("/", h.submit)
	r.Get("/{id}", h.get)

	r.Group(func(admin chi.Router) {
		admin.Use(shared.RequireRole(shared.RoleAdmin))
		admin.Post("/{id}/resolve", h.resolve)
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	sess := shared.SessionFromContext(r.Context())
	created, err := h.service.Submit(r.Context(), req.Type, sess.User, req.TargetID, req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	requesterID := ""
	if sess.User.Role != shared.RoleAdmin {
		requesterID = sess.User.ID
	}
	pendingOnly := r.URL.Query().Get("pending") == "true"
	httpx.JSON(w, http.StatusOK, h.service.List(r.Context(), requesterID, pendingOnly))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess.User.Role != shared.RoleAdmin && req.RequesterID != sess.User.ID {
		httpx.Problem(w, http.StatusForbidden, "forbidden", "this request belongs to another user")
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}

	sess := shared.SessionFromContext(r.Context())
	resolved, err := h.service.Resolve(r.Context(), chi.URLParam(r, "id"), req.Approve, sess.User.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("permission request resolved",
		slog.String("request", resolved.ID),
		slog.String("status", string(resolved.Status)))
	httpx.JSON(w, http.StatusOK, resolved)
}
