package bills

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wims-erp/wims/internal/platform/httpx"
	"github.com/wims-erp/wims/internal/shared"
)

// Handler exposes billing over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a bill handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers the billing endpoints. All bill operations are
// admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(shared.RequireUser)
	r.Use(shared.RequireRole(shared.RoleAdmin))

	r.Get("/", h.list)
	r.Post("/", h.generate)
	r.Get("/{id}", h.get)
	r.Post("/{id}/verify", h.verify)
	r.Post("/{id}/process", h.process)
	r.Post("/{id}/reject", h.reject)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	sess := shared.SessionFromContext(r.Context())
	bill, err := h.service.Generate(r.Context(), req, sess.User.ID)
	if err != nil {
		h.logger.Error("bill generation failed", slog.String("order", req.OrderID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.List(r.Context(), r.URL.Query().Get("orderId"))
	if err != nil {
		h.logger.Error("bill list failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bills)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.Verify(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.Process(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var req RejectBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	bill, err := h.service.Reject(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}
