package orders

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wims-erp/wims/internal/platform/httpx"
	"github.com/wims-erp/wims/internal/shared"
)

// Handler exposes the order workflow over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs an order handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers the order endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(shared.RequireUser)

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.edit)
	r.Post("/{id}/adjust", h.adjust)

	r.Group(func(admin chi.Router) {
		admin.Use(shared.RequireRole(shared.RoleAdmin))
		admin.Post("/{id}/pricing", h.setPricing)
		admin.Post("/{id}/approve", h.approve)
		admin.Post("/{id}/reject", h.reject)
		admin.Post("/{id}/complete", h.complete)
		admin.Delete("/{id}", h.softDelete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	sess := shared.SessionFromContext(r.Context())
	order, err := h.service.Create(r.Context(), req, sess.User)
	if err != nil {
		h.logger.Error("order create failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListOrdersRequest{
		SalesmanID: r.URL.Query().Get("salesmanId"),
		ClientID:   r.URL.Query().Get("clientId"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}

	sess := shared.SessionFromContext(r.Context())
	if sess.User.Role == shared.RoleAdmin {
		filter.IncludeDeleted = r.URL.Query().Get("includeDeleted") == "true"
	} else {
		// Salesmen only ever see their own orders.
		filter.SalesmanID = sess.User.ID
	}

	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("order list failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess.User.Role != shared.RoleAdmin && order.SalesmanID != sess.User.ID {
		httpx.Problem(w, http.StatusForbidden, "forbidden", "this order belongs to another salesman")
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if sess.User.Role != shared.RoleAdmin {
		order, err := h.service.Get(r.Context(), id)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		if order.SalesmanID != sess.User.ID {
			httpx.Problem(w, http.StatusForbidden, "forbidden", "this order belongs to another salesman")
			return
		}
	}

	order, err := h.service.Edit(r.Context(), id, req, sess.User)
	if err != nil {
		h.logger.Error("order edit failed", slog.String("order", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) setPricing(w http.ResponseWriter, r *http.Request) {
	var req SetPricingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	order, err := h.service.SetOfficialPricing(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.logger.Error("order pricing failed", slog.String("order", chi.URLParam(r, "id")), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustPricingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if sess.User.Role != shared.RoleAdmin {
		order, err := h.service.Get(r.Context(), id)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		if order.SalesmanID != sess.User.ID {
			httpx.Problem(w, http.StatusForbidden, "forbidden", "this order belongs to another salesman")
			return
		}
	}

	order, err := h.service.Adjust(r.Context(), id, req)
	if err != nil {
		h.logger.Error("order adjustment failed", slog.String("order", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var req RejectOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	order, err := h.service.Reject(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
