package clients

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wims-erp/wims/internal/platform/httpx"
	"github.com/wims-erp/wims/internal/shared"
)

// Handler manages client endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers client routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(shared.RequireUser)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/duplicate-check", h.duplicateCheck)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list clients", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input ClientInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	overwrite := r.URL.Query().Get("overwrite") == "true"
	createdBy := ""
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		createdBy = sess.User.ID
	}

	client, err := h.service.Create(r.Context(), input, createdBy, overwrite)
	if err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) {
			httpx.ProblemWith(w, http.StatusConflict, "Duplicate", dup.Error(), dup.Existing)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *Handler) duplicateCheck(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	email := r.URL.Query().Get("email")
	match, err := h.service.CheckDuplicate(r.Context(), name, email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"duplicate": match})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input ClientInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	client, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}
