package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pcps/internal/targets/models"
	"pcps/pkg/platform/httputil"
	"pcps/pkg/requestcontext"
)

// Service defines the registry operations the handler needs.
type Service interface {
	List(ctx context.Context) ([]models.Target, error)
	Add(ctx context.Context, t models.Target) (models.Target, error)
	Update(ctx context.Context, id string, t models.Target) (models.Target, error)
	Remove(ctx context.Context, id string) error
	Replace(ctx context.Context, list []models.Target) ([]models.Target, error)
}

// Handler wires target registry endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts target endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/targets", h.HandleList)
	r.Put("/targets", h.HandleReplace)
	r.Post("/targets", h.HandleAdd)
	r.Get("/targets/suggested", h.HandleSuggested)
	r.Put("/targets/{targetID}", h.HandleUpdate)
	r.Delete("/targets/{targetID}", h.HandleRemove)
}

type listResponse struct {
	Targets []models.Target `json:"targets"`
}

// HandleList handles GET /targets.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, "list targets failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Targets: list})
}

// HandleReplace handles PUT /targets.
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ReplaceRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	list, err := h.service.Replace(ctx, req.toModels())
	if err != nil {
		h.fail(w, r, "replace targets failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Targets: list})
}

// HandleAdd handles POST /targets.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[TargetRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	added, err := h.service.Add(ctx, req.toModel())
	if err != nil {
		h.fail(w, r, "add target failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, added)
}

// HandleUpdate handles PUT /targets/{targetID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[TargetRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	updated, err := h.service.Update(ctx, chi.URLParam(r, "targetID"), req.toModel())
	if err != nil {
		h.fail(w, r, "update target failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

// HandleRemove handles DELETE /targets/{targetID}.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "targetID")); err != nil {
		h.fail(w, r, "remove target failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSuggested handles GET /targets/suggested. The list is not persisted.
func (h *Handler) HandleSuggested(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, listResponse{Targets: models.Suggested()})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"target_id", chi.URLParam(r, "targetID"),
		"error", err,
	)
	httputil.WriteError(w, err)
}
