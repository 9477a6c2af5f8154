package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pcps/internal/family/models"
	"pcps/internal/policy"
	"pcps/internal/syncengine"
	targetmodels "pcps/internal/targets/models"
	"pcps/pkg/platform/httputil"
	"pcps/pkg/requestcontext"
)

// Service defines the family operations the handler needs.
type Service interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) (*syncengine.Outcome, error)
	SaveTo(ctx context.Context, doc *models.Document, snapshot []targetmodels.Target) (*syncengine.Outcome, error)
	EffectivePolicy(ctx context.Context, childID string) (policy.Policy, error)
	Template(ctx context.Context, kind string) (any, error)
}

// Handler wires family document endpoints to the family service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts family endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/family", h.HandleGet)
	r.Put("/family", h.HandleSave)
	r.Post("/family/sync", h.HandleSync)
	r.Get("/family/children/{childID}/policy/effective", h.HandleEffectivePolicy)
	r.Get("/templates/{kind}", h.HandleTemplate)
}

// HandleGet handles GET /family.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Load(r.Context())
	if err != nil {
		h.fail(w, r, "load document failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

// HandleSave handles PUT /family. The body is the whole document; it is
// delivered to the active targets of the stored registry.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, ok := httputil.Decode[models.Document](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.service.Save(ctx, doc)
	if err != nil {
		h.fail(w, r, "save document failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSaveResponse(out))
}

// HandleSync handles POST /family/sync.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SyncRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.service.SaveTo(ctx, req.Document, req.Targets)
	if err != nil {
		h.fail(w, r, "sync document failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSaveResponse(out))
}

type effectivePolicyResponse struct {
	ChildID string        `json:"child_id"`
	Policy  policy.Policy `json:"policy"`
}

// HandleEffectivePolicy handles GET /family/children/{childID}/policy/effective.
func (h *Handler) HandleEffectivePolicy(w http.ResponseWriter, r *http.Request) {
	childID := chi.URLParam(r, "childID")
	p, err := h.service.EffectivePolicy(r.Context(), childID)
	if err != nil {
		h.fail(w, r, "effective policy failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, effectivePolicyResponse{ChildID: childID, Policy: p})
}

// HandleTemplate handles GET /templates/{kind}.
func (h *Handler) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Template(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		h.fail(w, r, "template failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
