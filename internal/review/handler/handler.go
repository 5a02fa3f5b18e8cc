package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certledger/internal/ledger"
	"certledger/internal/review/models"
	"certledger/pkg/platform/httputil"
	"certledger/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the review workflow surface consumed by the handler.
type Service interface {
	Submit(ctx context.Context, payload models.SubmitRequest) (*models.MintRequest, error)
	Get(ctx context.Context, requestID string) (*models.MintRequest, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.MintRequest, error)
	Decide(ctx context.Context, requestID string, outcome models.Status, reviewer, note string) (*models.AdminDecision, error)
	Mint(ctx context.Context, requestID string, signer ledger.Signer) (*models.MintResult, error)
	Reconcile(ctx context.Context, requestID, reviewer string, rec models.Reconciliation) (*models.MintRequest, error)
}

// Handler serves learner submission and the admin review endpoints.
type Handler struct {
	service Service
	signer  ledger.Signer
	logger  *slog.Logger
}

// New builds the handler. signer is the server's issuing key; when nil the
// mint endpoint is not mounted.
func New(service Service, signer ledger.Signer, logger *slog.Logger) *Handler {
	return &Handler{service: service, signer: signer, logger: logger}
}

// Register mounts the public endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/requests", h.HandleSubmit)
	r.Get("/requests/{requestId}", h.HandleGet)
}

// RegisterAdmin mounts the admin endpoints. The caller wraps r with admin
// authentication.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/requests", h.HandleList)
	r.Get("/admin/requests/{requestId}", h.HandleGet)
	r.Post("/admin/requests/{requestId}/decision", h.HandleDecide)
	r.Post("/admin/requests/{requestId}/reconcile", h.HandleReconcile)
	if h.signer != nil {
		r.Post("/admin/requests/{requestId}/mint", h.HandleMint)
	}
}

// HandleSubmit handles POST /requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	payload, ok := httputil.DecodeJSON[models.SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	req, err := h.service.Submit(ctx, *payload)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to submit mint request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, req)
}

// HandleGet handles GET /requests/{requestId}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "requestId")

	req, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

// HandleList handles GET /admin/requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseListFilter(r.URL.Query().Get("status"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reqs, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list mint requests",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ListResponse{Requests: reqs})
}

// HandleDecide handles POST /admin/requests/{requestId}/decision.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "requestId")

	body, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	decision, err := h.service.Decide(ctx, id, body.Status(), requestcontext.AdminAddress(ctx), body.Note)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to record decision",
			"request_id", requestID,
			"mint_request_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, decision)
}

// HandleMint handles POST /admin/requests/{requestId}/mint.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "requestId")

	result, err := h.service.Mint(ctx, id, h.signer)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint certificate",
			"request_id", requestID,
			"mint_request_id", id,
			"admin", requestcontext.AdminAddress(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleReconcile handles POST /admin/requests/{requestId}/reconcile.
func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "requestId")

	body, ok := httputil.DecodeAndPrepare[ReconcileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.service.Reconcile(ctx, id, requestcontext.AdminAddress(ctx), body.Reconciliation())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to reconcile mint request",
			"request_id", requestID,
			"mint_request_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}
