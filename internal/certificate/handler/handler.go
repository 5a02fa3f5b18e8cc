package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certledger/internal/certificate/models"
	"certledger/pkg/platform/httputil"
	"certledger/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the credential query surface consumed by the handler.
type Service interface {
	ListCredentials(ctx context.Context, wallet string) ([]models.Credential, error)
	Verify(ctx context.Context, objectID string) (models.VerificationResult, error)
	VerifyBatch(ctx context.Context, objectIDs []string) ([]models.VerificationResult, error)
}

// Handler serves the public credential endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts credential endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/wallets/{address}/certificates", h.HandleListCredentials)
	r.Get("/certificates/{objectId}/verify", h.HandleVerify)
	r.Post("/certificates/verify", h.HandleVerifyBatch)
}

// HandleListCredentials handles GET /wallets/{address}/certificates.
func (h *Handler) HandleListCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := chi.URLParam(r, "address")

	creds, err := h.service.ListCredentials(ctx, wallet)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list credentials",
			"request_id", requestcontext.RequestID(ctx),
			"wallet", wallet,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ListResponse{Wallet: wallet, Certificates: creds})
}

// HandleVerify handles GET /certificates/{objectId}/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	objectID := chi.URLParam(r, "objectId")

	res, err := h.service.Verify(ctx, objectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to verify credential",
			"request_id", requestcontext.RequestID(ctx),
			"object_id", objectID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleVerifyBatch handles POST /certificates/verify.
func (h *Handler) HandleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	results, err := h.service.VerifyBatch(ctx, req.ObjectIDs)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to verify credentials",
			"request_id", requestID,
			"count", len(req.ObjectIDs),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &VerifyBatchResponse{Results: results})
}
