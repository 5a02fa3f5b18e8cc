package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"certledger/internal/notification/models"
	"certledger/pkg/platform/httputil"
	"certledger/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the notification queue surface consumed by the handler.
type Service interface {
	MarkSeen(ctx context.Context, id string) error
	List(ctx context.Context, filter models.Filter) ([]*models.NotificationItem, error)
}

// Handler serves the admin notification queue.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the endpoints. The caller wraps r with admin authentication.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/notifications", h.HandleList)
	r.Post("/admin/notifications/{id}/seen", h.HandleMarkSeen)
}

// ListResponse is the response for GET /admin/notifications.
type ListResponse struct {
	Notifications []*models.NotificationItem `json:"notifications"`
}

// HandleList handles GET /admin/notifications?status=&request_id=&kind=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	items, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list notifications",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ListResponse{Notifications: items})
}

// HandleMarkSeen handles POST /admin/notifications/{id}/seen. Unknown and
// already seen ids succeed.
func (h *Handler) HandleMarkSeen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.service.MarkSeen(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to mark notification seen",
			"request_id", requestcontext.RequestID(ctx),
			"notification_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseFilter(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	filter := models.Filter{RequestID: strings.TrimSpace(q.Get("request_id"))}
	if raw := q.Get("status"); strings.TrimSpace(raw) != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Status = st
	}
	if raw := q.Get("kind"); strings.TrimSpace(raw) != "" {
		kind, err := models.ParseKind(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Kind = kind
	}
	return filter, nil
}
