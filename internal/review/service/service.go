// Package service runs the mint request workflow: learner submission, admin
// decision and credential issuance.
//
// Every state change goes through the store's Execute as a compare-and-set on
// the loaded version. Two reviewers racing on the same request cannot both
// succeed, and a request can be claimed for minting at most once because the
// ledger mint is not idempotent.
package service

import (
	"context"
	"errors"
	"log/slog"

	certmodels "certledger/internal/certificate/models"
	"certledger/internal/ledger"
	"certledger/internal/mint"
	nmodels "certledger/internal/notification/models"
	"certledger/internal/review/metrics"
	"certledger/internal/review/models"
	"certledger/internal/review/store"
	"certledger/pkg/attrs"
	dErrors "certledger/pkg/domain-errors"
	audit "certledger/pkg/platform/audit"
	"certledger/pkg/platform/sentinel"
	"certledger/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks MintGateway,Notifier,CredentialLister

// MintGateway builds and submits the mint transaction.
type MintGateway interface {
	BuildMintTransaction(recipient, courseID, metadataHash string) (ledger.TransactionDescriptor, error)
	SubmitAndConfirm(ctx context.Context, tx ledger.TransactionDescriptor, signer ledger.Signer) (*mint.Result, error)
}

// TrustPolicy decides who may review and sign.
type TrustPolicy interface {
	IsTrustedIssuer(address string) bool
}

// Notifier appends admin-facing notifications.
type Notifier interface {
	Append(ctx context.Context, item nmodels.NotificationItem) (*nmodels.NotificationItem, error)
}

// CredentialLister reads the credentials a wallet holds on the ledger.
type CredentialLister interface {
	ListCredentials(ctx context.Context, wallet string) ([]certmodels.Credential, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// maxCASAttempts bounds retries of a conditional write that lost a race.
const maxCASAttempts = 3

type Service struct {
	store          store.Store
	gateway        MintGateway
	policy         TrustPolicy
	notifier       Notifier
	auditPublisher AuditPublisher
	credentials    CredentialLister
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

// WithCredentialLister enables Reconcile, which checks the recipient's
// wallet before resolving a held mint.
func WithCredentialLister(l CredentialLister) Option {
	return func(s *Service) {
		s.credentials = l
	}
}

func New(st store.Store, gateway MintGateway, policy TrustPolicy, notifier Notifier, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("request store is required")
	}
	if gateway == nil {
		return nil, errors.New("mint gateway is required")
	}
	if policy == nil {
		return nil, errors.New("trust policy is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	s := &Service{
		store:    st,
		gateway:  gateway,
		policy:   policy,
		notifier: notifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get returns a single request.
func (s *Service) Get(ctx context.Context, requestID string) (*models.MintRequest, error) {
	req, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load request")
	}
	return req, nil
}

// List returns requests ordered by submission time.
func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]*models.MintRequest, error) {
	reqs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return reqs, nil
}

// execute runs a conditional write, retrying when a concurrent writer got
// there first. validate runs against fresh state on every attempt, so the
// loser of a race sees the domain error for the state it lost to.
func (s *Service) execute(ctx context.Context, requestID string, validate store.ValidateFunc, mutate store.MutateFunc) (*models.MintRequest, error) {
	var lastErr error
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		updated, err := s.store.Execute(ctx, requestID, validate, mutate)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, translateStoreErr(err, "failed to update request")
		}
		lastErr = err
		s.metrics.IncCASRetry()
		s.logger.DebugContext(ctx, "conditional write lost, retrying",
			"mint_request_id", requestID,
			"attempt", attempt,
		)
	}
	return nil, dErrors.Wrap(lastErr, dErrors.CodeConflict, "request is being modified concurrently")
}

func (s *Service) notify(ctx context.Context, requestID string, kind nmodels.Kind, message string) {
	if _, err := s.notifier.Append(ctx, nmodels.NotificationItem{
		RequestID: requestID,
		Kind:      kind,
		Message:   message,
	}); err != nil {
		s.metrics.IncNotificationError()
		s.logger.ErrorContext(ctx, "failed to append notification",
			"mint_request_id", requestID,
			"kind", kind,
			"error", err,
		)
	}
}

// logAudit writes an audit log line and emits the event. attributes must
// carry "mint_request_id" and may carry "actor", "decision" and "reason".
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:   string(event),
		Subject:  attrs.ExtractString(attributes, "mint_request_id"),
		ActorID:  attrs.ExtractString(attributes, "actor"),
		Decision: attrs.ExtractString(attributes, "decision"),
		Reason:   attrs.ExtractString(attributes, "reason"),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}

func translateStoreErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "request not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
