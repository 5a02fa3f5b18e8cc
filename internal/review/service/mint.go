package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"certledger/internal/ledger"
	"certledger/internal/mint"
	nmodels "certledger/internal/notification/models"
	"certledger/internal/review/models"
	dErrors "certledger/pkg/domain-errors"
	audit "certledger/pkg/platform/audit"
	"certledger/pkg/requestcontext"
)

// Mint issues the credential for an approved request.
//
// The request is claimed (approved -> minting) before anything reaches the
// ledger, so a second caller gets already_minted instead of a second
// credential. A failed attempt that provably created nothing releases the
// claim. When the outcome is unknown, or the result could not be recorded,
// the request stays minting until an operator reconciles it.
func (s *Service) Mint(ctx context.Context, requestID string, signer ledger.Signer) (*models.MintResult, error) {
	if signer == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "signer is required")
	}
	if !s.policy.IsTrustedIssuer(signer.Address()) {
		return nil, dErrors.New(dErrors.CodePolicyDenied, "signer is not a trusted issuer")
	}

	start := time.Now()
	claimed, err := s.execute(ctx, requestID, models.ValidateClaim, func(r *models.MintRequest) {
		r.Status = models.StatusMinting
		r.MintAttempts++
		r.UpdatedAt = requestcontext.Now(ctx)
	})
	if err != nil {
		return nil, err
	}

	tx, err := s.prepare(claimed)
	if err != nil {
		s.release(ctx, claimed, nil, err)
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ledger.ToDomain(ledger.NewError(ledger.CategoryTransport, "mint", "cancelled before dispatch", ctxErr), "mint cancelled")
		s.release(ctx, claimed, nil, err)
		s.metrics.ObserveMint(string(dErrors.CodeOf(err)), start)
		return nil, err
	}

	result, err := s.gateway.SubmitAndConfirm(ctx, tx, signer)
	if err != nil {
		s.release(ctx, claimed, result, err)
		s.metrics.ObserveMint(string(dErrors.CodeOf(err)), start)
		return nil, err
	}

	// The credential exists now; recording it must not be abandoned with the caller.
	recordCtx := context.WithoutCancel(ctx)
	minted := &models.MintResult{
		TransactionDigest: result.TransactionDigest,
		ObjectID:          result.ObjectID,
		MintedAt:          requestcontext.Now(ctx),
	}
	if _, err := s.execute(recordCtx, requestID, models.ValidateInFlight, func(r *models.MintRequest) {
		m := *minted
		r.Status = models.StatusMinted
		r.MintResult = &m
		r.UpdatedAt = minted.MintedAt
	}); err != nil {
		s.logger.ErrorContext(recordCtx, "credential minted but result not recorded; request left minting",
			"mint_request_id", requestID,
			"digest", minted.TransactionDigest,
			"object_id", minted.ObjectID,
			"error", err,
		)
		s.metrics.ObserveMint("unrecorded", start)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credential minted but result could not be recorded")
	}

	s.metrics.ObserveMint("minted", start)
	s.logAudit(recordCtx, audit.EventCertificateMinted,
		"mint_request_id", requestID,
		"actor", signer.Address(),
		"digest", minted.TransactionDigest,
		"object_id", minted.ObjectID,
	)
	return minted, nil
}

func (s *Service) prepare(req *models.MintRequest) (ledger.TransactionDescriptor, error) {
	hash, err := mint.MetadataHash(metadataOf(req))
	if err != nil {
		return ledger.TransactionDescriptor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash request metadata")
	}
	return s.gateway.BuildMintTransaction(req.RecipientWallet, req.Course.ID, hash)
}

// release records a failed attempt. The claim goes back to approved unless
// the ledger may have executed the transaction anyway.
func (s *Service) release(ctx context.Context, claimed *models.MintRequest, result *mint.Result, cause error) {
	ctx = context.WithoutCancel(ctx)
	keep := outcomeUnknown(cause)

	failure := &models.MintFailure{
		Code:              dErrors.CodeOf(cause),
		TransactionDigest: failureDigest(result, cause),
		Message:           cause.Error(),
		At:                requestcontext.Now(ctx),
	}
	if _, err := s.execute(ctx, claimed.RequestID, models.ValidateInFlight, func(r *models.MintRequest) {
		f := *failure
		r.LastMintFailure = &f
		if !keep {
			r.Status = models.StatusApproved
		}
		r.UpdatedAt = failure.At
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to record mint failure",
			"mint_request_id", claimed.RequestID,
			"cause", cause,
			"error", err,
		)
	}

	msg := fmt.Sprintf("Minting failed for %s (%s): %s", claimed.DisplayName, failure.Code, failure.Message)
	if keep {
		msg += "; outcome unknown, request held for reconciliation"
	}
	s.notify(ctx, claimed.RequestID, nmodels.KindMintFailed, msg)
	s.logAudit(ctx, audit.EventMintFailed,
		"mint_request_id", claimed.RequestID,
		"reason", string(failure.Code),
		"digest", failure.TransactionDigest,
		"held", keep,
	)
}

// outcomeUnknown reports a transport failure after dispatch: the transaction
// may or may not have executed.
func outcomeUnknown(err error) bool {
	return ledger.GetCategory(err) == ledger.CategoryTransport && !ledger.IsRetryable(err)
}

func failureDigest(result *mint.Result, err error) string {
	if result != nil && result.TransactionDigest != "" {
		return result.TransactionDigest
	}
	var le *ledger.Error
	if errors.As(err, &le) {
		return le.Digest
	}
	return ""
}

func metadataOf(req *models.MintRequest) mint.Metadata {
	return mint.Metadata{
		RecipientWallet: req.RecipientWallet,
		DisplayName:     req.DisplayName,
		CourseID:        req.Course.ID,
		CourseName:      req.Course.Name,
		Completed:       req.Completion.Completed,
		CompletedAt:     req.Completion.CompletedAt,
		PreviewHash:     req.CertificatePreview.Hash,
	}
}
