package service

import (
	"context"
	"fmt"

	certmodels "certledger/internal/certificate/models"
	"certledger/internal/issuer"
	"certledger/internal/review/models"
	dErrors "certledger/pkg/domain-errors"
	audit "certledger/pkg/platform/audit"
	"certledger/pkg/requestcontext"
)

const (
	reconciledMinted   = "minted"
	reconciledReleased = "released"
)

// Reconcile resolves a request left in minting after an attempt whose outcome
// was unknown or whose result could not be recorded.
//
// With an object id the credential must be held by the recipient, be of the
// requested course and come from a trusted issuer; the request is then
// recorded as minted. Without one the claim goes back to approved, unless the
// recipient already holds a trusted credential for the course, in which case
// the caller has to name it.
func (s *Service) Reconcile(ctx context.Context, requestID, reviewer string, rec models.Reconciliation) (*models.MintRequest, error) {
	reviewer = issuer.Normalize(reviewer)
	if !s.policy.IsTrustedIssuer(reviewer) {
		return nil, dErrors.New(dErrors.CodePolicyDenied, "reviewer is not a trusted issuer")
	}
	if s.credentials == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "credential lookup is not configured")
	}

	current, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateInFlight(current); err != nil {
		return nil, err
	}
	held, err := s.credentials.ListCredentials(ctx, current.RecipientWallet)
	if err != nil {
		return nil, err
	}

	objectID := issuer.Normalize(rec.ObjectID)
	if objectID == "" {
		if existing := s.trustedFor(held, current.Course.ID); existing != nil {
			return nil, dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("wallet already holds credential %s for %s; reconcile with its object id", existing.ObjectID, current.Course.ID))
		}
		return s.releaseHeld(ctx, current, reviewer)
	}

	cred := findCredential(held, objectID)
	switch {
	case cred == nil:
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("object %s is not a credential held by %s", objectID, current.RecipientWallet))
	case cred.CourseID != current.Course.ID:
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("credential %s is for %s, not %s", objectID, cred.CourseID, current.Course.ID))
	case !s.policy.IsTrustedIssuer(cred.Issuer):
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("credential %s was not issued by a trusted issuer", objectID))
	}
	return s.recordHeld(ctx, current, reviewer, objectID, rec.TransactionDigest)
}

func (s *Service) recordHeld(ctx context.Context, current *models.MintRequest, reviewer, objectID, digest string) (*models.MintRequest, error) {
	if digest == "" && current.LastMintFailure != nil {
		digest = current.LastMintFailure.TransactionDigest
	}
	now := requestcontext.Now(ctx)
	updated, err := s.execute(ctx, current.RequestID, models.ValidateInFlight, func(r *models.MintRequest) {
		r.Status = models.StatusMinted
		r.MintResult = &models.MintResult{
			TransactionDigest: digest,
			ObjectID:          objectID,
			MintedAt:          now,
		}
		r.UpdatedAt = now
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncReconciliation(reconciledMinted)
	s.logAudit(ctx, audit.EventMintReconciled,
		"mint_request_id", updated.RequestID,
		"actor", reviewer,
		"decision", reconciledMinted,
		"object_id", objectID,
		"digest", digest,
	)
	return updated, nil
}

func (s *Service) releaseHeld(ctx context.Context, current *models.MintRequest, reviewer string) (*models.MintRequest, error) {
	now := requestcontext.Now(ctx)
	updated, err := s.execute(ctx, current.RequestID, models.ValidateInFlight, func(r *models.MintRequest) {
		r.Status = models.StatusApproved
		r.UpdatedAt = now
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncReconciliation(reconciledReleased)
	s.logAudit(ctx, audit.EventMintReconciled,
		"mint_request_id", updated.RequestID,
		"actor", reviewer,
		"decision", reconciledReleased,
		"reason", "no credential found in recipient wallet",
	)
	return updated, nil
}

func (s *Service) trustedFor(held []certmodels.Credential, courseID string) *certmodels.Credential {
	for i := range held {
		if held[i].CourseID == courseID && s.policy.IsTrustedIssuer(held[i].Issuer) {
			return &held[i]
		}
	}
	return nil
}

func findCredential(held []certmodels.Credential, objectID string) *certmodels.Credential {
	for i := range held {
		if issuer.Normalize(held[i].ObjectID) == objectID {
			return &held[i]
		}
	}
	return nil
}
