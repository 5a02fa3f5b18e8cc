package service

import (
	"context"
	"unicode/utf8"

	"certledger/internal/issuer"
	"certledger/internal/review/models"
	dErrors "certledger/pkg/domain-errors"
	audit "certledger/pkg/platform/audit"
	"certledger/pkg/requestcontext"
)

const maxNoteLen = 1024

// Decide records the admin verdict on a pending request. The first decision
// is final: any later call fails with invalid_transition and leaves the
// request untouched.
func (s *Service) Decide(ctx context.Context, requestID string, outcome models.Status, reviewer, note string) (*models.AdminDecision, error) {
	reviewer = issuer.Normalize(reviewer)
	if !s.policy.IsTrustedIssuer(reviewer) {
		return nil, dErrors.New(dErrors.CodePolicyDenied, "reviewer is not a trusted issuer")
	}
	if outcome != models.StatusApproved && outcome != models.StatusRejected {
		return nil, dErrors.New(dErrors.CodeBadRequest, "outcome must be approved or rejected")
	}
	if utf8.RuneCountInString(note) > maxNoteLen {
		return nil, dErrors.New(dErrors.CodeValidation, "note is too long")
	}

	now := requestcontext.Now(ctx)
	decision := &models.AdminDecision{
		Status:     outcome,
		ReviewedBy: reviewer,
		ReviewedAt: now,
		Note:       note,
	}

	updated, err := s.execute(ctx, requestID, models.ValidateDecide, func(r *models.MintRequest) {
		d := *decision
		r.Decision = &d
		r.Status = outcome
		r.UpdatedAt = now
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncDecision(string(outcome))
	s.logAudit(ctx, audit.EventMintRequestDecided,
		"mint_request_id", updated.RequestID,
		"actor", reviewer,
		"decision", string(outcome),
		"reason", note,
	)
	return updated.Decision, nil
}
