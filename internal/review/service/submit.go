package service

import (
	"context"
	"errors"
	"fmt"

	nmodels "certledger/internal/notification/models"
	"certledger/internal/review/models"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/ids"
	audit "certledger/pkg/platform/audit"
	"certledger/pkg/platform/sentinel"
	"certledger/pkg/requestcontext"
)

// Submit records a new pending request and queues a notification for admins.
// A failed notification is logged but does not undo the submission.
func (s *Service) Submit(ctx context.Context, payload models.SubmitRequest) (*models.MintRequest, error) {
	payload.Sanitize()
	payload.Normalize()
	if err := payload.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}

	now := requestcontext.Now(ctx)
	req := models.NewMintRequest(ids.NewAt(now), payload, now)

	if err := s.store.Create(ctx, req); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "wallet already has an open request for this course")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save request")
	}
	s.metrics.IncSubmitted()

	s.notify(ctx, req.RequestID, nmodels.KindSubmitted, submittedMessage(req))
	s.logAudit(ctx, audit.EventMintRequestSubmitted,
		"mint_request_id", req.RequestID,
		"actor", req.RecipientWallet,
		"course_id", req.Course.ID,
	)
	return req, nil
}

func submittedMessage(req *models.MintRequest) string {
	course := req.Course.Name
	if course == "" {
		course = req.Course.ID
	}
	return fmt.Sprintf("%s requested a certificate for %s (wallet %s)",
		req.DisplayName, course, shortAddress(req.RecipientWallet))
}

// shortAddress renders 0x1234...abcd for long addresses.
func shortAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
