package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"certledger/internal/certificate/models"
	"certledger/internal/issuer"
	"certledger/internal/ledger"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

const (
	outcomeValid   = "valid"
	outcomeInvalid = "invalid"
	outcomeAbsent  = "absent"
)

// Verify checks a single object id. An absent object or one that is not a
// credential is a normal invalid result carrying nothing but valid=false.
// The policy is consulted on every call, so removing an issuer invalidates
// its credentials immediately.
func (s *Service) Verify(ctx context.Context, objectID string) (models.VerificationResult, error) {
	start := time.Now()
	defer s.metrics.ObserveVerify(start)

	id := issuer.Normalize(objectID)
	if !domain.IsLedgerAddress(id) {
		s.metrics.IncrementVerification(outcomeAbsent)
		return models.VerificationResult{}, nil
	}

	obj, err := s.reader.GetObject(ctx, id)
	if err != nil {
		return models.VerificationResult{}, ledger.ToDomain(err, "failed to fetch object")
	}
	res := s.codec.Decode(obj)
	if !res.OK() {
		s.metrics.IncrementVerification(outcomeAbsent)
		return models.VerificationResult{}, nil
	}

	cred := res.Credential
	result := models.VerificationResult{ObjectID: id, CourseID: cred.CourseID, Issuer: cred.Issuer}
	result.Valid = cred.Issuer != "" && cred.CourseID != "" && s.policy.IsTrustedIssuer(cred.Issuer)
	if result.Valid {
		s.metrics.IncrementVerification(outcomeValid)
	} else {
		s.metrics.IncrementVerification(outcomeInvalid)
		s.logger.InfoContext(ctx, "credential failed verification",
			"object_id", id,
			"issuer", cred.Issuer,
			"course_id", cred.CourseID,
		)
	}
	return result, nil
}

// VerifyBatch verifies up to MaxBatchSize ids concurrently. Results follow
// input order and always carry the id that was checked; the first ledger
// failure cancels the remaining lookups.
func (s *Service) VerifyBatch(ctx context.Context, objectIDs []string) ([]models.VerificationResult, error) {
	if len(objectIDs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "object_ids is required")
	}
	if len(objectIDs) > MaxBatchSize {
		return nil, dErrors.New(dErrors.CodeValidation, "too many object_ids")
	}

	results := make([]models.VerificationResult, len(objectIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, id := range objectIDs {
		g.Go(func() error {
			res, err := s.Verify(gctx, id)
			if err != nil {
				return err
			}
			res.ObjectID = issuer.Normalize(id)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
