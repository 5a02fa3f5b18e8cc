package service

import (
	"context"
	"time"

	"certledger/internal/certificate/models"
	"certledger/internal/issuer"
	"certledger/internal/ledger"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// ListCredentials returns every credential of the configured type owned by
// wallet, in ledger order. Objects that do not decode are dropped.
func (s *Service) ListCredentials(ctx context.Context, wallet string) ([]models.Credential, error) {
	owner := issuer.Normalize(wallet)
	if !domain.IsLedgerAddress(owner) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "wallet must be a ledger address")
	}

	start := time.Now()
	query := ledger.OwnedQuery{StructType: s.codec.Signature().String()}
	credentials := make([]models.Credential, 0)
	seen := make(map[string]struct{})
	pages := 0

	for {
		page, err := s.reader.GetOwnedObjects(ctx, owner, query)
		if err != nil {
			return nil, ledger.ToDomain(err, "failed to list owned objects")
		}
		pages++

		for _, obj := range page.Objects {
			res := s.codec.Decode(obj)
			if !res.OK() {
				s.metrics.IncrementSkipped(string(res.Skipped))
				s.logger.DebugContext(ctx, "skipped ledger object", "owner", owner, "reason", res.Skipped)
				continue
			}
			credentials = append(credentials, *res.Credential)
		}

		if !page.HasNextPage || page.NextCursor == "" {
			break
		}
		if _, dup := seen[page.NextCursor]; dup || pages >= maxListPages {
			return nil, dErrors.New(dErrors.CodeLedgerUnavailable, "ledger pagination did not terminate")
		}
		seen[page.NextCursor] = struct{}{}
		query.Cursor = page.NextCursor
	}

	s.metrics.ObserveList(start, pages)
	return credentials, nil
}
