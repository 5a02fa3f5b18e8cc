package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"certledger/internal/review/models"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/platform/sentinel"
)

// contractSuite holds the behavior every Store must share. Concrete suites
// embed it and set newStore.
type contractSuite struct {
	suite.Suite
	newStore func() Store
	store    Store
	base     time.Time
}

func (s *contractSuite) SetupTest() {
	s.store = s.newStore()
	s.base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *contractSuite) request(id, wallet, course string, offset time.Duration) *models.MintRequest {
	return models.NewMintRequest(id, models.SubmitRequest{
		RecipientWallet: wallet,
		DisplayName:     "Ada",
		Course:          models.Course{ID: course, Name: course},
		Completion:      models.Completion{Completed: true},
	}, s.base.Add(offset))
}

func (s *contractSuite) TestCreateAndFind() {
	ctx := context.Background()
	req := s.request("01A", "0xaa", "GO-101", 0)
	s.Require().NoError(s.store.Create(ctx, req))

	got, err := s.store.FindByID(ctx, "01A")
	s.Require().NoError(err)
	s.Equal("0xaa", got.RecipientWallet)
	s.Equal(models.StatusPending, got.Status)
	s.Equal(int64(1), got.Version)
	s.True(req.SubmittedAt.Equal(got.SubmittedAt))

	_, err = s.store.FindByID(ctx, "missing")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *contractSuite) TestActiveSlot() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.request("01A", "0xaa", "GO-101", 0)))

	s.Run("second active request for the pair conflicts", func() {
		err := s.store.Create(ctx, s.request("01B", "0xaa", "GO-101", time.Second))
		s.True(errors.Is(err, sentinel.ErrConflict))
	})

	s.Run("other course is free", func() {
		s.NoError(s.store.Create(ctx, s.request("01C", "0xaa", "GO-102", time.Second)))
	})

	s.Run("rejection frees the slot", func() {
		_, err := s.store.Execute(ctx, "01A", models.ValidateDecide, func(r *models.MintRequest) {
			r.Status = models.StatusRejected
		})
		s.Require().NoError(err)
		s.NoError(s.store.Create(ctx, s.request("01D", "0xaa", "GO-101", 2*time.Second)))
	})
}

func (s *contractSuite) TestExecute() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.request("01A", "0xaa", "GO-101", 0)))

	s.Run("mutation persists and bumps version", func() {
		updated, err := s.store.Execute(ctx, "01A", models.ValidateDecide, func(r *models.MintRequest) {
			r.Status = models.StatusApproved
			r.Decision = &models.AdminDecision{Status: models.StatusApproved, ReviewedBy: "0xadmin"}
		})
		s.Require().NoError(err)
		s.Equal(int64(2), updated.Version)

		got, err := s.store.FindByID(ctx, "01A")
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, got.Status)
		s.Equal("0xadmin", got.Decision.ReviewedBy)
	})

	s.Run("validate error passes through without a write", func() {
		_, err := s.store.Execute(ctx, "01A", models.ValidateDecide, func(r *models.MintRequest) {
			r.Status = models.StatusRejected
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		got, err := s.store.FindByID(ctx, "01A")
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, got.Status)
		s.Equal(int64(2), got.Version)
	})

	s.Run("unknown request", func() {
		_, err := s.store.Execute(ctx, "missing", models.ValidateDecide, func(*models.MintRequest) {})
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})
}

func (s *contractSuite) TestConcurrentClaimHasOneWinner() {
	ctx := context.Background()
	req := s.request("01A", "0xaa", "GO-101", 0)
	req.Status = models.StatusApproved
	s.Require().NoError(s.store.Create(ctx, req))

	const workers = 16
	var wins, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, "01A", models.ValidateClaim, func(r *models.MintRequest) {
				r.Status = models.StatusMinting
				r.MintAttempts++
			})
			switch {
			case err == nil:
				wins.Add(1)
			case dErrors.HasCode(err, dErrors.CodeAlreadyMinted), errors.Is(err, sentinel.ErrConflict):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(workers-1), rejected.Load())

	got, err := s.store.FindByID(ctx, "01A")
	s.Require().NoError(err)
	s.Equal(1, got.MintAttempts)
}

func (s *contractSuite) TestListOrderAndFilter() {
	ctx := context.Background()
	for i, offset := range []time.Duration{3 * time.Second, time.Second, 2 * time.Second} {
		s.Require().NoError(s.store.Create(ctx, s.request(fmt.Sprintf("01R%d", i), "0xaa", fmt.Sprintf("C%d", i), offset)))
	}
	_, err := s.store.Execute(ctx, "01R2", models.ValidateDecide, func(r *models.MintRequest) {
		r.Status = models.StatusApproved
	})
	s.Require().NoError(err)

	all, err := s.store.List(ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"01R1", "01R2", "01R0"}, ids(all))

	pending, err := s.store.List(ctx, models.ListFilter{Status: models.StatusPending})
	s.Require().NoError(err)
	s.Equal([]string{"01R1", "01R0"}, ids(pending))

	older, err := s.store.List(ctx, models.ListFilter{SubmittedBefore: s.base.Add(2 * time.Second)})
	s.Require().NoError(err)
	s.Equal([]string{"01R1"}, ids(older))

	limited, err := s.store.List(ctx, models.ListFilter{Limit: 2})
	s.Require().NoError(err)
	s.Equal([]string{"01R1", "01R2"}, ids(limited))

	empty, err := s.store.List(ctx, models.ListFilter{Status: models.StatusMinted})
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)
}

func ids(reqs []*models.MintRequest) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.RequestID
	}
	return out
}
