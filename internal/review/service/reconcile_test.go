package service

import (
	"errors"

	"go.uber.org/mock/gomock"

	certmodels "certledger/internal/certificate/models"
	"certledger/internal/ledger"
	"certledger/internal/mint"
	"certledger/internal/review/models"
	dErrors "certledger/pkg/domain-errors"
	audit "certledger/pkg/platform/audit"
)

// held leaves an approved request in minting after a submission whose
// outcome is unknown.
func (s *ServiceSuite) held() *models.MintRequest {
	signer := stubSigner{addr: adminAddr}
	req := s.approved()
	s.expectBuild()

	lost := ledger.NewError(ledger.CategoryTransport, "sui_executeTransactionBlock", "outcome unknown: connection reset", errors.New("EOF"))
	lost.Retryable = false
	s.gateway.EXPECT().SubmitAndConfirm(gomock.Any(), gomock.Any(), signer).
		Return(nil, ledger.ToDomain(lost, "mint submission failed")).Times(1)

	_, err := s.service.Mint(s.ctx, req.RequestID, signer)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
	stored, err := s.service.Get(s.ctx, req.RequestID)
	s.Require().NoError(err)
	s.Require().Equal(models.StatusMinting, stored.Status)
	return stored
}

func (s *ServiceSuite) status(requestID string) models.Status {
	stored, err := s.service.Get(s.ctx, requestID)
	s.Require().NoError(err)
	return stored.Status
}

func (s *ServiceSuite) TestReconcileRecordsConfirmedCredential() {
	req := s.held()
	s.credentials.EXPECT().ListCredentials(gomock.Any(), learnerAddr).
		Return([]certmodels.Credential{{ObjectID: objectID, CourseID: "GO-101", Issuer: adminAddr}}, nil)

	updated, err := s.service.Reconcile(s.ctx, req.RequestID, adminAddr, models.Reconciliation{
		ObjectID:          " " + objectID + " ",
		TransactionDigest: "D7",
	})
	s.Require().NoError(err)
	s.Equal(models.StatusMinted, updated.Status)
	s.Require().NotNil(updated.MintResult)
	s.Equal(objectID, updated.MintResult.ObjectID)
	s.Equal("D7", updated.MintResult.TransactionDigest)

	_, err = s.service.Mint(s.ctx, req.RequestID, stubSigner{addr: adminAddr})
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyMinted))

	events, err := s.audit.ListBySubject(s.ctx, req.RequestID)
	s.Require().NoError(err)
	last := events[len(events)-1]
	s.Equal(string(audit.EventMintReconciled), last.Action)
	s.Equal("minted", last.Decision)
	s.Equal(adminAddr, last.ActorID)
}

func (s *ServiceSuite) TestReconcileReleaseAllowsRetry() {
	req := s.held()
	s.credentials.EXPECT().ListCredentials(gomock.Any(), learnerAddr).Return([]certmodels.Credential{}, nil)

	updated, err := s.service.Reconcile(s.ctx, req.RequestID, adminAddr, models.Reconciliation{})
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, updated.Status)
	s.Nil(updated.MintResult)
	s.NotNil(updated.LastMintFailure)

	signer := stubSigner{addr: adminAddr}
	s.gateway.EXPECT().SubmitAndConfirm(gomock.Any(), gomock.Any(), signer).
		Return(&mint.Result{TransactionDigest: "D2", ObjectID: objectID}, nil)
	result, err := s.service.Mint(s.ctx, req.RequestID, signer)
	s.Require().NoError(err)
	s.Equal(objectID, result.ObjectID)
	s.Equal(models.StatusMinted, s.status(req.RequestID))
}

func (s *ServiceSuite) TestReconcileReleaseRefusedWhenCredentialExists() {
	req := s.held()
	s.credentials.EXPECT().ListCredentials(gomock.Any(), learnerAddr).
		Return([]certmodels.Credential{{ObjectID: objectID, CourseID: "GO-101", Issuer: adminAddr}}, nil)

	_, err := s.service.Reconcile(s.ctx, req.RequestID, adminAddr, models.Reconciliation{})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), objectID)
	s.Equal(models.StatusMinting, s.status(req.RequestID))
}

func (s *ServiceSuite) TestReconcileRejectsUnsuitableObject() {
	req := s.held()
	cases := []struct {
		name string
		held []certmodels.Credential
	}{
		{name: "object not in the recipient wallet", held: nil},
		{name: "credential for another course", held: []certmodels.Credential{{ObjectID: objectID, CourseID: "GO-999", Issuer: adminAddr}}},
		{name: "credential from an untrusted issuer", held: []certmodels.Credential{{ObjectID: objectID, CourseID: "GO-101", Issuer: strangerHex}}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.credentials.EXPECT().ListCredentials(gomock.Any(), learnerAddr).Return(tc.held, nil)
			_, err := s.service.Reconcile(s.ctx, req.RequestID, adminAddr, models.Reconciliation{ObjectID: objectID})
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Equal(models.StatusMinting, s.status(req.RequestID))
		})
	}
}

func (s *ServiceSuite) TestReconcileGuards() {
	s.Run("untrusted reviewer", func() {
		_, err := s.service.Reconcile(s.ctx, "any", strangerHex, models.Reconciliation{})
		s.True(dErrors.HasCode(err, dErrors.CodePolicyDenied))
	})

	s.Run("request not held in minting", func() {
		req := s.approved()
		_, err := s.service.Reconcile(s.ctx, req.RequestID, adminAddr, models.Reconciliation{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Equal(models.StatusApproved, s.status(req.RequestID))
	})

	s.Run("unknown request", func() {
		_, err := s.service.Reconcile(s.ctx, "missing", adminAddr, models.Reconciliation{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestReconcileLedgerFailureKeepsHold() {
	req := s.held()
	s.credentials.EXPECT().ListCredentials(gomock.Any(), learnerAddr).
		Return(nil, ledger.ToDomain(ledger.NewError(ledger.CategoryTransport, "suix_getOwnedObjects", "timeout", nil), "failed to list credentials"))
	_, err := s.service.Reconcile(s.ctx, req.RequestID, adminAddr, models.Reconciliation{})
	s.True(dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
	s.Equal(models.StatusMinting, s.status(req.RequestID))
}
