package mint

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"certledger/internal/ledger"
	"certledger/internal/ledger/memory"
	"certledger/internal/ledger/sui"
	dErrors "certledger/pkg/domain-errors"
)

const (
	testPackage   = "0x0de8f0a090b81b642d62f6ad9459f2e1cad737bf51d6a3584f5082a91ee3f90c"
	testRecipient = "0x00000000000000000000000000000000000000000000000000000000000000aa"
)

type stubExecutor struct {
	resp *ledger.TransactionResponse
	err  error
	opts ledger.ExecuteOptions
}

func (s *stubExecutor) Execute(_ context.Context, _ ledger.TransactionDescriptor, _ ledger.Signer, opts ledger.ExecuteOptions) (*ledger.TransactionResponse, error) {
	s.opts = opts
	return s.resp, s.err
}

type GatewaySuite struct {
	suite.Suite
	ledger  *memory.Ledger
	gateway *Gateway
	signer  *sui.KeypairSigner
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.ledger = memory.New(testPackage, "certificate")
	gw, err := New(s.ledger, testPackage, "certificate")
	s.Require().NoError(err)
	s.gateway = gw
	signer, err := sui.NewKeypairSigner(make([]byte, ed25519.SeedSize))
	s.Require().NoError(err)
	s.signer = signer
}

func (s *GatewaySuite) TestNew() {
	s.Run("nil executor", func() {
		_, err := New(nil, testPackage, "certificate")
		s.ErrorContains(err, "executor is required")
	})
	s.Run("bad package id", func() {
		_, err := New(s.ledger, "pkg", "certificate")
		s.Error(err)
	})
	s.Run("empty module", func() {
		_, err := New(s.ledger, testPackage, " ")
		s.Error(err)
	})
}

func (s *GatewaySuite) TestBuildMintTransaction() {
	s.Run("targets the mint entry point", func() {
		tx, err := s.gateway.BuildMintTransaction(" 0x00000000000000000000000000000000000000000000000000000000000000AA", "GO-101", "hash")
		s.Require().NoError(err)
		s.Equal(testPackage+"::certificate::mint_certificate", tx.Target())
		s.Equal([]ledger.Argument{
			{Kind: ledger.ArgAddress, Value: testRecipient},
			{Kind: ledger.ArgString, Value: "GO-101"},
			{Kind: ledger.ArgString, Value: "hash"},
		}, tx.Arguments)
		s.Equal(0, s.ledger.Count(), "building must not touch the ledger")
	})
	s.Run("rejects malformed recipient", func() {
		_, err := s.gateway.BuildMintTransaction("alice", "GO-101", "hash")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("rejects empty course", func() {
		_, err := s.gateway.BuildMintTransaction(testRecipient, "  ", "hash")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *GatewaySuite) TestSubmitAndConfirm() {
	ctx := context.Background()
	tx, err := s.gateway.BuildMintTransaction(testRecipient, "GO-101", "hash")
	s.Require().NoError(err)

	s.Run("returns digest and created object", func() {
		res, err := s.gateway.SubmitAndConfirm(ctx, tx, s.signer)
		s.Require().NoError(err)
		s.NotEmpty(res.TransactionDigest)
		s.NotEmpty(res.ObjectID)

		obj, err := s.ledger.GetObject(ctx, res.ObjectID)
		s.Require().NoError(err)
		s.Equal(s.signer.Address(), obj.Content.Fields["issuer"])
	})

	s.Run("failure status is aborted with digest", func() {
		s.ledger.FailNextExecutions(1)
		res, err := s.gateway.SubmitAndConfirm(ctx, tx, s.signer)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeExecutionAborted))
		s.Require().NotNil(res)
		s.NotEmpty(res.TransactionDigest)
		s.Empty(res.ObjectID)

		var le *ledger.Error
		s.Require().True(errors.As(err, &le))
		s.Equal(res.TransactionDigest, le.Digest)
	})

	s.Run("caller cancelled before dispatch is retryable", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		res, err := s.gateway.SubmitAndConfirm(cctx, tx, s.signer)
		s.Nil(res)
		s.True(dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
		s.True(ledger.IsRetryable(err))
	})
}

func TestSubmitAndConfirmWithStubExecutor(t *testing.T) {
	signer, err := sui.NewKeypairSigner(make([]byte, ed25519.SeedSize))
	require.NoError(t, err)
	tx := ledger.TransactionDescriptor{Package: testPackage, Module: "certificate", Function: EntryFunction}

	t.Run("requests effects and object changes", func(t *testing.T) {
		exec := &stubExecutor{resp: &ledger.TransactionResponse{
			Digest: "D",
			Effects: &ledger.Effects{
				Status:  ledger.ExecutionStatus{Status: ledger.ExecutionSuccess},
				Created: []ledger.CreatedObject{{Reference: ledger.ObjectRef{ObjectID: "0x1"}}, {Reference: ledger.ObjectRef{ObjectID: "0x2"}}},
			},
		}}
		gw, err := New(exec, testPackage, "certificate")
		require.NoError(t, err)

		res, err := gw.SubmitAndConfirm(context.Background(), tx, signer)
		require.NoError(t, err)
		assert.Equal(t, &Result{TransactionDigest: "D", ObjectID: "0x1"}, res)
		assert.Equal(t, ledger.ExecuteOptions{ShowEffects: true, ShowObjectChanges: true}, exec.opts)
	})

	t.Run("digest without created object is aborted", func(t *testing.T) {
		exec := &stubExecutor{resp: &ledger.TransactionResponse{Digest: "D", Effects: &ledger.Effects{
			Status: ledger.ExecutionStatus{Status: ledger.ExecutionSuccess},
		}}}
		gw, err := New(exec, testPackage, "certificate")
		require.NoError(t, err)

		res, err := gw.SubmitAndConfirm(context.Background(), tx, signer)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeExecutionAborted))
		assert.Equal(t, "D", res.TransactionDigest)
	})

	t.Run("transport failure is ledger unavailable", func(t *testing.T) {
		exec := &stubExecutor{err: ledger.NewError(ledger.CategoryTransport, "execute", "timeout", nil)}
		gw, err := New(exec, testPackage, "certificate")
		require.NoError(t, err)

		res, err := gw.SubmitAndConfirm(context.Background(), tx, signer)
		assert.Nil(t, res)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
		assert.True(t, ledger.IsRetryable(err))
	})

	t.Run("rpc rejection is aborted without digest", func(t *testing.T) {
		exec := &stubExecutor{err: ledger.NewError(ledger.CategoryRPC, "unsafe_moveCall", "code -32602", nil)}
		gw, err := New(exec, testPackage, "certificate")
		require.NoError(t, err)

		res, err := gw.SubmitAndConfirm(context.Background(), tx, signer)
		assert.Nil(t, res)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeExecutionAborted))
		assert.True(t, errors.Is(err, ledger.ErrExecutionAborted))
	})
}
