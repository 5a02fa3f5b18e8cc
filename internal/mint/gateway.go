// Package mint builds the certificate mint call and submits it to the ledger.
package mint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"certledger/internal/issuer"
	"certledger/internal/ledger"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// EntryFunction is the on-chain entry point invoked for every mint.
const EntryFunction = "mint_certificate"

// Result is the outcome of a submitted mint. TransactionDigest is set whenever
// the ledger executed the transaction; ObjectID only when a credential was created.
type Result struct {
	TransactionDigest string
	ObjectID          string
}

// Gateway turns mint requests into ledger transactions.
type Gateway struct {
	executor  ledger.Executor
	packageID string
	module    string
	logger    *slog.Logger
}

type Option func(*Gateway)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func New(executor ledger.Executor, packageID, module string, opts ...Option) (*Gateway, error) {
	if executor == nil {
		return nil, errors.New("ledger executor is required")
	}
	packageID = issuer.Normalize(packageID)
	if !domain.IsLedgerAddress(packageID) {
		return nil, errors.New("package id must be a ledger address")
	}
	if strings.TrimSpace(module) == "" {
		return nil, errors.New("module name is required")
	}
	g := &Gateway{
		executor:  executor,
		packageID: packageID,
		module:    strings.TrimSpace(module),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// BuildMintTransaction describes mint_certificate(recipient, courseID, metadataHash).
// It has no side effects.
func (g *Gateway) BuildMintTransaction(recipient, courseID, metadataHash string) (ledger.TransactionDescriptor, error) {
	recipient = issuer.Normalize(recipient)
	if !domain.IsLedgerAddress(recipient) {
		return ledger.TransactionDescriptor{}, dErrors.New(dErrors.CodeValidation, "recipient must be a ledger address")
	}
	if strings.TrimSpace(courseID) == "" {
		return ledger.TransactionDescriptor{}, dErrors.New(dErrors.CodeValidation, "course id is required")
	}
	return ledger.TransactionDescriptor{
		Package:  g.packageID,
		Module:   g.module,
		Function: EntryFunction,
		Arguments: []ledger.Argument{
			{Kind: ledger.ArgAddress, Value: recipient},
			{Kind: ledger.ArgString, Value: courseID},
			{Kind: ledger.ArgString, Value: metadataHash},
		},
	}, nil
}

// SubmitAndConfirm executes tx with signer and extracts the created object.
// A completed transaction that created nothing, or whose effects report
// failure, returns the result alongside an execution_aborted error.
func (g *Gateway) SubmitAndConfirm(ctx context.Context, tx ledger.TransactionDescriptor, signer ledger.Signer) (*Result, error) {
	if signer == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "signer is required")
	}
	resp, err := g.executor.Execute(ctx, tx, signer, ledger.ExecuteOptions{ShowEffects: true, ShowObjectChanges: true})
	if err != nil {
		if ledger.GetCategory(err) == ledger.CategoryRPC {
			err = ledger.NewError(ledger.CategoryExecutionAborted, "execute", "ledger rejected the transaction", err)
		}
		return nil, ledger.ToDomain(err, "mint submission failed")
	}

	result := &Result{TransactionDigest: resp.Digest}
	if resp.Effects != nil && len(resp.Effects.Created) > 0 {
		result.ObjectID = resp.Effects.Created[0].Reference.ObjectID
	}

	failed := resp.Effects != nil && resp.Effects.Status.Status == ledger.ExecutionFailure
	if failed || result.ObjectID == "" {
		msg := "transaction created no credential"
		if failed && resp.Effects.Status.Error != "" {
			msg = resp.Effects.Status.Error
		}
		aborted := ledger.NewError(ledger.CategoryExecutionAborted, "execute", msg, nil)
		aborted.Digest = resp.Digest
		g.logger.WarnContext(ctx, "mint transaction aborted",
			"digest", resp.Digest,
			"target", tx.Target(),
			"reason", msg,
		)
		return result, ledger.ToDomain(aborted, fmt.Sprintf("mint transaction %s aborted: %s", resp.Digest, msg))
	}

	g.logger.InfoContext(ctx, "mint transaction confirmed",
		"digest", result.TransactionDigest,
		"object_id", result.ObjectID,
	)
	return result, nil
}
