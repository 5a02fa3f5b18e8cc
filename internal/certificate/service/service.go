// Package service answers credential queries against the ledger: listing a
// wallet's certificates and verifying individual objects against the issuer
// policy.
package service

import (
	"context"
	"errors"
	"log/slog"

	"certledger/internal/certificate/codec"
	"certledger/internal/certificate/metrics"
	"certledger/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks LedgerReader,TrustPolicy

// LedgerReader is the read side of the ledger.
type LedgerReader interface {
	GetOwnedObjects(ctx context.Context, owner string, query ledger.OwnedQuery) (*ledger.Page, error)
	GetObject(ctx context.Context, objectID string) (*ledger.Object, error)
}

// TrustPolicy decides whether an issuer address is trusted.
type TrustPolicy interface {
	IsTrustedIssuer(address string) bool
}

const (
	// MaxBatchSize bounds VerifyBatch input.
	MaxBatchSize = 50

	defaultBatchConcurrency = 8
	maxListPages            = 1000
)

// Service implements credential listing and verification.
type Service struct {
	reader           LedgerReader
	codec            *codec.Codec
	policy           TrustPolicy
	logger           *slog.Logger
	metrics          *metrics.Metrics
	batchConcurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBatchConcurrency caps concurrent ledger reads in VerifyBatch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

func New(reader LedgerReader, c *codec.Codec, policy TrustPolicy, opts ...Option) (*Service, error) {
	if reader == nil {
		return nil, errors.New("ledger reader is required")
	}
	if c == nil {
		return nil, errors.New("codec is required")
	}
	if policy == nil {
		return nil, errors.New("trust policy is required")
	}
	s := &Service{
		reader:           reader,
		codec:            c,
		policy:           policy,
		logger:           slog.Default(),
		batchConcurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}
