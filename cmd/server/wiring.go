package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"certledger/internal/issuer"
	"certledger/internal/ledger"
	ledgermemory "certledger/internal/ledger/memory"
	ledgermetrics "certledger/internal/ledger/metrics"
	"certledger/internal/ledger/sui"
	nstore "certledger/internal/notification/store"
	"certledger/internal/platform/config"
	"certledger/internal/platform/database"
	"certledger/internal/platform/health"
	"certledger/internal/platform/kafka"
	"certledger/internal/platform/kafka/producer"
	"certledger/internal/platform/redis"
	reviewstore "certledger/internal/review/store"
	"certledger/migrations"
	audit "certledger/pkg/platform/audit"
	"certledger/pkg/platform/audit/outbox"
	outboxmetrics "certledger/pkg/platform/audit/outbox/metrics"
	outboxpostgres "certledger/pkg/platform/audit/outbox/store/postgres"
	"certledger/pkg/platform/audit/outbox/worker"
	auditmemory "certledger/pkg/platform/audit/store/memory"
	auditpostgres "certledger/pkg/platform/audit/store/postgres"
	"certledger/pkg/platform/circuit"
)

// ledgerBackend bundles the read and write ports with the server signer.
// signer is nil when minting is disabled.
type ledgerBackend struct {
	reader   ledger.Reader
	executor ledger.Executor
	signer   ledger.Signer
}

func buildLedger(cfg config.Ledger, checks *health.Handler, log *slog.Logger) (*ledgerBackend, error) {
	switch cfg.Backend {
	case config.LedgerMemory:
		signer, err := memorySigner(cfg.SignerKey)
		if err != nil {
			return nil, err
		}
		l := ledgermemory.New(cfg.PackageID, cfg.Module)
		log.Warn("using in-memory ledger, certificates are lost on restart",
			"signer", signer.Address(),
		)
		return &ledgerBackend{reader: l, executor: l, signer: signer}, nil

	case config.LedgerSui:
		client, err := sui.New(sui.Config{
			URL:           cfg.RPCURL,
			Timeout:       cfg.Timeout,
			RatePerSecond: cfg.RatePerSecond,
			Burst:         cfg.Burst,
			GasBudget:     cfg.GasBudget,
		}, sui.WithLogger(log), sui.WithMetrics(ledgermetrics.New()))
		if err != nil {
			return nil, fmt.Errorf("sui client: %w", err)
		}
		checks.RegisterCheck("ledger", func(context.Context) error {
			if st := client.BreakerState(); st == circuit.StateOpen {
				return errors.New("circuit " + st.String())
			}
			return nil
		})

		backend := &ledgerBackend{reader: client, executor: client}
		if cfg.SignerKey == "" {
			log.Warn("SUI_SIGNER_KEY is not set, mint endpoint disabled")
			return backend, nil
		}
		signer, err := sui.ParseKeypairSigner(cfg.SignerKey)
		if err != nil {
			return nil, fmt.Errorf("SUI_SIGNER_KEY: %w", err)
		}
		backend.signer = signer
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}

// memorySigner uses the configured key or an ephemeral one.
func memorySigner(encoded string) (*sui.KeypairSigner, error) {
	if encoded != "" {
		return sui.ParseKeypairSigner(encoded)
	}
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate signer seed: %w", err)
	}
	return sui.NewKeypairSigner(seed)
}

// buildPolicy merges TRUSTED_ISSUERS with the issuer file. With the memory
// ledger the server's own signer is trusted so local runs can mint.
func buildPolicy(cfg config.Server, signer ledger.Signer, log *slog.Logger) (*issuer.Policy, error) {
	addrs := append([]string{}, cfg.Issuers.Addresses...)
	if cfg.Issuers.File != "" {
		fromFile, err := issuer.LoadFile(cfg.Issuers.File)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, fromFile...)
	}
	if cfg.Ledger.Backend == config.LedgerMemory && signer != nil {
		addrs = append(addrs, signer.Address())
	}
	policy := issuer.NewPolicy(addrs...)
	if policy.Len() == 0 {
		log.Warn("no trusted issuers configured, every certificate will verify as invalid")
	}
	if signer != nil && !policy.IsTrustedIssuer(signer.Address()) {
		log.Warn("server signer is not a trusted issuer, mints will be denied", "signer", signer.Address())
	}
	return policy, nil
}

// storage holds the selected backends and whatever must be closed on exit.
type storage struct {
	requests      reviewstore.Store
	notifications nstore.Store
	audit         audit.Store
	outbox        outbox.Store
	closers       []func() error
}

func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

func buildStorage(ctx context.Context, cfg config.Store, checks *health.Handler) (*storage, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return &storage{
			requests:      reviewstore.NewInMemory(),
			notifications: nstore.NewInMemory(),
			audit:         auditmemory.NewInMemoryStore(),
		}, nil

	case config.StorePostgres:
		pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(ctx, pool.DB()); err != nil {
			_ = pool.Close()
			return nil, err
		}
		checks.RegisterCheck("store", pool.Health)
		db := pool.DB()
		return &storage{
			requests:      reviewstore.NewPostgres(db),
			notifications: nstore.NewPostgres(db),
			audit:         auditpostgres.New(db),
			outbox:        outboxpostgres.New(db),
			closers:       []func() error{pool.Close},
		}, nil

	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		checks.RegisterCheck("store", client.Health)
		return &storage{
			requests:      reviewstore.NewRedis(client.Client),
			notifications: nstore.NewRedis(client.Client),
			audit:         auditmemory.NewInMemoryStore(),
			closers:       []func() error{client.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// buildRelay returns the outbox worker, or nil when there is no outbox or
// no brokers.
func buildRelay(ctx context.Context, cfg config.Kafka, st *storage, checks *health.Handler, log *slog.Logger) (*worker.Worker, error) {
	if st.outbox == nil {
		return nil, nil
	}
	if cfg.Brokers == "" {
		log.Warn("KAFKA_BROKERS is not set, audit events stay in the outbox table")
		return nil, nil
	}
	prod, err := producer.New(producer.Config{Brokers: cfg.Brokers}, log)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	st.closers = append(st.closers, prod.Close)
	if err := kafka.EnsureTopics(ctx, prod.Client(), kafka.TopicSpec{Name: cfg.AuditTopic}); err != nil {
		return nil, err
	}
	hc := kafka.NewHealthChecker(cfg.Brokers)
	checks.RegisterCheck(hc.Name(), hc.Check)

	return worker.New(st.outbox, prod,
		worker.WithTopic(cfg.AuditTopic),
		worker.WithLogger(log),
		worker.WithMetrics(outboxmetrics.New()),
	), nil
}
