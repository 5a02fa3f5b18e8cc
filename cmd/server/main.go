package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	certcodec "certledger/internal/certificate/codec"
	certhandler "certledger/internal/certificate/handler"
	certmetrics "certledger/internal/certificate/metrics"
	certmodels "certledger/internal/certificate/models"
	certservice "certledger/internal/certificate/service"
	jwttoken "certledger/internal/jwt_token"
	"certledger/internal/mint"
	nhandler "certledger/internal/notification/handler"
	nmetrics "certledger/internal/notification/metrics"
	nservice "certledger/internal/notification/service"
	"certledger/internal/platform/config"
	"certledger/internal/platform/health"
	"certledger/internal/platform/httpserver"
	"certledger/internal/platform/logger"
	"certledger/internal/platform/metrics"
	"certledger/internal/platform/middleware"
	reviewhandler "certledger/internal/review/handler"
	reviewmetrics "certledger/internal/review/metrics"
	"certledger/internal/review/reminder"
	reviewservice "certledger/internal/review/service"
	auditmetrics "certledger/pkg/platform/audit/metrics"
	"certledger/pkg/platform/audit/publisher"
	authmw "certledger/pkg/platform/middleware/auth"
	"certledger/pkg/platform/middleware/requesttime"
)

const (
	shutdownTimeout = 10 * time.Second
	requestTimeout  = 60 * time.Second
	auditBuffer     = 1024
)

// main wires dependencies and runs the HTTP server next to the background
// workers until SIGINT or SIGTERM. Business logic lives in internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	if cfg.DevSigningKey() {
		log.Warn("JWT_SIGNING_KEY is not set, using the development key")
	}
	checks := health.New()

	backend, err := buildLedger(cfg.Ledger, checks, log)
	if err != nil {
		return err
	}
	policy, err := buildPolicy(cfg, backend.signer, log)
	if err != nil {
		return err
	}
	st, err := buildStorage(ctx, cfg.Store, checks)
	if err != nil {
		return err
	}
	defer st.Close()
	relay, err := buildRelay(ctx, cfg.Kafka, st, checks, log)
	if err != nil {
		return err
	}

	auditPublisher := publisher.NewPublisher(st.audit,
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithLogger(log),
		publisher.WithMetrics(auditmetrics.New()),
	)

	certService, err := certservice.New(backend.reader,
		certcodec.New(certmodels.NewTypeSignature(cfg.Ledger.PackageID, cfg.Ledger.Module)),
		policy,
		certservice.WithLogger(log),
		certservice.WithMetrics(certmetrics.New()),
	)
	if err != nil {
		return err
	}
	notifications, err := nservice.New(st.notifications,
		nservice.WithLogger(log),
		nservice.WithMetrics(nmetrics.New()),
		nservice.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}
	gateway, err := mint.New(backend.executor, cfg.Ledger.PackageID, cfg.Ledger.Module, mint.WithLogger(log))
	if err != nil {
		return err
	}
	reviewMetrics := reviewmetrics.New()
	review, err := reviewservice.New(st.requests, gateway, policy, notifications,
		reviewservice.WithLogger(log),
		reviewservice.WithMetrics(reviewMetrics),
		reviewservice.WithAuditPublisher(auditPublisher),
		reviewservice.WithCredentialLister(certService),
	)
	if err != nil {
		return err
	}
	sweeper, err := reminder.New(st.requests, notifications,
		reminder.WithLogger(log),
		reminder.WithMetrics(reviewMetrics),
		reminder.WithAfter(cfg.Reminder.After),
	)
	if err != nil {
		return err
	}

	jwtValidator := jwttoken.NewJWTServiceAdapter(
		jwttoken.NewJWTService(cfg.JWTSigningKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMetrics(metrics.New()))
	r.Use(middleware.ContentTypeJSON)

	checks.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	reviewHTTP := reviewhandler.New(review, backend.signer, log)
	notificationHTTP := nhandler.New(notifications, log)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		certhandler.New(certService, log).Register(r)
		reviewHTTP.Register(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAdmin(jwtValidator, policy, log))
		reviewHTTP.RegisterAdmin(r)
		notificationHTTP.RegisterAdmin(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting certledger",
			"addr", cfg.Addr,
			"ledger", cfg.Ledger.Backend,
			"store", cfg.Store.Backend,
			"trusted_issuers", policy.Len(),
			"mint_enabled", backend.signer != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx, cfg.Reminder.Schedule)
	})
	if relay != nil {
		relay.Start()
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if relay != nil {
			if stopErr := relay.Stop(shutdownCtx); stopErr != nil {
				log.Warn("outbox relay did not stop in time", "error", stopErr)
			}
		}
		auditPublisher.Close()
		return err
	})
	return g.Wait()
}
