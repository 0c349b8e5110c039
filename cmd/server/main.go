package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"onboard-gateway/internal/onboarding/draft"
	"onboard-gateway/internal/onboarding/draft/kv"
	onboardinghandler "onboard-gateway/internal/onboarding/handler"
	"onboard-gateway/internal/onboarding/wizard"
	"onboard-gateway/internal/platform/config"
	"onboard-gateway/internal/platform/httpserver"
	"onboard-gateway/internal/platform/logger"
	"onboard-gateway/internal/platform/metrics"
	"onboard-gateway/internal/platform/postgres"
	"onboard-gateway/internal/platform/redis"
	registrationhandler "onboard-gateway/internal/registration/handler"
	registrationservice "onboard-gateway/internal/registration/service"
	registrationstore "onboard-gateway/internal/registration/store"
	httptransport "onboard-gateway/internal/transport/http"
	audit "onboard-gateway/pkg/platform/audit"
	"onboard-gateway/pkg/platform/audit/publisher"
	auditfallback "onboard-gateway/pkg/platform/audit/store/fallback"
	auditkafka "onboard-gateway/pkg/platform/audit/store/kafka"
	auditmemory "onboard-gateway/pkg/platform/audit/store/memory"
	auditpostgres "onboard-gateway/pkg/platform/audit/store/postgres"
	"onboard-gateway/pkg/platform/circuit"
	"onboard-gateway/pkg/platform/middleware/device"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checks := map[string]httptransport.HealthCheck{}

	draftKV, closeKV, err := buildDraftKV(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer closeKV()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		checks["postgres"] = db.PingContext
	}

	auditStore, closeAudit, err := buildAuditStore(ctx, cfg, db, log, reg)
	if err != nil {
		return err
	}
	defer closeAudit()
	auditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Onboarding.AuditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	pendingStore, err := buildPendingStore(ctx, cfg, db, log)
	if err != nil {
		return err
	}

	wizardSvc := wizard.New(draftKV,
		wizard.WithLogger(log),
		wizard.WithMetrics(wizard.NewMetrics(reg)),
		wizard.WithDraftMetrics(draft.NewMetrics(reg)),
		wizard.WithAuditPublisher(auditor),
	)
	registrationSvc := registrationservice.New(pendingStore,
		registrationservice.WithTTL(cfg.Onboarding.PendingRegistrationTTL),
		registrationservice.WithLogger(log),
		registrationservice.WithMetrics(registrationservice.NewMetrics(reg)),
		registrationservice.WithAuditPublisher(auditor),
		registrationservice.WithDraftClearer(wizardSvc),
	)

	httpMetrics := metrics.New(reg)
	deviceCfg := device.Config{
		CookieName: cfg.Onboarding.ClientCookieName,
		Secure:     cfg.Onboarding.SecureCookies,
	}
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Gatherer: reg,
		Checks:   checks,
		Handlers: []httptransport.Registrar{
			onboardinghandler.New(wizardSvc, log, httpMetrics, deviceCfg, cfg.Server.RequestTimeout),
			registrationhandler.New(registrationSvc, log, httpMetrics, deviceCfg, cfg.Server.RequestTimeout),
		},
	})
	srv := httpserver.New(cfg.Server.Addr, router, httpserver.WithHandlerTimeout(cfg.Server.RequestTimeout))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting onboard-gateway", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down onboard-gateway")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildDraftKV(ctx context.Context, cfg config.Config, log *slog.Logger, checks map[string]httptransport.HealthCheck) (draft.KV, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("REDIS_URL not set, keeping onboarding drafts in memory")
		return kv.NewMemory(), func() {}, nil
	}
	checks["redis"] = client.Health
	return kv.NewRedis(client.Client, kv.WithTTL(cfg.Onboarding.DraftTTL)), func() { _ = client.Close() }, nil
}

func buildPendingStore(ctx context.Context, cfg config.Config, db *sql.DB, log *slog.Logger) (registrationservice.Store, error) {
	if db == nil {
		log.Warn("DATABASE_URL not set, keeping pending registrations in memory")
		return registrationstore.NewInMemory(), nil
	}
	store := registrationstore.NewPostgres(db)
	if cfg.Database.EnsureSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// buildAuditStore prefers Kafka, then Postgres, then memory. With Kafka
// configured, the next available sink becomes its fallback.
func buildAuditStore(ctx context.Context, cfg config.Config, db *sql.DB, log *slog.Logger, reg prometheus.Registerer) (audit.Store, func(), error) {
	var local audit.Store = auditmemory.NewInMemoryStore()
	if db != nil {
		store := auditpostgres.New(db)
		if cfg.Database.EnsureSchema {
			if err := store.EnsureSchema(ctx); err != nil {
				return nil, nil, err
			}
		}
		local = store
	}

	if len(cfg.Kafka.Brokers) == 0 {
		if db == nil {
			log.Warn("no audit sink configured, keeping audit events in memory")
		}
		return local, func() {}, nil
	}

	client, err := auditkafka.NewClient(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, cfg.Kafka.ProduceTimeout)
	if err != nil {
		return nil, nil, err
	}
	log.Info("audit events published to kafka", "topic", cfg.Kafka.AuditTopic)
	breaker := circuit.New("audit-kafka",
		circuit.WithFailureThreshold(cfg.Kafka.BreakerThreshold),
		circuit.WithCooldown(cfg.Kafka.BreakerCooldown),
	)
	sink := auditkafka.NewSink(client, cfg.Kafka.AuditTopic, auditkafka.WithProduceTimeout(cfg.Kafka.ProduceTimeout))
	store := auditfallback.New(sink, local, breaker,
		auditfallback.WithLogger(log),
		auditfallback.WithMetrics(auditfallback.NewMetrics(reg)),
	)
	return store, client.Close, nil
}
