package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	casehandler "github.com/tendai-dev/onboarding-kyb-sub006/internal/case/handler"
	casemetrics "github.com/tendai-dev/onboarding-kyb-sub006/internal/case/metrics"
	caseservice "github.com/tendai-dev/onboarding-kyb-sub006/internal/case/service"
	casestore "github.com/tendai-dev/onboarding-kyb-sub006/internal/case/store"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/jwtauth"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/orchestrator"
	orchmetrics "github.com/tendai-dev/onboarding-kyb-sub006/internal/orchestrator/metrics"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/outbox"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/platform/config"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/platform/httpserver"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/platform/logger"
	platmetrics "github.com/tendai-dev/onboarding-kyb-sub006/internal/platform/metrics"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/platform/middleware"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/platform/postgres"
	platredis "github.com/tendai-dev/onboarding-kyb-sub006/internal/platform/redis"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/projection"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/schema"
	schemacache "github.com/tendai-dev/onboarding-kyb-sub006/internal/schema/cache"
	schemaclient "github.com/tendai-dev/onboarding-kyb-sub006/internal/schema/client"
)

// main wires dependencies and owns the process lifecycle. All business
// decisions live in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Entity configuration provider: resty client behind an optional Redis
	// read-through cache. A nil client keeps every intake on the legacy path.
	var provider schema.ConfigProvider
	if c := schemaclient.New(cfg.Collaborators.EntityConfigBaseURL, cfg.Collaborators.HTTPTimeout, log); c != nil {
		provider = c
	}
	if redisClient != nil {
		provider = schemacache.Wrap(redisClient.Client, provider, cfg.Redis.ConfigTTL, log)
	}
	resolver := schema.NewResolver(provider, log)

	jwtService := jwtauth.NewService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)

	orchMetrics := orchmetrics.New()
	syncer := projection.NewSyncer(
		projection.NewClient(cfg.Collaborators.ProjectionBaseURL, cfg.Collaborators.HTTPTimeout),
		cfg.Projection.SettleDelay,
		cfg.Projection.Timeout,
		log,
		orchMetrics,
	)
	runner := orchestrator.NewRunner(
		orchestrator.NewChecklistClient(cfg.Collaborators.ChecklistBaseURL, cfg.Collaborators.HTTPTimeout),
		orchestrator.NewNotificationClient(cfg.Collaborators.NotificationBaseURL, cfg.Collaborators.HTTPTimeout),
		syncer,
		log,
		orchMetrics,
	)
	dispatcher := orchestrator.NewDispatcher(runner, cfg.Dispatcher.Workers, cfg.Dispatcher.QueueSize, cfg.Dispatcher.TaskTimeout, log, orchMetrics)

	outboxStore := outbox.NewPostgres(db)
	svc, err := caseservice.New(
		casestore.NewPostgres(db),
		outboxStore,
		newPostgresTxRunner(db),
		resolver,
		dispatcher,
		log,
		casemetrics.New(),
	)
	if err != nil {
		log.Error("service wiring failed", "error", err)
		os.Exit(1)
	}

	httpMetrics := platmetrics.New()
	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.LatencyMiddleware(httpMetrics))

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	casehandler.New(svc, jwtauth.NewMiddlewareAdapter(jwtService), log).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting case intake server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(gCtx)
	})
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := outbox.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		worker := outbox.NewWorker(outboxStore, publisher, cfg.Kafka.PollInterval, cfg.Kafka.BatchSize, log)
		g.Go(func() error {
			return worker.Run(gCtx)
		})
	} else {
		log.Warn("kafka brokers not configured, outbox rows will accumulate undrained")
	}
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
