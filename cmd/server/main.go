package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/batch"
	batchhandler "github.com/Rafadormi/105-dirvigisan-perobal/internal/batch/handler"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/health"
	jwttoken "github.com/Rafadormi/105-dirvigisan-perobal/internal/jwt_token"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/platform/config"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/platform/httpserver"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/platform/kafka"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/platform/logger"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/platform/metrics"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/platform/redis"
	processhandler "github.com/Rafadormi/105-dirvigisan-perobal/internal/process/handler"
	processservice "github.com/Rafadormi/105-dirvigisan-perobal/internal/process/service"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	riskhandler "github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/handler"
	riskmetrics "github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/metrics"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/ruletable"
	riskservice "github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/service"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit/publisher"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit/publishers/compliance"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit/publishers/ops"
	kafkastore "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit/store/kafka"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/metadata"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/request"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/requesttime"
)

// main wires dependencies, exposes the HTTP router, and keeps the server
// lifecycle small. Business logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stores, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	if err := seedRules(ctx, stores.rules, cfg.Rules.SeedPath, log); err != nil {
		return err
	}

	sinks, err := newAuditSinks(ctx, cfg, stores.audit, log)
	if err != nil {
		return err
	}
	defer sinks.Close(log)

	complianceAudit := compliance.New(stores.audit,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
		compliance.WithMirror(sinks.mirror),
	)
	opsTracker := ops.New(sinks.ops,
		ops.WithSampler(ops.NewSampler(cfg.Audit.OpsSampleRate)),
		ops.WithMetrics(ops.NewMetrics(reg)),
		ops.WithLogger(log),
	)

	rules := ruletable.New(stores.rules, ruletable.WithLogger(log), ruletable.WithStore(stores.rules))
	riskSvc := riskservice.New(rules,
		riskservice.WithAuditPublisher(complianceAudit),
		riskservice.WithOpsTracker(opsTracker),
		riskservice.WithTxRunner(stores.tx),
		riskservice.WithMetrics(riskmetrics.NewWith(reg)),
		riskservice.WithLogger(log),
		riskservice.WithRulesWait(cfg.Rules.WaitTimeout),
	)
	// Requests arriving before the first load completes wait up to
	// RULES_WAIT_TIMEOUT and then run degraded.
	go func() {
		if err := riskSvc.Reload(ctx); err != nil {
			log.ErrorContext(ctx, "initial rule load failed", "error", err)
		}
	}()

	registryMetrics := registry.NewMetrics(reg)
	registryClient := registry.NewHTTPClient(cfg.Registry.BaseURL,
		registry.WithHTTPClient(&http.Client{Timeout: cfg.Registry.Timeout}),
		registry.WithRateLimit(cfg.Registry.Interval, cfg.Registry.Burst),
		registry.WithLogger(log),
		registry.WithMetrics(registryMetrics),
	)
	var fetcher registry.Fetcher = registryClient

	healthOpts := []health.Option{}
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		fetcher = registry.NewRedisCache(registryClient, redisClient, cfg.Registry.CacheTTL, log, registryMetrics)
		healthOpts = append(healthOpts, health.WithCheck("redis", redisClient.Health))
		log.InfoContext(ctx, "registry cache enabled", "ttl", cfg.Registry.CacheTTL)
	}
	if stores.db != nil {
		healthOpts = append(healthOpts, health.WithCheck("database", stores.db.PingContext))
	}
	if sinks.producer != nil {
		healthOpts = append(healthOpts, health.WithCheck("kafka", sinks.producer.Ping))
	}

	processSvc := processservice.New(fetcher, riskSvc, stores.processes,
		processservice.WithAuditPublisher(complianceAudit),
		processservice.WithOpsTracker(opsTracker),
		processservice.WithTxRunner(stores.tx),
		processservice.WithLogger(log),
	)
	batchRunner := batch.NewRunner(processSvc,
		batch.WithConcurrency(cfg.Batch.Concurrency),
		batch.WithMaxItems(cfg.Batch.MaxItems),
		batch.WithOpsTracker(opsTracker),
		batch.WithLogger(log),
	)

	jwtValidator := jwttoken.NewJWTServiceAdapter(
		jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience),
	)
	if cfg.Auth.AdminToken == "" {
		log.WarnContext(ctx, "ADMIN_TOKEN not set; rule administration routes are disabled")
	}
	healthOpts = append(healthOpts, health.WithRegistryCheck(registryClient, jwtValidator))

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(log))
	r.Use(metrics.LatencyMiddleware(metrics.New(reg)))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	health.New(riskSvc, log, healthOpts...).Register(r)
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.Server.RequestTimeout))
		riskhandler.New(riskSvc, log, jwtValidator, cfg.Auth.AdminToken).Register(r)
		processhandler.New(processSvc, log, jwtValidator).Register(r)
	})
	// Batches are paced by the registry limiter and outlive the request timeout.
	batchhandler.New(batchRunner, log, jwtValidator).Register(r)

	srv := httpserver.New(cfg.Server.Addr, r)
	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "starting vigisan", "addr", cfg.Server.Addr, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// auditSinks routes operational events and the compliance mirror. Without
// Kafka, ops events land in the durable audit store and nothing is mirrored.
type auditSinks struct {
	ops      *publisher.Publisher
	mirror   compliance.Mirror
	producer *kafka.Producer
	closers  []func() error
}

func newAuditSinks(ctx context.Context, cfg *config.Config, durable audit.Store, log *slog.Logger) (*auditSinks, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		opsPub := publisher.NewPublisher(durable, publisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer), publisher.WithLogger(log))
		return &auditSinks{ops: opsPub, closers: []func() error{opsPub.Close}}, nil
	}

	producer, err := kafka.NewProducer(kafka.Config{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID,
		Linger:   5 * time.Millisecond,
	}, log)
	if err != nil {
		return nil, err
	}
	stream := kafkastore.New(producer, cfg.Kafka.TopicPrefix)
	if err := producer.EnsureTopics(ctx, cfg.Kafka.Partitions, cfg.Kafka.Replication, stream.Topics()...); err != nil {
		producer.Close()
		return nil, err
	}
	opsPub := publisher.NewPublisher(stream, publisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer), publisher.WithLogger(log))
	mirror := publisher.NewPublisher(stream, publisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer), publisher.WithLogger(log))
	log.InfoContext(ctx, "audit stream enabled", "brokers", cfg.Kafka.Brokers, "topics", stream.Topics())
	return &auditSinks{
		ops:      opsPub,
		mirror:   mirror,
		producer: producer,
		closers:  []func() error{opsPub.Close, mirror.Close},
	}, nil
}

// Close drains the async publishers before the producer goes away.
func (s *auditSinks) Close(log *slog.Logger) {
	for _, c := range s.closers {
		if err := c(); err != nil {
			log.Warn("audit publisher close failed", "error", err)
		}
	}
	if s.producer != nil {
		s.producer.Close()
	}
}
