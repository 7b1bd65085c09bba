// Package compliance provides a fail-closed audit publisher for regulatory events.
//
// Events are written synchronously and the caller blocks until the write
// succeeds. If the write fails, an error is returned and the calling
// operation MUST fail.
//
// Use for: risk_overridden, condition_answered, rule_upserted, rule_deleted,
// process_deleted, process_imported.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
)

// Mirror receives a copy of each persisted event, best-effort.
type Mirror interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Publisher emits compliance events with fail-closed semantics.
type Publisher struct {
	store   audit.Store
	mirror  Mirror
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithMirror forwards persisted events to a secondary sink such as the
// Kafka stream. Mirror failures are logged and never fail the caller.
func WithMirror(m Mirror) Option {
	return func(p *Publisher) {
		p.mirror = m
	}
}

// New creates a compliance publisher over the durable store.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes a compliance event to the audit store.
// Returns error if persistence fails; the caller MUST fail its operation.
func (p *Publisher) Emit(ctx context.Context, event audit.ComplianceEvent) error {
	start := time.Now()

	if event.Subject == "" {
		return fmt.Errorf("compliance event requires Subject")
	}
	if event.Action == "" {
		return fmt.Errorf("compliance event requires Action")
	}
	if event.ActorID == "" {
		return fmt.Errorf("compliance event requires ActorID")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	stored := event.ToEvent()
	if err := p.store.Append(ctx, stored); err != nil {
		p.metrics.IncPersistFailures()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
				"action", event.Action,
				"subject", event.Subject,
				"actor_id", event.ActorID,
				"error", err,
			)
		}
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}

	p.metrics.ObservePersistDuration(time.Since(start).Seconds())
	p.metrics.IncEventsEmitted()

	if p.mirror != nil {
		if err := p.mirror.Emit(ctx, stored); err != nil && p.logger != nil {
			p.logger.WarnContext(ctx, "compliance audit mirror failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
	return nil
}

// Close is a no-op for the synchronous compliance publisher.
func (p *Publisher) Close() error {
	return nil
}
