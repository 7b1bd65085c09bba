// Package ops provides a non-blocking, sampled tracker for operational audit events.
//
// Use for: risk_analyzed, rules_loaded, process_saved, batch_completed.
package ops

import (
	"context"
	"log/slog"
	"time"

	audit "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/circuit"
)

// Sink receives ops events; normally an async publisher.
type Sink interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Tracker never fails the caller. Events are sampled, then dropped while
// the sink's breaker is open.
type Tracker struct {
	sink    Sink
	sampler *Sampler
	breaker *circuit.Breaker
	metrics *Metrics
	logger  *slog.Logger
}

type Option func(*Tracker)

func WithSampler(s *Sampler) Option {
	return func(t *Tracker) {
		t.sampler = s
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(t *Tracker) {
		t.breaker = b
	}
}

func WithMetrics(m *Metrics) Option {
	return func(t *Tracker) {
		t.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

func New(sink Sink, opts ...Option) *Tracker {
	t := &Tracker{
		sink:    sink,
		sampler: NewSampler(1),
		breaker: circuit.New("audit-ops", circuit.WithFailureThreshold(5), circuit.WithCooldown(time.Minute)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track hands the event to the sink unless it is sampled out or the breaker is open.
func (t *Tracker) Track(ctx context.Context, event audit.OpsEvent) {
	if t == nil || t.sink == nil {
		return
	}
	if !t.sampler.ShouldSample(string(event.Action)) {
		t.metrics.IncSampled()
		return
	}
	if !t.breaker.Allow() {
		t.metrics.IncCircuitBreakerDropped()
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := t.sink.Emit(ctx, event.ToEvent()); err != nil {
		t.metrics.IncPersistFailures()
		if _, change := t.breaker.RecordFailure(); change.Opened {
			t.metrics.SetCircuitBreakerState(true)
			if t.logger != nil {
				t.logger.WarnContext(ctx, "ops audit sink unhealthy, dropping events", "error", err)
			}
		}
		return
	}
	if _, change := t.breaker.RecordSuccess(); change.Closed {
		t.metrics.SetCircuitBreakerState(false)
	}
	t.metrics.IncTracked()
}
