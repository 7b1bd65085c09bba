// Package service exposes the classification engine and rule administration
// to transports, adding rule-availability waits, audit and telemetry.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/metrics"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/ruletable"
	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/tx"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AuditPublisher,OpsTracker

// AdHocSubject labels audit records of analyses not tied to a process.
const AdHocSubject = "analise-avulsa"

// DefaultRulesWait bounds how long Analyze waits for the rule table to load.
const DefaultRulesWait = 2 * time.Second

// RuleTable is the indexed rule set with its load lifecycle.
type RuleTable interface {
	risk.RuleLookup
	WaitReady(ctx context.Context) (ruletable.State, error)
	Load(ctx context.Context) error
	Status() ruletable.Status
	List() []risk.Rule
	Get(code string) (risk.Rule, error)
	Upsert(ctx context.Context, rule risk.Rule) (risk.Rule, error)
	Delete(ctx context.Context, code string) (bool, error)
}

// AuditPublisher records compliance events; a failure must fail the operation.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

// OpsTracker records operational events best-effort.
type OpsTracker interface {
	Track(ctx context.Context, event audit.OpsEvent)
}

// Outcome wraps a verdict with the state of the rules it was computed against.
// Degraded means the table was not ready, so unknown codes may simply be
// codes whose rules were never loaded.
type Outcome struct {
	Result     *risk.Result    `json:"result"`
	RulesState ruletable.State `json:"rulesState"`
	Degraded   bool            `json:"degraded"`
}

type Service struct {
	rules   RuleTable
	engine  *risk.Engine
	audit   AuditPublisher
	ops     OpsTracker
	tx      tx.Runner
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	waitFor time.Duration
}

type Option func(*Service)

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

func WithOpsTracker(t OpsTracker) Option {
	return func(s *Service) {
		s.ops = t
	}
}

// WithTxRunner makes rule writes and their audit record one unit of work.
func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) {
		s.tx = r
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithRulesWait sets how long Analyze waits for rules before degrading.
func WithRulesWait(d time.Duration) Option {
	return func(s *Service) {
		s.waitFor = d
	}
}

func New(rules RuleTable, opts ...Option) *Service {
	s := &Service{
		rules:   rules,
		engine:  risk.NewEngine(rules),
		tx:      passthroughTx{},
		tracer:  otel.Tracer("vigisan/risk"),
		waitFor: DefaultRulesWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Analyze classifies codes against the current rule table. It never fails:
// if rules are not available within the wait, every unknown code degrades
// to the analogy fallback and the outcome is flagged.
func (s *Service) Analyze(ctx context.Context, codes []string, answers risk.AnswerMap) Outcome {
	ctx, span := s.tracer.Start(ctx, "risk.Analyze",
		trace.WithAttributes(attribute.Int("risk.codes", len(codes))))
	defer span.End()
	start := time.Now()

	state := s.awaitRules(ctx)
	result := s.engine.Analyze(codes, answers)
	out := Outcome{
		Result:     result,
		RulesState: state,
		Degraded:   state != ruletable.StateReady,
	}

	s.metrics.ObserveAnalyzeLatency(time.Since(start))
	s.metrics.IncrementVerdict(string(result.RiskLevel), string(result.Competence))
	if result.HasFallback() {
		s.metrics.AddFallbackCodes(len(result.FallbackCodes()))
	}
	if result.IsPending() {
		s.metrics.IncrementPending()
	}
	if out.Degraded {
		s.metrics.IncrementDegraded()
		if s.logger != nil {
			s.logger.WarnContext(ctx, "analysis ran without a ready rule table",
				"rules_state", state,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	span.SetAttributes(
		attribute.String("risk.level", string(result.RiskLevel)),
		attribute.Int("risk.pending", len(result.PendingResolutions)),
		attribute.Bool("risk.degraded", out.Degraded),
		attribute.Bool("risk.fallback", result.HasFallback()),
	)
	return out
}

func (s *Service) awaitRules(ctx context.Context) ruletable.State {
	st := s.rules.Status().State
	if st == ruletable.StateReady || s.waitFor <= 0 {
		return st
	}
	waitCtx, cancel := context.WithTimeout(ctx, s.waitFor)
	defer cancel()
	st, _ = s.rules.WaitReady(waitCtx)
	return st
}

// Override reassigns the verdict of result and records who did it and why.
// subject identifies what was analyzed (an entity document, or a free-form
// label for ad hoc analyses). The input result is never modified.
func (s *Service) Override(ctx context.Context, subject string, result *risk.Result, tier risk.RiskLevel, reason string) (*risk.Result, error) {
	ctx, span := s.tracer.Start(ctx, "risk.Override")
	defer span.End()

	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if subject == "" {
		subject = AdHocSubject
	}
	out, err := risk.ApplyOverride(result, tier, reason)
	if err != nil {
		return nil, err
	}

	if err := s.emit(ctx, audit.ComplianceEvent{
		Subject:  subject,
		Action:   audit.EventRiskOverridden,
		Decision: string(out.RiskLevel),
		Previous: string(result.RiskLevel),
		Reason:   out.Override.Reason,
		ActorID:  actor,
	}); err != nil {
		return nil, err
	}

	s.metrics.IncrementOverride(string(tier))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "risk overridden",
			"subject", subject,
			"original_risk", out.Override.OriginalRisk,
			"manual_risk", out.Override.ManualRisk,
			"actor_id", actor,
		)
	}
	return out, nil
}

// ListRules returns the catalogue ordered by code.
func (s *Service) ListRules() []risk.Rule {
	return s.rules.List()
}

func (s *Service) GetRule(code string) (risk.Rule, error) {
	rule, err := s.rules.Get(code)
	if err != nil {
		return risk.Rule{}, dErrors.Wrap(err, dErrors.CodeNotFound, "rule not found")
	}
	return rule, nil
}

func (s *Service) RuleStatus() ruletable.Status {
	return s.rules.Status()
}

// Reload pulls the full catalogue from the rule source again. A failed
// reload keeps serving the previous rules.
func (s *Service) Reload(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "risk.Reload")
	defer span.End()

	err := s.rules.Load(ctx)
	st := s.refreshGauges()
	if err != nil {
		span.RecordError(err)
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "rule reload failed", "error", err)
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "rule catalogue could not be loaded")
	}
	if s.ops != nil {
		s.ops.Track(ctx, audit.OpsEvent{
			Subject:   "cnae_rules",
			Action:    audit.EventRulesLoaded,
			RequestID: requestcontext.RequestID(ctx),
		})
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "rules reloaded", "count", st.Count)
	}
	return nil
}

func (s *Service) refreshGauges() ruletable.Status {
	st := s.rules.Status()
	s.metrics.SetRuleTable(string(st.State), st.Count)
	return st
}

func (s *Service) emit(ctx context.Context, event audit.ComplianceEvent) error {
	if s.audit == nil {
		return nil
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func actorFrom(ctx context.Context) (string, error) {
	actor := requestcontext.Actor(ctx)
	if actor == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "operator identity is required")
	}
	return actor, nil
}
