// Package service runs the licensing workflow around a process record:
// registry lookup, classification, conditional answers, overrides and the
// license data kept alongside them.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	riskservice "github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/service"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sentinel"
	pstrings "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/strings"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/tx"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Classifier,AuditPublisher,OpsTracker

// LegacyImportSubject labels the audit record of a legacy import.
const LegacyImportSubject = "importacao-legado"

// Classifier is the classification service the workflow delegates to.
type Classifier interface {
	Analyze(ctx context.Context, codes []string, answers risk.AnswerMap) riskservice.Outcome
	Override(ctx context.Context, subject string, result *risk.Result, tier risk.RiskLevel, reason string) (*risk.Result, error)
	GetRule(code string) (risk.Rule, error)
}

// AuditPublisher records compliance events; a failure must fail the operation.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

// OpsTracker records operational events best-effort.
type OpsTracker interface {
	Track(ctx context.Context, event audit.OpsEvent)
}

// Outcome is a process after (re)classification.
// Saved is false when the rule table was not ready: a degraded verdict never
// replaces a stored one.
type Outcome struct {
	Process  *process.Process `json:"process"`
	Degraded bool             `json:"degraded"`
	Saved    bool             `json:"saved"`
}

// LicenseUpdate carries the license and responsible-party fields of a process.
type LicenseUpdate struct {
	License                 process.License
	LegalRepresentative     string
	TechnicalRepresentative string
}

type Service struct {
	registry   registry.Fetcher
	classifier Classifier
	store      process.Store
	audit      AuditPublisher
	ops        OpsTracker
	tx         tx.Runner
	logger     *slog.Logger
	tracer     trace.Tracer
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

// WithTxRunner makes each mutation and its audit record one unit of work.
func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) {
		s.tx = r
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

func New(fetcher registry.Fetcher, classifier Classifier, store process.Store, opts ...Option) *Service {
	s := &Service{
		registry:   fetcher,
		classifier: classifier,
		store:      store,
		tx:         passthroughTx{},
		tracer:     otel.Tracer("vigisan/process"),
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

// AnalyzeEntity looks the entity up in the registry, classifies its activity
// codes and saves the process. Answers given earlier are kept and the new
// ones win; notes, license data and the override ledger carry over.
func (s *Service) AnalyzeEntity(ctx context.Context, id domain.EntityID, answers risk.AnswerMap) (*Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "process.AnalyzeEntity",
		trace.WithAttributes(attribute.String("entity.kind", string(id.Kind()))))
	defer span.End()

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	company, err := s.registry.FetchCompany(ctx, id)
	if err != nil {
		span.RecordError(err)
		if s.logger != nil {
			s.logger.WarnContext(ctx, "registry lookup failed",
				"entity_id", id.String(),
				"category", string(registry.CategoryOf(err)),
				"error", err,
			)
		}
		return nil, registry.ToDomainError(err)
	}

	p := &process.Process{ID: id}
	if existing != nil {
		p = existing
		p.IsLegacy = false
		if p.Notes == process.LegacyNote {
			p.Notes = ""
		}
	}
	for code, tier := range answers {
		p.Answers = p.Answers.With(code, tier)
	}
	p.Company = company

	return s.classifyAndSave(ctx, p)
}

// AnswerCondition records a yes/no answer to a conditional question and
// re-classifies the process with the stored company data.
func (s *Service) AnswerCondition(ctx context.Context, id domain.EntityID, code string, yes bool) (*Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "process.AnswerCondition")
	defer span.End()

	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	rule, err := s.classifier.GetRule(code)
	if err != nil {
		return nil, err
	}
	if !rule.IsConditional() {
		return nil, dErrors.New(dErrors.CodeValidation, "activity "+rule.Code+" has no conditional question")
	}

	var out *Outcome
	err = s.tx.RunInTx(tx.WithShardKey(ctx, id.String()), func(ctx context.Context) error {
		p, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		if p.Company == nil {
			return dErrors.New(dErrors.CodeInvalidInput, "process has no registry data; analyze it first")
		}
		tier := rule.Resolve(yes)
		p.Answers = risk.Answer(p.Answers, rule, yes)

		outcome := s.classifier.Analyze(ctx, p.Codes(), p.Answers)
		if outcome.Degraded {
			return dErrors.New(dErrors.CodeUnavailable, "rule catalogue is not loaded; try again shortly")
		}
		if err := s.emit(ctx, audit.ComplianceEvent{
			Subject:  id.String(),
			Action:   audit.EventConditionAnswered,
			Decision: string(tier),
			Reason:   rule.Code + ": " + rule.QuestionText(),
			ActorID:  actor,
		}); err != nil {
			return err
		}
		p.Analysis = outcome.Result
		p.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Save(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save process")
		}
		out = &Outcome{Process: p, Saved: true}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.track(ctx, audit.EventProcessSaved, out.Process)
	return out, nil
}

// Override reassigns the stored verdict and appends the change to the
// process ledger. The classification service records the compliance event
// inside the same unit of work.
func (s *Service) Override(ctx context.Context, id domain.EntityID, tier risk.RiskLevel, reason string) (*process.Process, error) {
	ctx, span := s.tracer.Start(ctx, "process.Override")
	defer span.End()

	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	var saved *process.Process
	err = s.tx.RunInTx(tx.WithShardKey(ctx, id.String()), func(ctx context.Context) error {
		p, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		result, err := s.classifier.Override(ctx, id.String(), p.Analysis, tier, reason)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		p.Analysis = result
		p.OverrideHistory = append(p.OverrideHistory, process.OverrideEntry{
			Override: *result.Override,
			Actor:    actor,
			At:       now,
		})
		p.UpdatedAt = now
		if err := s.store.Save(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save process")
		}
		saved = p
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.track(ctx, audit.EventProcessSaved, saved)
	return saved, nil
}

// UpdateNotes replaces the free-text notes of a process.
func (s *Service) UpdateNotes(ctx context.Context, id domain.EntityID, notes string) (*process.Process, error) {
	return s.update(ctx, id, func(p *process.Process) error {
		p.Notes = strings.TrimSpace(notes)
		return nil
	})
}

// UpdateLicense replaces the license data and responsible parties.
func (s *Service) UpdateLicense(ctx context.Context, id domain.EntityID, upd LicenseUpdate) (*process.Process, error) {
	if err := upd.License.Validate(); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(p *process.Process) error {
		p.License = upd.License
		p.LegalRepresentative = strings.TrimSpace(upd.LegalRepresentative)
		p.TechnicalRepresentative = strings.TrimSpace(upd.TechnicalRepresentative)
		return nil
	})
}

func (s *Service) update(ctx context.Context, id domain.EntityID, mutate func(*process.Process) error) (*process.Process, error) {
	var saved *process.Process
	err := s.tx.RunInTx(tx.WithShardKey(ctx, id.String()), func(ctx context.Context) error {
		p, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(p); err != nil {
			return err
		}
		p.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Save(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save process")
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.track(ctx, audit.EventProcessSaved, saved)
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id domain.EntityID) (*process.Process, error) {
	return s.get(ctx, id)
}

// List returns every process, newest first.
func (s *Service) List(ctx context.Context) ([]*process.Process, error) {
	ps, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list processes")
	}
	return ps, nil
}

// Delete removes a process. The deletion is a compliance event.
func (s *Service) Delete(ctx context.Context, id domain.EntityID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	return s.tx.RunInTx(tx.WithShardKey(ctx, id.String()), func(ctx context.Context) error {
		p, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.emit(ctx, audit.ComplianceEvent{
			Subject:  id.String(),
			Action:   audit.EventProcessDeleted,
			Previous: string(p.Analysis.RiskLevel),
			ActorID:  actor,
		}); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return translate(err, id)
		}
		return nil
	})
}

// ImportLegacy seeds the store with records from the legacy system. It only
// runs against an empty store; rows without a valid CPF/CNPJ are skipped.
// Returns how many records were imported.
func (s *Service) ImportLegacy(ctx context.Context, rows []process.LegacyRow) (int, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return 0, err
	}

	imported := 0
	err = s.tx.RunInTx(tx.WithShardKey(ctx, LegacyImportSubject), func(ctx context.Context) error {
		n, err := s.store.Count(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count processes")
		}
		if n > 0 {
			return dErrors.Wrap(sentinel.ErrConflict, dErrors.CodeConflict, "legacy import requires an empty process store")
		}

		now := requestcontext.Now(ctx)
		var batch []*process.Process
		for _, row := range rows {
			if p, ok := process.FromLegacy(row, now); ok {
				batch = append(batch, p)
			}
		}
		batch = pstrings.DedupeFunc(batch, func(p *process.Process) domain.EntityID { return p.ID })

		if err := s.emit(ctx, audit.ComplianceEvent{
			Subject:  LegacyImportSubject,
			Action:   audit.EventProcessImported,
			Decision: string(risk.RiskPending),
			Reason:   strconv.Itoa(len(batch)) + " of " + strconv.Itoa(len(rows)) + " rows imported",
			ActorID:  actor,
		}); err != nil {
			return err
		}
		for _, p := range batch {
			if err := s.store.Save(ctx, p); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save imported process")
			}
		}
		imported = len(batch)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "legacy processes imported",
			"imported", imported,
			"rows", len(rows),
			"actor_id", actor,
		)
	}
	return imported, nil
}

func (s *Service) classifyAndSave(ctx context.Context, p *process.Process) (*Outcome, error) {
	outcome := s.classifier.Analyze(ctx, p.Codes(), p.Answers)
	p.Analysis = outcome.Result
	p.UpdatedAt = requestcontext.Now(ctx)
	s.track(ctx, audit.EventRiskAnalyzed, p)

	if outcome.Degraded {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "rule table not ready; analysis not saved",
				"entity_id", p.ID.String(),
				"rules_state", string(outcome.RulesState),
			)
		}
		return &Outcome{Process: p, Degraded: true}, nil
	}

	err := s.tx.RunInTx(tx.WithShardKey(ctx, p.ID.String()), func(ctx context.Context) error {
		if err := s.store.Save(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save process")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.track(ctx, audit.EventProcessSaved, p)
	return &Outcome{Process: p, Saved: true}, nil
}

// find returns the stored process or nil when there is none.
func (s *Service) find(ctx context.Context, id domain.EntityID) (*process.Process, error) {
	p, err := s.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load process")
	}
	return p, nil
}

func (s *Service) get(ctx context.Context, id domain.EntityID) (*process.Process, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translate(err, id)
	}
	return p, nil
}

func translate(err error, id domain.EntityID) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "process "+id.String()+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "process store failure")
}

func (s *Service) track(ctx context.Context, action audit.AuditEvent, p *process.Process) {
	if s.ops == nil || p == nil {
		return
	}
	var decision string
	if p.Analysis != nil {
		decision = string(p.Analysis.RiskLevel)
	}
	s.ops.Track(ctx, audit.OpsEvent{
		Timestamp: requestcontext.Now(ctx),
		Subject:   p.ID.String(),
		Action:    action,
		Decision:  decision,
		RequestID: requestcontext.RequestID(ctx),
	})
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
