package service

import (
	"context"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/ruletable"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/tx"
)

// UpsertRule validates rule and writes it through the table. The audit
// record and the store write share one unit of work; the index only
// changes once the store accepted the rule.
func (s *Service) UpsertRule(ctx context.Context, rule risk.Rule) (risk.Rule, error) {
	ctx, span := s.tracer.Start(ctx, "risk.UpsertRule")
	defer span.End()

	actor, err := actorFrom(ctx)
	if err != nil {
		return risk.Rule{}, err
	}
	rule = rule.Normalize()
	if err := rule.Validate(); err != nil {
		return risk.Rule{}, err
	}
	previous, _ := s.rules.Lookup(rule.Code)

	var (
		saved   risk.Rule
		applied bool
	)
	err = s.tx.RunInTx(tx.WithShardKey(ctx, rule.Code), func(ctx context.Context) error {
		if err := s.emit(ctx, audit.ComplianceEvent{
			Subject:  rule.Code,
			Action:   audit.EventRuleUpserted,
			Decision: string(rule.Risk),
			Previous: string(previous.Risk),
			ActorID:  actor,
		}); err != nil {
			return err
		}
		var err error
		saved, err = s.rules.Upsert(ctx, rule)
		applied = err == nil
		return err
	})
	s.metrics.IncrementRuleWrite("upsert", err)
	if err != nil {
		span.RecordError(err)
		if applied {
			s.resync(ctx, err)
		}
		return risk.Rule{}, err
	}
	s.refreshGauges()
	return saved, nil
}

// DeleteRule removes the rule for code. With a ready table, deleting an
// unknown code is a no-op and reports false. While the table is not ready its
// index may be empty or stale, so the delete always goes to the store.
func (s *Service) DeleteRule(ctx context.Context, code string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "risk.DeleteRule")
	defer span.End()

	actor, err := actorFrom(ctx)
	if err != nil {
		return false, err
	}
	code = risk.NormalizeCode(code)
	if code == "" {
		return false, nil
	}
	previous, indexed := s.rules.Lookup(code)
	if !indexed && s.rules.Status().State == ruletable.StateReady {
		return false, nil
	}

	var (
		removed bool
		applied bool
	)
	err = s.tx.RunInTx(tx.WithShardKey(ctx, code), func(ctx context.Context) error {
		if err := s.emit(ctx, audit.ComplianceEvent{
			Subject:  code,
			Action:   audit.EventRuleDeleted,
			Previous: string(previous.Risk),
			ActorID:  actor,
		}); err != nil {
			return err
		}
		var err error
		removed, err = s.rules.Delete(ctx, code)
		applied = err == nil
		return err
	})
	s.metrics.IncrementRuleWrite("delete", err)
	if err != nil {
		span.RecordError(err)
		if applied {
			s.resync(ctx, err)
		}
		return false, err
	}
	s.refreshGauges()
	return removed, nil
}

// resync reloads the index after a unit of work failed to commit following
// a successful in-memory update, so the index matches the store again.
func (s *Service) resync(ctx context.Context, cause error) {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "rule write rolled back after indexing; reloading",
			"error", cause,
		)
	}
	if err := s.rules.Load(context.WithoutCancel(ctx)); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "rule resync failed", "error", err)
	}
	s.refreshGauges()
}
