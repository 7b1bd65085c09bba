package ruletable

import (
	"context"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
)

// Upsert validates and stores rule, then indexes it under its normalized code.
// The index changes only after the backing store accepted the write; store
// errors are returned unchanged. Results already returned by the engine are
// unaffected.
func (t *Table) Upsert(ctx context.Context, rule risk.Rule) (risk.Rule, error) {
	rule = rule.Normalize()
	if err := rule.Validate(); err != nil {
		return risk.Rule{}, err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.store != nil {
		if err := t.store.UpsertRule(ctx, rule); err != nil {
			return risk.Rule{}, err
		}
	}

	t.mu.Lock()
	t.index[rule.Code] = rule
	t.mu.Unlock()

	if t.logger != nil {
		t.logger.InfoContext(ctx, "rule upserted",
			"code", rule.Code,
			"risk", rule.Risk,
		)
	}
	return rule, nil
}

// Delete removes the rule for code. Deleting an absent code is a no-op.
// It reports whether a rule was removed from the index.
func (t *Table) Delete(ctx context.Context, code string) (bool, error) {
	code = risk.NormalizeCode(code)
	if code == "" {
		return false, nil
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.store != nil {
		if err := t.store.DeleteRule(ctx, code); err != nil {
			return false, err
		}
	}

	t.mu.Lock()
	_, existed := t.index[code]
	delete(t.index, code)
	t.mu.Unlock()

	if existed && t.logger != nil {
		t.logger.InfoContext(ctx, "rule deleted", "code", code)
	}
	return existed, nil
}
