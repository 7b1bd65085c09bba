package risk

import (
	"strings"

	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
)

// ApplyOverride returns a copy of result reassigned to tier with a mandatory
// justification. The input is never modified.
//
// The override's OriginalRisk is carried over from an existing override, so a
// chain of overrides always points back at the engine's own verdict.
// Validation failures carry CodeValidation so callers can re-prompt.
func ApplyOverride(result *Result, tier RiskLevel, reason string) (*Result, error) {
	if result == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "analysis result is required")
	}
	if result.IsPending() {
		return nil, dErrors.New(dErrors.CodeValidation, "pending analyses cannot be overridden; answer the conditional questions first")
	}
	if !tier.IsFinal() {
		return nil, dErrors.New(dErrors.CodeValidation, "manual risk must be BAIXO, MÉDIO or ALTO")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "override reason is required")
	}

	out := result.Clone()
	out.RiskLevel = tier
	out.Override = &Override{
		OriginalRisk: result.ComputedRisk(),
		ManualRisk:   tier,
		Reason:       reason,
	}
	return out, nil
}
