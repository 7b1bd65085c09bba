package risk

// Fixed texts shown to operators and written to reports.
const (
	ObservationPending   = "Necessário responder questionário de atividades condicionadas."
	ObservationAutomatic = "Classificação automática via Regra SESA 1034/2020."
	ObservationFallback  = "Classificação contém itens por analogia (Fallback: Médio). Verifique se necessário."

	DescriptionFallback = "Atividade não catalogada (Classificação por Analogia)"
	DescriptionManual   = "Classificação Manual"
)

// RuleLookup resolves a normalized activity code to its rule.
type RuleLookup interface {
	Lookup(code string) (Rule, bool)
}

// Engine turns activity codes plus prior answers into a risk verdict.
// It holds no state of its own besides the injected rule lookup, so Analyze
// is safe for concurrent use whenever the lookup is.
type Engine struct {
	rules RuleLookup
}

// NewEngine constructs an engine over rules. A nil lookup behaves as an
// empty table: every code degrades to the analogy fallback.
func NewEngine(rules RuleLookup) *Engine {
	return &Engine{rules: rules}
}

// aggregate accumulates the regulatory side effects of each resolved code.
type aggregate struct {
	highest     RiskLevel
	stateLevel  bool
	requiresPba bool
	fallback    bool
}

func (a *aggregate) raise(tier RiskLevel) {
	if tier.Severity() > a.highest.Severity() {
		a.highest = tier
	}
}

func (a *aggregate) absorb(rule Rule) {
	if rule.RequiresPba {
		a.requiresPba = true
	}
	if rule.HasStateCompetence() {
		a.stateLevel = true
	}
}

// Analyze classifies codes in input order.
//
// Resolution precedence per code (first match wins):
//  1. a prior answer for the normalized code; the rule, if any, still
//     contributes its PBA and state-competence flags
//  2. a rule: CONDICIONADO rules become pending questions, others give their tier
//  3. no rule: MÉDIO by analogy, flagged as fallback
//
// Empty, all-zero, and repeated codes are skipped. Any pending question makes
// the verdict PENDENTE DE ANÁLISE; the resolved details are still returned.
func (e *Engine) Analyze(codes []string, answers AnswerMap) *Result {
	agg := aggregate{highest: RiskLow}
	details := make([]CodeDetail, 0, len(codes))
	pending := make([]PendingResolution, 0)
	seen := make(map[string]struct{}, len(codes))

	for _, raw := range codes {
		code := NormalizeCode(raw)
		if IsPlaceholderCode(code) {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		rule, hasRule := e.lookup(code)
		detail := CodeDetail{Code: raw}
		if hasRule {
			r := rule
			detail.SourceRule = &r
		}

		if answer, ok := answers.Lookup(code); ok {
			detail.Risk = answer
			detail.Resolved = true
			detail.Description = DescriptionManual
			if hasRule {
				detail.Description = rule.Description
				agg.absorb(rule)
			}
		} else if hasRule {
			detail.Description = rule.Description
			if rule.IsConditional() {
				detail.Risk = RiskConditional
				pending = append(pending, PendingResolution{
					Code:        raw,
					Description: rule.Description,
					Type:        PendingTypeCondition,
					Question:    rule.QuestionText(),
					Rule:        rule,
				})
			} else {
				detail.Risk = rule.Risk
				agg.absorb(rule)
			}
		} else {
			detail.Risk = RiskMedium
			detail.IsFallback = true
			detail.Description = DescriptionFallback
			agg.fallback = true
		}

		details = append(details, detail)
		agg.raise(detail.Risk)
	}

	if len(pending) > 0 {
		return &Result{
			RiskLevel:          RiskPending,
			Competence:         CompetenceManual,
			RequiresPba:        agg.requiresPba,
			CodeDetails:        details,
			PendingResolutions: pending,
			Observation:        ObservationPending,
		}
	}

	result := &Result{
		RiskLevel:          agg.highest,
		Competence:         CompetenceMunicipal,
		RequiresPba:        agg.requiresPba,
		CodeDetails:        details,
		PendingResolutions: pending,
		Observation:        ObservationAutomatic,
	}
	if agg.stateLevel {
		result.Competence = CompetenceState
	}
	if agg.fallback {
		result.Observation = ObservationFallback
	}
	return result
}

func (e *Engine) lookup(code string) (Rule, bool) {
	if e.rules == nil {
		return Rule{}, false
	}
	return e.rules.Lookup(code)
}
