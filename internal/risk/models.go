package risk

import (
	"strings"

	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
)

// RiskLevel is a sanitary-risk tier. The values are the wire format used by
// the licensing workflow and must not be translated.
type RiskLevel string

const (
	RiskLow         RiskLevel = "BAIXO"
	RiskMedium      RiskLevel = "MÉDIO"
	RiskHigh        RiskLevel = "ALTO"
	RiskConditional RiskLevel = "CONDICIONADO"
	RiskUndefined   RiskLevel = "INDEFINIDO"
	RiskPending     RiskLevel = "PENDENTE DE ANÁLISE"
)

// Severity orders tiers for aggregation: ALTO > CONDICIONADO > MÉDIO > BAIXO.
// Tiers that never take part in aggregation rank below BAIXO.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskConditional:
		return 2
	case RiskHigh:
		return 3
	default:
		return -1
	}
}

// IsAssignable reports whether the tier may be stored on a rule or chosen as an answer.
// PENDENTE DE ANÁLISE and INDEFINIDO are verdict/report markers only.
func (r RiskLevel) IsAssignable() bool {
	return r.Severity() >= 0
}

// IsFinal reports whether the tier can stand as an operator-chosen final verdict.
func (r RiskLevel) IsFinal() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

func (r RiskLevel) String() string {
	return string(r)
}

// ParseRiskLevel accepts the canonical tier strings, case-insensitively, and
// the unaccented spellings operators tend to type (MEDIO, PENDENTE DE ANALISE).
func ParseRiskLevel(s string) (RiskLevel, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case "BAIXO":
		return RiskLow, nil
	case "MÉDIO", "MEDIO":
		return RiskMedium, nil
	case "ALTO":
		return RiskHigh, nil
	case "CONDICIONADO":
		return RiskConditional, nil
	case "INDEFINIDO":
		return RiskUndefined, nil
	case "PENDENTE DE ANÁLISE", "PENDENTE DE ANALISE":
		return RiskPending, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown risk level: "+s)
}

// Competence is the level of government with licensing jurisdiction.
type Competence string

const (
	CompetenceMunicipal Competence = "MUNICÍPIO"
	CompetenceState     Competence = "ESTADO"
	CompetenceManual    Competence = "ANÁLISE MANUAL"
)

// ParseCompetence accepts the rule-level competences (municipal or state).
func ParseCompetence(s string) (Competence, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "MUNICÍPIO", "MUNICIPIO":
		return CompetenceMunicipal, nil
	case "ESTADO":
		return CompetenceState, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown competence: "+s)
}

// Rule classifies one activity code (CNAE).
//
// Invariants:
//   - Code is normalized (digits only) once the rule is indexed
//   - Risk is an assignable tier
//   - RiskIfYes/RiskIfNo only matter when Risk is CONDICIONADO and default to ALTO/BAIXO
type Rule struct {
	Code        string     `json:"cnae" yaml:"cnae"`
	Description string     `json:"description" yaml:"description"`
	Risk        RiskLevel  `json:"risk" yaml:"risk"`
	Competence  Competence `json:"competencePorte1" yaml:"competence_porte1"`
	RequiresPba bool       `json:"requiresPba" yaml:"requires_pba"`
	Question    string     `json:"question,omitempty" yaml:"question,omitempty"`
	RiskIfYes   RiskLevel  `json:"riskIfYes,omitempty" yaml:"risk_if_yes,omitempty"`
	RiskIfNo    RiskLevel  `json:"riskIfNo,omitempty" yaml:"risk_if_no,omitempty"`
}

func (r Rule) IsConditional() bool {
	return r.Risk == RiskConditional
}

// HasStateCompetence reports whether the activity is licensed by the state.
func (r Rule) HasStateCompetence() bool {
	return r.Competence == CompetenceState
}

// Normalize returns the rule with its code normalized and competence defaulted.
func (r Rule) Normalize() Rule {
	r.Code = NormalizeCode(r.Code)
	r.Description = strings.TrimSpace(r.Description)
	r.Question = strings.TrimSpace(r.Question)
	if r.Competence == "" {
		r.Competence = CompetenceMunicipal
	}
	return r
}

// Validate checks the rule invariants. Call on a normalized rule.
func (r Rule) Validate() error {
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "rule code must contain digits")
	}
	if !r.Risk.IsAssignable() {
		return dErrors.New(dErrors.CodeValidation, "rule risk must be BAIXO, MÉDIO, ALTO or CONDICIONADO")
	}
	if r.Competence != CompetenceMunicipal && r.Competence != CompetenceState {
		return dErrors.New(dErrors.CodeValidation, "rule competence must be MUNICÍPIO or ESTADO")
	}
	if r.RiskIfYes != "" && !r.RiskIfYes.IsAssignable() {
		return dErrors.New(dErrors.CodeValidation, "riskIfYes must be an assignable risk level")
	}
	if r.RiskIfNo != "" && !r.RiskIfNo.IsAssignable() {
		return dErrors.New(dErrors.CodeValidation, "riskIfNo must be an assignable risk level")
	}
	return nil
}

// AnswerMap maps a normalized activity code to the tier chosen for its
// conditional question. Callers own and persist it; the engine only reads it.
type AnswerMap map[string]RiskLevel

// Lookup finds the answer for a code. Empty or non-assignable tiers count as unanswered.
func (a AnswerMap) Lookup(code string) (RiskLevel, bool) {
	if a == nil {
		return "", false
	}
	tier, ok := a[NormalizeCode(code)]
	if !ok || !tier.IsAssignable() {
		return "", false
	}
	return tier, true
}

// With returns a copy of the map with code answered as tier.
// A previous answer for the same code is replaced.
func (a AnswerMap) With(code string, tier RiskLevel) AnswerMap {
	out := make(AnswerMap, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	out[NormalizeCode(code)] = tier
	return out
}

// CodeDetail is the per-code outcome of a single analysis.
type CodeDetail struct {
	Code        string    `json:"code"`
	Risk        RiskLevel `json:"risk"`
	SourceRule  *Rule     `json:"sourceRule,omitempty"`
	Resolved    bool      `json:"resolved"`
	IsFallback  bool      `json:"isFallback"`
	Description string    `json:"description"`
}

// PendingTypeCondition tags an unanswered conditional.
const PendingTypeCondition = "CONDITION"

// PendingResolution is a conditional question still waiting for a yes/no answer.
type PendingResolution struct {
	Code        string `json:"cnae"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Question    string `json:"question"`
	Rule        Rule   `json:"rule"`
}

// Override records a manual reassignment of the verdict.
// OriginalRisk always points at the machine-computed tier.
type Override struct {
	OriginalRisk RiskLevel `json:"originalRisk"`
	ManualRisk   RiskLevel `json:"manualRisk"`
	Reason       string    `json:"reason"`
}

// Result is the verdict of one analysis. It is a snapshot: later rule-table
// changes never affect it, and overrides produce a new Result.
type Result struct {
	RiskLevel          RiskLevel           `json:"riskLevel"`
	Competence         Competence          `json:"competence"`
	RequiresPba        bool                `json:"requiresPba"`
	CodeDetails        []CodeDetail        `json:"cnaeDetails"`
	PendingResolutions []PendingResolution `json:"pendingResolutions"`
	Override           *Override           `json:"override,omitempty"`
	Observation        string              `json:"observation,omitempty"`
}

func (r *Result) IsPending() bool {
	return r.RiskLevel == RiskPending || len(r.PendingResolutions) > 0
}

// HasFallback reports whether any code was classified by analogy.
func (r *Result) HasFallback() bool {
	for _, d := range r.CodeDetails {
		if d.IsFallback {
			return true
		}
	}
	return false
}

// ComputedRisk is the tier the engine produced, ignoring any override.
func (r *Result) ComputedRisk() RiskLevel {
	if r.Override != nil {
		return r.Override.OriginalRisk
	}
	return r.RiskLevel
}

// FallbackCodes lists the codes that used the analogy fallback, in input order.
func (r *Result) FallbackCodes() []string {
	var codes []string
	for _, d := range r.CodeDetails {
		if d.IsFallback {
			codes = append(codes, d.Code)
		}
	}
	return codes
}

// Clone returns a deep copy.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.CodeDetails = make([]CodeDetail, len(r.CodeDetails))
	for i, d := range r.CodeDetails {
		if d.SourceRule != nil {
			rule := *d.SourceRule
			d.SourceRule = &rule
		}
		out.CodeDetails[i] = d
	}
	out.PendingResolutions = append([]PendingResolution{}, r.PendingResolutions...)
	if r.Override != nil {
		o := *r.Override
		out.Override = &o
	}
	return &out
}
