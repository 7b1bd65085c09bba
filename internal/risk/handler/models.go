package handler

import (
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
)

// maxCodesPerAnalysis bounds one request; companies rarely list more than a few dozen.
const maxCodesPerAnalysis = 200

type AnalyzeRequest struct {
	Codes   []string          `json:"codes"`
	Answers map[string]string `json:"answers,omitempty"`

	answers risk.AnswerMap
}

func (r *AnalyzeRequest) Validate() error {
	if len(r.Codes) > maxCodesPerAnalysis {
		return dErrors.New(dErrors.CodeValidation, "too many activity codes")
	}
	answers, err := risk.ParseAnswers(r.Answers)
	if err != nil {
		return err
	}
	r.answers = answers
	return nil
}

type OverrideRequest struct {
	Subject   string       `json:"subject,omitempty"`
	Result    *risk.Result `json:"result"`
	RiskLevel string       `json:"risk_level"`
	Reason    string       `json:"reason"`

	tier risk.RiskLevel
}

func (r *OverrideRequest) Validate() error {
	if r.Result == nil {
		return dErrors.New(dErrors.CodeValidation, "result is required")
	}
	tier, err := risk.ParseRiskLevel(r.RiskLevel)
	if err != nil {
		return err
	}
	r.tier = tier
	return nil
}

// RuleRequest is the body of PUT /rules/{code}. The path code wins over any
// code in the body.
type RuleRequest struct {
	Description string `json:"description"`
	Risk        string `json:"risk"`
	Competence  string `json:"competencePorte1"`
	RequiresPba bool   `json:"requiresPba"`
	Question    string `json:"question,omitempty"`
	RiskIfYes   string `json:"riskIfYes,omitempty"`
	RiskIfNo    string `json:"riskIfNo,omitempty"`

	rule risk.Rule
}

func (r *RuleRequest) Validate() error {
	tier, err := risk.ParseRiskLevel(r.Risk)
	if err != nil {
		return err
	}
	competence, err := risk.ParseCompetence(r.Competence)
	if err != nil {
		return err
	}
	rule := risk.Rule{
		Description: r.Description,
		Risk:        tier,
		Competence:  competence,
		RequiresPba: r.RequiresPba,
		Question:    r.Question,
	}
	if r.RiskIfYes != "" {
		if rule.RiskIfYes, err = risk.ParseRiskLevel(r.RiskIfYes); err != nil {
			return err
		}
	}
	if r.RiskIfNo != "" {
		if rule.RiskIfNo, err = risk.ParseRiskLevel(r.RiskIfNo); err != nil {
			return err
		}
	}
	r.rule = rule
	return nil
}

type RuleListResponse struct {
	Rules []risk.Rule `json:"rules"`
	Count int         `json:"count"`
}

type DeleteRuleResponse struct {
	Code    string `json:"cnae"`
	Removed bool   `json:"removed"`
}
