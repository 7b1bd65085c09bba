package risk

import dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"

// DefaultConditionalQuestion is asked when a CONDICIONADO rule defines none.
const DefaultConditionalQuestion = "Esta atividade possui condições específicas. O risco é Alto?"

// QuestionText returns the yes/no question for a conditional rule.
func (r Rule) QuestionText() string {
	if r.Question != "" {
		return r.Question
	}
	return DefaultConditionalQuestion
}

// Resolve translates a yes/no answer into the rule's tier (ALTO/BAIXO by default).
func (r Rule) Resolve(yes bool) RiskLevel {
	if yes {
		if r.RiskIfYes != "" {
			return r.RiskIfYes
		}
		return RiskHigh
	}
	if r.RiskIfNo != "" {
		return r.RiskIfNo
	}
	return RiskLow
}

// Answer moves a conditional from unanswered to answered: it returns a new
// AnswerMap with the rule's code mapped to the tier chosen by yes. Answering
// again overwrites; there is no retraction.
func Answer(answers AnswerMap, rule Rule, yes bool) AnswerMap {
	return answers.With(rule.Code, rule.Resolve(yes))
}

// ParseAnswers reads answers as operators type them: codes in any
// punctuation and tiers in any accepted spelling. Only assignable tiers are
// valid answers.
func ParseAnswers(raw map[string]string) (AnswerMap, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	answers := make(AnswerMap, len(raw))
	for code, tier := range raw {
		level, err := ParseRiskLevel(tier)
		if err != nil {
			return nil, err
		}
		if !level.IsAssignable() {
			return nil, dErrors.New(dErrors.CodeValidation, "answer for "+code+" must be BAIXO, MÉDIO, ALTO or CONDICIONADO")
		}
		answers[NormalizeCode(code)] = level
	}
	return answers, nil
}
