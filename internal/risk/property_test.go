//go:build property

package risk

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var assignable = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskConditional}

func genCode() gopter.Gen {
	return gen.IntRange(1000000, 9999999).Map(func(n int) string {
		return strconv.Itoa(n)
	})
}

// TestNormalizeIdempotent verifies NormalizeCode(NormalizeCode(x)) == NormalizeCode(x).
func TestNormalizeIdempotent(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("normalization is idempotent", prop.ForAll(
		func(s string) bool {
			once := NormalizeCode(s)
			return NormalizeCode(once) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestUnknownCodesFallBack verifies every code without rule or answer is MÉDIO by analogy.
func TestUnknownCodesFallBack(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("fallback is MÉDIO and flagged", prop.ForAll(
		func(code string) bool {
			result := NewEngine(ruleMap{}).Analyze([]string{code}, nil)
			return result.RiskLevel == RiskMedium &&
				len(result.CodeDetails) == 1 &&
				result.CodeDetails[0].IsFallback
		},
		genCode(),
	))

	properties.TestingRun(t)
}

// TestRuleTierIsKept verifies non-conditional rules resolve to their own tier.
func TestRuleTierIsKept(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("resolved tier equals rule tier", prop.ForAll(
		func(code string, idx int) bool {
			tier := []RiskLevel{RiskLow, RiskMedium, RiskHigh}[idx]
			rules := ruleMap{code: {Code: code, Risk: tier, Competence: CompetenceMunicipal}}
			result := NewEngine(rules).Analyze([]string{code}, nil)
			return result.CodeDetails[0].Risk == tier && result.RiskLevel == tier
		},
		genCode(),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}

// TestUnansweredConditionalIsPending verifies a single unanswered conditional forces PENDENTE.
func TestUnansweredConditionalIsPending(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("verdict is pending regardless of other tiers", prop.ForAll(
		func(codes []string, tierIdx []int) bool {
			rules := ruleMap{"8610101": {Code: "8610101", Risk: RiskConditional}}
			for i, c := range codes {
				if c == "8610101" {
					continue
				}
				tier := RiskLow
				if i < len(tierIdx) {
					tier = []RiskLevel{RiskLow, RiskMedium, RiskHigh}[tierIdx[i]]
				}
				rules[c] = Rule{Code: c, Risk: tier, Competence: CompetenceMunicipal}
			}
			input := append(append([]string{}, codes...), "8610101")
			result := NewEngine(rules).Analyze(input, nil)
			return result.RiskLevel == RiskPending && len(result.PendingResolutions) == 1
		},
		gen.SliceOf(genCode()),
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}

// TestAnalyzeDeterministic verifies Analyze has no hidden state.
func TestAnalyzeDeterministic(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	engine := NewEngine(catalogue())

	properties.Property("same inputs give the same result", prop.ForAll(
		func(codes []string, answerIdx int) bool {
			answers := AnswerMap{"8610101": assignable[answerIdx]}
			return reflect.DeepEqual(engine.Analyze(codes, answers), engine.Analyze(codes, answers))
		},
		gen.SliceOf(gen.OneConstOf("4771700", "5611201", "8610101", "2121101", "9999999", "0000000", "")),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}

// TestOverrideChainKeepsOrigin verifies originalRisk survives any override chain.
func TestOverrideChainKeepsOrigin(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	final := []RiskLevel{RiskLow, RiskMedium, RiskHigh}

	properties.Property("originalRisk is the computed tier", prop.ForAll(
		func(chain []int) bool {
			base := NewEngine(catalogue()).Analyze([]string{"5611201"}, nil)
			current := base
			for _, idx := range chain {
				next, err := ApplyOverride(current, final[idx], "revisão")
				if err != nil {
					return false
				}
				current = next
			}
			if len(chain) == 0 {
				return current.Override == nil
			}
			return current.Override.OriginalRisk == RiskMedium &&
				current.RiskLevel == final[chain[len(chain)-1]]
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}
