package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for risk classification.
type Metrics struct {
	// Final verdicts by tier and competence
	Verdicts *prometheus.CounterVec

	// Codes classified by analogy because no rule matched
	FallbackCodes prometheus.Counter

	// Analyses that stopped at PENDENTE DE ANÁLISE
	PendingAnalyses prometheus.Counter

	// Analyses that ran while the rule table was not ready
	DegradedAnalyses prometheus.Counter

	// Manual overrides by manual tier
	Overrides *prometheus.CounterVec

	// Rule administration operations by kind and outcome
	RuleWrites *prometheus.CounterVec

	RuleCount prometheus.Gauge
	RuleState *prometheus.GaugeVec

	AnalyzeLatency prometheus.Histogram
}

var ruleStates = []string{"uninitialized", "loading", "ready", "failed"}

// NewWith registers the risk metrics on reg. Tests pass a fresh registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vigisan_risk_verdicts_total",
			Help: "Total risk verdicts by tier and licensing competence",
		}, []string{"risk", "competence"}),

		FallbackCodes: f.NewCounter(prometheus.CounterOpts{
			Name: "vigisan_risk_fallback_codes_total",
			Help: "Activity codes classified by analogy (no matching rule)",
		}),

		PendingAnalyses: f.NewCounter(prometheus.CounterOpts{
			Name: "vigisan_risk_pending_analyses_total",
			Help: "Analyses left pending on conditional questions",
		}),

		DegradedAnalyses: f.NewCounter(prometheus.CounterOpts{
			Name: "vigisan_risk_degraded_analyses_total",
			Help: "Analyses performed while the rule table was not ready",
		}),

		Overrides: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vigisan_risk_overrides_total",
			Help: "Manual risk overrides by manual tier",
		}, []string{"risk"}),

		RuleWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vigisan_rule_writes_total",
			Help: "Rule administration writes by operation and outcome",
		}, []string{"op", "outcome"}), // op: "upsert", "delete"; outcome: "ok", "error"

		RuleCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "vigisan_rule_table_size",
			Help: "Number of rules currently indexed",
		}),

		RuleState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vigisan_rule_table_state",
			Help: "1 for the current rule table state, 0 otherwise",
		}, []string{"state"}),

		AnalyzeLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigisan_risk_analyze_duration_seconds",
			Help:    "Duration of risk analysis including the rule table wait",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

func (m *Metrics) IncrementVerdict(risk, competence string) {
	if m != nil {
		m.Verdicts.WithLabelValues(risk, competence).Inc()
	}
}

func (m *Metrics) AddFallbackCodes(n int) {
	if m != nil && n > 0 {
		m.FallbackCodes.Add(float64(n))
	}
}

func (m *Metrics) IncrementPending() {
	if m != nil {
		m.PendingAnalyses.Inc()
	}
}

func (m *Metrics) IncrementDegraded() {
	if m != nil {
		m.DegradedAnalyses.Inc()
	}
}

func (m *Metrics) IncrementOverride(risk string) {
	if m != nil {
		m.Overrides.WithLabelValues(risk).Inc()
	}
}

// IncrementRuleWrite records an admin write; err decides the outcome label.
func (m *Metrics) IncrementRuleWrite(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.RuleWrites.WithLabelValues(op, outcome).Inc()
}

// SetRuleTable publishes the table size and sets exactly one state gauge to 1.
func (m *Metrics) SetRuleTable(state string, count int) {
	if m == nil {
		return
	}
	m.RuleCount.Set(float64(count))
	for _, s := range ruleStates {
		v := 0.0
		if s == state {
			v = 1
		}
		m.RuleState.WithLabelValues(s).Set(v)
	}
}

func (m *Metrics) ObserveAnalyzeLatency(d time.Duration) {
	if m != nil {
		m.AnalyzeLatency.Observe(d.Seconds())
	}
}
