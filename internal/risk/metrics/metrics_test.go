package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementVerdict("ALTO", "ESTADO")
		m.AddFallbackCodes(2)
		m.IncrementPending()
		m.IncrementDegraded()
		m.IncrementOverride("BAIXO")
		m.IncrementRuleWrite("upsert", nil)
		m.SetRuleTable("ready", 10)
		m.ObserveAnalyzeLatency(0)
	})
}

func TestMetricsRecord(t *testing.T) {
	m := NewWith(prometheus.NewRegistry())

	m.IncrementVerdict("ALTO", "ESTADO")
	m.IncrementVerdict("ALTO", "ESTADO")
	m.AddFallbackCodes(3)
	m.AddFallbackCodes(0)
	m.IncrementRuleWrite("delete", errors.New("boom"))
	m.SetRuleTable("ready", 42)
	m.SetRuleTable("failed", 42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("ALTO", "ESTADO")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FallbackCodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RuleWrites.WithLabelValues("delete", "error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.RuleCount))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RuleState.WithLabelValues("ready")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RuleState.WithLabelValues("failed")))
}
