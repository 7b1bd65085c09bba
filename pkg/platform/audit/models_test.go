package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventRiskOverridden.Category())
	assert.Equal(t, CategoryCompliance, EventRuleDeleted.Category())
	assert.Equal(t, CategoryOperations, EventRiskAnalyzed.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_else").Category())
}

func TestComplianceEventToEvent(t *testing.T) {
	ts := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	e := ComplianceEvent{
		Timestamp: ts,
		Subject:   "11222333000181",
		Action:    EventRiskOverridden,
		Decision:  "BAIXO",
		Previous:  "MÉDIO",
		Reason:    "vistoria in loco",
		RequestID: "req-9",
		ActorID:   "fiscal.ana",
	}

	got := e.ToEvent()

	assert.Equal(t, CategoryCompliance, got.Category)
	assert.Equal(t, "risk_overridden", got.Action)
	assert.Equal(t, "MÉDIO", got.Previous)
	assert.Equal(t, "fiscal.ana", got.ActorID)
	assert.Equal(t, ts, got.Timestamp)
}
