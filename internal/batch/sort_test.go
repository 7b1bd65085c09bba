package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
)

func items() []Item {
	return []Item{
		{ID: "44555666000199", Status: StatusSuccess, Company: &registry.Company{LegalName: "mercearia"}, Result: &risk.Result{RiskLevel: risk.RiskLow}},
		{ID: "11222333000181", Status: StatusSuccess, Company: &registry.Company{LegalName: "Padaria"}, Result: &risk.Result{RiskLevel: risk.RiskHigh}},
		{ID: "12345678909", Status: StatusError},
		{ID: "99888777000166", Status: StatusSuccess, Company: &registry.Company{LegalName: "Açougue"}, Result: &risk.Result{RiskLevel: risk.RiskConditional}},
	}
}

func ids(its []Item) []domain.EntityID {
	out := make([]domain.EntityID, len(its))
	for i, it := range its {
		out[i] = it.ID
	}
	return out
}

func TestSort(t *testing.T) {
	t.Run("by id", func(t *testing.T) {
		its := items()
		Sort(its, SortByID, false)
		assert.Equal(t, []domain.EntityID{"11222333000181", "12345678909", "44555666000199", "99888777000166"}, ids(its))
	})

	t.Run("by legal name is case-insensitive", func(t *testing.T) {
		its := items()
		Sort(its, SortByLegalName, false)
		assert.Equal(t, []domain.EntityID{"12345678909", "99888777000166", "44555666000199", "11222333000181"}, ids(its))
	})

	t.Run("by risk descending", func(t *testing.T) {
		its := items()
		Sort(its, SortByRisk, true)
		assert.Equal(t, []domain.EntityID{"11222333000181", "99888777000166", "44555666000199", "12345678909"}, ids(its))
	})

	t.Run("by status keeps ties stable", func(t *testing.T) {
		its := items()
		Sort(its, SortByStatus, false)
		assert.Equal(t, []domain.EntityID{"12345678909", "44555666000199", "11222333000181", "99888777000166"}, ids(its))
	})
}

func TestParseSortColumn(t *testing.T) {
	col, ok := ParseSortColumn(" RISK ")
	assert.True(t, ok)
	assert.Equal(t, SortByRisk, col)

	_, ok = ParseSortColumn("fantasia")
	assert.False(t, ok)
}
