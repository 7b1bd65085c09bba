package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
)

func TestFromLegacy(t *testing.T) {
	at := time.Date(2024, 4, 18, 10, 0, 0, 0, time.UTC)

	t.Run("punctuated document", func(t *testing.T) {
		p, ok := FromLegacy(LegacyRow{Document: " 11.222.333/0001-81 ", LegalName: "  Padaria Estrela "}, at)

		require.True(t, ok)
		assert.Equal(t, domain.EntityID("11222333000181"), p.ID)
		assert.Equal(t, "Padaria Estrela", p.Company.LegalName)
		assert.True(t, p.IsLegacy)
		assert.Equal(t, risk.RiskPending, p.Analysis.RiskLevel)
		assert.Equal(t, LicensePending, p.License.Status)
		assert.Equal(t, at, p.UpdatedAt)
	})

	t.Run("invalid document is skipped", func(t *testing.T) {
		for _, doc := range []string{"", "sem documento", "123.456", "000.000.000-00"} {
			_, ok := FromLegacy(LegacyRow{Document: doc}, at)
			assert.False(t, ok, doc)
		}
	})
}
