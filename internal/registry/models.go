// Package registry looks companies up in the public CNPJ registry (ReceitaWS)
// to obtain the activity codes a licensing analysis starts from.
package registry

import (
	"context"
	"time"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
)

// Activity is one CNAE registered for a company.
type Activity struct {
	Code        string `json:"codigo"`
	Description string `json:"descricao"`
}

// Company is the subset of the registry record the licensing workflow uses.
type Company struct {
	CNPJ                string     `json:"cnpj"`
	LegalName           string     `json:"razao_social"`
	TradeName           string     `json:"nome_fantasia"`
	Status              string     `json:"descricao_situacao_cadastral"`
	Municipality        string     `json:"municipio"`
	State               string     `json:"uf"`
	Street              string     `json:"logradouro"`
	Number              string     `json:"numero"`
	District            string     `json:"bairro"`
	MainActivity        Activity   `json:"cnae_fiscal"`
	SecondaryActivities []Activity `json:"cnaes_secundarios"`
	FetchedAt           time.Time  `json:"fetchedAt"`
}

// Codes returns the activity codes to classify: the main activity first,
// then secondaries in registry order. Empty codes are skipped.
func (c *Company) Codes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, 1+len(c.SecondaryActivities))
	if c.MainActivity.Code != "" {
		codes = append(codes, c.MainActivity.Code)
	}
	for _, a := range c.SecondaryActivities {
		if a.Code != "" {
			codes = append(codes, a.Code)
		}
	}
	return codes
}

// Describe returns the registry description of code, if the company lists it.
func (c *Company) Describe(code string) (string, bool) {
	if c == nil {
		return "", false
	}
	code = risk.NormalizeCode(code)
	if risk.NormalizeCode(c.MainActivity.Code) == code {
		return c.MainActivity.Description, true
	}
	for _, a := range c.SecondaryActivities {
		if risk.NormalizeCode(a.Code) == code {
			return a.Description, true
		}
	}
	return "", false
}

//go:generate mockgen -source=models.go -destination=mocks/mocks.go -package=mocks Fetcher

// Fetcher looks up a company by CNPJ.
type Fetcher interface {
	FetchCompany(ctx context.Context, id domain.EntityID) (*Company, error)
}

// Health is the result of probing the registry.
type Health struct {
	OK        bool      `json:"ok"`
	Message   string    `json:"message"`
	CheckedAt time.Time `json:"checked_at"`
	Breaker   string    `json:"breaker"`
}
