package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
)

func readCSV(t *testing.T, raw []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(raw, []byte(bom)), "missing byte order mark")
	r := csv.NewReader(bytes.NewReader(raw[len(bom):]))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func bakery() *process.Process {
	return &process.Process{
		ID: "11222333000181",
		Company: &registry.Company{
			CNPJ:         "11222333000181",
			LegalName:    `Padaria "Estrela"; Filial`,
			MainActivity: registry.Activity{Code: "10.91-1/02", Description: "Fabricação de produtos de padaria"},
			SecondaryActivities: []registry.Activity{
				{Code: "99.99-9/99", Description: "Atividade inexistente"},
			},
		},
		Analysis: &risk.Result{
			RiskLevel:  risk.RiskHigh,
			Competence: risk.CompetenceState,
			CodeDetails: []risk.CodeDetail{
				{Code: "1091102", Risk: risk.RiskMedium, SourceRule: &risk.Rule{Code: "1091102", RequiresPba: true}},
				{Code: "9999999", Risk: risk.RiskHigh, IsFallback: true},
			},
		},
		Notes: "vistoria em 10/05",
	}
}

func TestWriteAnalysis(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, bakery()))

	records := readCSV(t, buf.Bytes())

	require.Len(t, records, 3)
	assert.Equal(t, analysisHeader, records[0])
	assert.Equal(t, []string{
		`Padaria "Estrela"; Filial`, "11.222.333/0001-81", "ALTO", "ESTADO", "1091102",
		"Fabricação de produtos de padaria", "MÉDIO", "Sim", "vistoria em 10/05",
	}, records[1])
	assert.Equal(t, "Atividade inexistente", records[2][5])
	assert.Equal(t, "Não", records[2][7])
}

func TestWriteAnalysisWithoutResult(t *testing.T) {
	p := bakery()
	p.Analysis = nil

	assert.Error(t, WriteAnalysis(&bytes.Buffer{}, p))
}

func TestWriteAnalysisFallsBackToRuleDescription(t *testing.T) {
	p := bakery()
	p.Company = nil
	p.Analysis.CodeDetails = []risk.CodeDetail{
		{Code: "4771701", Risk: risk.RiskHigh, SourceRule: &risk.Rule{Description: "Farmácia"}},
		{Code: "4771702", Risk: risk.RiskHigh},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, p))

	records := readCSV(t, buf.Bytes())

	assert.Equal(t, "Farmácia", records[1][5])
	assert.Equal(t, noDescription, records[2][5])
	assert.Equal(t, "", records[1][0])
}

func TestWriteBatch(t *testing.T) {
	wide := bakery().Company
	wide.SecondaryActivities = append(wide.SecondaryActivities, registry.Activity{Code: "47.21-1/02", Description: "Doces"})
	narrow := &registry.Company{CNPJ: "44555666000199", LegalName: "Mercearia", MainActivity: registry.Activity{Code: "47.12-1/00"}}

	var buf bytes.Buffer
	require.NoError(t, WriteBatch(&buf, []BatchEntry{
		{Company: wide, Result: &risk.Result{RiskLevel: risk.RiskHigh, Competence: risk.CompetenceState}},
		{Company: nil, Result: &risk.Result{RiskLevel: risk.RiskLow}},
		{Company: narrow, Result: &risk.Result{RiskLevel: risk.RiskLow, Competence: risk.CompetenceMunicipal}},
	}))

	records := readCSV(t, buf.Bytes())

	require.Len(t, records, 3)
	assert.Len(t, records[0], 12)
	assert.Equal(t, "CNAE Secundário 2 (Descrição)", records[0][11])
	assert.Equal(t, "Doces", records[1][11])
	assert.Len(t, records[2], 12)
	assert.Equal(t, "BAIXO", records[2][4])
	assert.Equal(t, "", records[2][8])
}

func TestMissingCodes(t *testing.T) {
	first := bakery()
	second := bakery()
	second.ID = "44555666000199"
	second.Company.LegalName = "Outra"
	second.Analysis.CodeDetails = append(second.Analysis.CodeDetails, risk.CodeDetail{Code: "8888888", IsFallback: true})

	missing := MissingCodes([]*process.Process{first, nil, second, {ID: "12345678909"}})

	require.Len(t, missing, 2)
	assert.Equal(t, MissingCode{
		Code: "9999999", Description: "Atividade inexistente",
		FoundIn: "11222333000181", LegalName: `Padaria "Estrela"; Filial`,
	}, missing[0])
	assert.Equal(t, "8888888", missing[1].Code)
	assert.Equal(t, "Outra", missing[1].LegalName)
}

func TestWriteMissingCodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMissingCodes(&buf, MissingCodes([]*process.Process{bakery()})))

	assert.True(t, strings.Contains(buf.String(), "\"Padaria \"\"Estrela\"\"; Filial\""))
	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 2)
	assert.Equal(t, []string{"9999999", "Atividade inexistente", "11.222.333/0001-81", `Padaria "Estrela"; Filial`}, records[1])
}
