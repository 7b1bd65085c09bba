// Package report renders analyses as spreadsheet-friendly CSV: semicolon
// separated with a UTF-8 byte order mark so Excel opens accents correctly.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
)

// ContentType is the media type of every report.
const ContentType = "text/csv; charset=utf-8"

const bom = "\uFEFF"

const noDescription = "Descrição não disponível"

func newWriter(w io.Writer) (*csv.Writer, error) {
	if _, err := io.WriteString(w, bom); err != nil {
		return nil, fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return cw, nil
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

var analysisHeader = []string{
	"Razão Social", "CNPJ", "Classificação Geral", "Competência", "CNAE",
	"Descrição da Atividade", "Risco Individual", "PBA Necessário", "Observações",
}

// WriteAnalysis writes one row per activity code of the process analysis.
func WriteAnalysis(w io.Writer, p *process.Process) error {
	if p == nil || p.Analysis == nil {
		return fmt.Errorf("process has no analysis")
	}
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write(analysisHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var legalName string
	if p.Company != nil {
		legalName = p.Company.LegalName
	}
	res := p.Analysis
	for _, d := range res.CodeDetails {
		row := []string{
			legalName,
			p.ID.Format(),
			string(res.RiskLevel),
			string(res.Competence),
			d.Code,
			describe(p.Company, d),
			string(d.Risk),
			yesNo(d.SourceRule != nil && d.SourceRule.RequiresPba),
			p.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", d.Code, err)
		}
	}
	return flush(cw)
}

// BatchEntry is one successfully analyzed entity of a batch.
type BatchEntry struct {
	Company *registry.Company
	Result  *risk.Result
}

// WriteBatch writes one row per entity with its main and secondary activities
// spread over columns. Entries without company or result are skipped.
func WriteBatch(w io.Writer, entries []BatchEntry) error {
	maxSecondary := 0
	for _, e := range entries {
		if e.Company != nil && len(e.Company.SecondaryActivities) > maxSecondary {
			maxSecondary = len(e.Company.SecondaryActivities)
		}
	}

	header := []string{
		"CNPJ", "Razão Social", "Nome Fantasia", "Situação", "Risco Calculado",
		"Competência", "CNAE Principal (Código)", "CNAE Principal (Descrição)",
	}
	for i := 1; i <= maxSecondary; i++ {
		n := strconv.Itoa(i)
		header = append(header, "CNAE Secundário "+n+" (Código)", "CNAE Secundário "+n+" (Descrição)")
	}

	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		if e.Company == nil || e.Result == nil {
			continue
		}
		c := e.Company
		row := make([]string, 0, len(header))
		row = append(row,
			c.CNPJ,
			c.LegalName,
			c.TradeName,
			c.Status,
			string(e.Result.RiskLevel),
			string(e.Result.Competence),
			c.MainActivity.Code,
			c.MainActivity.Description,
		)
		for i := range maxSecondary {
			if i < len(c.SecondaryActivities) {
				row = append(row, c.SecondaryActivities[i].Code, c.SecondaryActivities[i].Description)
			} else {
				row = append(row, "", "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", c.CNPJ, err)
		}
	}
	return flush(cw)
}

// MissingCode is an activity code with no rule, with the first process it
// was seen in.
type MissingCode struct {
	Code        string          `json:"cnae"`
	Description string          `json:"description"`
	FoundIn     domain.EntityID `json:"foundIn"`
	LegalName   string          `json:"legalName"`
}

// MissingCodes collects the codes classified by fallback across processes,
// once each, in the order they are first met.
func MissingCodes(processes []*process.Process) []MissingCode {
	seen := make(map[string]struct{})
	var out []MissingCode
	for _, p := range processes {
		if p == nil || p.Analysis == nil || !p.Analysis.HasFallback() {
			continue
		}
		for _, d := range p.Analysis.CodeDetails {
			if !d.IsFallback {
				continue
			}
			if _, ok := seen[d.Code]; ok {
				continue
			}
			seen[d.Code] = struct{}{}
			m := MissingCode{Code: d.Code, FoundIn: p.ID}
			if p.Company != nil {
				m.LegalName = p.Company.LegalName
				m.Description, _ = p.Company.Describe(d.Code)
			}
			out = append(out, m)
		}
	}
	return out
}

// WriteMissingCodes writes the codes the rule catalogue should cover.
func WriteMissingCodes(w io.Writer, missing []MissingCode) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write([]string{"CNAE", "Descrição (ReceitaWS)", "Encontrado no CNPJ", "Razão Social"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range missing {
		if err := cw.Write([]string{m.Code, m.Description, m.FoundIn.Format(), m.LegalName}); err != nil {
			return fmt.Errorf("write row %s: %w", m.Code, err)
		}
	}
	return flush(cw)
}

func describe(c *registry.Company, d risk.CodeDetail) string {
	if desc, ok := c.Describe(d.Code); ok && desc != "" {
		return desc
	}
	if d.SourceRule != nil && d.SourceRule.Description != "" {
		return d.SourceRule.Description
	}
	if d.Description != "" {
		return d.Description
	}
	return noDescription
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
