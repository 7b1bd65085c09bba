// Package process holds the licensing process record: the analysis of one
// entity plus the answers, overrides and license data collected around it.
package process

import (
	"context"
	"strings"
	"time"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
)

// DateLayout is the calendar format for license dates.
const DateLayout = "2006-01-02"

// LegacyNote is attached to every record imported from the legacy system.
const LegacyNote = "Registro importado do sistema legado. Requer análise completa."

// LicenseStatus is the state of the sanitary license.
type LicenseStatus string

const (
	LicenseActive    LicenseStatus = "Ativa"
	LicenseExpired   LicenseStatus = "Vencida"
	LicenseRenewing  LicenseStatus = "Em Renovação"
	LicenseSuspended LicenseStatus = "Suspensa"
	LicensePending   LicenseStatus = "Pendente"
)

// ParseLicenseStatus accepts the known statuses case-insensitively.
// An empty string means no status.
func ParseLicenseStatus(s string) (LicenseStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, st := range []LicenseStatus{LicenseActive, LicenseExpired, LicenseRenewing, LicenseSuspended, LicensePending} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown license status: "+s)
}

// License is the sanitary license data registered for a process.
type License struct {
	Status     LicenseStatus `json:"licenseStatus,omitempty"`
	Number     string        `json:"licenseNumber,omitempty"`
	IssueDate  string        `json:"licenseIssueDate,omitempty"`
	ExpiryDate string        `json:"licenseExpiryDate,omitempty"`
}

// Validate checks the dates and their order.
func (l License) Validate() error {
	var issued, expires time.Time
	var err error
	if l.IssueDate != "" {
		if issued, err = time.Parse(DateLayout, l.IssueDate); err != nil {
			return dErrors.New(dErrors.CodeValidation, "licenseIssueDate must be YYYY-MM-DD")
		}
	}
	if l.ExpiryDate != "" {
		if expires, err = time.Parse(DateLayout, l.ExpiryDate); err != nil {
			return dErrors.New(dErrors.CodeValidation, "licenseExpiryDate must be YYYY-MM-DD")
		}
	}
	if !issued.IsZero() && !expires.IsZero() && expires.Before(issued) {
		return dErrors.New(dErrors.CodeValidation, "license expires before it is issued")
	}
	return nil
}

// OverrideEntry is one manual reassignment in the process ledger.
type OverrideEntry struct {
	Override risk.Override `json:"override"`
	Actor    string        `json:"actor"`
	At       time.Time     `json:"at"`
}

// Process is the saved licensing record of one entity.
type Process struct {
	ID                      domain.EntityID   `json:"id"`
	Company                 *registry.Company `json:"company"`
	Analysis                *risk.Result      `json:"riskAnalysis"`
	Answers                 risk.AnswerMap    `json:"userAnswers,omitempty"`
	OverrideHistory         []OverrideEntry   `json:"overrideHistory,omitempty"`
	Notes                   string            `json:"notes,omitempty"`
	IsLegacy                bool              `json:"isLegacy,omitempty"`
	License                 License           `json:"license"`
	LegalRepresentative     string            `json:"legalRepresentative,omitempty"`
	TechnicalRepresentative string            `json:"technicalRepresentative,omitempty"`
	UpdatedAt               time.Time         `json:"timestamp"`
}

// Codes returns the activity codes the process is classified on.
func (p *Process) Codes() []string {
	return p.Company.Codes()
}

// Clone returns a deep copy so stores never share state with callers.
func (p *Process) Clone() *Process {
	if p == nil {
		return nil
	}
	out := *p
	if p.Company != nil {
		c := *p.Company
		c.SecondaryActivities = append([]registry.Activity(nil), p.Company.SecondaryActivities...)
		out.Company = &c
	}
	out.Analysis = p.Analysis.Clone()
	if p.Answers != nil {
		out.Answers = make(risk.AnswerMap, len(p.Answers))
		for k, v := range p.Answers {
			out.Answers[k] = v
		}
	}
	out.OverrideHistory = append([]OverrideEntry(nil), p.OverrideHistory...)
	return &out
}

// LegacyRow is one record exported by the legacy licensing system.
type LegacyRow struct {
	Document  string `json:"cnpj"`
	LegalName string `json:"razao_social"`
}

// PlaceholderAnalysis is the verdict given to imported records until they
// are analyzed for real.
func PlaceholderAnalysis() *risk.Result {
	return &risk.Result{
		RiskLevel:          risk.RiskPending,
		Competence:         risk.CompetenceManual,
		CodeDetails:        []risk.CodeDetail{},
		PendingResolutions: []risk.PendingResolution{},
	}
}

// FromLegacy builds an imported record. Rows whose document is not a valid
// CPF or CNPJ are reported with ok=false.
func FromLegacy(row LegacyRow, at time.Time) (*Process, bool) {
	id, err := domain.ParseEntityID(risk.NormalizeCode(row.Document))
	if err != nil {
		return nil, false
	}
	return &Process{
		ID: id,
		Company: &registry.Company{
			CNPJ:      id.String(),
			LegalName: strings.TrimSpace(row.LegalName),
		},
		Analysis:  PlaceholderAnalysis(),
		Notes:     LegacyNote,
		IsLegacy:  true,
		License:   License{Status: LicensePending},
		UpdatedAt: at,
	}, true
}

// Store persists process records keyed by entity id.
//
// Get and Delete return sentinel.ErrNotFound for unknown ids. List returns
// records newest first.
type Store interface {
	Save(ctx context.Context, p *Process) error
	Get(ctx context.Context, id domain.EntityID) (*Process, error)
	List(ctx context.Context) ([]*Process, error)
	Delete(ctx context.Context, id domain.EntityID) error
	Count(ctx context.Context) (int, error)
}
