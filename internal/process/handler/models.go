package handler

import (
	"strings"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process/service"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
)

const (
	maxNotesLength  = 4000
	maxLegacyRows   = 20000
	maxPartyNameLen = 200
)

type AnalyzeRequest struct {
	Answers map[string]string `json:"answers,omitempty"`

	answers risk.AnswerMap
}

func (r *AnalyzeRequest) Validate() error {
	answers, err := risk.ParseAnswers(r.Answers)
	if err != nil {
		return err
	}
	r.answers = answers
	return nil
}

// AnswerRequest answers the conditional question of one activity code.
type AnswerRequest struct {
	Code string `json:"cnae"`
	Yes  *bool  `json:"yes"`
}

func (r *AnswerRequest) Validate() error {
	r.Code = risk.NormalizeCode(r.Code)
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "cnae is required")
	}
	if r.Yes == nil {
		return dErrors.New(dErrors.CodeValidation, "yes must be true or false")
	}
	return nil
}

type OverrideRequest struct {
	RiskLevel string `json:"risk_level"`
	Reason    string `json:"reason"`

	tier risk.RiskLevel
}

func (r *OverrideRequest) Validate() error {
	tier, err := risk.ParseRiskLevel(r.RiskLevel)
	if err != nil {
		return err
	}
	r.tier = tier
	return nil
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

func (r *NotesRequest) Validate() error {
	if len(r.Notes) > maxNotesLength {
		return dErrors.New(dErrors.CodeValidation, "notes are too long")
	}
	return nil
}

type LicenseRequest struct {
	Status                  string `json:"licenseStatus"`
	Number                  string `json:"licenseNumber"`
	IssueDate               string `json:"licenseIssueDate"`
	ExpiryDate              string `json:"licenseExpiryDate"`
	LegalRepresentative     string `json:"legalRepresentative"`
	TechnicalRepresentative string `json:"technicalRepresentative"`

	update service.LicenseUpdate
}

func (r *LicenseRequest) Validate() error {
	status, err := process.ParseLicenseStatus(r.Status)
	if err != nil {
		return err
	}
	if len(r.LegalRepresentative) > maxPartyNameLen || len(r.TechnicalRepresentative) > maxPartyNameLen {
		return dErrors.New(dErrors.CodeValidation, "representative name is too long")
	}
	r.update = service.LicenseUpdate{
		License: process.License{
			Status:     status,
			Number:     strings.TrimSpace(r.Number),
			IssueDate:  strings.TrimSpace(r.IssueDate),
			ExpiryDate: strings.TrimSpace(r.ExpiryDate),
		},
		LegalRepresentative:     r.LegalRepresentative,
		TechnicalRepresentative: r.TechnicalRepresentative,
	}
	return r.update.License.Validate()
}

type ImportLegacyRequest struct {
	Rows []process.LegacyRow `json:"rows"`
}

func (r *ImportLegacyRequest) Validate() error {
	if len(r.Rows) == 0 {
		return dErrors.New(dErrors.CodeValidation, "rows are required")
	}
	if len(r.Rows) > maxLegacyRows {
		return dErrors.New(dErrors.CodeValidation, "too many rows")
	}
	return nil
}

type ProcessListResponse struct {
	Processes []*process.Process `json:"processes"`
	Count     int                `json:"count"`
}

type ImportLegacyResponse struct {
	Imported int `json:"imported"`
}
