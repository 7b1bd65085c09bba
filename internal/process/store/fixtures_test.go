package store

import (
	"time"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
)

var baseTime = time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

func sampleProcess(id string, at time.Time) *process.Process {
	return &process.Process{
		ID: domain.EntityID(id),
		Company: &registry.Company{
			CNPJ:         id,
			LegalName:    "Padaria Estrela LTDA",
			MainActivity: registry.Activity{Code: "10.91-1/02", Description: "Padaria"},
			SecondaryActivities: []registry.Activity{
				{Code: "47.21-1/02", Description: "Comércio varejista de doces"},
			},
		},
		Analysis: &risk.Result{
			RiskLevel:  risk.RiskMedium,
			Competence: risk.CompetenceMunicipal,
			CodeDetails: []risk.CodeDetail{
				{Code: "1091102", Risk: risk.RiskMedium, Resolved: true},
			},
			PendingResolutions: []risk.PendingResolution{},
		},
		Answers:   risk.AnswerMap{"5620101": risk.RiskHigh},
		Notes:     "vistoria agendada",
		License:   process.License{Status: process.LicenseActive, Number: "LS-2024-001", IssueDate: "2024-01-05"},
		UpdatedAt: at,
	}
}
