// Package handler exposes licensing process records over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	jwttoken "github.com/Rafadormi/105-dirvigisan-perobal/internal/jwt_token"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process/service"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/report"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/httputil"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/auth"
	request "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/process-mocks.go -package=mocks Service

// Service defines the interface for process operations.
type Service interface {
	AnalyzeEntity(ctx context.Context, id domain.EntityID, answers risk.AnswerMap) (*service.Outcome, error)
	AnswerCondition(ctx context.Context, id domain.EntityID, code string, yes bool) (*service.Outcome, error)
	Override(ctx context.Context, id domain.EntityID, tier risk.RiskLevel, reason string) (*process.Process, error)
	UpdateNotes(ctx context.Context, id domain.EntityID, notes string) (*process.Process, error)
	UpdateLicense(ctx context.Context, id domain.EntityID, upd service.LicenseUpdate) (*process.Process, error)
	Get(ctx context.Context, id domain.EntityID) (*process.Process, error)
	List(ctx context.Context) ([]*process.Process, error)
	Delete(ctx context.Context, id domain.EntityID) error
	ImportLegacy(ctx context.Context, rows []process.LegacyRow) (int, error)
}

// Handler handles process record endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
}

func New(svc Service, logger *slog.Logger, jwtValidator auth.JWTValidator) *Handler {
	return &Handler{
		service:      svc,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register registers the process routes with the chi router. Every route
// needs an operator token; deletion and legacy import need a supervisor.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))

		r.Get("/processes", h.handleList)
		r.Get("/processes/{id}", h.handleGet)
		r.Get("/processes/{id}/report.csv", h.handleReport)
		r.Post("/processes/{id}/analyze", h.handleAnalyze)
		r.Post("/processes/{id}/answers", h.handleAnswer)
		r.Post("/processes/{id}/override", h.handleOverride)
		r.Put("/processes/{id}/notes", h.handleNotes)
		r.Put("/processes/{id}/license", h.handleLicense)
		r.Get("/reports/missing-codes", h.handleMissingCodes)
		r.Get("/reports/missing-codes.csv", h.handleMissingCodesCSV)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(jwttoken.RoleSupervisor, h.logger))
			r.Delete("/processes/{id}", h.handleDelete)
			r.Post("/processes/import-legacy", h.handleImportLegacy)
		})
	})
}

func (h *Handler) entityID(w http.ResponseWriter, r *http.Request) (domain.EntityID, bool) {
	id, err := domain.ParseEntityID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return id, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ps, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list processes",
			"request_id", request.GetRequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProcessListResponse{Processes: ps, Count: len(ps)})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="analise_risco_`+id.String()+`.csv"`)
	if err := report.WriteAnalysis(w, p); err != nil {
		h.logger.ErrorContext(ctx, "failed to render analysis report",
			"request_id", request.GetRequestID(ctx),
			"entity_id", id.String(),
			"error", err,
		)
	}
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}

	// An empty body analyzes without new answers.
	req := &AnalyzeRequest{}
	if r.ContentLength != 0 {
		if req, ok = httputil.DecodeAndPrepare[AnalyzeRequest](w, r, h.logger, ctx, requestID); !ok {
			return
		}
	}

	out, err := h.service.AnalyzeEntity(ctx, id, req.answers)
	if err != nil {
		h.logger.WarnContext(ctx, "entity analysis failed",
			"request_id", requestID,
			"entity_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AnswerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	out, err := h.service.AnswerCondition(ctx, id, req.Code, *req.Yes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[OverrideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.Override(ctx, id, req.tier, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "process override rejected",
			"request_id", requestID,
			"entity_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[NotesRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.UpdateNotes(ctx, id, req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleLicense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[LicenseRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.UpdateLicense(ctx, id, req.update)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleImportLegacy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[ImportLegacyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	n, err := h.service.ImportLegacy(ctx, req.Rows)
	if err != nil {
		h.logger.WarnContext(ctx, "legacy import rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ImportLegacyResponse{Imported: n})
}

func (h *Handler) handleMissingCodes(w http.ResponseWriter, r *http.Request) {
	ps, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	missing := report.MissingCodes(ps)
	if missing == nil {
		missing = []report.MissingCode{}
	}
	httputil.WriteJSON(w, http.StatusOK, missing)
}

func (h *Handler) handleMissingCodesCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ps, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio_cnaes_pendentes.csv"`)
	if err := report.WriteMissingCodes(w, report.MissingCodes(ps)); err != nil {
		h.logger.ErrorContext(ctx, "failed to render missing codes report",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
	}
}
