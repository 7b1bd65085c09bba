// Package handler exposes risk analysis and rule administration over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/ruletable"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/service"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/httputil"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/admin"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/auth"
	request "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/risk-mocks.go -package=mocks Service

// Service defines the interface for risk operations.
type Service interface {
	Analyze(ctx context.Context, codes []string, answers risk.AnswerMap) service.Outcome
	Override(ctx context.Context, subject string, result *risk.Result, tier risk.RiskLevel, reason string) (*risk.Result, error)
	ListRules() []risk.Rule
	GetRule(code string) (risk.Rule, error)
	RuleStatus() ruletable.Status
	UpsertRule(ctx context.Context, rule risk.Rule) (risk.Rule, error)
	DeleteRule(ctx context.Context, code string) (bool, error)
	Reload(ctx context.Context) error
}

// Handler handles risk analysis and rule catalogue endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
	adminToken   string
}

func New(svc Service, logger *slog.Logger, jwtValidator auth.JWTValidator, adminToken string) *Handler {
	return &Handler{
		service:      svc,
		logger:       logger,
		jwtValidator: jwtValidator,
		adminToken:   adminToken,
	}
}

// Register registers the risk routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Post("/risk/analyze", h.handleAnalyze)
		r.Get("/rules", h.handleListRules)
		r.Get("/rules/status", h.handleRuleStatus)
		r.Get("/rules/{code}", h.handleGetRule)
	})
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/risk/override", h.handleOverride)
	})
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Put("/rules/{code}", h.handleUpsertRule)
		r.Delete("/rules/{code}", h.handleDeleteRule)
		r.Post("/rules/reload", h.handleReload)
	})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AnalyzeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	out := h.service.Analyze(ctx, req.Codes, req.answers)
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OverrideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Override(ctx, req.Subject, req.Result, req.tier, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "override rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules := h.service.ListRules()
	httputil.WriteJSON(w, http.StatusOK, RuleListResponse{Rules: rules, Count: len(rules)})
}

func (h *Handler) handleRuleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.RuleStatus())
}

func (h *Handler) handleGetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.service.GetRule(chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rule)
}

func (h *Handler) handleUpsertRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RuleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	rule := req.rule
	rule.Code = chi.URLParam(r, "code")

	saved, err := h.service.UpsertRule(ctx, rule)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to upsert rule",
			"request_id", requestID,
			"code", rule.Code,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := risk.NormalizeCode(chi.URLParam(r, "code"))

	removed, err := h.service.DeleteRule(ctx, code)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete rule",
			"request_id", request.GetRequestID(ctx),
			"code", code,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DeleteRuleResponse{Code: code, Removed: removed})
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reload(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.RuleStatus())
}
