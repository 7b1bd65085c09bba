// Package health serves liveness and dependency checks.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/ruletable"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/httputil"
	auth "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/auth"
)

const checkTimeout = 2 * time.Second

// Check tests one dependency; nil means healthy.
type Check func(ctx context.Context) error

// RuleStatus reports the rule table lifecycle.
type RuleStatus interface {
	RuleStatus() ruletable.Status
}

// RegistryChecker performs a live lookup against the company registry.
type RegistryChecker interface {
	CheckHealth(ctx context.Context) registry.Health
}

type Response struct {
	Status string            `json:"status"`
	Rules  ruletable.Status  `json:"rules"`
	Checks map[string]string `json:"checks,omitempty"`
}

type Handler struct {
	rules        RuleStatus
	registry     RegistryChecker
	checks       map[string]Check
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
}

type Option func(*Handler)

// WithCheck adds a named dependency check to /health.
func WithCheck(name string, c Check) Option {
	return func(h *Handler) {
		h.checks[name] = c
	}
}

// WithRegistryCheck enables GET /health/registry. The check spends registry
// quota, so the route requires an operator token.
func WithRegistryCheck(p RegistryChecker, jwtValidator auth.JWTValidator) Option {
	return func(h *Handler) {
		h.registry = p
		h.jwtValidator = jwtValidator
	}
}

func New(rules RuleStatus, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{rules: rules, logger: logger, checks: make(map[string]Check)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	if h.registry != nil {
		r.With(auth.RequireAuth(h.jwtValidator, h.logger)).Get("/health/registry", h.handleRegistry)
	}
}

// handleHealth answers 200 while the rule table is usable and every check
// passes. A failed or still-loading table is degraded, not down: analyses
// still run on the fallback.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := Response{Status: "ok", Rules: h.rules.RuleStatus()}
	if resp.Rules.State != ruletable.StateReady {
		resp.Status = "degraded"
	}
	status := http.StatusOK
	for name, check := range h.checks {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(h.checks))
		}
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			h.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			continue
		}
		resp.Checks[name] = "ok"
	}
	httputil.WriteJSON(w, status, resp)
}

func (h *Handler) handleRegistry(w http.ResponseWriter, r *http.Request) {
	res := h.registry.CheckHealth(r.Context())
	status := http.StatusOK
	if !res.OK {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, res)
}
