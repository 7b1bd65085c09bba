// Package handler exposes batch analyses over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/batch"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/report"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/httputil"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/auth"
	request "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/middleware/request"
)

// Runner runs a batch.
type Runner interface {
	Run(ctx context.Context, ids []domain.EntityID, onProgress batch.ProgressFunc) (*batch.Report, error)
}

type Request struct {
	IDs  []string `json:"ids,omitempty"`
	Text string   `json:"text,omitempty"`

	parsed  []domain.EntityID
	invalid []string
}

func (r *Request) Validate() error {
	text := r.Text
	if len(r.IDs) > 0 {
		text = strings.Join(r.IDs, "\n") + "\n" + text
	}
	r.parsed, r.invalid = batch.ParseEntityIDs(text)
	if len(r.parsed) == 0 {
		return dErrors.New(dErrors.CodeValidation, "no valid CNPJ/CPF found")
	}
	return nil
}

type Response struct {
	*batch.Report
	Invalid []string `json:"invalid,omitempty"`
}

type Handler struct {
	runner       Runner
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
}

func New(runner Runner, logger *slog.Logger, jwtValidator auth.JWTValidator) *Handler {
	return &Handler{runner: runner, logger: logger, jwtValidator: jwtValidator}
}

// Register registers the batch route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/batch", h.handleRun)
	})
}

// handleRun analyzes the posted ids. ?sort=<column>&order=desc orders the
// items; ?format=csv renders the successful ones as a spreadsheet. A client
// disconnect cancels the run and the partial report is still logged.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[Request](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	q := r.URL.Query()
	col := batch.SortByID
	sortRequested := false
	if raw := q.Get("sort"); raw != "" {
		if col, ok = batch.ParseSortColumn(raw); !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown sort column: "+raw))
			return
		}
		sortRequested = true
	}

	rep, err := h.runner.Run(ctx, req.parsed, func(done, total int, it batch.Item) {
		h.logger.InfoContext(ctx, "batch progress",
			"request_id", requestID,
			"done", done,
			"total", total,
			"entity_id", it.ID.String(),
			"status", string(it.Status),
		)
	})
	if err != nil && rep == nil {
		httputil.WriteError(w, err)
		return
	}
	if sortRequested {
		batch.Sort(rep.Items, col, strings.EqualFold(q.Get("order"), "desc"))
	}

	if strings.EqualFold(q.Get("format"), "csv") {
		entries := make([]report.BatchEntry, 0, rep.Succeeded)
		for _, it := range rep.Successes() {
			entries = append(entries, report.BatchEntry{Company: it.Company, Result: it.Result})
		}
		w.Header().Set("Content-Type", report.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="lote_analise_`+rep.ID+`.csv"`)
		if err := report.WriteBatch(w, entries); err != nil {
			h.logger.ErrorContext(ctx, "failed to render batch report",
				"request_id", requestID,
				"batch_id", rep.ID,
				"error", err,
			)
		}
		return
	}
	httputil.WriteJSON(w, http.StatusOK, Response{Report: rep, Invalid: req.invalid})
}
