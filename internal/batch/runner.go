package batch

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process/service"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/requestcontext"
)

//go:generate mockgen -source=runner.go -destination=mocks/mocks.go -package=mocks Analyzer,OpsTracker

const (
	DefaultConcurrency = 2
	DefaultMaxItems    = 500
)

// Analyzer analyzes and saves one entity.
type Analyzer interface {
	AnalyzeEntity(ctx context.Context, id domain.EntityID, answers risk.AnswerMap) (*service.Outcome, error)
}

// OpsTracker records operational events best-effort.
type OpsTracker interface {
	Track(ctx context.Context, event audit.OpsEvent)
}

// Runner drives batch analyses. Pacing comes from the registry client's
// rate limiter; the runner only bounds how many lookups wait at once.
type Runner struct {
	analyzer    Analyzer
	concurrency int
	maxItems    int
	ops         OpsTracker
	logger      *slog.Logger
	tracer      trace.Tracer
}

type Option func(*Runner)

func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithMaxItems(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxItems = n
		}
	}
}

func WithOpsTracker(t OpsTracker) Option {
	return func(r *Runner) {
		r.ops = t
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func NewRunner(analyzer Analyzer, opts ...Option) *Runner {
	r := &Runner{
		analyzer:    analyzer,
		concurrency: DefaultConcurrency,
		maxItems:    DefaultMaxItems,
		tracer:      otel.Tracer("vigisan/batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run analyzes ids and returns one item per id in input order. A failing
// entity never stops the run. When ctx is cancelled, entities not yet started
// are marked cancelled and the partial report is returned with ctx's error.
func (r *Runner) Run(ctx context.Context, ids []domain.EntityID, onProgress ProgressFunc) (*Report, error) {
	if len(ids) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "no valid CNPJ/CPF given")
	}
	if len(ids) > r.maxItems {
		return nil, dErrors.New(dErrors.CodeValidation, "batch exceeds "+strconv.Itoa(r.maxItems)+" entities")
	}

	rep := &Report{ID: uuid.NewString(), Items: make([]Item, len(ids)), Total: len(ids)}
	ctx, span := r.tracer.Start(ctx, "batch.Run", trace.WithAttributes(
		attribute.String("batch.id", rep.ID),
		attribute.Int("batch.size", len(ids)),
	))
	defer span.End()

	// One timestamp for the whole run.
	ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))

	var (
		mu   sync.Mutex
		done int
	)
	finish := func(i int, it Item) {
		mu.Lock()
		defer mu.Unlock()
		rep.Items[i] = it
		done++
		if onProgress != nil {
			onProgress(done, len(ids), it)
		}
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, id := range ids {
		rep.Items[i] = Item{ID: id, Status: StatusPending}
		g.Go(func() error {
			if ctx.Err() != nil {
				finish(i, Item{ID: id, Status: StatusCancelled})
				return nil
			}
			finish(i, r.analyze(ctx, id))
			return nil
		})
	}
	_ = g.Wait()

	for _, it := range rep.Items {
		switch it.Status {
		case StatusSuccess:
			rep.Succeeded++
		case StatusError:
			rep.Failed++
		}
	}
	rep.Cancelled = ctx.Err() != nil
	span.SetAttributes(
		attribute.Int("batch.succeeded", rep.Succeeded),
		attribute.Int("batch.failed", rep.Failed),
	)

	if r.ops != nil {
		r.ops.Track(ctx, audit.OpsEvent{
			Timestamp: requestcontext.Now(ctx),
			Subject:   rep.ID,
			Action:    audit.EventBatchCompleted,
			Decision:  strconv.Itoa(rep.Succeeded) + "/" + strconv.Itoa(rep.Total),
			RequestID: requestcontext.RequestID(ctx),
		})
	}
	if r.logger != nil {
		r.logger.InfoContext(ctx, "batch finished",
			"batch_id", rep.ID,
			"total", rep.Total,
			"succeeded", rep.Succeeded,
			"failed", rep.Failed,
			"cancelled", rep.Cancelled,
		)
	}
	if rep.Cancelled {
		return rep, ctx.Err()
	}
	return rep, nil
}

func (r *Runner) analyze(ctx context.Context, id domain.EntityID) Item {
	out, err := r.analyzer.AnalyzeEntity(ctx, id, nil)
	if err != nil {
		if ctx.Err() != nil {
			return Item{ID: id, Status: StatusCancelled}
		}
		msg := dErrors.MessageOf(err)
		if msg == "" {
			msg = "analysis failed"
		}
		return Item{ID: id, Status: StatusError, Error: msg}
	}
	return Item{
		ID:       id,
		Status:   StatusSuccess,
		Company:  out.Process.Company,
		Result:   out.Process.Analysis,
		Degraded: out.Degraded,
	}
}
