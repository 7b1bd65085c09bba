package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/circuit"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/requestcontext"
)

const (
	// DefaultInterval is the public ReceitaWS quota: three lookups a minute,
	// spaced so bursts never trip the 429.
	DefaultInterval = 28 * time.Second

	// HealthCheckCNPJ is a long-lived, always-active registration used to check the registry.
	HealthCheckCNPJ = "00000000000191"

	unknownDescription = "Não informada"
	maxResponseBytes   = 1 << 20

	msgNotFound    = "CNPJ não encontrado ou inválido."
	msgUnreachable = "Conexão falhou. Aguarde o intervalo de segurança (1 consulta a cada 28s)."
)

// HTTPClient fetches companies from a ReceitaWS-compatible endpoint.
// Calls are paced by a token bucket and guarded by a circuit breaker.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*HTTPClient)

func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		h.http = c
	}
}

// WithRateLimit sets one request per interval with the given burst.
// A zero interval disables pacing.
func WithRateLimit(interval time.Duration, burst int) Option {
	return func(h *HTTPClient) {
		if interval <= 0 {
			h.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		h.limiter = rate.NewLimiter(rate.Every(interval), max(burst, 1))
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(h *HTTPClient) {
		h.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *HTTPClient) {
		h.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(h *HTTPClient) {
		h.metrics = m
	}
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(DefaultInterval), 1),
		breaker: circuit.New("registry", circuit.WithFailureThreshold(3), circuit.WithCooldown(2*time.Minute)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// receitaWSResponse is the wire shape of GET /v1/cnpj/{cnpj}.
type receitaWSResponse struct {
	Status               string              `json:"status"`
	Message              string              `json:"message"`
	CNPJ                 string              `json:"cnpj"`
	Nome                 string              `json:"nome"`
	Fantasia             string              `json:"fantasia"`
	Situacao             string              `json:"situacao"`
	Municipio            string              `json:"municipio"`
	UF                   string              `json:"uf"`
	Logradouro           string              `json:"logradouro"`
	Numero               string              `json:"numero"`
	Bairro               string              `json:"bairro"`
	AtividadePrincipal   []receitaWSActivity `json:"atividade_principal"`
	AtividadesSecundaria []receitaWSActivity `json:"atividades_secundarias"`
}

type receitaWSActivity struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// FetchCompany looks up a CNPJ. CPFs are not in the registry and are rejected.
func (c *HTTPClient) FetchCompany(ctx context.Context, id domain.EntityID) (*Company, error) {
	if id.Kind() != domain.EntityKindCNPJ {
		return nil, NewError(ErrorUnsupported, "somente CNPJ pode ser consultado no cadastro público", nil)
	}
	if !c.breaker.Allow() {
		c.metrics.ObserveLookup(string(ErrorOutage), 0)
		return nil, NewError(ErrorOutage, msgUnreachable, errors.New("circuit open"))
	}

	start := time.Now()
	company, err := c.fetch(ctx, id)
	c.metrics.ObserveLookup(outcomeOf(err), time.Since(start))
	if err != nil {
		c.record(ctx, id, err)
		return nil, err
	}
	c.breaker.RecordSuccess()
	return company, nil
}

func (c *HTTPClient) fetch(ctx context.Context, id domain.EntityID) (*Company, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, NewError(ErrorTimeout, msgUnreachable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/cnpj/"+id.String(), nil)
	if err != nil {
		return nil, NewError(ErrorBadData, "invalid registry request", err)
	}
	req.Header.Set("Accept", "application/json")
	if rid := requestcontext.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewError(ErrorRateLimited, msgUnreachable, nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewError(ErrorNotFound, msgNotFound, nil)
	case resp.StatusCode >= 500:
		return nil, NewError(ErrorOutage, msgUnreachable, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, NewError(ErrorBadData, "unexpected registry status", fmt.Errorf("status %d", resp.StatusCode))
	}

	var body receitaWSResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, NewError(ErrorBadData, "malformed registry response", err)
	}
	if strings.EqualFold(body.Status, "ERROR") {
		msg := strings.TrimSpace(body.Message)
		if msg == "" {
			msg = msgNotFound
		}
		return nil, NewError(ErrorNotFound, msg, nil)
	}
	return toCompany(body, requestcontext.Now(ctx)), nil
}

// record feeds the breaker. Only failures that say something about the
// registry's health count; an unknown CNPJ is a healthy answer.
func (c *HTTPClient) record(ctx context.Context, id domain.EntityID, err error) {
	category := CategoryOf(err)
	switch {
	case errors.Is(err, context.Canceled):
		// The caller gave up; nothing was learned about the registry.
	case !IsRetryable(err):
		c.breaker.RecordSuccess()
	default:
		if _, change := c.breaker.RecordFailure(); change.Opened && c.logger != nil {
			c.logger.WarnContext(ctx, "registry circuit opened", "category", category)
		}
	}
	if c.logger != nil {
		c.logger.WarnContext(ctx, "registry lookup failed",
			"cnpj", id.String(),
			"category", category,
			"error", err,
		)
	}
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewError(ErrorTimeout, msgUnreachable, err)
	}
	return NewError(ErrorOutage, msgUnreachable, err)
}

func toCompany(body receitaWSResponse, fetchedAt time.Time) *Company {
	company := &Company{
		CNPJ:         risk.NormalizeCode(body.CNPJ),
		LegalName:    body.Nome,
		TradeName:    body.Fantasia,
		Status:       body.Situacao,
		Municipality: body.Municipio,
		State:        body.UF,
		Street:       body.Logradouro,
		Number:       body.Numero,
		District:     body.Bairro,
		FetchedAt:    fetchedAt,
	}
	if len(body.AtividadePrincipal) > 0 {
		company.MainActivity = Activity{
			Code:        risk.NormalizeCode(body.AtividadePrincipal[0].Code),
			Description: body.AtividadePrincipal[0].Text,
		}
	}
	for _, a := range body.AtividadesSecundaria {
		code := risk.NormalizeCode(a.Code)
		// The registry reports "no secondary activity" as a zeroed code.
		if risk.IsPlaceholderCode(code) || a.Text == unknownDescription {
			continue
		}
		company.SecondaryActivities = append(company.SecondaryActivities, Activity{Code: code, Description: a.Text})
	}
	return company
}

// CheckHealth queries the registry with a well-known CNPJ. It consumes one
// token of the shared quota.
func (c *HTTPClient) CheckHealth(ctx context.Context) Health {
	h := Health{CheckedAt: requestcontext.Now(ctx)}
	_, err := c.FetchCompany(ctx, domain.EntityID(HealthCheckCNPJ))
	h.Breaker = string(c.breaker.State())
	if err != nil {
		h.Message = msgUnreachable
		var re *Error
		if errors.As(err, &re) {
			h.Message = re.Message
		}
		return h
	}
	h.OK = true
	h.Message = "Conexão ativa. Respeite o intervalo de 28s entre consultas."
	return h
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	return string(CategoryOf(err))
}
