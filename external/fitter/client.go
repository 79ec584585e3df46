package fitter

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/nig"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/resilience"
	"github.com/riskibarqy/kz-leaderboard/internal/usecase"
)

const fitPath = "/v1/fit"

var errFitterTransient = crerr.New("fitter transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client calls an out-of-process fitting service. Only the four curve
// parameters cross the wire; anchoring to the fastest time happens locally.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      resilience.RetryConfig
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

var _ points.Fitter = (*Client)(nil)

type fitRequest struct {
	Times []float64 `json:"times"`
}

type fitResponse struct {
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	Loc   float64 `json:"loc"`
	Scale float64 `json:"scale"`
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	retry := resilience.RemoteCallRetryConfig(cfg.MaxRetries)

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		retry:      retry,
		logger:     logger.Named("fitter"),
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
}

func (c *Client) Fit(ctx context.Context, times []float64) (points.Distribution, error) {
	if len(times) == 0 {
		return points.Distribution{}, fmt.Errorf("%w: empty sample", points.ErrFitUnavailable)
	}
	if c.baseURL == "" {
		return points.Distribution{}, fmt.Errorf("%w: fitter base url is not configured", usecase.ErrDependencyUnavailable)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(fitRequest{Times: times}); err != nil {
		return points.Distribution{}, crerr.Wrap(err, "encode fit request")
	}
	body := buf.Bytes()

	var out fitResponse
	err := c.breaker.Execute(ctx, isFitterCircuitFailure, func(ctx context.Context) error {
		return resilience.Retry(ctx, c.retry, isFitterCircuitFailure, func(ctx context.Context) error {
			return c.post(ctx, body, &out)
		})
	})
	switch {
	case err == nil:
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		c.logger.WarnContext(ctx, "fitter circuit breaker rejected request", "state", c.breaker.State())
		return points.Distribution{}, fmt.Errorf("%w: fitter is temporarily unavailable", usecase.ErrDependencyUnavailable)
	case stderrors.Is(err, points.ErrFitUnavailable):
		return points.Distribution{}, err
	case stderrors.Is(err, errFitterTransient):
		c.logger.WarnContext(ctx, "fitter request failed", "samples", len(times), "error", err)
		return points.Distribution{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	default:
		return points.Distribution{}, err
	}

	params := nig.Params{A: out.A, B: out.B, Loc: out.Loc, Scale: out.Scale}
	dist, err := points.NewDistribution(params, times)
	if err != nil {
		if stderrors.Is(err, points.ErrFitUnavailable) {
			return points.Distribution{}, err
		}
		return points.Distribution{}, fmt.Errorf("%w: fitter returned %+v: %v", points.ErrFitUnavailable, params, err)
	}
	return dist, nil
}

func (c *Client) post(ctx context.Context, body []byte, target *fitResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+fitPath, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create fit request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: send fit request: %v", errFitterTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read fit response: %v", errFitterTransient, err)
	}

	switch {
	case resp.StatusCode/100 == 2:
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: fitter rejected sample: %s", points.ErrFitUnavailable, abbreviate(raw))
	case isRetryableStatus(resp.StatusCode):
		return fmt.Errorf("%w: fitter status=%d body=%s", errFitterTransient, resp.StatusCode, abbreviate(raw))
	default:
		return crerr.Newf("fitter status=%d body=%s", resp.StatusCode, abbreviate(raw))
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode fit response")
	}
	return nil
}

func isFitterCircuitFailure(err error) bool {
	return stderrors.Is(err, errFitterTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func abbreviate(raw []byte) string {
	const max = 512
	s := strings.TrimSpace(string(raw))
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
