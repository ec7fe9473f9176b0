package binance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"klinebot/internal/logger"
	"klinebot/internal/market"
	"klinebot/internal/pkg/text"
)

// ErrExhaustedRetries is returned when no attempt succeeded within
// RetryPolicy.MaxAttempts requests.
var ErrExhaustedRetries = errors.New("klines fetch exhausted retries")

const errorBodyExcerpt = 512

// Doer issues one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Stats describes the most recent Fetch call.
type Stats struct {
	Attempts int
	Retries  int
	ByKind   map[market.OutcomeKind]int
	Waited   time.Duration
}

// KlineFetcher fetches one klines page with bounded, classified retries.
type KlineFetcher struct {
	cfg      Config
	endpoint string
	doer     Doer
	sleep    Sleeper
	signer   *Signer
	nowFn    func() time.Time

	statsMu sync.Mutex
	stats   Stats
}

type Option func(*KlineFetcher)

// WithDoer replaces the HTTP client.
func WithDoer(d Doer) Option {
	return func(f *KlineFetcher) { f.doer = d }
}

// WithSleeper replaces the wait between retries.
func WithSleeper(s Sleeper) Option {
	return func(f *KlineFetcher) { f.sleep = s }
}

// WithClock replaces time.Now, used to resolve HTTP-date Retry-After values.
func WithClock(now func() time.Time) Option {
	return func(f *KlineFetcher) { f.nowFn = now }
}

func NewKlineFetcher(cfg Config, opts ...Option) (*KlineFetcher, error) {
	final := cfg.withDefaults()
	if _, err := url.Parse(final.RESTBaseURL); err != nil {
		return nil, fmt.Errorf("invalid REST base url: %w", err)
	}
	f := &KlineFetcher{
		cfg:      final,
		endpoint: final.RESTBaseURL + final.KlinesPath,
		sleep:    SleepContext,
		nowFn:    time.Now,
	}
	if final.APISecret != "" {
		f.signer = NewSigner(final.APIKey, final.APISecret)
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.doer == nil {
		client, err := newHTTPClient(final)
		if err != nil {
			return nil, err
		}
		f.doer = client
	}
	return f, nil
}

func newHTTPClient(cfg Config) (*http.Client, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	if cfg.ProxyEnabled && cfg.RESTProxyURL != "" {
		proxyURL, err := url.Parse(cfg.RESTProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REST proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient.Transport = transport
	}
	return httpClient, nil
}

// SleepContext waits for d, returning early with ctx.Err() on cancellation.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stats returns a copy of the counters of the last Fetch.
func (f *KlineFetcher) Stats() Stats {
	f.statsMu.Lock()
	defer f.statsMu.Unlock()
	out := f.stats
	out.ByKind = make(map[market.OutcomeKind]int, len(f.stats.ByKind))
	for k, v := range f.stats.ByKind {
		out.ByKind[k] = v
	}
	return out
}

// Fetch returns the candles of one page. 503/504/451, 429 and transport
// failures are retried with their own waits; 403 and other statuses are
// re-requested without consuming a retry. The loop never issues more than
// MaxAttempts requests.
func (f *KlineFetcher) Fetch(ctx context.Context, req market.FetchRequest) (market.Candles, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("klines request: %w", err)
	}
	query := f.buildQuery(req)
	stats := Stats{ByKind: make(map[market.OutcomeKind]int)}
	defer func() {
		f.statsMu.Lock()
		f.stats = stats
		f.statsMu.Unlock()
	}()

	policy := f.cfg.Retry
	var last market.FetchOutcome
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		stats.Attempts++
		outcome, err := f.attempt(ctx, query, req)
		if err != nil {
			return nil, err
		}
		last = outcome
		stats.ByKind[outcome.Kind]++

		var wait time.Duration
		switch outcome.Kind {
		case market.OutcomeSuccess:
			logger.Debugf("binance klines %s %s: %d rows after %d attempt(s)", req.Symbol, req.Interval, len(outcome.Rows), attempt)
			return outcome.Rows, nil
		case market.OutcomeRetryableServerError:
			wait = policy.ServerErrorDelay
			logger.Warnf("binance klines: server side issue, status=%d, retry in %s (attempt %d/%d)",
				outcome.Status, wait, attempt, policy.MaxAttempts)
		case market.OutcomeRateLimited:
			wait = outcome.RetryAfter
			logger.Warnf("binance klines: api call limit reached, retry after %s (attempt %d/%d)",
				wait, attempt, policy.MaxAttempts)
		case market.OutcomeConnectionFailure:
			wait = policy.ConnectionErrorDelay
			logger.Warnf("binance klines: connection failure, retry in %s (attempt %d/%d): %v",
				wait, attempt, policy.MaxAttempts, outcome.Err)
		case market.OutcomeForbidden:
			wait = policy.ForbiddenDelay
			logger.Errorf("binance klines: WAF limit violated, status=403 (attempt %d/%d)", attempt, policy.MaxAttempts)
		default:
			wait = policy.ForbiddenDelay
			logger.Errorf("binance klines: unexpected response status=%d (attempt %d/%d): %v",
				outcome.Status, attempt, policy.MaxAttempts, outcome.Err)
		}
		if outcome.Kind.Retryable() {
			stats.Retries++
		}
		if attempt == policy.MaxAttempts {
			break
		}
		if err := f.sleep(ctx, wait); err != nil {
			return nil, err
		}
		stats.Waited += wait
	}
	return nil, fmt.Errorf("%w: %s %s after %d attempts (%d retries), last outcome %s",
		ErrExhaustedRetries, req.Symbol, req.Interval, stats.Attempts, stats.Retries, last)
}

func (f *KlineFetcher) buildQuery(req market.FetchRequest) string {
	params := req.Params()
	if f.signer != nil {
		f.signer.SignParams(params)
	}
	return CanonicalQuery(OrderParams(params))
}

// attempt performs one request. A non-nil error is terminal: the request
// could not be built, ctx ended, or a 200 body failed to decode.
func (f *KlineFetcher) attempt(ctx context.Context, query string, req market.FetchRequest) (market.FetchOutcome, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+query, nil)
	if err != nil {
		return market.FetchOutcome{}, fmt.Errorf("build klines request: %w", err)
	}
	if f.signer != nil && f.signer.apiKey != "" {
		httpReq.Header.Set("X-MBX-APIKEY", f.signer.apiKey)
	}
	resp, err := f.doer.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return market.FetchOutcome{}, ctxErr
		}
		return market.FetchOutcome{Kind: market.OutcomeConnectionFailure, Err: err}, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return market.FetchOutcome{}, ctxErr
			}
			// The connection dropped mid-body.
			return market.FetchOutcome{Kind: market.OutcomeConnectionFailure, Err: err}, nil
		}
		rows, err := decodeKlines(body)
		if err != nil {
			return market.FetchOutcome{}, err
		}
		if err := checkPage(rows, req); err != nil {
			return market.FetchOutcome{}, err
		}
		return market.FetchOutcome{Kind: market.OutcomeSuccess, Status: resp.StatusCode, Rows: rows}, nil
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusUnavailableForLegalReasons:
		drain(resp.Body)
		return market.FetchOutcome{Kind: market.OutcomeRetryableServerError, Status: resp.StatusCode}, nil
	case http.StatusTooManyRequests:
		drain(resp.Body)
		return market.FetchOutcome{
			Kind:       market.OutcomeRateLimited,
			Status:     resp.StatusCode,
			RetryAfter: f.retryAfter(resp.Header.Get("Retry-After")),
		}, nil
	case http.StatusForbidden:
		drain(resp.Body)
		return market.FetchOutcome{Kind: market.OutcomeForbidden, Status: resp.StatusCode}, nil
	default:
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyExcerpt+1))
		return market.FetchOutcome{
			Kind:   market.OutcomeUnclassifiedError,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s: %s", resp.Status, text.Truncate(string(excerpt), errorBodyExcerpt)),
		}, nil
	}
}

// retryAfter reads a Retry-After header given in whole seconds or as an
// HTTP date.
func (f *KlineFetcher) retryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := at.Sub(f.nowFn()); d > 0 {
			return d.Round(time.Second)
		}
		return 0
	}
	logger.Warnf("binance klines: 429 without usable Retry-After %q, fallback to %s", header, f.cfg.Retry.RateLimitFallback)
	return f.cfg.Retry.RateLimitFallback
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
}
