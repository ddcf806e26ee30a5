package api

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"project-browser/internal/infra/logx"
)

// Limit defines a simple rate limit: RPS with a burst capacity.
type Limit struct {
	RPS   float64
	Burst int
}

// TransportOptions configures the rate-limited transport.
type TransportOptions struct {
	// RetryMax applies to idempotent requests (GET/HEAD) only; writes are
	// always sent exactly once.
	RetryMax    int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	Metrics     *Metrics

	// Sleep waits between retries; nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// Host-specific limits (by req.URL.Host). If missing, DefaultLimit applies.
	HostLimits   map[string]Limit
	DefaultLimit Limit
}

// DefaultTransportOptionsFromEnv returns defaults, tunable via PB_RPS,
// PB_BURST, PB_RETRY_MAX and PB_RETRY_BASE_MS.
func DefaultTransportOptionsFromEnv() TransportOptions {
	lim := Limit{RPS: 10, Burst: 10}
	if v := strings.TrimSpace(os.Getenv("PB_RPS")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			lim.RPS = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("PB_BURST")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			lim.Burst = n
		}
	}

	retryMax := 0
	if v := strings.TrimSpace(os.Getenv("PB_RETRY_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			retryMax = n
		}
	}
	backoffBase := 250 * time.Millisecond
	if v := strings.TrimSpace(os.Getenv("PB_RETRY_BASE_MS")); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			backoffBase = time.Duration(ms) * time.Millisecond
		}
	}

	return TransportOptions{
		RetryMax:     retryMax,
		BackoffBase:  backoffBase,
		BackoffCap:   5 * time.Second,
		Metrics:      NewMetrics(),
		DefaultLimit: lim,
	}
}

// LimiterTransport wraps a base RoundTripper with per-host rate limiting,
// metrics and request logging.
type LimiterTransport struct {
	Base     http.RoundTripper
	Opts     TransportOptions
	limMu    sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewLimiterTransport(opts TransportOptions) *LimiterTransport {
	return &LimiterTransport{Opts: opts, limiters: make(map[string]*rate.Limiter)}
}

func (t *LimiterTransport) getLimiter(host string) *rate.Limiter {
	if host == "" {
		host = "_default_"
	}
	t.limMu.Lock()
	defer t.limMu.Unlock()
	if l, ok := t.limiters[host]; ok {
		return l
	}
	lim := t.Opts.DefaultLimit
	if v, ok := t.Opts.HostLimits[host]; ok {
		lim = v
	}
	if lim.RPS <= 0 {
		lim = Limit{RPS: 10, Burst: 10}
	}
	l := rate.NewLimiter(rate.Limit(lim.RPS), max(1, lim.Burst))
	t.limiters[host] = l
	return l
}

func (t *LimiterTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *LimiterTransport) sleep(ctx context.Context, d time.Duration) error {
	if t.Opts.Sleep != nil {
		return t.Opts.Sleep(ctx, d)
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

func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func (t *LimiterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	op := OperationFrom(ctx)
	log := logx.With(logx.Fields{"op": op, "method": req.Method, "path": req.URL.Path})
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.IncRequest(op, req.Method)
	}

	attempts := 1
	if idempotent(req.Method) {
		attempts = max(1, t.Opts.RetryMax+1)
	}
	lim := t.getLimiter(req.URL.Host)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return nil, err
		}
		start := time.Now()
		resp, err := t.base().RoundTrip(req)
		if err != nil {
			if t.Opts.Metrics != nil {
				t.Opts.Metrics.IncFailure()
			}
			log.Debugf("request failed after %s: %v", time.Since(start), err)
			lastErr = err
			if isTransientNetErr(err) && attempt < attempts-1 {
				if serr := t.backoff(ctx, attempt, 0); serr != nil {
					return nil, serr
				}
				continue
			}
			return nil, err
		}

		if t.Opts.Metrics != nil {
			t.Opts.Metrics.IncStatus(resp.StatusCode)
		}
		log.Debugf("status %d in %s", resp.StatusCode, time.Since(start))

		if shouldRetryStatus(resp.StatusCode) && attempt < attempts-1 {
			ra := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
			resp.Body.Close()
			if serr := t.backoff(ctx, attempt, ra); serr != nil {
				return nil, serr
			}
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = errors.New("max retries exceeded")
	}
	return nil, lastErr
}

// backoff sleeps before the next attempt: Retry-After when given,
// otherwise base * 2^attempt, both capped.
func (t *LimiterTransport) backoff(ctx context.Context, attempt int, retryAfter time.Duration) error {
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.IncRetry()
	}
	base := t.Opts.BackoffBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	limit := t.Opts.BackoffCap
	if limit <= 0 {
		limit = 5 * time.Second
	}
	delay := retryAfter
	if delay <= 0 {
		delay = time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	}
	return t.sleep(ctx, min(delay, limit))
}

func isTransientNetErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "temporary")
}

func shouldRetryStatus(code int) bool {
	return code == 429 || code == 502 || code == 503 || code == 504
}

func parseRetryAfter(h string, now time.Time) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(h); err == nil {
		if d := when.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
