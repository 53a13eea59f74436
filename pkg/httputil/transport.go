package httputil

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pierre-ernst/ghnet/pkg/observability"
)

// DefaultTimeout bounds a single request, including reading the body.
const DefaultTimeout = 30 * time.Second

// Transport is an [http.RoundTripper] that paces outbound requests with a
// token-bucket limiter and stamps a User-Agent on requests that lack one.
//
// GitHub throttles anonymous HTML scraping aggressively; every page load of
// a dependents scan goes through the same Transport so that concurrent
// workers share one budget.
type Transport struct {
	Base      http.RoundTripper
	Limiter   *rate.Limiter
	UserAgent string
}

// NewTransport creates a Transport allowing perSecond requests with the
// given burst. A non-positive perSecond disables pacing.
func NewTransport(perSecond float64, burst int, userAgent string) *Transport {
	lim := rate.NewLimiter(rate.Inf, 0)
	if perSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
	return &Transport{
		Base:      http.DefaultTransport,
		Limiter:   lim,
		UserAgent: userAgent,
	}
}

// RoundTrip waits for a limiter token, then delegates to Base.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	if t.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.UserAgent)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	ctx, host, path := req.Context(), req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// NewHTTPClient creates an HTTP client using t and [DefaultTimeout].
func NewHTTPClient(t http.RoundTripper) *http.Client {
	return &http.Client{Transport: t, Timeout: DefaultTimeout}
}
