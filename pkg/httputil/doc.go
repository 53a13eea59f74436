// Package httputil provides HTTP utilities shared by the GitHub clients.
//
// # Overview
//
//   - [Retry]: Automatic retry with exponential backoff
//   - [Transport]: Request pacing and User-Agent stamping
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses (honouring Retry-After)
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchPage(ctx, url)
//	})
//
// # Pacing
//
// [Transport] wraps [http.DefaultTransport] with a golang.org/x/time/rate
// limiter. Share one Transport between all clients that hit github.com so
// that concurrent scans stay under one request budget:
//
//	t := httputil.NewTransport(2, 4, buildinfo.UserAgent())
//	client := httputil.NewHTTPClient(t)
//
// # Configuration
//
// Default settings:
//
//   - Max retries: 3
//   - Base backoff: 1 second
//   - Request timeout: 30 seconds
package httputil
