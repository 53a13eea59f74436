// Package integrations provides the shared HTTP plumbing for talking to GitHub.
//
// # Overview
//
// ghnet reads two kinds of GitHub resources:
//
//   - HTML pages of the web UI (the dependency graph is not exposed by the
//     REST API), fetched with [Client.GetHTML]
//   - REST API objects, fetched by the [github] subpackage
//
// # Shared Infrastructure
//
// [Client] bundles what every fetch needs:
//   - Default headers (User-Agent, Accept)
//   - Read-through caching via [cache.Cache] with a configurable TTL
//   - Retry with exponential backoff for transient failures
//   - Request pacing through the [httputil.Transport] of its HTTP client
//
// # Errors
//
// Fetches fail with [ErrNotFound] (404), [ErrRateLimited] (429, retried) or
// [ErrNetwork] (transport failures and other non-200 statuses; 5xx retried).
//
// [github]: github.com/pierre-ernst/ghnet/pkg/integrations/github
// [cache.Cache]: github.com/pierre-ernst/ghnet/pkg/cache.Cache
// [httputil.Transport]: github.com/pierre-ernst/ghnet/pkg/httputil.Transport
package integrations
