// Package github resolves owners and repositories through the GitHub REST API.
//
// It wraps github.com/google/go-github with the shared [integrations.Client]
// plumbing: responses are cached per object, transient failures are retried,
// and go-github errors are mapped onto the package-level sentinels of
// [integrations] so that callers can use errors.Is uniformly:
//
//	gh := github.NewClient(base, os.Getenv("GITHUB_TOKEN"))
//	repo, err := gh.Repository(ctx, "FasterXML", "jackson-core", false)
//	if errors.Is(err, integrations.ErrNotFound) {
//	    // deleted, renamed or private
//	}
//
// Unauthenticated clients are limited to 60 requests per hour. A dependents
// scan resolves one repository per row, so pass a token for anything beyond
// a handful of dependents.
//
// [integrations.Client]: github.com/pierre-ernst/ghnet/pkg/integrations.Client
// [integrations]: github.com/pierre-ernst/ghnet/pkg/integrations
package github
