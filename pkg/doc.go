// Package pkg provides the libraries behind ghnet, a tool that explores who
// depends on a GitHub repository.
//
// # Overview
//
// GitHub only shows a repository's dependents on the HTML page
// /<owner>/<repo>/network/dependents. ghnet scrapes those pages, resolves
// every dependent through the REST API and keeps the ones that matter: the
// dependents that have enough dependents of their own.
//
// The pkg directory is organized into these areas:
//
//  1. [network] - Dependents scraping: packages, counts and filtered scans
//  2. [integrations] - Shared HTTP client and the GitHub REST resolver
//  3. [cache] - Page, API and scan caching (file, Redis, none)
//  4. [store] - Scan snapshots and their differences (file, MongoDB)
//  5. [graph] - Graph of a scan, as JSON, DOT or SVG
//  6. [report] - Table, JSON and TOML output
//  7. [api] - HTTP service over the above
//
// # Architecture
//
// The typical data flow through ghnet:
//
//	owner/repo
//	     ↓
//	[integrations/github] resolve the repository
//	     ↓
//	[network] read dependents pages, resolve and count each row
//	     ↓
//	[store] snapshot ──→ [store.Compare] diff
//	     ↓
//	[report] / [graph] / [api] output
//
// # Quick Start
//
//	base := integrations.NewClient(integrations.Options{})
//	client := network.NewClient(base, github.NewClient(base, os.Getenv("GITHUB_TOKEN")))
//
//	repo, _ := client.Repository(ctx, "spf13", "cobra")
//	scan, _ := client.ListDependents(ctx, repo, network.DefaultScanOptions())
//	for _, d := range scan.Dependents {
//	    fmt.Println(d.FullName, d.Dependents)
//	}
package pkg
