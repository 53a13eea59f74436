// Package network reads GitHub's dependency graph: the packages a repository
// publishes and the repositories that depend on it.
//
// GitHub does not expose dependents through its REST or GraphQL APIs. They
// are only visible on the HTML page
//
//	https://github.com/<owner>/<repo>/network/dependents[?package_id=<id>]
//
// which lists dependents 30 per page, offers a menu of the repository's
// packages, and shows the total as "1,234 Repositories". [Client] scrapes
// those pages and resolves every dependent through the REST API so that it
// can be filtered.
//
// # Operations
//
//   - [Client.ListPackages]: packages published by a repository
//   - [Client.DependentsCount]: number of repositories depending on it
//   - [Client.ListDependents]: the dependents themselves, filtered by their
//     own dependents count and by primary language
//
// # Filtering
//
// A scan keeps a dependent only when it has at least
// [ScanOptions.MinDependents] dependents of its own and, with
// [ScanOptions.SameLanguage], the same primary language as the scanned
// repository. Every rejected row is reported in [Scan.Skipped] with a
// [SkipReason].
//
// # Concurrency
//
// Rows of a page are evaluated concurrently (see [WithConcurrency]); results
// keep page order. Page loads share the pacing of the underlying HTTP
// transport.
package network
