package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pierre-ernst/ghnet/pkg/cache"
	"github.com/pierre-ernst/ghnet/pkg/integrations"
	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/observability"
)

// ListDependents walks every dependents page of repo and returns the
// dependents that pass the filters of opts, in page order.
//
// Rows that cannot be resolved or counted are skipped with a warning, as
// are rows failing a filter. Page load failures, rate limiting and context
// cancellation abort the scan.
//
// With [WithCache], a scan with the same options is answered from the cache
// without calling OnPage.
func (c *Client) ListDependents(ctx context.Context, repo *github.Repository, opts ScanOptions) (*Scan, error) {
	key := c.keyer.ScanKey(repo.String(), cache.ScanKeyOpts{
		PackageID:     opts.PackageID,
		MinDependents: opts.MinDependents,
		SameLanguage:  opts.SameLanguage,
		MaxPages:      opts.MaxPages,
	})
	var cached Scan
	if c.load(ctx, observability.KeyScan, key, &cached) {
		c.logger.Debug("Scan served from cache", "repo", repo.String())
		cached.Options.OnPage = opts.OnPage
		return &cached, nil
	}

	hooks := observability.Scan()
	hooks.OnScanStart(ctx, repo.String(), opts.PackageID)
	start := time.Now()
	scan, err := c.scan(ctx, repo, opts)
	if err != nil {
		hooks.OnScanComplete(ctx, repo.String(), observability.ScanStats{Duration: time.Since(start)}, err)
		return nil, err
	}
	hooks.OnScanComplete(ctx, repo.String(), observability.ScanStats{
		Pages:    scan.Pages,
		Kept:     len(scan.Dependents),
		Skipped:  len(scan.Skipped),
		Duration: time.Since(start),
	}, nil)
	c.save(ctx, observability.KeyScan, key, scan)
	return scan, nil
}

func (c *Client) scan(ctx context.Context, repo *github.Repository, opts ScanOptions) (*Scan, error) {
	scan := &Scan{Repository: *repo, Options: opts, Dependents: []Dependent{}}

	root := repoRef{repo.Owner, repo.Name}.key()
	seen := map[string]bool{root: true}
	kept := map[string]bool{root: true}
	visited := make(map[string]bool)

	next := DependentsURL(repo, opts.PackageID)
	for next != "" {
		if opts.MaxPages > 0 && scan.Pages >= opts.MaxPages {
			scan.Truncated = true
			break
		}
		if visited[next] {
			c.logger.Warn("Pagination loops back, stopping", "url", next)
			break
		}
		visited[next] = true

		c.logger.Debug("Scanning", "url", next, "kept", len(scan.Dependents))
		doc, err := c.pages.GetHTML(ctx, next, c.refresh)
		if err != nil {
			return nil, fmt.Errorf("load dependents page %d of %s: %w", scan.Pages+1, repo, err)
		}
		scan.Pages++

		var rows []repoRef
		for _, ref := range parseDependents(doc) {
			if !seen[ref.key()] {
				seen[ref.key()] = true
				rows = append(rows, ref)
			}
		}

		outcomes, err := c.evaluateAll(ctx, repo, rows, opts)
		if err != nil {
			return nil, err
		}
		for _, o := range outcomes {
			if o.skip != nil {
				scan.Skipped = append(scan.Skipped, *o.skip)
				continue
			}
			// Renamed repositories can be listed under both names.
			key := repoRef{o.dep.Owner, o.dep.Name}.key()
			if kept[key] {
				continue
			}
			kept[key] = true
			scan.Dependents = append(scan.Dependents, *o.dep)
		}

		if opts.OnPage != nil {
			opts.OnPage(PageProgress{Page: scan.Pages, URL: next, Rows: len(rows), Kept: len(scan.Dependents)})
		}
		next = nextPage(doc)
	}
	return scan, nil
}

type outcome struct {
	ref  repoRef
	dep  *Dependent
	skip *Skip
}

func (c *Client) evaluateAll(ctx context.Context, root *github.Repository, rows []repoRef, opts ScanOptions) ([]outcome, error) {
	outcomes := make([]outcome, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ref := range rows {
		g.Go(func() error {
			o, err := c.evaluate(gctx, root, ref, opts)
			if err != nil {
				return err
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return outcomes, nil
}

func (c *Client) evaluate(ctx context.Context, root *github.Repository, ref repoRef, opts ScanOptions) (outcome, error) {
	skip := func(reason SkipReason, err error) (outcome, error) {
		s := &Skip{FullName: ref.String(), Reason: reason}
		if err != nil {
			s.Detail = err.Error()
		}
		return outcome{ref: ref, skip: s}, nil
	}

	dep, err := c.repos.Repository(ctx, ref.owner, ref.name, c.refresh)
	if err != nil {
		if fatal(ctx, err) {
			return outcome{}, fmt.Errorf("resolve %s: %w", ref, err)
		}
		c.logger.Warn("Repository not found", "repo", ref.String(), "err", err)
		return skip(SkipNotFound, err)
	}

	if opts.SameLanguage && dep.Language != root.Language {
		c.logger.Warn("Repository language differs", "repo", ref.String(), "language", dep.Language, "want", root.Language)
		return skip(SkipLanguageMismatch, nil)
	}

	count, err := c.DependentsCount(ctx, dep, "")
	if err != nil {
		if fatal(ctx, err) {
			return outcome{}, fmt.Errorf("count dependents of %s: %w", ref, err)
		}
		c.logger.Warn("Unable to count dependents", "repo", ref.String(), "err", err)
		return skip(SkipCountFailed, err)
	}

	if count < opts.MinDependents {
		c.logger.Debug("Missed threshold", "repo", ref.String(), "dependents", count, "min", opts.MinDependents)
		return skip(SkipBelowThreshold, nil)
	}

	return outcome{ref: ref, dep: &Dependent{Repository: *dep, Dependents: count}}, nil
}

// fatal reports errors that end the whole scan rather than one row.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, integrations.ErrRateLimited)
}
