package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v74/github"

	ghnerrors "github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/httputil"
	"github.com/pierre-ernst/ghnet/pkg/integrations"
)

// Client resolves owners and repositories through the GitHub REST API.
// It handles caching, automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	api *gh.Client
}

// NewClient creates a REST client sharing base's HTTP client, cache and
// retry policy. Pass an empty token for unauthenticated requests (lower
// rate limits).
func NewClient(base *integrations.Client, token string) *Client {
	api := gh.NewClient(base.HTTPClient())
	if token != "" {
		api = api.WithAuthToken(token)
	}
	return &Client{Client: base, api: api}
}

// SetBaseURL points the client at a different API root, e.g. a GitHub
// Enterprise instance or a test server.
func (c *Client) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	c.api.BaseURL = u
	return nil
}

// Owner resolves login as an organization first and, failing that, as a
// user. The user lookup error is returned when both fail.
func (c *Client) Owner(ctx context.Context, login string, refresh bool) (*Owner, error) {
	if o, err := c.Organization(ctx, login, refresh); err == nil {
		return o, nil
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return c.User(ctx, login, refresh)
}

// Organization fetches an organization by login.
func (c *Client) Organization(ctx context.Context, login string, refresh bool) (*Owner, error) {
	var o Owner
	err := c.Cached(ctx, c.Keyer().APIKey("org", login), refresh, &o, func() error {
		org, _, err := c.api.Organizations.Get(ctx, login)
		if err != nil {
			return mapError(ctx, err, "organization "+login)
		}
		o = Owner{
			Login:   org.GetLogin(),
			Type:    OwnerOrganization,
			Name:    org.GetName(),
			HTMLURL: org.GetHTMLURL(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// User fetches a user by login.
func (c *Client) User(ctx context.Context, login string, refresh bool) (*Owner, error) {
	var o Owner
	err := c.Cached(ctx, c.Keyer().APIKey("user", login), refresh, &o, func() error {
		u, _, err := c.api.Users.Get(ctx, login)
		if err != nil {
			return mapError(ctx, err, "user "+login)
		}
		o = Owner{
			Login:   u.GetLogin(),
			Type:    u.GetType(),
			Name:    u.GetName(),
			HTMLURL: u.GetHTMLURL(),
		}
		if o.Type == "" {
			o.Type = OwnerUser
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Repository fetches a repository. Renamed repositories are followed by
// the API, so the returned FullName may differ from owner/name.
func (c *Client) Repository(ctx context.Context, owner, name string, refresh bool) (*Repository, error) {
	var r Repository
	err := c.Cached(ctx, c.Keyer().APIKey("repo", owner+"/"+name), refresh, &r, func() error {
		repo, _, err := c.api.Repositories.Get(ctx, owner, name)
		if err != nil {
			return mapError(ctx, err, "repository "+owner+"/"+name)
		}
		r = Repository{
			Owner:       repo.GetOwner().GetLogin(),
			Name:        repo.GetName(),
			FullName:    repo.GetFullName(),
			Language:    repo.GetLanguage(),
			Description: repo.GetDescription(),
			HTMLURL:     repo.GetHTMLURL(),
			Stars:       repo.GetStargazersCount(),
			Archived:    repo.GetArchived(),
		}
		if r.Owner == "" {
			r.Owner = owner
		}
		if r.FullName == "" {
			r.FullName = r.Owner + "/" + r.Name
		}
		if r.HTMLURL == "" {
			r.HTMLURL = "https://github.com/" + r.FullName
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// mapError converts go-github errors to integrations sentinels. Secondary
// rate limits and 5xx responses are marked retryable; primary rate limits
// are not, since their reset is usually far away.
func mapError(ctx context.Context, err error, what string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var rle *gh.RateLimitError
	if errors.As(err, &rle) {
		wait := int(time.Until(rle.Rate.Reset.Time).Seconds())
		return fmt.Errorf("%w: %s: %w", integrations.ErrRateLimited, what,
			&ghnerrors.RateLimitedError{RetryAfter: max(wait, 0), Message: rle.Message})
	}

	var abuse *gh.AbuseRateLimitError
	if errors.As(err, &abuse) {
		after := abuse.GetRetryAfter()
		return &httputil.RetryableError{
			Err: fmt.Errorf("%w: %s: %w", integrations.ErrRateLimited, what,
				&ghnerrors.RateLimitedError{RetryAfter: int(after.Seconds()), Message: abuse.Message}),
			After: after,
		}
	}

	var resp *gh.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil {
		switch code := resp.Response.StatusCode; {
		case code == http.StatusNotFound:
			return fmt.Errorf("%w: %s", integrations.ErrNotFound, what)
		case code >= 500:
			return httputil.Retryable(fmt.Errorf("%w: %s: status %d", integrations.ErrNetwork, what, code))
		default:
			return fmt.Errorf("%w: %s: status %d: %s", integrations.ErrNetwork, what, code, resp.Message)
		}
	}
	return httputil.Retryable(fmt.Errorf("%w: %s: %v", integrations.ErrNetwork, what, err))
}
