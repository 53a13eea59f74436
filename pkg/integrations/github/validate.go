package github

import (
	"net/url"
	"strings"

	"github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/integrations"
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	return errors.ValidateOwner(owner)
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	return errors.ValidateRepo(repo)
}

// ValidateRepoRef validates both owner and repo parameters.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}

// ParseRepoRef parses an "owner/repo" string and validates both parts.
// Full github.com URLs are accepted too, see [ParseRepoURL].
func ParseRepoRef(ref string) (owner, repo string, err error) {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "git@") || strings.HasPrefix(ref, "github.com/") {
		return ParseRepoURL(ref)
	}
	parts := strings.Split(ref, "/")
	if len(parts) != 2 {
		return "", "", errors.New(errors.ErrCodeInvalidRepo, "invalid repository %q: use owner/repo", ref)
	}
	owner, repo = parts[0], parts[1]
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", "", err
	}
	return owner, repo, nil
}

// ParseRepoURL extracts owner and repo from a github.com URL such as
// https://github.com/owner/repo, git@github.com:owner/repo.git or
// https://github.com/owner/repo/network/dependents.
func ParseRepoURL(raw string) (owner, repo string, err error) {
	s := integrations.NormalizeRepoURL(raw)
	if strings.HasPrefix(s, "github.com/") {
		s = "https://" + s
	}
	u, perr := url.Parse(s)
	if perr != nil || u.Host != "github.com" {
		return "", "", errors.New(errors.ErrCodeInvalidRepo, "not a github.com repository URL: %q", raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", "", errors.New(errors.ErrCodeInvalidRepo, "repository URL %q has no owner/repo path", raw)
	}
	owner, repo = parts[0], strings.TrimSuffix(parts[1], ".git")
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", "", err
	}
	return owner, repo, nil
}
