package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
	// Dependency graph package ids are base64 strings
	validPackageID = regexp.MustCompile(`^[a-zA-Z0-9=]{1,128}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return New(ErrCodeInvalidOwner, "owner is required")
	}
	if !validOwner.MatchString(owner) {
		return New(ErrCodeInvalidOwner, "invalid owner %q: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen", owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return New(ErrCodeInvalidRepo, "repo is required")
	}
	if repo == "." || repo == ".." {
		return New(ErrCodeInvalidRepo, "invalid repo %q", repo)
	}
	if !validRepo.MatchString(repo) {
		return New(ErrCodeInvalidRepo, "invalid repo %q: must be 1-100 alphanumeric characters, hyphens, underscores, or dots", repo)
	}
	return nil
}

// ValidatePackageID validates a dependency graph package id.
// An empty id is valid and selects the repository's default package.
func ValidatePackageID(id string) error {
	if id == "" {
		return nil
	}
	if !validPackageID.MatchString(id) {
		return New(ErrCodeInvalidPackage, "invalid package id %q", id)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https) and no control characters.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, r := range rawURL {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "URL contains invalid control characters")
		}
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
