package github

import "fmt"

// Owner types reported by GitHub.
const (
	OwnerOrganization = "Organization"
	OwnerUser         = "User"
)

// Owner is a GitHub user or organization.
type Owner struct {
	Login   string `json:"login" toml:"login"`
	Type    string `json:"type" toml:"type"`
	Name    string `json:"name,omitempty" toml:"name,omitempty"`
	HTMLURL string `json:"html_url" toml:"html_url"`
}

// Repository is the subset of GitHub repository metadata ghnet uses.
type Repository struct {
	Owner    string `json:"owner" toml:"owner" bson:"owner"`
	Name     string `json:"name" toml:"name" bson:"name"`
	FullName string `json:"full_name" toml:"full_name" bson:"full_name"`
	// Language is the primary language; empty when GitHub reports none.
	Language    string `json:"language,omitempty" toml:"language,omitempty" bson:"language,omitempty"`
	Description string `json:"description,omitempty" toml:"description,omitempty" bson:"description,omitempty"`
	HTMLURL     string `json:"html_url" toml:"html_url" bson:"html_url"`
	Stars       int    `json:"stars" toml:"stars" bson:"stars"`
	Archived    bool   `json:"archived" toml:"archived" bson:"archived"`
}

// NewRepository builds a Repository with FullName and HTMLURL derived from
// owner and name.
func NewRepository(owner, name string) *Repository {
	return &Repository{
		Owner:    owner,
		Name:     name,
		FullName: owner + "/" + name,
		HTMLURL:  fmt.Sprintf("https://github.com/%s/%s", owner, name),
	}
}

// String returns "owner/name".
func (r *Repository) String() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Owner + "/" + r.Name
}
