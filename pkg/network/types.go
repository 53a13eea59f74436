package network

import (
	"cmp"
	"slices"

	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
)

// Package is one of the packages a repository publishes, as listed by the
// package menu of its dependents page.
type Package struct {
	ID   string `json:"id" toml:"id" bson:"id"`
	Name string `json:"name" toml:"name" bson:"name"`
}

// SortPackages orders packages by name, then id.
func SortPackages(pkgs []Package) {
	slices.SortFunc(pkgs, func(a, b Package) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
}

// Dependent is a repository depending on the scanned one, with its own
// dependents count.
type Dependent struct {
	github.Repository `bson:",inline"`
	Dependents        int64 `json:"dependents" toml:"dependents" bson:"dependents"`
}

// SkipReason explains why a dependents row was left out of a scan.
type SkipReason string

const (
	SkipNotFound         SkipReason = "not_found"
	SkipCountFailed      SkipReason = "count_failed"
	SkipBelowThreshold   SkipReason = "below_threshold"
	SkipLanguageMismatch SkipReason = "language_mismatch"
)

// Skip records a dependents row that did not make it into the result.
type Skip struct {
	FullName string     `json:"full_name" toml:"full_name" bson:"full_name"`
	Reason   SkipReason `json:"reason" toml:"reason" bson:"reason"`
	Detail   string     `json:"detail,omitempty" toml:"detail,omitempty" bson:"detail,omitempty"`
}

// PageProgress is reported after each dependents page has been processed.
type PageProgress struct {
	Page int
	URL  string
	Rows int
	Kept int
}

// ScanOptions controls [Client.ListDependents].
type ScanOptions struct {
	// PackageID selects one of the repository's packages; empty selects
	// GitHub's default.
	PackageID string `json:"package_id,omitempty" toml:"package_id,omitempty" bson:"package_id,omitempty"`
	// MinDependents is the minimum number of dependents a dependent must
	// have itself to be kept.
	MinDependents int64 `json:"min_dependents" toml:"min_dependents" bson:"min_dependents"`
	// SameLanguage keeps only dependents whose primary language equals the
	// scanned repository's.
	SameLanguage bool `json:"same_language" toml:"same_language" bson:"same_language"`
	// MaxPages bounds the number of pages read; 0 reads all of them.
	MaxPages int `json:"max_pages,omitempty" toml:"max_pages,omitempty" bson:"max_pages,omitempty"`

	OnPage func(PageProgress) `json:"-" toml:"-" bson:"-"`
}

// DefaultScanOptions keeps same-language dependents that have at least one
// dependent of their own.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{MinDependents: 1, SameLanguage: true}
}

// Scan is the result of [Client.ListDependents].
type Scan struct {
	Repository github.Repository `json:"repository" toml:"repository" bson:"repository"`
	Options    ScanOptions       `json:"options" toml:"options" bson:"options"`
	Dependents []Dependent       `json:"dependents" toml:"dependents" bson:"dependents"`
	Skipped    []Skip            `json:"skipped,omitempty" toml:"skipped,omitempty" bson:"skipped,omitempty"`
	Pages      int               `json:"pages" toml:"pages" bson:"pages"`
	// Truncated is set when MaxPages stopped the scan before the last page.
	Truncated bool `json:"truncated,omitempty" toml:"truncated,omitempty" bson:"truncated,omitempty"`
}

// FullNames returns the full names of the kept dependents in scan order.
func (s *Scan) FullNames() []string {
	names := make([]string, len(s.Dependents))
	for i, d := range s.Dependents {
		names[i] = d.FullName
	}
	return names
}
