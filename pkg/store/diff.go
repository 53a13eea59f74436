package store

import (
	"slices"
	"strings"

	"github.com/pierre-ernst/ghnet/pkg/network"
)

// Diff lists the dependents that appeared or disappeared between two scans.
type Diff struct {
	From    string   `json:"from" toml:"from"`
	To      string   `json:"to" toml:"to"`
	Added   []string `json:"added" toml:"added"`
	Removed []string `json:"removed" toml:"removed"`
}

// Empty reports whether the scans had the same dependents.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Compare returns the dependents present in newer but not older (Added) and
// the reverse (Removed). Names are matched case-insensitively and both
// lists are sorted.
func Compare(older, newer *Snapshot) *Diff {
	d := &Diff{
		From:    older.ID,
		To:      newer.ID,
		Added:   missingFrom(newer.Scan.Dependents, older.Scan.Dependents),
		Removed: missingFrom(older.Scan.Dependents, newer.Scan.Dependents),
	}
	return d
}

func missingFrom(deps, other []network.Dependent) []string {
	have := make(map[string]bool, len(other))
	for _, d := range other {
		have[strings.ToLower(d.FullName)] = true
	}
	out := []string{}
	for _, d := range deps {
		if !have[strings.ToLower(d.FullName)] {
			out = append(out, d.FullName)
		}
	}
	slices.Sort(out)
	return out
}
