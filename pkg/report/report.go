// Package report writes ghnet results as JSON, TOML or terminal tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/network"
	"github.com/pierre-ernst/ghnet/pkg/store"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatTOML  Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatJSON, FormatTOML}

// ParseFormat validates a format name. An empty name selects the table.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatTable, nil
	}
	f := Format(strings.ToLower(s))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (use table, json or toml)", s)
	}
	return f, nil
}

// Count is the result of a dependents count.
type Count struct {
	Repository string `json:"repository" toml:"repository"`
	PackageID  string `json:"package_id,omitempty" toml:"package_id,omitempty"`
	Dependents int64  `json:"dependents" toml:"dependents"`
}

// Write renders v to w. Supported values are *github.Owner,
// []network.Package, Count, *network.Scan, *store.Snapshot,
// []*store.Snapshot and *store.Diff.
func Write(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(tomlDocument(v))
	case FormatTable, "":
		return writeTable(w, v)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
}

// tomlDocument wraps values TOML cannot hold at the top level.
func tomlDocument(v any) any {
	switch v := v.(type) {
	case []network.Package:
		return struct {
			Packages []network.Package `toml:"packages"`
		}{v}
	case []*store.Snapshot:
		return struct {
			Snapshots []*store.Snapshot `toml:"snapshots"`
		}{v}
	default:
		return v
	}
}

func writeTable(w io.Writer, v any) error {
	var out string
	switch v := v.(type) {
	case *github.Owner:
		out = ownerTable(v)
	case []network.Package:
		out = packagesTable(v)
	case Count:
		out = countTable(v)
	case *network.Scan:
		out = scanTable(v)
	case *store.Snapshot:
		out = scanTable(&v.Scan)
	case []*store.Snapshot:
		out = snapshotsTable(v)
	case *store.Diff:
		out = diffTable(v)
	default:
		return errors.New(errors.ErrCodeUnsupported, "no table layout for %T", v)
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
