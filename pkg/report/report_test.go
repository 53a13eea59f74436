package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/network"
	"github.com/pierre-ernst/ghnet/pkg/store"
)

func testScan() *network.Scan {
	return &network.Scan{
		Repository: *github.NewRepository("FasterXML", "jackson-core"),
		Options:    network.DefaultScanOptions(),
		Pages:      1,
		Dependents: []network.Dependent{
			{Repository: github.Repository{Owner: "alice", Name: "app", FullName: "alice/app", Language: "Java", Stars: 7}, Dependents: 12345},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "JSON": FormatJSON, "toml": FormatTOML, "table": FormatTable} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("yaml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(yaml) err = %v", err)
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, testScan()); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	deps := got["dependents"].([]any)
	first := deps[0].(map[string]any)
	if first["full_name"] != "alice/app" || first["dependents"].(float64) != 12345 {
		t.Errorf("dependent = %v", first)
	}
	if _, ok := got["options"].(map[string]any)["OnPage"]; ok {
		t.Error("callback leaked into json")
	}
}

func TestWrite_TOML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatTOML, testScan()); err != nil {
		t.Fatal(err)
	}
	var got network.Scan
	if _, err := toml.Decode(buf.String(), &got); err != nil {
		t.Fatalf("invalid toml: %v\n%s", err, buf.String())
	}
	if len(got.Dependents) != 1 || got.Dependents[0].FullName != "alice/app" || got.Dependents[0].Dependents != 12345 {
		t.Errorf("decoded dependents = %+v", got.Dependents)
	}

	buf.Reset()
	pkgs := []network.Package{{ID: "UGtn", Name: "core"}}
	if err := Write(&buf, FormatTOML, pkgs); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[[packages]]") {
		t.Errorf("packages toml = %s", buf.String())
	}
}

func TestWrite_Table(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want []string
	}{
		{"scan", testScan(), []string{"Repository", "alice/app", "Java", "12,345"}},
		{"packages", []network.Package{{ID: "UGtn", Name: "core"}}, []string{"Package", "core", "UGtn"}},
		{"count", Count{Repository: "acme/lib", Dependents: 1234567}, []string{"acme/lib", "1,234,567"}},
		{"owner", &github.Owner{Login: "acme", Type: github.OwnerOrganization}, []string{"acme", "Organization"}},
		{"diff", &store.Diff{Added: []string{"new/one"}, Removed: []string{"old/one"}}, []string{"+", "new/one", "-", "old/one"}},
		{"snapshots", []*store.Snapshot{store.NewSnapshot(testScan())}, []string{"Created", "Pages"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, FormatTable, tt.v); err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("table missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestWrite_TableUnsupported(t *testing.T) {
	err := Write(&bytes.Buffer{}, FormatTable, 42)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Write(int) err = %v", err)
	}
}

func TestFormatInt(t *testing.T) {
	for n, want := range map[int64]string{0: "0", 999: "999", 1000: "1,000", -1234567: "-1,234,567"} {
		if got := formatInt(n); got != want {
			t.Errorf("formatInt(%d) = %q, want %q", n, got, want)
		}
	}
}
