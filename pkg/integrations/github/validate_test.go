package github

import "testing"

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		in        string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"FasterXML/jackson-core", "FasterXML", "jackson-core", false},
		{" foo/bar.js ", "foo", "bar.js", false},
		{"https://github.com/foo/bar", "foo", "bar", false},
		{"https://github.com/foo/bar/network/dependents", "foo", "bar", false},
		{"git@github.com:foo/bar.git", "foo", "bar", false},
		{"github.com/foo/bar", "foo", "bar", false},

		{"", "", "", true},
		{"foo", "", "", true},
		{"foo/bar/baz", "", "", true},
		{"-foo/bar", "", "", true},
		{"https://gitlab.com/foo/bar", "", "", true},
		{"https://github.com/foo", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := ParseRepoRef(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRepoRef(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if owner != tt.wantOwner || repo != tt.wantRepo {
			t.Errorf("ParseRepoRef(%q) = %q, %q, want %q, %q", tt.in, owner, repo, tt.wantOwner, tt.wantRepo)
		}
	}
}
