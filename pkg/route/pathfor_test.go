package route

import (
	"strings"
	"testing"
)

func TestPathFor(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name   string
		view   string
		params Params
		want   string
	}{
		{"root", "home", nil, "/"},
		{"static", "about", nil, "/about"},
		{"typed param", "user", Params{"id": "42"}, "/users/42"},
		{"two params", "post", Params{"year": "2026", "slug": "hello"}, "/blog/2026/hello"},
		{"catch-all", "docs", Params{"rest": "guide/install"}, "/docs/guide/install"},
		{"catch-all empty", "docs", Params{"rest": ""}, "/docs"},
		{"escaping", "user-by-handle", Params{"handle": "café"}, "/users/caf%C3%A9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.PathFor(tt.view, tt.params)
			if err != nil {
				t.Fatalf("PathFor error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PathFor(%q, %v) = %q, want %q", tt.view, tt.params, got, tt.want)
			}
		})
	}
}

func TestPathForErrors(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name    string
		view    string
		params  Params
		wantSub string
	}{
		{"unknown view", "missing", nil, "unknown view name"},
		{"missing param", "user", nil, "missing value"},
		{"empty param", "post", Params{"year": "2026", "slug": ""}, "empty value"},
		{"typed violation", "user", Params{"id": "abc"}, "invalid integer"},
		{"undeclared param", "about", Params{"tab": "team"}, "not declared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.PathFor(tt.view, tt.params)
			if err == nil {
				t.Fatal("PathFor expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantSub)
			}
		})
	}
}

// TestPathForMatchRoundTrip checks the generator/matcher inverse property:
// for routes without catch-all segments, generating a path and matching it
// yields the same view and params.
func TestPathForMatchRoundTrip(t *testing.T) {
	table := testTable(t)

	cases := []struct {
		view   string
		params Params
	}{
		{"home", Params{}},
		{"about", Params{}},
		{"user", Params{"id": "42"}},
		{"user-by-handle", Params{"handle": "alice"}},
		{"user-by-handle", Params{"handle": "week end"}},
		{"post", Params{"year": "1999", "slug": "y2k"}},
	}

	for _, c := range cases {
		t.Run(c.view, func(t *testing.T) {
			path, err := table.PathFor(c.view, c.params)
			if err != nil {
				t.Fatalf("PathFor error: %v", err)
			}

			m := table.Match(path)
			if m.Name != c.view {
				t.Fatalf("round trip view = %q, want %q (path %q)", m.Name, c.view, path)
			}
			if len(m.Params) != len(c.params) {
				t.Fatalf("round trip params = %v, want %v", m.Params, c.params)
			}
			for k, want := range c.params {
				if got := m.Params[k]; got != want {
					t.Errorf("round trip params[%q] = %q, want %q", k, got, want)
				}
			}
		})
	}
}

// Catch-all values round-trip as the joined remainder.
func TestPathForMatchRoundTripCatchAll(t *testing.T) {
	table := testTable(t)

	path, err := table.PathFor("docs", Params{"rest": "guide/install"})
	if err != nil {
		t.Fatalf("PathFor error: %v", err)
	}

	m := table.Match(path)
	if m.Name != "docs" {
		t.Fatalf("view = %q, want docs", m.Name)
	}
	if m.Params["rest"] != "guide/install" {
		t.Errorf("rest = %q, want %q", m.Params["rest"], "guide/install")
	}
}
