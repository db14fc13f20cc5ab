package route

import (
	"strings"
	"testing"
)

func TestNewCompilesPattern(t *testing.T) {
	r, err := New("user", "/users/:id:int/posts/:slug")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	defs := r.ParamDefs()
	if len(defs) != 2 {
		t.Fatalf("len(ParamDefs) = %d, want 2", len(defs))
	}
	if defs[0].Name != "id" || defs[0].Type != "int" {
		t.Errorf("defs[0] = %+v, want {id int}", defs[0])
	}
	if defs[1].Name != "slug" || defs[1].Type != "string" {
		t.Errorf("defs[1] = %+v, want {slug string}", defs[1])
	}
	if r.IsCatchAll() {
		t.Error("IsCatchAll = true, want false")
	}
}

func TestNewCatchAll(t *testing.T) {
	r, err := New("docs", "/docs/*rest")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if !r.IsCatchAll() {
		t.Error("IsCatchAll = false, want true")
	}
	defs := r.ParamDefs()
	if len(defs) != 1 || defs[0].Type != "path" {
		t.Errorf("ParamDefs = %+v, want one path param", defs)
	}
}

func TestNewRejectsMalformedPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantSub string
	}{
		{"missing slash", "users", "must start with"},
		{"segment after catch-all", "/files/*rest/extra", "after catch-all"},
		{"nameless param", "/users/:", "missing a name"},
		{"nameless catch-all", "/files/*", "missing a name"},
		{"duplicate param", "/a/:id/b/:id", "duplicate parameter"},
		{"unknown type", "/users/:id:decimal", "unknown parameter type"},
		{"dangling type colon", "/users/:id:", "malformed parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("bad", tt.pattern)
			if err == nil {
				t.Fatalf("New(%q) expected error", tt.pattern)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestNewRejectsEmptyName(t *testing.T) {
	if _, err := New("", "/"); err == nil {
		t.Error("New with empty name should fail")
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew should panic on malformed pattern")
		}
	}()
	MustNew("bad", "no-slash")
}
