package route

import (
	"strings"
	"testing"
)

func TestBind(t *testing.T) {
	type postParams struct {
		Year     int      `param:"year"`
		Slug     string   `param:"slug"`
		Rest     []string `param:"rest"`
		Ratio    float64  `param:"ratio"`
		Draft    bool     `param:"draft"`
		Count    uint     `param:"count"`
		Untagged string
	}

	params := Params{
		"year":  "2026",
		"slug":  "hello",
		"rest":  "a/b/c",
		"ratio": "0.5",
		"draft": "true",
		"count": "7",
	}

	var p postParams
	if err := Bind(params, &p); err != nil {
		t.Fatalf("Bind error: %v", err)
	}

	if p.Year != 2026 {
		t.Errorf("Year = %d, want 2026", p.Year)
	}
	if p.Slug != "hello" {
		t.Errorf("Slug = %q, want hello", p.Slug)
	}
	if len(p.Rest) != 3 || p.Rest[0] != "a" || p.Rest[2] != "c" {
		t.Errorf("Rest = %v, want [a b c]", p.Rest)
	}
	if p.Ratio != 0.5 {
		t.Errorf("Ratio = %v, want 0.5", p.Ratio)
	}
	if !p.Draft {
		t.Error("Draft = false, want true")
	}
	if p.Count != 7 {
		t.Errorf("Count = %d, want 7", p.Count)
	}
	if p.Untagged != "" {
		t.Errorf("Untagged = %q, want empty", p.Untagged)
	}
}

func TestBindEmptyCatchAll(t *testing.T) {
	type p struct {
		Rest []string `param:"rest"`
	}
	var out p
	if err := Bind(Params{"rest": ""}, &out); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	if len(out.Rest) != 0 {
		t.Errorf("Rest = %v, want empty", out.Rest)
	}
}

func TestBindErrors(t *testing.T) {
	type intParams struct {
		ID int `param:"id"`
	}

	tests := []struct {
		name    string
		params  Params
		target  any
		wantSub string
	}{
		{"non-pointer", Params{}, intParams{}, "must be a pointer"},
		{"pointer to non-struct", Params{}, new(int), "pointer to struct"},
		{"bad int", Params{"id": "abc"}, &intParams{}, "invalid integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Bind(tt.params, tt.target)
			if err == nil {
				t.Fatal("Bind expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestBindNilTarget(t *testing.T) {
	if err := Bind(Params{"id": "1"}, nil); err != nil {
		t.Errorf("Bind(nil) error: %v", err)
	}
}

func TestValidateParam(t *testing.T) {
	tests := []struct {
		value     string
		paramType string
		wantErr   bool
	}{
		{"42", "int", false},
		{"-7", "int", false},
		{"abc", "int", true},
		{"42", "uint", false},
		{"-7", "uint", true},
		{"0.5", "float", false},
		{"x", "float", true},
		{"true", "bool", false},
		{"maybe", "bool", true},
		{"550e8400-e29b-41d4-a716-446655440000", "uuid", false},
		{"not-a-uuid", "uuid", true},
		{"anything", "string", false},
		{"anything", "", false},
		{"a/b", "path", false},
	}

	for _, tt := range tests {
		t.Run(tt.paramType+"_"+tt.value, func(t *testing.T) {
			err := ValidateParam(tt.value, tt.paramType)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateParam(%q, %q) error = %v, wantErr %v", tt.value, tt.paramType, err, tt.wantErr)
			}
		})
	}
}
