package db

import (
	"strings"
	"testing"
)

func TestBuilder_JSONTagIndex(t *testing.T) {
	def, err := NewIndex("prodex:products:idx").
		OnJSON().
		Prefix("prodex:product:").
		TagAs("$.tenantId", "tenant").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.StorageType != StorageJSON {
		t.Fatalf("storage type: %s", def.StorageType)
	}
	s := def.String()
	for _, want := range []string{"ON JSON", "PREFIX prodex:product:", "$.tenantId AS tenant TAG"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() misses %q: %s", want, s)
		}
	}
}

func TestBuilder_Validation(t *testing.T) {
	if _, err := NewIndex("").Tag("t").Build(); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := NewIndex("idx").Build(); err == nil {
		t.Error("no fields accepted")
	}
	if _, err := NewIndex("bad name").Tag("t").Build(); err == nil {
		t.Error("invalid identifier accepted")
	}
	if _, err := NewIndex("idx").Tag("a").Tag("a").Build(); err == nil {
		t.Error("duplicate field accepted")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for s, want := range map[string]bool{
		"prodex:products:idx": true,
		"under_score-ok":      true,
		"":                    false,
		"with space":          false,
		"emoji🙂":              false,
	} {
		if got := IsValidIdentifier(s); got != want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", s, got, want)
		}
	}
}
