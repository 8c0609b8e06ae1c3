package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shelfstream/prodex/internal/db"
	"github.com/shelfstream/prodex/internal/domain"
)

func sampleEntries(n int) []db.SearchEntry {
	entries := make([]db.SearchEntry, 0, n)
	for i := 0; i < n; i++ {
		doc := fmt.Sprintf(`{"sku":"SKU-%d","tenantId":"acme","name":"Item %d","price":9.99,"currency":"USD","embedding":[0.1,0.2]}`, i, i)
		entries = append(entries, db.SearchEntry{
			Key:    fmt.Sprintf("prodex:product:%d", i),
			Fields: map[string]string{"$": doc},
		})
	}
	return entries
}

func TestEnsureIndex_Creates(t *testing.T) {
	var gotDef *db.IndexDefinition
	s := &mockStore{
		createIndexFn: func(_ context.Context, def *db.IndexDefinition) error {
			gotDef = def
			return nil
		},
	}

	r := New(s, 0)
	if err := r.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotDef == nil {
		t.Fatal("CreateIndex not called")
	}
	if gotDef.Name != "prodex:products:idx" {
		t.Errorf("index name = %q", gotDef.Name)
	}
	if gotDef.StorageType != db.StorageJSON {
		t.Errorf("storage type = %q", gotDef.StorageType)
	}
	if len(gotDef.Prefixes) != 1 || gotDef.Prefixes[0] != "prodex:product:" {
		t.Errorf("prefixes = %v", gotDef.Prefixes)
	}
	if len(gotDef.Fields) != 1 || gotDef.Fields[0].Name != "$.tenantId" || gotDef.Fields[0].Alias != "tenant" {
		t.Errorf("fields = %+v", gotDef.Fields)
	}
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	s := &mockStore{
		createIndexFn: func(_ context.Context, _ *db.IndexDefinition) error {
			return &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}
		},
	}

	r := New(s, 0)
	if err := r.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("existing index should not be an error: %v", err)
	}
}

func TestUpsert_WritesProjection(t *testing.T) {
	var gotKey, gotPath string
	var gotData []byte
	s := &mockStore{
		jsonSetFn: func(_ context.Context, key, path string, data []byte) error {
			gotKey, gotPath, gotData = key, path, data
			return nil
		},
	}

	p := &domain.Product{
		SKU:      "SKU-1",
		TenantID: "acme",
		Name:     "Widget",
		Price:    19.5,
		Currency: "EUR",
	}

	r := New(s, 0)
	key, err := r.Upsert(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if key != gotKey {
		t.Errorf("returned key %q != written key %q", key, gotKey)
	}
	if !strings.HasPrefix(key, "prodex:product:") {
		t.Errorf("key %q missing document prefix", key)
	}
	if gotPath != "$" {
		t.Errorf("path = %q, want $", gotPath)
	}

	var m map[string]any
	if err := json.Unmarshal(gotData, &m); err != nil {
		t.Fatalf("written payload is not JSON: %v", err)
	}
	if m["sku"] != "SKU-1" || m["tenantId"] != "acme" {
		t.Errorf("payload = %v", m)
	}
	if _, ok := m["embedding"]; ok {
		t.Error("empty embedding must be omitted from the projection")
	}
}

func TestUpsert_FreshKeyPerCall(t *testing.T) {
	keys := map[string]bool{}
	s := &mockStore{
		jsonSetFn: func(_ context.Context, key, _ string, _ []byte) error {
			keys[key] = true
			return nil
		},
	}

	p := &domain.Product{SKU: "S", TenantID: "t", Name: "n", Price: 1, Currency: "USD"}
	r := New(s, 0)
	for i := 0; i < 3; i++ {
		if _, err := r.Upsert(context.Background(), p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(keys) != 3 {
		t.Errorf("expected 3 distinct keys, got %d", len(keys))
	}
}

func TestRandom_QueryAndTruncation(t *testing.T) {
	var gotIndex, gotQuery string
	var gotLimit int
	s := &mockStore{
		searchListFn: func(
			_ context.Context, index, query string, _, limit int, _ []string,
		) (*db.SearchResult, error) {
			gotIndex, gotQuery, gotLimit = index, query, limit
			return &db.SearchResult{Total: 10, Entries: sampleEntries(10)}, nil
		},
	}

	r := New(s, 100)
	got, err := r.Random(context.Background(), "acme", 4, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotIndex != "prodex:products:idx" {
		t.Errorf("index = %q", gotIndex)
	}
	if gotQuery != "@tenant:{acme}" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotLimit != 100 {
		t.Errorf("limit = %d, want sample cap 100", gotLimit)
	}
	if len(got) != 4 {
		t.Errorf("got %d products, want 4", len(got))
	}
}

func TestRandom_SeedReproducible(t *testing.T) {
	s := &mockStore{
		searchListFn: func(
			_ context.Context, _, _ string, _, _ int, _ []string,
		) (*db.SearchResult, error) {
			return &db.SearchResult{Total: 8, Entries: sampleEntries(8)}, nil
		},
	}

	r := New(s, 0)
	a, err := r.Random(context.Background(), "acme", 8, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := r.Random(context.Background(), "acme", 8, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range a {
		if a[i].SKU != b[i].SKU {
			t.Fatalf("same seed produced different orders at %d: %s vs %s", i, a[i].SKU, b[i].SKU)
		}
	}
}

func TestRandom_FewerThanRequested(t *testing.T) {
	s := &mockStore{
		searchListFn: func(
			_ context.Context, _, _ string, _, _ int, _ []string,
		) (*db.SearchResult, error) {
			return &db.SearchResult{Total: 2, Entries: sampleEntries(2)}, nil
		},
	}

	r := New(s, 0)
	got, err := r.Random(context.Background(), "acme", 4, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d products, want all 2 available", len(got))
	}
}

func TestRandom_TenantEscaped(t *testing.T) {
	var gotQuery string
	s := &mockStore{
		searchListFn: func(
			_ context.Context, _, query string, _, _ int, _ []string,
		) (*db.SearchResult, error) {
			gotQuery = query
			return &db.SearchResult{}, nil
		},
	}

	r := New(s, 0)
	if _, err := r.Random(context.Background(), "acme-west corp", 4, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != `@tenant:{acme\-west\ corp}` {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestRandom_EmptyTenant(t *testing.T) {
	s := &mockStore{
		searchListFn: func(
			_ context.Context, _, _ string, _, _ int, _ []string,
		) (*db.SearchResult, error) {
			return &db.SearchResult{Total: 0}, nil
		},
	}

	r := New(s, 0)
	got, err := r.Random(context.Background(), "ghost", 4, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestRandom_SkipsCorruptEntries(t *testing.T) {
	entries := sampleEntries(2)
	entries = append(entries, db.SearchEntry{
		Key:    "prodex:product:bad",
		Fields: map[string]string{"$": "{not json"},
	})
	s := &mockStore{
		searchListFn: func(
			_ context.Context, _, _ string, _, _ int, _ []string,
		) (*db.SearchResult, error) {
			return &db.SearchResult{Total: 3, Entries: entries}, nil
		},
	}

	r := New(s, 0)
	got, err := r.Random(context.Background(), "acme", 10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d products, want 2 parseable", len(got))
	}
}

func TestRandom_SearchError(t *testing.T) {
	s := &mockStore{
		searchListFn: func(
			_ context.Context, _, _ string, _, _ int, _ []string,
		) (*db.SearchResult, error) {
			return nil, errors.New("connection refused")
		},
	}

	r := New(s, 0)
	if _, err := r.Random(context.Background(), "acme", 4, 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestCount(t *testing.T) {
	s := &mockStore{
		searchCountFn: func(_ context.Context, index, query string) (int, error) {
			if index != "prodex:products:idx" || query != "@tenant:{acme}" {
				t.Errorf("unexpected args: %s %s", index, query)
			}
			return 5, nil
		},
	}

	r := New(s, 0)
	n, err := r.Count(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("count = %d, want 5", n)
	}
}
