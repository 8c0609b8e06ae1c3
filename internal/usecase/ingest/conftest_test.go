package ingest

import (
	"context"
	"encoding/json"

	"github.com/shelfstream/prodex/internal/domain"
	"github.com/shelfstream/prodex/internal/validate"
)

// mockValidator implements Validator for tests.
type mockValidator struct {
	productFn func(raw json.RawMessage) (domain.Product, validate.Errors)
}

func (m *mockValidator) Product(raw json.RawMessage) (domain.Product, validate.Errors) {
	if m.productFn != nil {
		return m.productFn(raw)
	}
	var p domain.Product
	_ = json.Unmarshal(raw, &p)
	return p, nil
}

// mockImages implements ImageResolver for tests.
type mockImages struct {
	resolveFn func(ctx context.Context, tenantID, sku string, refs []string) ([]string, error)
	calls     int
}

func (m *mockImages) Resolve(ctx context.Context, tenantID, sku string, refs []string) ([]string, error) {
	m.calls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, tenantID, sku, refs)
	}
	return refs, nil
}

// mockEmbedder implements domain.Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, credential, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, credential, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, credential, text)
	}
	return domain.EmbeddingResult{Vector: []float32{0.1, 0.2}}, nil
}

// mockCreds implements domain.CredentialSource for tests.
type mockCreds struct {
	token string
	err   error
	calls int
}

func (m *mockCreds) Token(_ context.Context) (string, error) {
	m.calls++
	return m.token, m.err
}

// mockIndexer implements Indexer for tests.
type mockIndexer struct {
	upsertFn func(ctx context.Context, p *domain.Product) (string, error)
}

func (m *mockIndexer) Upsert(ctx context.Context, p *domain.Product) (string, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, p)
	}
	return "prodex:product:test", nil
}

// mockMedia implements MediaStore for tests.
type mockMedia struct {
	putFn func(ctx context.Context, key, contentType string, data []byte) (string, error)
}

func (m *mockMedia) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if m.putFn != nil {
		return m.putFn(ctx, key, contentType, data)
	}
	return "https://cdn.example.com/" + key, nil
}
