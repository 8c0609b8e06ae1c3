package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfstream/prodex/internal/domain"
)

type mockRepo struct {
	randomFn func(ctx context.Context, tenantID string, size int, seed int64) ([]domain.Product, error)
}

func (m *mockRepo) Random(ctx context.Context, tenantID string, size int, seed int64) ([]domain.Product, error) {
	return m.randomFn(ctx, tenantID, size, seed)
}

func TestService_Random_DefaultSize(t *testing.T) {
	var gotSize int
	repo := &mockRepo{
		randomFn: func(_ context.Context, _ string, size int, _ int64) ([]domain.Product, error) {
			gotSize = size
			return []domain.Product{}, nil
		},
	}

	svc := New(repo)
	if _, err := svc.Random(context.Background(), "acme", 0); err != nil {
		t.Fatalf("Random() error = %v", err)
	}

	if gotSize != DefaultSize {
		t.Errorf("size = %d, want %d", gotSize, DefaultSize)
	}
}

func TestService_Random_ExplicitSize(t *testing.T) {
	var gotTenant string
	var gotSize int
	repo := &mockRepo{
		randomFn: func(_ context.Context, tenantID string, size int, _ int64) ([]domain.Product, error) {
			gotTenant = tenantID
			gotSize = size
			return []domain.Product{}, nil
		},
	}

	svc := New(repo)
	if _, err := svc.Random(context.Background(), "acme", 12); err != nil {
		t.Fatalf("Random() error = %v", err)
	}

	if gotTenant != "acme" {
		t.Errorf("tenantID = %q, want %q", gotTenant, "acme")
	}
	if gotSize != 12 {
		t.Errorf("size = %d, want 12", gotSize)
	}
}

func TestService_Random_StripsEmbeddings(t *testing.T) {
	repo := &mockRepo{
		randomFn: func(_ context.Context, _ string, _ int, _ int64) ([]domain.Product, error) {
			return []domain.Product{
				{SKU: "SKU-1", Embedding: []float32{0.1, 0.2}},
				{SKU: "SKU-2", Embedding: []float32{0.3, 0.4}},
			}, nil
		},
	}

	svc := New(repo)
	products, err := svc.Random(context.Background(), "acme", 2)
	if err != nil {
		t.Fatalf("Random() error = %v", err)
	}

	for _, p := range products {
		if p.Embedding != nil {
			t.Errorf("product %s: embedding not stripped", p.SKU)
		}
	}
}

func TestService_Random_FreshSeedPerCall(t *testing.T) {
	var seeds []int64
	repo := &mockRepo{
		randomFn: func(_ context.Context, _ string, _ int, seed int64) ([]domain.Product, error) {
			seeds = append(seeds, seed)
			return []domain.Product{}, nil
		},
	}

	svc := New(repo)
	for range 3 {
		if _, err := svc.Random(context.Background(), "acme", 4); err != nil {
			t.Fatalf("Random() error = %v", err)
		}
	}

	if len(seeds) != 3 {
		t.Fatalf("len(seeds) = %d, want 3", len(seeds))
	}
	if seeds[0] == seeds[1] && seeds[1] == seeds[2] {
		t.Error("seeds identical across calls, expected fresh seeds")
	}
}

func TestService_Random_RepoError(t *testing.T) {
	wantErr := errors.New("index unavailable")
	repo := &mockRepo{
		randomFn: func(_ context.Context, _ string, _ int, _ int64) ([]domain.Product, error) {
			return nil, wantErr
		},
	}

	svc := New(repo)
	_, err := svc.Random(context.Background(), "acme", 4)
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapping %v", err, wantErr)
	}
}
