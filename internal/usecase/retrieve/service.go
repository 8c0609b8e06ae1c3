// Package retrieve serves randomized tenant-scoped product samples.
package retrieve

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfstream/prodex/internal/domain"
)

// DefaultSize is how many products a request returns when no size is given.
const DefaultSize = 4

// Service handles randomized product retrieval.
type Service struct {
	repo Repository

	// seed produces the shuffle seed for each request. Overridden in tests.
	seed func() int64
}

// New creates a retrieve service.
func New(repo Repository) *Service {
	return &Service{
		repo: repo,
		seed: func() int64 { return time.Now().UnixNano() },
	}
}

// Random returns up to size products of the tenant in random order. Sizes
// <= 0 fall back to the default. Embedding vectors are stripped from the
// results before they leave the service.
func (s *Service) Random(ctx context.Context, tenantID string, size int) ([]domain.Product, error) {
	if size <= 0 {
		size = DefaultSize
	}

	products, err := s.repo.Random(ctx, tenantID, size, s.seed())
	if err != nil {
		return nil, fmt.Errorf("random sample for tenant %s: %w", tenantID, err)
	}

	for i := range products {
		products[i].StripEmbedding()
	}
	return products, nil
}
