package retrieve

import (
	"context"

	"github.com/shelfstream/prodex/internal/domain"
)

// Repository provides randomized tenant-scoped product samples.
type Repository interface {
	Random(ctx context.Context, tenantID string, size int, seed int64) ([]domain.Product, error)
}
