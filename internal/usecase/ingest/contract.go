package ingest

import (
	"context"
	"encoding/json"

	"github.com/shelfstream/prodex/internal/domain"
	"github.com/shelfstream/prodex/internal/validate"
)

// Validator checks and maps raw item JSON into a domain product.
type Validator interface {
	Product(raw json.RawMessage) (domain.Product, validate.Errors)
}

// ImageResolver uploads every image reference of a product and returns the
// hosted URLs in input order.
type ImageResolver interface {
	Resolve(ctx context.Context, tenantID, sku string, refs []string) ([]string, error)
}

// MediaStore uploads a single object and returns its public URL.
type MediaStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Indexer persists finished products to the search index.
type Indexer interface {
	Upsert(ctx context.Context, p *domain.Product) (string, error)
}
