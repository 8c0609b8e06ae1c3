// Package product persists product documents and serves randomized
// tenant-scoped samples from the search index.
package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/shelfstream/prodex/internal/db"
	"github.com/shelfstream/prodex/internal/domain"
)

const (
	// IndexName is the FT index over all product documents.
	IndexName = domain.KeyPrefix + "products:idx"

	keyPrefix = domain.KeyPrefix + "product:"

	// defaultSampleCap bounds how many documents a random sample draws from.
	defaultSampleCap = 256
)

// store is the consumer interface for products (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements the product repository over the search store.
type Repo struct {
	store     store
	sampleCap int
}

// New creates a product repository. sampleCap bounds the candidate pool for
// Random; values <= 0 fall back to the default.
func New(s store, sampleCap int) *Repo {
	if sampleCap <= 0 {
		sampleCap = defaultSampleCap
	}
	return &Repo{store: s, sampleCap: sampleCap}
}

// EnsureIndex creates the product FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := db.NewIndex(IndexName).
		OnJSON().
		Prefix(keyPrefix).
		TagAs("$.tenantId", "tenant").
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// Upsert writes a product document under a fresh key and returns the key.
// Every ingestion writes a new entry; documents are never overwritten.
func (r *Repo) Upsert(ctx context.Context, p *domain.Product) (string, error) {
	key := keyPrefix + uuid.NewString()

	data, err := json.Marshal(p.Projection())
	if err != nil {
		return "", fmt.Errorf("marshal product %s: %w", p.SKU, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return "", fmt.Errorf("json.set %s: %w", key, err)
	}
	return key, nil
}

// Random returns up to size products of the tenant in random order. seed
// drives the shuffle so a fixed seed yields a reproducible sample.
func (r *Repo) Random(ctx context.Context, tenantID string, size int, seed int64) ([]domain.Product, error) {
	query := tenantQuery(tenantID)

	result, err := r.store.SearchList(ctx, IndexName, query, 0, r.sampleCap, []string{"$"})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", IndexName, err)
	}
	if result == nil || len(result.Entries) == 0 {
		return []domain.Product{}, nil
	}

	products := make([]domain.Product, 0, len(result.Entries))
	for _, entry := range result.Entries {
		p, err := parseEntry(entry)
		if err != nil {
			continue
		}
		products = append(products, p)
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(products), func(i, j int) {
		products[i], products[j] = products[j], products[i]
	})

	if size > 0 && len(products) > size {
		products = products[:size]
	}
	return products, nil
}

// Count returns how many documents the tenant has in the index.
func (r *Repo) Count(ctx context.Context, tenantID string) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, tenantQuery(tenantID))
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", IndexName, err)
	}
	return n, nil
}

func tenantQuery(tenantID string) string {
	return fmt.Sprintf("@tenant:{%s}", db.EscapeTag(tenantID))
}
