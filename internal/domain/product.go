package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// KeyPrefix namespaces every key prodex writes to the store.
const KeyPrefix = "prodex:"

// Review is a customer review attached to a product.
type Review struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Location describes where a product sits in a physical store.
type Location struct {
	Aisle   string `json:"aisle,omitempty"`
	Section string `json:"section,omitempty"`
	Shelf   string `json:"shelf,omitempty"`
}

// Product is a validated product record as persisted to the search index.
// TenantID, Embedding and the timestamps are server-set; clients never
// supply them.
type Product struct {
	SKU         string     `json:"sku"`
	TenantID    string     `json:"tenantId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Brand       string     `json:"brand,omitempty"`
	Images      []string   `json:"images,omitempty"`
	Price       float64    `json:"price"`
	Currency    string     `json:"currency"`
	InStock     *bool      `json:"inStock,omitempty"`
	Reviews     []Review   `json:"reviews,omitempty"`
	Location    *Location  `json:"location,omitempty"`
	Embedding   []float32  `json:"embedding,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Projection returns the exact map persisted to the index: every canonical
// field is extracted explicitly, so a field that is not listed here can never
// reach the store regardless of what came in over the wire.
func (p *Product) Projection() map[string]any {
	out := map[string]any{
		"sku":      p.SKU,
		"tenantId": p.TenantID,
		"name":     p.Name,
		"price":    p.Price,
		"currency": p.Currency,
	}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if p.Category != "" {
		out["category"] = p.Category
	}
	if p.Brand != "" {
		out["brand"] = p.Brand
	}
	if len(p.Images) > 0 {
		out["images"] = p.Images
	}
	if p.InStock != nil {
		out["inStock"] = *p.InStock
	}
	if len(p.Reviews) > 0 {
		out["reviews"] = p.Reviews
	}
	if p.Location != nil {
		out["location"] = p.Location
	}
	if len(p.Embedding) > 0 {
		out["embedding"] = p.Embedding
	}
	if p.CreatedAt != nil {
		out["createdAt"] = p.CreatedAt.Format(time.RFC3339Nano)
	}
	if p.UpdatedAt != nil {
		out["updatedAt"] = p.UpdatedAt.Format(time.RFC3339Nano)
	}
	return out
}

// embeddingPayload is the document view sent to the embedding provider:
// no images, no embedding, no timestamps.
type embeddingPayload struct {
	SKU         string    `json:"sku"`
	TenantID    string    `json:"tenantId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	InStock     *bool     `json:"inStock,omitempty"`
	Reviews     []Review  `json:"reviews,omitempty"`
	Location    *Location `json:"location,omitempty"`
}

// EmbeddingText serializes the product for the embedding request.
func (p *Product) EmbeddingText() (string, error) {
	data, err := json.Marshal(embeddingPayload{
		SKU:         p.SKU,
		TenantID:    p.TenantID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Currency:    p.Currency,
		InStock:     p.InStock,
		Reviews:     p.Reviews,
		Location:    p.Location,
	})
	if err != nil {
		return "", fmt.Errorf("marshal embedding payload: %w", err)
	}
	return string(data), nil
}

// Stamp sets both timestamps to now. Ingestion always writes a fresh entry,
// so createdAt and updatedAt are intentionally equal.
func (p *Product) Stamp(now time.Time) {
	ts := now.UTC()
	p.CreatedAt = &ts
	p.UpdatedAt = &ts
}

// StripEmbedding clears the embedding vector before the product is handed
// back to a caller.
func (p *Product) StripEmbedding() { p.Embedding = nil }
