package prodex

import (
	"time"

	"github.com/shelfstream/prodex/internal/domain"
)

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

// Product is a retrieved product document. Embedding vectors are never
// returned.
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
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Result is the outcome of one item in an ingestion batch. SKU is empty
// when the item failed before a sku could be extracted.
type Result struct {
	SKU string
	OK  bool
	Err error
}

func productFromDomain(p domain.Product) Product {
	out := Product{
		SKU:         p.SKU,
		TenantID:    p.TenantID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Images:      p.Images,
		Price:       p.Price,
		Currency:    p.Currency,
		InStock:     p.InStock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if len(p.Reviews) > 0 {
		out.Reviews = make([]Review, len(p.Reviews))
		for i, r := range p.Reviews {
			out.Reviews[i] = Review{User: r.User, Rating: r.Rating, Comment: r.Comment}
		}
	}
	if p.Location != nil {
		out.Location = &Location{
			Aisle:   p.Location.Aisle,
			Section: p.Location.Section,
			Shelf:   p.Location.Shelf,
		}
	}
	return out
}
