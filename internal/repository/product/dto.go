package product

import (
	"encoding/json"
	"fmt"

	"github.com/shelfstream/prodex/internal/db"
	"github.com/shelfstream/prodex/internal/domain"
)

// parseEntry converts a search hit back into a domain Product. The JSON
// returned under "$" is the full document as written by Upsert.
func parseEntry(entry db.SearchEntry) (domain.Product, error) {
	raw := entry.Fields["$"]
	if raw == "" {
		return domain.Product{}, fmt.Errorf("entry %s has no document payload", entry.Key)
	}

	var p domain.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.Product{}, fmt.Errorf("unmarshal entry %s: %w", entry.Key, err)
	}
	return p, nil
}
