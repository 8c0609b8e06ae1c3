package prodex

import "github.com/shelfstream/prodex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrInvalidEmbeddingShape  = domain.ErrInvalidEmbeddingShape
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
)
