package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shelfstream/prodex/internal/domain"
	"github.com/shelfstream/prodex/internal/domain/batch"
	"github.com/shelfstream/prodex/internal/validate"
)

// handleError maps a request-level failure to an HTTP response. Anything
// that is not a *domain.Error becomes an opaque 500; the original error
// stays in the server logs only.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		if shouldLog(derr.Status) {
			s.logger.Error("Request failed", zap.Int("status", derr.Status), zap.Error(err))
		}
		writeError(w, derr.Status, derr.Message, derr.Detail)
		return
	}

	s.logger.Error("Request failed", zap.Int("status", http.StatusInternalServerError), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error", nil)
}

// shouldLog reports whether a status class warrants a server-side log line.
func shouldLog(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

// itemResult is one entry of the ingestion response, matching the input
// order of the batch.
type itemResult struct {
	Success bool `json:"success"`
	Error   any  `json:"error,omitempty"`
}

func itemResultFrom(res batch.Result) itemResult {
	if res.Status() == batch.StatusOK {
		return itemResult{Success: true}
	}
	return itemResult{Success: false, Error: itemError(res.Err())}
}

// itemError shapes a per-item failure for the client. Validation failures
// keep their field-level detail; everything else collapses to a message.
func itemError(err error) any {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return verrs
	}

	var derr *domain.Error
	if errors.As(err, &derr) {
		return errorEnvelope{Message: derr.Message, Detail: derr.Detail}
	}

	if errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		return errorEnvelope{Message: "Embedding quota exceeded"}
	}

	return errorEnvelope{Message: "Internal server error"}
}
