package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidEmbeddingShape signals an embedding response without the expected numeric array.
	ErrInvalidEmbeddingShape = errors.New("invalid embedding response")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrVectorDimMismatch signals an embedding whose length differs from the index dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

// Error is a failure that knows how to present itself to an HTTP caller.
// Status and Message are client-visible; Detail carries optional structured
// client-visible context such as validation errors; cause is kept for server
// logs and never serialized.
type Error struct {
	Status  int
	Message string
	Detail  any
	cause   error
}

// NewInput creates a 400-class error for a malformed or invalid request.
func NewInput(message string, detail any) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message, Detail: detail}
}

// NewUpstream creates a 500-class error for an external collaborator failure.
func NewUpstream(message string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }
