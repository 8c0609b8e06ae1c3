package domain

import "context"

// Embedder is the shared vectorization contract between layers. credential
// is the short-lived bearer token fetched once per inbound request and
// shared by every document pipeline of that request.
type Embedder interface {
	Embed(ctx context.Context, credential, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CredentialSource yields the embedding-service credential. Implementations
// are long-lived process singletons; the tokens they hand out may be
// short-lived.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}
