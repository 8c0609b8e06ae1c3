package prodex

import "context"

// Embedder converts text to vector embeddings. credential is the token the
// configured CredentialSource handed out for the current request.
type Embedder interface {
	Embed(ctx context.Context, credential, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// CredentialSource yields the embedding-service credential, fetched once
// per Ingest call.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}
