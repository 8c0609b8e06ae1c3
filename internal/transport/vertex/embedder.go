// Package vertex is an embedding provider speaking the Vertex AI prediction
// protocol. The bearer credential is supplied per call rather than at
// construction because upstream tokens are short-lived.
package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shelfstream/prodex/internal/domain"
	"github.com/shelfstream/prodex/internal/metrics"
)

const providerName = "vertex"

// Embedder calls a Vertex AI prediction endpoint for embeddings.
type Embedder struct {
	httpClient *http.Client
	endpoint   string
	model      string
	taskType   string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	// Endpoint is the full predict URL of the deployed embedding model.
	Endpoint string
	Model    string
	// TaskType tags the instance for the model. Defaults to RETRIEVAL_QUERY.
	TaskType string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewEmbedder creates a Vertex AI embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	taskType := cfg.TaskType
	if taskType == "" {
		taskType = "RETRIEVAL_QUERY"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Embedder{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		taskType:   taskType,
		logger:     cfg.Logger,
	}
}

type instance struct {
	TaskType string `json:"task_type"`
	Content  string `json:"content"`
}

type predictRequest struct {
	Instances []instance `json:"instances"`
}

type predictResponse struct {
	Predictions []struct {
		Embeddings struct {
			Values     []float32 `json:"values"`
			Statistics struct {
				TokenCount int `json:"token_count"`
			} `json:"statistics"`
		} `json:"embeddings"`
	} `json:"predictions"`
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, credential, text string) (domain.EmbeddingResult, error) {
	body, err := json.Marshal(predictRequest{
		Instances: []instance{{TaskType: e.taskType, Content: text}},
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "transport_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("predict request failed: %w: %w",
			domain.ErrEmbeddingProviderError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "read_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("read predict response: %w: %w",
			domain.ErrEmbeddingProviderError, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "api_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("embedding API error %d: %s: %w",
			resp.StatusCode, string(raw), domain.ErrEmbeddingProviderError)
	}

	var parsed predictResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "invalid_shape").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("decode predict response: %w", domain.ErrInvalidEmbeddingShape)
	}
	// An empty values array is treated the same as a missing prediction:
	// a zero-length vector can never index or match anything downstream,
	// so it is rejected here with the provider context attached.
	if len(parsed.Predictions) == 0 || len(parsed.Predictions[0].Embeddings.Values) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "invalid_shape").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("predict response has no embedding values: %w",
			domain.ErrInvalidEmbeddingShape)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())

	tokens := parsed.Predictions[0].Embeddings.Statistics.TokenCount
	if tokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(providerName, e.model, "prompt").Add(float64(tokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(providerName, e.model, "total").Add(float64(tokens))
	}

	return domain.EmbeddingResult{
		Vector:       parsed.Predictions[0].Embeddings.Values,
		PromptTokens: tokens,
		TotalTokens:  tokens,
	}, nil
}

// HealthCheck reports provider reachability. The predict endpoint rejects
// unauthenticated GETs, so any HTTP response at all counts as reachable.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("embedding endpoint unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
