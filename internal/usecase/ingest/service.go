// Package ingest runs the product ingestion pipeline: validate, upload
// images, embed, stamp, index. A batch fans out across a shared worker pool
// and every item settles independently.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/shelfstream/prodex/internal/domain"
	"github.com/shelfstream/prodex/internal/domain/batch"
	"github.com/shelfstream/prodex/internal/metrics"
)

// Service orchestrates batch product ingestion.
type Service struct {
	validator  Validator
	images     ImageResolver
	embedder   domain.Embedder
	creds      domain.CredentialSource
	repo       Indexer
	pool       *ants.Pool
	dimensions int
	logger     *zap.Logger
}

// Config wires the service collaborators.
type Config struct {
	Validator  Validator
	Images     ImageResolver
	Embedder   domain.Embedder
	Creds      domain.CredentialSource
	Repo       Indexer
	Pool       *ants.Pool
	Dimensions int
	Logger     *zap.Logger
}

// New creates the ingestion service.
func New(cfg Config) *Service {
	return &Service{
		validator:  cfg.Validator,
		images:     cfg.Images,
		embedder:   cfg.Embedder,
		creds:      cfg.Creds,
		repo:       cfg.Repo,
		pool:       cfg.Pool,
		dimensions: cfg.Dimensions,
		logger:     cfg.Logger,
	}
}

// Ingest processes a request body holding one product object or an array of
// them. The returned results match the input order; an item failure never
// aborts its siblings. A non-nil error means the whole request failed before
// any item ran.
func (s *Service) Ingest(ctx context.Context, tenantID string, body []byte) ([]batch.Result, error) {
	items, err := splitItems(body)
	if err != nil {
		return nil, domain.NewInput("Invalid JSON in request body", nil)
	}

	// One credential per request, shared by every item pipeline.
	credential, err := s.creds.Token(ctx)
	if err != nil {
		return nil, domain.NewUpstream("Failed to get embedding credential", err)
	}

	start := time.Now()
	results := make([]batch.Result, len(items))

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		idx, item := i, items[i]

		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Ingest item panicked",
						zap.String("tenant_id", tenantID),
						zap.Int("index", idx),
						zap.Any("panic", r),
					)
					results[idx] = batch.NewError("", fmt.Errorf("internal error"))
				}
			}()
			results[idx] = s.processOne(ctx, tenantID, credential, item)
		})
		if submitErr != nil {
			wg.Done()
			results[idx] = batch.NewError("", fmt.Errorf("submit item: %w", submitErr))
		}
	}
	wg.Wait()

	metrics.IngestBatchDuration.Observe(time.Since(start).Seconds())
	for _, r := range results {
		if r.Status() == batch.StatusOK {
			metrics.IngestItemsTotal.WithLabelValues("success").Inc()
		} else {
			metrics.IngestItemsTotal.WithLabelValues("error").Inc()
		}
	}

	return results, nil
}

// processOne runs the full pipeline for a single item.
func (s *Service) processOne(ctx context.Context, tenantID, credential string, raw json.RawMessage) batch.Result {
	product, verrs := s.validator.Product(raw)
	if len(verrs) > 0 {
		return batch.NewError(product.SKU, verrs)
	}

	product.TenantID = tenantID

	if len(product.Images) > 0 {
		urls, err := s.images.Resolve(ctx, tenantID, product.SKU, product.Images)
		if err != nil {
			return batch.NewError(product.SKU,
				domain.NewUpstream("Failed to upload one or more images", err))
		}
		product.Images = urls
	}

	text, err := product.EmbeddingText()
	if err != nil {
		return batch.NewError(product.SKU, domain.NewUpstream("Failed to get embedding", err))
	}

	result, err := s.embedder.Embed(ctx, credential, text)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
			return batch.NewError(product.SKU, err)
		}
		return batch.NewError(product.SKU, domain.NewUpstream("Failed to get embedding", err))
	}

	if s.dimensions > 0 && len(result.Vector) != s.dimensions {
		return batch.NewError(product.SKU, domain.NewUpstream(
			"Failed to get embedding",
			fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(result.Vector), s.dimensions),
		))
	}
	product.Embedding = result.Vector

	product.Stamp(time.Now())

	key, err := s.repo.Upsert(ctx, &product)
	if err != nil {
		return batch.NewError(product.SKU, domain.NewUpstream("Failed to index document", err))
	}

	s.logger.Debug("Product indexed",
		zap.String("tenant_id", tenantID),
		zap.String("sku", product.SKU),
		zap.String("key", key),
	)
	return batch.NewOK(product.SKU)
}

// splitItems accepts a single JSON object or an array of objects and returns
// the items in order.
func splitItems(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parse array: %w", err)
		}
		return items, nil
	}

	var obj json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("parse object: %w", err)
	}
	return []json.RawMessage{obj}, nil
}
