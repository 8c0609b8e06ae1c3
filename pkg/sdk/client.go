package prodex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/shelfstream/prodex/internal/creds"
	dbRedis "github.com/shelfstream/prodex/internal/db/redis"
	"github.com/shelfstream/prodex/internal/domain"
	dombatch "github.com/shelfstream/prodex/internal/domain/batch"
	productrepo "github.com/shelfstream/prodex/internal/repository/product"
	s3store "github.com/shelfstream/prodex/internal/storage/s3"
	healthuc "github.com/shelfstream/prodex/internal/usecase/health"
	ingestuc "github.com/shelfstream/prodex/internal/usecase/ingest"
	retrieveuc "github.com/shelfstream/prodex/internal/usecase/retrieve"
	"github.com/shelfstream/prodex/internal/validate"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultOpTimeout        = 5 * time.Second
	defaultUploadTimeout    = 30 * time.Second
	defaultPoolSize         = 16
)

// Internal seams for tests.
type ingestUseCase interface {
	Ingest(ctx context.Context, tenantID string, body []byte) ([]dombatch.Result, error)
}

type retrieveUseCase interface {
	Random(ctx context.Context, tenantID string, size int) ([]domain.Product, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the prodex embedded client entry point.
type Client struct {
	store     *dbRedis.Store
	pool      *ants.Pool
	ingestSvc ingestUseCase
	retrSvc   retrieveUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a prodex Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("prodex: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:     cfg.addrs,
		Username:  cfg.username,
		Password:  cfg.password,
		DB:        cfg.db,
		OpTimeout: defaultOpTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("prodex: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("prodex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return wireClient(ctx, store, cfg, obs)
}

func wireClient(ctx context.Context, store *dbRedis.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	repo := productrepo.New(store, cfg.sampleCap)
	if err := repo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("prodex: ensure index: %w", err)
	}

	poolSize := cfg.poolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("prodex: create worker pool: %w", err)
	}

	var media ingestuc.MediaStore = noMediaStore{}
	var mediaPinger healthuc.MediaPinger
	if cfg.s3 != nil {
		m, err := s3store.New(s3store.Config{
			Region:        cfg.s3.Region,
			Bucket:        cfg.s3.Bucket,
			Endpoint:      cfg.s3.Endpoint,
			AccessKey:     cfg.s3.AccessKey,
			SecretKey:     cfg.s3.SecretKey,
			PublicBaseURL: cfg.s3.PublicBaseURL,
			Timeout:       defaultUploadTimeout,
		})
		if err != nil {
			pool.Release()
			store.Close()
			return nil, fmt.Errorf("prodex: create media store: %w", err)
		}
		media = m
		mediaPinger = m
	}

	// Embedder: noop unless configured; Ingest then fails per item.
	var domEmb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	var credSource domain.CredentialSource = creds.NewStatic(cfg.credential)
	if cfg.creds != nil {
		credSource = &credsAdapter{inner: cfg.creds}
	}

	logger := zap.NewNop()
	ingestSvc := ingestuc.New(ingestuc.Config{
		Validator:  validate.New(),
		Images:     ingestuc.NewImageUploader(media, 0, logger),
		Embedder:   domEmb,
		Creds:      credSource,
		Repo:       repo,
		Pool:       pool,
		Dimensions: cfg.dimensions,
		Logger:     logger,
	})

	return &Client{
		store:     store,
		pool:      pool,
		ingestSvc: ingestSvc,
		retrSvc:   retrieveuc.New(repo),
		healthSvc: healthuc.New(store, nil, mediaPinger),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Release()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ingest runs the ingestion pipeline for one product or a slice of them.
// Results match the input order; a failed item never aborts its siblings.
func (c *Client) Ingest(ctx context.Context, tenantID string, items any) (results []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("prodex: marshal items: %w", err)
	}

	batchResults, err := c.ingestSvc.Ingest(ctx, tenantID, body)
	if err != nil {
		return nil, fmt.Errorf("prodex: ingest: %w", err)
	}

	results = make([]Result, len(batchResults))
	for i, r := range batchResults {
		results[i] = Result{
			SKU: r.SKU(),
			OK:  r.Status() == dombatch.StatusOK,
			Err: r.Err(),
		}
	}
	return results, nil
}

// Retrieve returns up to size random products of the tenant, without
// embedding vectors. size <= 0 uses the server default.
func (c *Client) Retrieve(ctx context.Context, tenantID string, size int) (products []Product, err error) {
	start := time.Now()
	defer func() { c.obs.observe("retrieve", start, err) }()

	docs, err := c.retrSvc.Random(ctx, tenantID, size)
	if err != nil {
		return nil, fmt.Errorf("prodex: retrieve: %w", err)
	}

	products = make([]Product, len(docs))
	for i, d := range docs {
		products[i] = productFromDomain(d)
	}
	return products, nil
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded"
	Checks map[string]string // component -> "ok"/"error"
}

// Health checks the health of all wired components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, credential, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, credential, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Vector:       r.Vector,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// credsAdapter wraps the public CredentialSource.
type credsAdapter struct {
	inner CredentialSource
}

func (a *credsAdapter) Token(ctx context.Context) (string, error) {
	return a.inner.Token(ctx)
}

// noMediaStore fails image uploads when no bucket is configured; products
// without images ingest fine.
type noMediaStore struct{}

func (noMediaStore) Put(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("prodex: media store not configured (use WithS3)")
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(context.Context, string, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"prodex: embedder not configured (use WithEmbedder)",
	)
}
