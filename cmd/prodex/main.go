package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/shelfstream/prodex/internal/config"
	"github.com/shelfstream/prodex/internal/creds"
	"github.com/shelfstream/prodex/internal/db"
	dbRedis "github.com/shelfstream/prodex/internal/db/redis"
	"github.com/shelfstream/prodex/internal/domain"
	logpkg "github.com/shelfstream/prodex/internal/logger"
	"github.com/shelfstream/prodex/internal/metrics"
	budgetrepo "github.com/shelfstream/prodex/internal/repository/budget"
	"github.com/shelfstream/prodex/internal/repository/embcache"
	productrepo "github.com/shelfstream/prodex/internal/repository/product"
	s3store "github.com/shelfstream/prodex/internal/storage/s3"
	chiTransport "github.com/shelfstream/prodex/internal/transport/chi"
	openaiEmb "github.com/shelfstream/prodex/internal/transport/openai"
	vertexEmb "github.com/shelfstream/prodex/internal/transport/vertex"
	embeddinguc "github.com/shelfstream/prodex/internal/usecase/embedding"
	healthuc "github.com/shelfstream/prodex/internal/usecase/health"
	ingestuc "github.com/shelfstream/prodex/internal/usecase/ingest"
	retrieveuc "github.com/shelfstream/prodex/internal/usecase/retrieve"
	"github.com/shelfstream/prodex/internal/validate"
	"github.com/shelfstream/prodex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prodex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:     cfg.Database.Addrs,
		Username:  cfg.Database.Username,
		Password:  cfg.Database.Password,
		DB:        cfg.Database.DB,
		OpTimeout: time.Duration(cfg.Database.OpTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIngestMetrics()

	productRepo := productrepo.New(store, cfg.Ingest.SampleCap)
	if err := productRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	}
	logger.Info("Product index ready", zap.String("index", productrepo.IndexName))

	media, err := s3store.New(s3store.Config{
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		Timeout:       time.Duration(cfg.Storage.UploadTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create media store", zap.Error(err))
	}

	credSource, err := buildCredentialSource(cfg.Embedding.Credential)
	if err != nil {
		logger.Fatal("Failed to create credential source", zap.Error(err))
	}

	embedder := buildEmbedder(ctx, cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	pool, err := ants.NewPool(cfg.Ingest.PoolSize)
	if err != nil {
		logger.Fatal("Failed to create worker pool", zap.Error(err))
	}
	defer pool.Release()

	images := ingestuc.NewImageUploader(
		media, time.Duration(cfg.Ingest.ImageFetchTimeoutSec)*time.Second, logger,
	)

	ingestSvc := ingestuc.New(ingestuc.Config{
		Validator:  validate.New(),
		Images:     images,
		Embedder:   embedder,
		Creds:      credSource,
		Repo:       productRepo,
		Pool:       pool,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	retrieveSvc := retrieveuc.New(productRepo)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder), media)

	server := chiTransport.NewServer(ingestSvc, retrieveSvc, healthSvc, logger)
	r := chiTransport.NewRouter(server,
		jsonRecoverer(logger),
		chiMiddleware.RequestID,
		wideEventMiddleware(logger),
		metrics.Middleware(),
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildCredentialSource picks the credential source configured for the
// embedding provider.
func buildCredentialSource(cfg config.CredentialConfig) (domain.CredentialSource, error) {
	switch cfg.Source {
	case "static":
		return creds.NewStatic(cfg.Token), nil
	case "env":
		if cfg.Env == "" {
			return nil, fmt.Errorf("embedding.credential.env is required for the env source")
		}
		return creds.NewEnv(cfg.Env), nil
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("embedding.credential.path is required for the file source")
		}
		return creds.NewFile(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown credential source %q", cfg.Source)
	}
}

// buildEmbedder assembles the decorator chain: provider -> cached -> instrumented.
func buildEmbedder(
	ctx context.Context, cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger,
) domain.Embedder {
	var base domain.Embedder
	switch cfg.Provider {
	case "openai":
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
			Logger:     logger,
		})
	default:
		base = vertexEmb.NewEmbedder(&vertexEmb.Config{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			TaskType: cfg.TaskType,
			Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
			Logger:   logger,
		})
	}

	embedder := base
	if store != nil {
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}

	// Single BudgetTracker persisted in the store so restarts keep the spend.
	var budgetChecker embeddinguc.BudgetChecker
	budgetCfg := cfg.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := embeddinguc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = embeddinguc.BudgetActionReject
		}
		budget := embeddinguc.NewBudgetTracker(
			cfg.Provider, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		budget.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
		budgetChecker = budget
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, budgetChecker, logger)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"message": "Internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
