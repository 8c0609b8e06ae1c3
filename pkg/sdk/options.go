package prodex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// S3Config holds media bucket settings for the embedded client.
type S3Config struct {
	Region        string
	Bucket        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type clientConfig struct {
	addrs    []string
	username string
	password string
	db       int

	s3         *S3Config
	embedder   Embedder
	creds      CredentialSource
	credential string

	dimensions int
	sampleCap  int
	poolSize   int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisDB selects a logical database number.
func WithRedisDB(db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = db
	})
}

// WithS3 configures the media bucket images are uploaded to.
// Required for Ingest when products carry images.
func WithS3(cfg S3Config) Option {
	return optionFunc(func(c *clientConfig) {
		c.s3 = &cfg
	})
}

// WithEmbedder sets the embedding provider. Required for Ingest.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithCredential sets a fixed embedding credential.
func WithCredential(token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.credential = token
	})
}

// WithCredentialSource sets a credential source consulted once per Ingest
// call. Takes precedence over WithCredential.
func WithCredentialSource(cs CredentialSource) Option {
	return optionFunc(func(c *clientConfig) {
		c.creds = cs
	})
}

// WithVectorDimensions sets the expected embedding length.
// 0 (default) accepts any vector length.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithSampleCap bounds the candidate pool Retrieve samples from.
// Default: 256.
func WithSampleCap(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.sampleCap = n
	})
}

// WithPoolSize sets the size of the ingestion worker pool.
// Default: 16.
func WithPoolSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.poolSize = n
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
