package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion pipeline Prometheus metrics.
var (
	IngestItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodex",
			Name:      "ingest_items_total",
			Help:      "Total number of ingested batch items",
		},
		[]string{"status"}, // "success" / "error"
	)

	IngestBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prodex",
			Name:      "ingest_batch_duration_seconds",
			Help:      "Batch ingestion duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ImageUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodex",
			Name:      "image_uploads_total",
			Help:      "Total number of image uploads",
		},
		[]string{"kind", "status"}, // kind: "url" / "data_uri" / "base64"
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestItemsTotal)
	prometheus.MustRegister(IngestBatchDuration)
	prometheus.MustRegister(ImageUploadsTotal)
	ingestMetricsRegistered = true
}
