package chi

import (
	"context"

	"go.uber.org/zap"

	"github.com/shelfstream/prodex/internal/domain"
	"github.com/shelfstream/prodex/internal/domain/batch"
	healthuc "github.com/shelfstream/prodex/internal/usecase/health"
)

type mockIngestor struct {
	ingestFn func(ctx context.Context, tenantID string, body []byte) ([]batch.Result, error)
}

func (m *mockIngestor) Ingest(ctx context.Context, tenantID string, body []byte) ([]batch.Result, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, tenantID, body)
	}
	return []batch.Result{batch.NewOK("SKU-1")}, nil
}

type mockRetriever struct {
	randomFn func(ctx context.Context, tenantID string, size int) ([]domain.Product, error)
}

func (m *mockRetriever) Random(ctx context.Context, tenantID string, size int) ([]domain.Product, error) {
	if m.randomFn != nil {
		return m.randomFn(ctx, tenantID, size)
	}
	return []domain.Product{}, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report {
	if m.report.Status == "" {
		return healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}
	}
	return m.report
}

func newTestServer(ingest *mockIngestor, retrieve *mockRetriever, health *mockHealth) *Server {
	if ingest == nil {
		ingest = &mockIngestor{}
	}
	if retrieve == nil {
		retrieve = &mockRetriever{}
	}
	if health == nil {
		health = &mockHealth{}
	}
	return NewServer(ingest, retrieve, health, zap.NewNop())
}
