package prodex

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shelfstream/prodex/internal/domain"
	dombatch "github.com/shelfstream/prodex/internal/domain/batch"
	healthuc "github.com/shelfstream/prodex/internal/usecase/health"
)

type mockIngest struct {
	fn func(ctx context.Context, tenantID string, body []byte) ([]dombatch.Result, error)
}

func (m *mockIngest) Ingest(ctx context.Context, tenantID string, body []byte) ([]dombatch.Result, error) {
	return m.fn(ctx, tenantID, body)
}

type mockRetrieve struct {
	fn func(ctx context.Context, tenantID string, size int) ([]domain.Product, error)
}

func (m *mockRetrieve) Random(ctx context.Context, tenantID string, size int) ([]domain.Product, error) {
	return m.fn(ctx, tenantID, size)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func TestClient_Ingest_MarshalsItemsAndMapsResults(t *testing.T) {
	var gotTenant, gotBody string
	c := &Client{
		ingestSvc: &mockIngest{fn: func(_ context.Context, tenantID string, body []byte) ([]dombatch.Result, error) {
			gotTenant = tenantID
			gotBody = string(body)
			return []dombatch.Result{
				dombatch.NewOK("SKU-1"),
				dombatch.NewError("SKU-2", errors.New("validation failed")),
			}, nil
		}},
	}

	items := []map[string]any{{"sku": "SKU-1"}, {"sku": "SKU-2"}}
	results, err := c.Ingest(context.Background(), "acme", items)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if gotTenant != "acme" {
		t.Errorf("tenant = %q, want %q", gotTenant, "acme")
	}
	if !strings.HasPrefix(gotBody, "[") {
		t.Errorf("body = %q, want a JSON array", gotBody)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if !results[0].OK || results[0].SKU != "SKU-1" {
		t.Errorf("results[0] = %+v, want ok SKU-1", results[0])
	}
	if results[1].OK || results[1].Err == nil {
		t.Errorf("results[1] = %+v, want failed with error", results[1])
	}
}

func TestClient_Ingest_RequestLevelError(t *testing.T) {
	wantErr := errors.New("credential fetch failed")
	c := &Client{
		ingestSvc: &mockIngest{fn: func(context.Context, string, []byte) ([]dombatch.Result, error) {
			return nil, wantErr
		}},
	}

	_, err := c.Ingest(context.Background(), "acme", map[string]any{"sku": "SKU-1"})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapping %v", err, wantErr)
	}
}

func TestClient_Retrieve_ConvertsProducts(t *testing.T) {
	var gotSize int
	c := &Client{
		retrSvc: &mockRetrieve{fn: func(_ context.Context, _ string, size int) ([]domain.Product, error) {
			gotSize = size
			return []domain.Product{
				{
					SKU:      "SKU-1",
					TenantID: "acme",
					Name:     "Mug",
					Price:    9.99,
					Currency: "EUR",
					Reviews:  []domain.Review{{User: "ada", Rating: 5}},
					Location: &domain.Location{Aisle: "A1"},
				},
			}, nil
		}},
	}

	products, err := c.Retrieve(context.Background(), "acme", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if gotSize != 3 {
		t.Errorf("size = %d, want 3", gotSize)
	}
	if len(products) != 1 {
		t.Fatalf("len(products) = %d, want 1", len(products))
	}
	p := products[0]
	if p.SKU != "SKU-1" || p.Name != "Mug" || p.Currency != "EUR" {
		t.Errorf("product = %+v", p)
	}
	if len(p.Reviews) != 1 || p.Reviews[0].User != "ada" {
		t.Errorf("reviews = %+v, want one review by ada", p.Reviews)
	}
	if p.Location == nil || p.Location.Aisle != "A1" {
		t.Errorf("location = %+v, want aisle A1", p.Location)
	}
}

func TestClient_Health(t *testing.T) {
	c := &Client{
		healthSvc: &mockHealth{report: healthuc.Report{
			Status: healthuc.Degraded,
			Checks: map[string]healthuc.CheckResult{
				"database": healthuc.CheckOK,
				"media":    healthuc.CheckError,
			},
		}},
	}

	status := c.Health(context.Background())

	if status.Status != "degraded" {
		t.Errorf("status = %q, want %q", status.Status, "degraded")
	}
	if status.Checks["media"] != "error" {
		t.Errorf("checks[media] = %q, want error", status.Checks["media"])
	}
}

func TestNew_RequiresAddress(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error without a database address")
	}
}

func TestNoopEmbedder(t *testing.T) {
	_, err := noopEmbedder{}.Embed(context.Background(), "cred", "text")
	if err == nil {
		t.Fatal("expected error from unconfigured embedder")
	}
}

func TestNoMediaStore(t *testing.T) {
	_, err := noMediaStore{}.Put(context.Background(), "k", "image/png", nil)
	if err == nil {
		t.Fatal("expected error from unconfigured media store")
	}
}
