package embedding

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/shelfstream/prodex/internal/domain"
	"github.com/shelfstream/prodex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// mockEmbedder implements domain.Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, credential, text string) (domain.EmbeddingResult, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, credential, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(ctx, credential, text)
	}
	return domain.EmbeddingResult{Vector: []float32{0.1, 0.2}, TotalTokens: 5, PromptTokens: 5}, nil
}

func TestInstrumentedEmbedder_Delegates(t *testing.T) {
	inner := &mockEmbedder{
		embedFn: func(_ context.Context, credential, text string) (domain.EmbeddingResult, error) {
			if credential != "tok" {
				t.Errorf("credential = %q", credential)
			}
			if text != "payload" {
				t.Errorf("text = %q", text)
			}
			return domain.EmbeddingResult{Vector: []float32{0.5}, TotalTokens: 7}, nil
		},
	}

	emb := NewInstrumentedEmbedder(inner, "vertex", "model-a", nil, zap.NewNop())
	result, err := emb.Embed(context.Background(), "tok", "payload")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Vector) != 1 || result.TotalTokens != 7 {
		t.Errorf("result = %+v", result)
	}
}

func TestInstrumentedEmbedder_BudgetRejects(t *testing.T) {
	inner := &mockEmbedder{}
	bt := NewBudgetTracker("vertex", 10, 0, BudgetActionReject, zap.NewNop())
	bt.Record(10)

	emb := NewInstrumentedEmbedder(inner, "vertex", "model-a", bt, zap.NewNop())

	_, err := emb.Embed(context.Background(), "tok", "payload")
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner called %d times despite rejected budget", inner.calls)
	}
}

func TestInstrumentedEmbedder_RecordsUsage(t *testing.T) {
	inner := &mockEmbedder{
		embedFn: func(_ context.Context, _, _ string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{Vector: []float32{0.1}, TotalTokens: 30}, nil
		},
	}
	bt := NewBudgetTracker("vertex", 100, 0, BudgetActionWarn, zap.NewNop())

	emb := NewInstrumentedEmbedder(inner, "vertex", "model-a", bt, zap.NewNop())
	if _, err := emb.Embed(context.Background(), "tok", "payload"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bt.DailyUsed() != 30 {
		t.Errorf("daily used = %d, want 30", bt.DailyUsed())
	}
}

func TestInstrumentedEmbedder_InnerError(t *testing.T) {
	inner := &mockEmbedder{
		embedFn: func(_ context.Context, _, _ string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError
		},
	}
	bt := NewBudgetTracker("vertex", 100, 0, BudgetActionWarn, zap.NewNop())

	emb := NewInstrumentedEmbedder(inner, "vertex", "model-a", bt, zap.NewNop())
	_, err := emb.Embed(context.Background(), "tok", "payload")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if bt.DailyUsed() != 0 {
		t.Errorf("failed request must not consume budget, used = %d", bt.DailyUsed())
	}
}
