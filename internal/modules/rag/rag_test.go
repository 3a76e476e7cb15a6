package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muminalshawaf/book-extractor-sub002/internal/config"
	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) Model() string { return "fake-embed-1" }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu       sync.Mutex
	rows     []models.PageSummary
	listErr  error
	updated  map[string]models.FloatVector
	updateAt map[string]time.Time
}

func newFakeStore(rows []models.PageSummary) *fakeStore {
	return &fakeStore{
		rows:     rows,
		updated:  make(map[string]models.FloatVector),
		updateAt: make(map[string]time.Time),
	}
}

func (f *fakeStore) ListEmbedded(ctx context.Context, bookID string, maxPage int, model string) ([]models.PageSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.PageSummary
	for _, r := range f.rows {
		if r.BookID == bookID && r.PageNumber <= maxPage && r.HasEmbedding(model) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByBook(ctx context.Context, bookID string) ([]models.PageSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.PageSummary
	for _, r := range f.rows {
		if r.BookID == bookID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateEmbedding(ctx context.Context, id string, vector models.FloatVector, model string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = vector
	f.updateAt[id] = at
	return nil
}

func testRow(id string, page int, vector models.FloatVector) models.PageSummary {
	row := models.PageSummary{
		BookID:     "book-1",
		PageNumber: page,
		Title:      fmt.Sprintf("Lesson %d", page),
		OCRText:    fmt.Sprintf("content of page %d", page),
		Embedding:  vector,
	}
	row.ID = id
	if vector != nil {
		row.EmbeddingModel = "fake-embed-1"
	}
	return row
}

func ragConfig() config.RAGConfig {
	return config.RAGConfig{
		Enabled:             true,
		MaxContextPages:     3,
		SimilarityThreshold: 0.5,
		MaxContextLength:    4000,
	}
}

func TestRetrieveDisabledMakesNoProviderCalls(t *testing.T) {
	emb := &fakeEmbedder{vector: []float32{1, 0}}
	cfg := ragConfig()
	cfg.Enabled = false
	svc := NewService(cfg, emb, newFakeStore(nil), zap.NewNop())

	got := svc.Retrieve(context.Background(), "book-1", 5, "query")
	if got != nil {
		t.Fatalf("Retrieve = %v, want nil", got)
	}
	if emb.callCount() != 0 {
		t.Fatalf("embedder called %d times while disabled", emb.callCount())
	}
}

func TestRetrieveRanksFiltersAndTruncates(t *testing.T) {
	rows := []models.PageSummary{
		testRow("a", 1, models.FloatVector{1, 0}),      // sim 1.0
		testRow("b", 2, models.FloatVector{0.9, 0.1}),  // high
		testRow("c", 3, models.FloatVector{0.7, 0.7}),  // mid
		testRow("d", 4, models.FloatVector{0, 1}),      // sim 0, below threshold
		testRow("e", 5, models.FloatVector{0.99, 0.1}), // high
	}
	emb := &fakeEmbedder{vector: []float32{1, 0}}
	svc := NewService(ragConfig(), emb, newFakeStore(rows), zap.NewNop())

	got := svc.Retrieve(context.Background(), "book-1", 5, "query")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (maxContextPages)", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Similarity > got[i-1].Similarity {
			t.Fatalf("results not sorted by similarity desc: %+v", got)
		}
	}
	for _, r := range got {
		if r.Similarity < 0.5 {
			t.Fatalf("result below threshold: %+v", r)
		}
		if r.PageNumber == 4 {
			t.Fatal("orthogonal page survived threshold")
		}
	}
}

func TestRetrieveExcludesLaterPages(t *testing.T) {
	rows := []models.PageSummary{
		testRow("a", 1, models.FloatVector{1, 0}),
		testRow("b", 9, models.FloatVector{1, 0}), // later than current page
	}
	emb := &fakeEmbedder{vector: []float32{1, 0}}
	svc := NewService(ragConfig(), emb, newFakeStore(rows), zap.NewNop())

	got := svc.Retrieve(context.Background(), "book-1", 5, "query")
	if len(got) != 1 || got[0].PageNumber != 1 {
		t.Fatalf("Retrieve = %+v, want only page 1", got)
	}
}

func TestRetrieveFailsSoft(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		emb := &fakeEmbedder{err: errors.New("provider down")}
		svc := NewService(ragConfig(), emb, newFakeStore(nil), zap.NewNop())
		if got := svc.Retrieve(context.Background(), "book-1", 5, "query"); got != nil {
			t.Fatalf("Retrieve = %v, want nil", got)
		}
	})
	t.Run("store failure", func(t *testing.T) {
		emb := &fakeEmbedder{vector: []float32{1, 0}}
		store := newFakeStore(nil)
		store.listErr = errors.New("index unavailable")
		svc := NewService(ragConfig(), emb, store, zap.NewNop())
		if got := svc.Retrieve(context.Background(), "book-1", 5, "query"); got != nil {
			t.Fatalf("Retrieve = %v, want nil", got)
		}
	})
}

func TestBuildContextBlockBudget(t *testing.T) {
	results := []Context{
		{PageNumber: 1, Title: "Intro", Content: strings.Repeat("a", 50)},
		{PageNumber: 2, Title: "Motion", Content: strings.Repeat("b", 50)},
		{PageNumber: 3, Title: "Forces", Content: strings.Repeat("c", 50)},
	}

	t.Run("all fit", func(t *testing.T) {
		block := BuildContextBlock(results, 4000)
		for _, want := range []string{"Page 1 (Intro):", "Page 2 (Motion):", "Page 3 (Forces):"} {
			if !strings.Contains(block, want) {
				t.Fatalf("block missing %q:\n%s", want, block)
			}
		}
	})

	t.Run("overflow entry truncated with ellipsis and assembly stops", func(t *testing.T) {
		first := formatEntry(results[0])
		budget := len([]rune(first)) + 20

		block := BuildContextBlock(results, budget)
		if len([]rune(block)) > budget {
			t.Fatalf("block length %d exceeds budget %d", len([]rune(block)), budget)
		}
		if !strings.HasSuffix(block, "...") {
			t.Fatalf("truncated block must end with ellipsis: %q", block)
		}
		if strings.Contains(block, "Forces") {
			t.Fatal("lower-ranked entry appended after truncation")
		}
	})

	t.Run("never exceeds budget", func(t *testing.T) {
		for budget := 1; budget < 200; budget += 7 {
			block := BuildContextBlock(results, budget)
			if len([]rune(block)) > budget {
				t.Fatalf("budget %d exceeded: %d chars", budget, len([]rune(block)))
			}
		}
	})
}
