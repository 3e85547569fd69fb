package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/tavvy/article-import-api/internal/mocks"
	"github.com/tavvy/article-import-api/internal/models"
	"github.com/tavvy/article-import-api/internal/repository"
)

// These tests exercise the repository contracts through the in-memory
// implementations. The Postgres implementations share the same interfaces
// and are covered by integration runs against a real database.

func TestBulkUpsert_InsertOnly(t *testing.T) {
	var repo repository.ArticleRepository = mocks.NewMockArticleRepository()
	ctx := context.Background()

	first, err := repo.BulkUpsert(ctx, []*models.Article{
		{Slug: "a", Title: "A"},
		{Slug: "b", Title: "B"},
	}, false)
	if err != nil {
		t.Fatalf("BulkUpsert failed: %v", err)
	}
	if first.Inserted != 2 || first.Updated != 0 || first.Skipped != 0 {
		t.Errorf("unexpected first result: %+v", first)
	}

	// Resubmitting an existing slug without update_existing skips it
	second, err := repo.BulkUpsert(ctx, []*models.Article{
		{Slug: "a", Title: "A2"},
		{Slug: "c", Title: "C"},
	}, false)
	if err != nil {
		t.Fatalf("BulkUpsert failed: %v", err)
	}
	if second.Inserted != 1 || second.Skipped != 1 {
		t.Errorf("unexpected second result: %+v", second)
	}

	kept, _ := repo.GetBySlug(ctx, "a")
	if kept.Title != "A" {
		t.Errorf("skipped row must not overwrite, got title %q", kept.Title)
	}
}

func TestBulkUpsert_UpdateExisting(t *testing.T) {
	var repo repository.ArticleRepository = mocks.NewMockArticleRepository()
	ctx := context.Background()

	repo.BulkUpsert(ctx, []*models.Article{{Slug: "a", Title: "A"}}, false)

	result, err := repo.BulkUpsert(ctx, []*models.Article{
		{Slug: "a", Title: "A2"},
		{Slug: "b", Title: "B"},
	}, true)
	if err != nil {
		t.Fatalf("BulkUpsert failed: %v", err)
	}
	if result.Inserted != 1 || result.Updated != 1 || result.Skipped != 0 {
		t.Errorf("unexpected result: %+v", result)
	}

	updated, _ := repo.GetBySlug(ctx, "a")
	if updated.Title != "A2" {
		t.Errorf("expected overwrite, got title %q", updated.Title)
	}
}

func TestBulkUpsert_DuplicateSlugsInBatch(t *testing.T) {
	var repo repository.ArticleRepository = mocks.NewMockArticleRepository()
	ctx := context.Background()

	result, err := repo.BulkUpsert(ctx, []*models.Article{
		{Slug: "a", Title: "first"},
		{Slug: "a", Title: "last"},
	}, true)
	if err != nil {
		t.Fatalf("BulkUpsert failed: %v", err)
	}

	// Duplicates within one batch collapse to the last occurrence rather than
	// counting an insert and an update for the same row
	if result.Inserted != 1 || result.Updated != 0 {
		t.Errorf("unexpected result: %+v", result)
	}

	stored, _ := repo.GetBySlug(ctx, "a")
	if stored.Title != "last" {
		t.Errorf("last occurrence must win, got %q", stored.Title)
	}
}

func TestUpsertResult_Add(t *testing.T) {
	total := &models.UpsertResult{}
	total.Add(&models.UpsertResult{Inserted: 2, Updated: 1})
	total.Add(&models.UpsertResult{Inserted: 1, Skipped: 3})

	if total.Inserted != 3 || total.Updated != 1 || total.Skipped != 3 {
		t.Errorf("unexpected totals: %+v", total)
	}
}

// A pending job may be claimed exactly once even under concurrent pollers.
func TestMarkJobAsProcessing_ClaimOnce(t *testing.T) {
	repo := mocks.NewMockJobRepository()
	ctx := context.Background()

	repo.Create(ctx, &models.ImportJob{ID: "job-1", Status: models.JobStatusPending})

	const workers = 8
	var wg sync.WaitGroup
	claims := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := repo.MarkJobAsProcessing(ctx, "job-1")
			if err != nil {
				t.Errorf("MarkJobAsProcessing failed: %v", err)
				return
			}
			claims <- claimed
		}()
	}
	wg.Wait()
	close(claims)

	var claimed int
	for c := range claims {
		if c {
			claimed++
		}
	}
	if claimed != 1 {
		t.Errorf("expected exactly one claim, got %d", claimed)
	}
}

func TestGetIssues_Limit(t *testing.T) {
	repo := mocks.NewMockJobRepository()
	ctx := context.Background()

	issues := make([]models.RowIssue, 10)
	for i := range issues {
		issues[i] = models.RowIssue{Line: i + 2, Severity: models.SeverityError, Message: "bad row"}
	}
	repo.AddIssues(ctx, "job-1", issues)

	limited, err := repo.GetIssues(ctx, "job-1", 3)
	if err != nil {
		t.Fatalf("GetIssues failed: %v", err)
	}
	if len(limited) != 3 {
		t.Errorf("expected 3 issues, got %d", len(limited))
	}

	all, _ := repo.GetIssues(ctx, "job-1", 0)
	if len(all) != 10 {
		t.Errorf("limit 0 should return everything, got %d", len(all))
	}
}

func TestStreamAll_Order(t *testing.T) {
	repo := mocks.NewMockArticleRepository()
	ctx := context.Background()

	repo.BulkUpsert(ctx, []*models.Article{
		{Slug: "c"}, {Slug: "a"}, {Slug: "b"},
	}, false)

	var got []string
	err := repo.StreamAll(ctx, func(a *models.Article) error {
		got = append(got, a.Slug)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamAll failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}
}
