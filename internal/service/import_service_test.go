package service_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/tavvy/article-import-api/internal/config"
	"github.com/tavvy/article-import-api/internal/mocks"
	"github.com/tavvy/article-import-api/internal/models"
	"github.com/tavvy/article-import-api/internal/repository"
	"github.com/tavvy/article-import-api/internal/service"
)

type testHarness struct {
	services     *service.Services
	articleRepo  *mocks.MockArticleRepository
	categoryRepo *mocks.MockCategoryRepository
	jobRepo      *mocks.MockJobRepository
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	articleRepo := mocks.NewMockArticleRepository()
	categoryRepo := mocks.NewMockCategoryRepository()
	categoryRepo.Slugs["city-guides"] = "11111111-1111-1111-1111-111111111111"
	categoryRepo.Slugs["food"] = "22222222-2222-2222-2222-222222222222"
	jobRepo := mocks.NewMockJobRepository()

	repos := &repository.Repositories{
		Article:  articleRepo,
		Category: categoryRepo,
		Job:      jobRepo,
	}

	cfg := &config.Config{
		Import: config.ImportConfig{
			BatchSize:     2, // small batches so tests exercise chunking
			MaxUploadSize: 10 * 1024 * 1024,
			UploadDir:     t.TempDir(),
		},
	}

	services := service.NewServices(repos, cfg, zerolog.Nop())

	return &testHarness{
		services:     services,
		articleRepo:  articleRepo,
		categoryRepo: categoryRepo,
		jobRepo:      jobRepo,
	}
}

// writeCSV drops CSV content into a temp file and returns its path
func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test csv: %v", err)
	}
	return path
}

// testdataPath returns the absolute path to a file in the testdata directory.
func testdataPath(t testing.TB, filename string) string {
	t.Helper()
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(currentFile)))
	path := filepath.Join(projectRoot, "testdata", filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("testdata file not found: %s", path)
	}
	return path
}

func TestCreateImportJob(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	req := &models.ImportRequest{UpdateExisting: true, IdempotencyKey: "key-1"}
	job, err := h.services.Import.CreateImportJob(ctx, req, "/tmp/upload.csv")
	if err != nil {
		t.Fatalf("CreateImportJob failed: %v", err)
	}

	if job.Status != models.JobStatusPending {
		t.Errorf("expected pending status, got %s", job.Status)
	}
	if !job.UpdateExisting {
		t.Error("expected update_existing to carry through")
	}

	stored, _ := h.jobRepo.GetByID(ctx, job.ID)
	if stored == nil {
		t.Fatal("job was not persisted")
	}
	if stored.IdempotencyKey != "key-1" {
		t.Errorf("expected idempotency key persisted, got %q", stored.IdempotencyKey)
	}
}

func TestProcessImport_SubmitsOnlyValidRows(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	// 5 rows: rows 3 and 5 are invalid (missing title, bad block)
	csv := "title,slug,content_blocks\n" +
		"A,a,\n" +
		"B,b,\n" +
		",c,\n" +
		`D,d,"[{"type":"divider"}]"` + "\n" +
		`E,e,"[{"type":"callout","text":"hi","style":"neon"}]"` + "\n"

	job := &models.ImportJob{
		ID:        "job-1",
		Status:    models.JobStatusPending,
		FilePath:  writeCSV(t, csv),
		CreatedAt: time.Now(),
	}
	h.jobRepo.Create(ctx, job)

	if err := h.services.Import.ProcessImport(ctx, job); err != nil {
		t.Fatalf("ProcessImport failed: %v", err)
	}

	if job.Status != models.JobStatusCompleted {
		t.Errorf("expected completed, got %s", job.Status)
	}
	if job.TotalRows != 5 || job.ValidRows != 3 || job.InvalidRows != 2 {
		t.Errorf("unexpected counts: total=%d valid=%d invalid=%d",
			job.TotalRows, job.ValidRows, job.InvalidRows)
	}
	if job.BlockCount != 2 {
		t.Errorf("expected 2 blocks counted, got %d", job.BlockCount)
	}

	// Exactly the 3 valid rows reach storage, despite BatchSize 2 chunking
	if len(h.articleRepo.Articles) != 3 {
		t.Fatalf("expected 3 stored articles, got %d", len(h.articleRepo.Articles))
	}
	for _, slug := range []string{"a", "b", "d"} {
		if _, ok := h.articleRepo.Articles[slug]; !ok {
			t.Errorf("expected article %q to be stored", slug)
		}
	}
	if job.Inserted != 3 || job.Updated != 0 || job.Skipped != 0 {
		t.Errorf("unexpected upsert counts: %d/%d/%d", job.Inserted, job.Updated, job.Skipped)
	}

	// Row issues persisted for the invalid rows
	issues, _ := h.jobRepo.GetIssues(ctx, job.ID, 0)
	if len(issues) != 2 {
		t.Errorf("expected 2 stored issues, got %v", issues)
	}
}

func TestProcessImport_UpdateExisting(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	// Preseed an article with the same slug
	h.articleRepo.Articles["a"] = &models.Article{Slug: "a", Title: "Old"}

	job := &models.ImportJob{
		ID:             "job-upd",
		Status:         models.JobStatusPending,
		UpdateExisting: true,
		FilePath:       writeCSV(t, "title,slug\nNew,a\nFresh,b\n"),
		CreatedAt:      time.Now(),
	}
	h.jobRepo.Create(ctx, job)

	if err := h.services.Import.ProcessImport(ctx, job); err != nil {
		t.Fatalf("ProcessImport failed: %v", err)
	}

	if job.Inserted != 1 || job.Updated != 1 || job.Skipped != 0 {
		t.Errorf("unexpected upsert counts: %d/%d/%d", job.Inserted, job.Updated, job.Skipped)
	}
	if h.articleRepo.Articles["a"].Title != "New" {
		t.Errorf("expected overwrite, got title %q", h.articleRepo.Articles["a"].Title)
	}
}

func TestProcessImport_InsertOnlySkipsExisting(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	h.articleRepo.Articles["a"] = &models.Article{Slug: "a", Title: "Old"}

	job := &models.ImportJob{
		ID:        "job-skip",
		Status:    models.JobStatusPending,
		FilePath:  writeCSV(t, "title,slug\nNew,a\nFresh,b\n"),
		CreatedAt: time.Now(),
	}
	h.jobRepo.Create(ctx, job)

	if err := h.services.Import.ProcessImport(ctx, job); err != nil {
		t.Fatalf("ProcessImport failed: %v", err)
	}

	if job.Inserted != 1 || job.Updated != 0 || job.Skipped != 1 {
		t.Errorf("unexpected upsert counts: %d/%d/%d", job.Inserted, job.Updated, job.Skipped)
	}
	if h.articleRepo.Articles["a"].Title != "Old" {
		t.Errorf("insert-only must not overwrite, got title %q", h.articleRepo.Articles["a"].Title)
	}
}

func TestProcessImport_DuplicateSlugRows(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	// Two valid rows sharing a slug land in the same batch; the import must
	// still succeed and the later row must win
	job := &models.ImportJob{
		ID:             "job-dup",
		Status:         models.JobStatusPending,
		UpdateExisting: true,
		FilePath:       writeCSV(t, "title,slug\nFirst,a\nLast,a\n"),
		CreatedAt:      time.Now(),
	}
	h.jobRepo.Create(ctx, job)

	if err := h.services.Import.ProcessImport(ctx, job); err != nil {
		t.Fatalf("ProcessImport failed: %v", err)
	}

	if job.Status != models.JobStatusCompleted {
		t.Errorf("expected completed, got %s", job.Status)
	}
	if job.ValidRows != 2 {
		t.Errorf("both rows are individually valid, got %d", job.ValidRows)
	}
	if len(h.articleRepo.Articles) != 1 {
		t.Fatalf("expected 1 stored article, got %d", len(h.articleRepo.Articles))
	}
	if h.articleRepo.Articles["a"].Title != "Last" {
		t.Errorf("later row must win, got title %q", h.articleRepo.Articles["a"].Title)
	}
	if job.Inserted != 1 || job.Updated != 0 {
		t.Errorf("unexpected upsert counts: %d/%d/%d", job.Inserted, job.Updated, job.Skipped)
	}
}

func TestProcessImport_MissingSlugColumnFailsJob(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	job := &models.ImportJob{
		ID:        "job-blocked",
		Status:    models.JobStatusPending,
		FilePath:  writeCSV(t, "title,excerpt\nA,hello\n"),
		CreatedAt: time.Now(),
	}
	h.jobRepo.Create(ctx, job)

	if err := h.services.Import.ProcessImport(ctx, job); err == nil {
		t.Fatal("expected blocking error")
	}

	if job.Status != models.JobStatusFailed {
		t.Errorf("expected failed status, got %s", job.Status)
	}
	if len(h.articleRepo.Articles) != 0 {
		t.Errorf("no articles may be written on a blocking failure, got %d", len(h.articleRepo.Articles))
	}

	issues, _ := h.jobRepo.GetIssues(ctx, job.ID, 0)
	if len(issues) != 1 || issues[0].Severity != models.SeverityError {
		t.Errorf("expected one blocking issue, got %v", issues)
	}
}

func TestProcessImport_UnreadableFileFailsJob(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	job := &models.ImportJob{
		ID:        "job-nofile",
		Status:    models.JobStatusPending,
		FilePath:  filepath.Join(t.TempDir(), "missing.csv"),
		CreatedAt: time.Now(),
	}
	h.jobRepo.Create(ctx, job)

	if err := h.services.Import.ProcessImport(ctx, job); err == nil {
		t.Fatal("expected error for unreadable file")
	}
	if job.Status != models.JobStatusFailed {
		t.Errorf("expected failed status, got %s", job.Status)
	}
}

func TestPreview_DoesNotWrite(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	csv := "title,slug,category_slug\nA,a,city-guides\n,b,\n"
	report, err := h.services.Import.Preview(ctx, csv)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	if report.Summary.TotalRows != 2 || report.Summary.ValidRows != 1 {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
	if len(h.articleRepo.Articles) != 0 {
		t.Error("preview must not write articles")
	}
	if len(h.articleRepo.Batches) != 0 {
		t.Error("preview must not submit batches")
	}
}

func TestPreview_BlockingError(t *testing.T) {
	h := newTestHarness(t)

	if _, err := h.services.Import.Preview(context.Background(), "title\nA\n"); err == nil {
		t.Fatal("expected blocking error for missing slug column")
	}
}

func TestProcessImport_SampleFile(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	data, err := os.ReadFile(testdataPath(t, "articles_sample.csv"))
	if err != nil {
		t.Fatalf("failed to read sample: %v", err)
	}

	report, err := h.services.Import.Preview(ctx, string(data))
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	if report.Summary.TotalRows != 3 {
		t.Errorf("expected 3 rows, got %d", report.Summary.TotalRows)
	}
	if report.Summary.InvalidRows != 0 {
		for _, a := range report.Articles {
			if !a.IsValid() {
				t.Errorf("row %d unexpectedly invalid: %v", a.Line, a.Errors)
			}
		}
	}
	if report.Summary.BlockCount != 7 {
		t.Errorf("expected 7 blocks across sample, got %d", report.Summary.BlockCount)
	}
}
