package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tavvy/article-import-api/internal/config"
	"github.com/tavvy/article-import-api/internal/models"
	"github.com/tavvy/article-import-api/internal/parser"
	"github.com/tavvy/article-import-api/internal/repository"
)

// importService is the concrete implementation of ImportService
type importService struct {
	repos *repository.Repositories
	cfg   *config.Config
	log   zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *importService {
	return &importService{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("service", "import").Logger(),
	}
}

// CreateImportJob creates a new import job for an uploaded CSV file
func (s *importService) CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.ImportJob, error) {
	job := &models.ImportJob{
		ID:             uuid.New().String(),
		Status:         models.JobStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		UpdateExisting: req.UpdateExisting,
		FilePath:       filePath,
		CreatedAt:      time.Now(),
	}

	if err := s.repos.Job.Create(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("job_id", job.ID).
		Bool("update_existing", job.UpdateExisting).
		Str("file", filePath).
		Msg("Import job created")

	return job, nil
}

// Preview parses an uploaded CSV without touching article storage and
// returns the full row-by-row report. A blocking parse problem (missing
// title or slug column) comes back as the error.
func (s *importService) Preview(ctx context.Context, fileText string) (*models.ParseReport, error) {
	categories, err := s.repos.Category.SlugMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	articles, err := parser.New(categories).ParseCSV(fileText)
	if err != nil {
		return nil, err
	}

	return &models.ParseReport{
		Articles: articles,
		Summary:  parser.Summarize(articles),
	}, nil
}

// ProcessImport runs one import job end to end: read file, parse and
// validate every row, persist row issues, submit the valid subset in batches
// and record the database's outcome counts on the job.
func (s *importService) ProcessImport(ctx context.Context, job *models.ImportJob) error {
	startTime := time.Now()
	now := startTime
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	s.repos.Job.Update(ctx, job)

	s.log.Info().
		Str("job_id", job.ID).
		Bool("update_existing", job.UpdateExisting).
		Msg("Starting import processing")

	err := s.runImport(ctx, job)

	duration := time.Since(startTime)
	job.DurationMs = duration.Milliseconds()
	if job.TotalRows > 0 && duration.Seconds() > 0 {
		job.RowsPerSec = float64(job.TotalRows) / duration.Seconds()
	}

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Status = models.JobStatusFailed
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import failed")
	} else {
		job.Status = models.JobStatusCompleted
		s.log.Info().
			Str("job_id", job.ID).
			Int("total_rows", job.TotalRows).
			Int("valid_rows", job.ValidRows).
			Int("invalid_rows", job.InvalidRows).
			Int("inserted", job.Inserted).
			Int("updated", job.Updated).
			Int("skipped", job.Skipped).
			Int64("duration_ms", job.DurationMs).
			Float64("rows_per_sec", job.RowsPerSec).
			Msg("Import completed")
	}

	s.repos.Job.Update(ctx, job)

	return err
}

func (s *importService) runImport(ctx context.Context, job *models.ImportJob) error {
	data, err := os.ReadFile(job.FilePath)
	if err != nil {
		s.addBlockingIssue(ctx, job.ID, fmt.Sprintf("unable to read uploaded file: %v", err))
		return fmt.Errorf("read upload: %w", err)
	}

	// Category lookup is fetched once before parsing and never mutated
	categories, err := s.repos.Category.SlugMap(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	articles, err := parser.New(categories).ParseCSV(string(data))
	if err != nil {
		s.addBlockingIssue(ctx, job.ID, err.Error())
		return err
	}

	summary := parser.Summarize(articles)
	job.TotalRows = summary.TotalRows
	job.ValidRows = summary.ValidRows
	job.InvalidRows = summary.InvalidRows
	job.WarningRows = summary.WarningRows
	job.BlockCount = summary.BlockCount

	s.storeRowIssues(ctx, job.ID, articles)

	// Submit only the valid subset, batched to keep statements bounded
	var batch []*models.Article
	result := &models.UpsertResult{}

	for i := range articles {
		if !articles[i].IsValid() {
			continue
		}
		batch = append(batch, toArticle(&articles[i]))

		if len(batch) >= s.cfg.Import.BatchSize {
			if err := s.submitBatch(ctx, job, batch, result); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := s.submitBatch(ctx, job, batch, result); err != nil {
			return err
		}
	}

	job.Inserted = result.Inserted
	job.Updated = result.Updated
	job.Skipped = result.Skipped

	return nil
}

func (s *importService) submitBatch(ctx context.Context, job *models.ImportJob, batch []*models.Article, result *models.UpsertResult) error {
	batchResult, err := s.repos.Article.BulkUpsert(ctx, batch, job.UpdateExisting)
	if err != nil {
		s.log.Error().Err(err).Int("batch_size", len(batch)).Msg("Batch upsert failed")
		return err
	}
	result.Add(batchResult)

	s.log.Debug().
		Str("job_id", job.ID).
		Int("batch_size", len(batch)).
		Int("inserted", batchResult.Inserted).
		Int("updated", batchResult.Updated).
		Int("skipped", batchResult.Skipped).
		Msg("Batch submitted")

	return nil
}

// issueFlushThreshold bounds memory while collecting row issues; a large
// upload where every row fails should not hold every message in memory.
const issueFlushThreshold = 1000

// storeRowIssues persists every row's errors and warnings for operator review
func (s *importService) storeRowIssues(ctx context.Context, jobID string, articles []models.ParsedArticle) {
	var issues []models.RowIssue

	flush := func() {
		if len(issues) == 0 {
			return
		}
		if err := s.repos.Job.AddIssues(ctx, jobID, issues); err != nil {
			s.log.Error().Err(err).Int("count", len(issues)).Msg("Failed to store row issues")
		}
		issues = issues[:0]
	}

	for i := range articles {
		for _, msg := range articles[i].Errors {
			issues = append(issues, models.RowIssue{
				Line:     articles[i].Line,
				Severity: models.SeverityError,
				Message:  msg,
			})
		}
		for _, msg := range articles[i].Warnings {
			issues = append(issues, models.RowIssue{
				Line:     articles[i].Line,
				Severity: models.SeverityWarning,
				Message:  msg,
			})
		}
		if len(issues) >= issueFlushThreshold {
			flush()
		}
	}
	flush()
}

// addBlockingIssue records a whole-file failure that produced no rows
func (s *importService) addBlockingIssue(ctx context.Context, jobID, message string) {
	issue := []models.RowIssue{{Line: 0, Severity: models.SeverityError, Message: message}}
	if err := s.repos.Job.AddIssues(ctx, jobID, issue); err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to store blocking issue")
	}
}

// toArticle maps a valid ParsedArticle into the storage record shape. The
// legacy content column mirrors the excerpt.
func toArticle(parsed *models.ParsedArticle) *models.Article {
	return &models.Article{
		ID:              uuid.New().String(),
		Slug:            parsed.Slug,
		Title:           parsed.Title,
		Excerpt:         parsed.Excerpt,
		Content:         parsed.Excerpt,
		AuthorName:      parsed.AuthorName,
		CategoryID:      parsed.CategoryID,
		ContentBlocks:   parsed.ContentBlocks,
		SectionImages:   parsed.SectionImages,
		CoverImageURL:   parsed.CoverImageURL,
		ReadTimeMinutes: parsed.ReadTimeMinutes,
		TemplateType:    parsed.TemplateType,
		IsFeatured:      parsed.IsFeatured,
		Status:          parsed.Status,
		CreatedAt:       time.Now(),
	}
}
