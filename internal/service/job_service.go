package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tavvy/article-import-api/internal/models"
	"github.com/tavvy/article-import-api/internal/repository"
)

// jobService is the concrete implementation of JobService
type jobService struct {
	jobRepo       repository.JobRepository
	importService ImportService
	log           zerolog.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	running       bool
	mu            sync.Mutex
	// Semaphore: buffered channel limits concurrent job processing
	sem chan struct{}
}

// newJobService creates a new JobService with a worker pool sized for
// I/O-bound work (file reads and database batches, not computation)
func newJobService(jobRepo repository.JobRepository, log zerolog.Logger) *jobService {
	maxWorkers := runtime.NumCPU() * 4
	if maxWorkers < 4 {
		maxWorkers = 4
	}
	if maxWorkers > 32 {
		maxWorkers = 32 // cap to avoid excessive database connections
	}

	log.Info().Int("max_workers", maxWorkers).Msg("Initializing import job worker pool")

	return &jobService{
		jobRepo: jobRepo,
		log:     log.With().Str("service", "job").Logger(),
		sem:     make(chan struct{}, maxWorkers),
	}
}

// SetImportService sets the import service for job processing
func (s *jobService) SetImportService(importService ImportService) {
	s.importService = importService
}

// StartProcessor starts the background job processor
func (s *jobService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Msg("Job processor started")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Job processor stopping")
			return
		case <-ticker.C:
			s.processPendingJobs()
		}
	}
}

// StopProcessor stops the background job processor
func (s *jobService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Job processor stopped")
}

// processPendingJobs claims and runs all pending import jobs
func (s *jobService) processPendingJobs() {
	jobs, err := s.jobRepo.GetPendingJobs(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get pending jobs")
		return
	}

	for _, job := range jobs {
		// Acquire a semaphore slot; blocks when all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-s.ctx.Done():
			return
		}

		// Claim atomically so a second poller never doubles up
		marked, err := s.jobRepo.MarkJobAsProcessing(s.ctx, job.ID)
		if err != nil || !marked {
			<-s.sem
			continue
		}

		s.wg.Add(1)
		go func(j *models.ImportJob) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			// A panic in one import must not take down the process
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("job_id", j.ID).
						Msg("Job processing panicked - recovered")
					j.Status = models.JobStatusFailed
					s.jobRepo.Update(s.ctx, j)
				}
			}()
			s.processJob(j)
		}(job)
	}
}

// processJob runs a single claimed job
func (s *jobService) processJob(job *models.ImportJob) {
	select {
	case <-s.ctx.Done():
		s.log.Warn().Str("job_id", job.ID).Msg("Job processing cancelled due to shutdown")
		return
	default:
	}

	s.log.Info().Str("job_id", job.ID).Msg("Processing import job")

	if s.importService == nil {
		return
	}
	if err := s.importService.ProcessImport(s.ctx, job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import processing failed")
	}
}

// GetJob retrieves a job by ID with its first page of issues
func (s *jobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	// First 100 issues inline; the report endpoint has the rest
	issues, err := s.jobRepo.GetIssues(ctx, id, 100)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", id).Msg("Failed to get job issues")
	}

	response := &models.JobResponse{
		ImportJob:  *job,
		Issues:     issues,
		IssueCount: len(issues),
	}

	if len(issues) > 0 {
		response.IssueReport = "/v1/imports/" + job.ID + "/issues"
	}

	return response, nil
}

// GetJobByIdempotencyKey retrieves a job by idempotency key
func (s *jobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	return s.jobRepo.GetByIdempotencyKey(ctx, key)
}

// GetJobIssues retrieves all row issues for a job
func (s *jobService) GetJobIssues(ctx context.Context, id string) ([]models.RowIssue, error) {
	return s.jobRepo.GetIssues(ctx, id, 0)
}
