package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tavvy/article-import-api/internal/config"
	"github.com/tavvy/article-import-api/internal/models"
	"github.com/tavvy/article-import-api/internal/repository"
)

// ImportService defines the interface for import operations
type ImportService interface {
	CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.ImportJob, error)
	ProcessImport(ctx context.Context, job *models.ImportJob) error
	Preview(ctx context.Context, fileText string) (*models.ParseReport, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// JobService defines the interface for job management
type JobService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	GetJob(ctx context.Context, id string) (*models.JobResponse, error)
	GetJobByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error)
	GetJobIssues(ctx context.Context, id string) ([]models.RowIssue, error)
	SetImportService(importService ImportService)
}

// Services holds all service interfaces
type Services struct {
	Import ImportService
	Export ExportService
	Job    JobService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	jobSvc := newJobService(repos.Job, log)
	importSvc := newImportService(repos, cfg, log)
	exportSvc := newExportService(repos, log)

	// Wire up job processor to import service
	jobSvc.SetImportService(importSvc)

	return &Services{
		Import: importSvc,
		Export: exportSvc,
		Job:    jobSvc,
	}
}
