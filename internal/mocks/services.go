package mocks

import (
	"context"
	"net/http"

	"github.com/tavvy/article-import-api/internal/models"
	"github.com/tavvy/article-import-api/internal/service"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	CreateJobFunc func(ctx context.Context, req *models.ImportRequest, filePath string) (*models.ImportJob, error)
	ProcessFunc   func(ctx context.Context, job *models.ImportJob) error
	PreviewFunc   func(ctx context.Context, fileText string) (*models.ParseReport, error)
	CreatedJobs   []*models.ImportJob
	ProcessedJobs []*models.ImportJob
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{
		CreatedJobs:   make([]*models.ImportJob, 0),
		ProcessedJobs: make([]*models.ImportJob, 0),
	}
}

func (m *MockImportService) CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.ImportJob, error) {
	if m.CreateJobFunc != nil {
		return m.CreateJobFunc(ctx, req, filePath)
	}
	job := &models.ImportJob{
		ID:             "test-job-id",
		Status:         models.JobStatusPending,
		UpdateExisting: req.UpdateExisting,
		IdempotencyKey: req.IdempotencyKey,
		FilePath:       filePath,
	}
	m.CreatedJobs = append(m.CreatedJobs, job)
	return job, nil
}

func (m *MockImportService) ProcessImport(ctx context.Context, job *models.ImportJob) error {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, job)
	}
	m.ProcessedJobs = append(m.ProcessedJobs, job)
	job.Status = models.JobStatusCompleted
	return nil
}

func (m *MockImportService) Preview(ctx context.Context, fileText string) (*models.ParseReport, error) {
	if m.PreviewFunc != nil {
		return m.PreviewFunc(ctx, fileText)
	}
	return &models.ParseReport{}, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamArticlesFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	Counts             map[string]int
}

var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			"articles":   0,
			"categories": 0,
		},
	}
}

func (m *MockExportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamArticlesFunc != nil {
		return m.StreamArticlesFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	return m.Counts[resource], nil
}

// MockJobService is a mock implementation of JobService
type MockJobService struct {
	Jobs    map[string]*models.JobResponse
	Issues  map[string][]models.RowIssue
	ByKey   map[string]*models.ImportJob
	started bool
}

var _ service.JobService = (*MockJobService)(nil)

func NewMockJobService() *MockJobService {
	return &MockJobService{
		Jobs:   make(map[string]*models.JobResponse),
		Issues: make(map[string][]models.RowIssue),
		ByKey:  make(map[string]*models.ImportJob),
	}
}

func (m *MockJobService) StartProcessor(ctx context.Context) { m.started = true }
func (m *MockJobService) StopProcessor()                     { m.started = false }

func (m *MockJobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	return m.Jobs[id], nil
}

func (m *MockJobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	return m.ByKey[key], nil
}

func (m *MockJobService) GetJobIssues(ctx context.Context, id string) ([]models.RowIssue, error) {
	return m.Issues[id], nil
}

func (m *MockJobService) SetImportService(importService service.ImportService) {}
