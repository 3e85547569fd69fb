package repository

import (
	"context"

	"github.com/tavvy/article-import-api/internal/database"
	"github.com/tavvy/article-import-api/internal/models"
)

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	BulkUpsert(ctx context.Context, articles []*models.Article, updateExisting bool) (*models.UpsertResult, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Article) error) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	SlugMap(ctx context.Context) (map[string]string, error)
	Count(ctx context.Context) (int, error)
}

// JobRepository defines the interface for import job data operations
type JobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	Update(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id string) (*models.ImportJob, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error)
	GetPendingJobs(ctx context.Context) ([]*models.ImportJob, error)
	MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error)
	AddIssues(ctx context.Context, jobID string, issues []models.RowIssue) error
	GetIssues(ctx context.Context, jobID string, limit int) ([]models.RowIssue, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article  ArticleRepository
	Category CategoryRepository
	Job      JobRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:  NewArticleRepo(db),
		Category: NewCategoryRepo(db),
		Job:      NewJobRepo(db),
	}
}
