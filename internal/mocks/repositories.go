package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/tavvy/article-import-api/internal/models"
	"github.com/tavvy/article-import-api/internal/repository"
)

// MockArticleRepository is an in-memory implementation of ArticleRepository
type MockArticleRepository struct {
	mu       sync.Mutex
	Articles map[string]*models.Article // keyed by slug
	Batches  [][]*models.Article
	FailNext error
	// StreamErr, when set, is returned by StreamAll after all articles have
	// been emitted, simulating a connection lost mid-stream
	StreamErr error
}

// Verify interface compliance
var _ repository.ArticleRepository = (*MockArticleRepository)(nil)

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
	}
}

func (m *MockArticleRepository) BulkUpsert(ctx context.Context, articles []*models.Article, updateExisting bool) (*models.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return nil, err
	}

	m.Batches = append(m.Batches, articles)
	result := &models.UpsertResult{}

	// Mirrors the Postgres implementation: duplicate slugs within one batch
	// collapse to the last occurrence before any counting happens
	latest := make(map[string]*models.Article, len(articles))
	order := make([]string, 0, len(articles))
	for _, article := range articles {
		if _, dup := latest[article.Slug]; !dup {
			order = append(order, article.Slug)
		}
		latest[article.Slug] = article
	}

	for _, slug := range order {
		article := latest[slug]
		_, exists := m.Articles[slug]
		switch {
		case !exists:
			m.Articles[slug] = article
			result.Inserted++
		case updateExisting:
			m.Articles[slug] = article
			result.Updated++
		default:
			result.Skipped++
		}
	}

	return result, nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Articles[slug], nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	m.mu.Lock()
	slugs := make([]string, 0, len(m.Articles))
	for slug := range m.Articles {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	articles := make([]*models.Article, 0, len(slugs))
	for _, slug := range slugs {
		articles = append(articles, m.Articles[slug])
	}
	streamErr := m.StreamErr
	m.mu.Unlock()

	for _, article := range articles {
		if err := callback(article); err != nil {
			return err
		}
	}
	return streamErr
}

// MockCategoryRepository is an in-memory implementation of CategoryRepository
type MockCategoryRepository struct {
	Slugs map[string]string // slug -> id
}

var _ repository.CategoryRepository = (*MockCategoryRepository)(nil)

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Slugs: make(map[string]string)}
}

func (m *MockCategoryRepository) SlugMap(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.Slugs))
	for slug, id := range m.Slugs {
		out[slug] = id
	}
	return out, nil
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int, error) {
	return len(m.Slugs), nil
}

// MockJobRepository is an in-memory implementation of JobRepository
type MockJobRepository struct {
	mu     sync.Mutex
	Jobs   map[string]*models.ImportJob
	Issues map[string][]models.RowIssue
}

var _ repository.JobRepository = (*MockJobRepository)(nil)

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		Jobs:   make(map[string]*models.ImportJob),
		Issues: make(map[string][]models.RowIssue),
	}
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.Jobs[job.ID] = &copied
	return nil
}

func (m *MockJobRepository) Update(ctx context.Context, job *models.ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.Jobs[job.ID] = &copied
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (m *MockJobRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.Jobs {
		if job.IdempotencyKey == key {
			copied := *job
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockJobRepository) GetPendingJobs(ctx context.Context) ([]*models.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*models.ImportJob
	for _, job := range m.Jobs {
		if job.Status == models.JobStatusPending {
			copied := *job
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

func (m *MockJobRepository) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[jobID]
	if !ok || job.Status != models.JobStatusPending {
		return false, nil
	}
	job.Status = models.JobStatusProcessing
	return true, nil
}

func (m *MockJobRepository) AddIssues(ctx context.Context, jobID string, issues []models.RowIssue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Issues[jobID] = append(m.Issues[jobID], issues...)
	return nil
}

func (m *MockJobRepository) GetIssues(ctx context.Context, jobID string, limit int) ([]models.RowIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issues := m.Issues[jobID]
	if limit > 0 && len(issues) > limit {
		issues = issues[:limit]
	}
	out := make([]models.RowIssue, len(issues))
	copy(out, issues)
	return out, nil
}
