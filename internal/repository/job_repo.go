package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/tavvy/article-import-api/internal/database"
	"github.com/tavvy/article-import-api/internal/models"
)

// jobRepo is the concrete implementation of JobRepository
type jobRepo struct {
	db *database.DB
}

// NewJobRepo creates a new job repository
func NewJobRepo(db *database.DB) JobRepository {
	return &jobRepo{db: db}
}

// Create inserts a new import job
func (r *jobRepo) Create(ctx context.Context, job *models.ImportJob) error {
	query := `
		INSERT INTO import_jobs (id, status, idempotency_key, update_existing,
			total_rows, valid_rows, invalid_rows, warning_rows, block_count,
			inserted_count, updated_count, skipped_count, file_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Status, nullString(job.IdempotencyKey), job.UpdateExisting,
		job.TotalRows, job.ValidRows, job.InvalidRows, job.WarningRows, job.BlockCount,
		job.Inserted, job.Updated, job.Skipped,
		nullString(job.FilePath), job.CreatedAt,
	)
	return err
}

// Update updates job status and counters
func (r *jobRepo) Update(ctx context.Context, job *models.ImportJob) error {
	query := `
		UPDATE import_jobs SET
			status = $1, total_rows = $2, valid_rows = $3, invalid_rows = $4,
			warning_rows = $5, block_count = $6, inserted_count = $7,
			updated_count = $8, skipped_count = $9, duration_ms = $10,
			rows_per_sec = $11, started_at = $12, completed_at = $13
		WHERE id = $14
	`
	_, err := r.db.ExecContext(ctx, query,
		job.Status, job.TotalRows, job.ValidRows, job.InvalidRows,
		job.WarningRows, job.BlockCount, job.Inserted, job.Updated, job.Skipped,
		job.DurationMs, job.RowsPerSec, job.StartedAt, job.CompletedAt, job.ID,
	)
	return err
}

const jobColumns = `id, status, idempotency_key, update_existing, total_rows,
	valid_rows, invalid_rows, warning_rows, block_count, inserted_count,
	updated_count, skipped_count, duration_ms, rows_per_sec, file_path,
	created_at, started_at, completed_at`

// GetByID retrieves a job by ID
func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM import_jobs WHERE id = $1", id)
	return scanJob(row)
}

// GetByIdempotencyKey retrieves a job by idempotency key
func (r *jobRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM import_jobs WHERE idempotency_key = $1", key)
	return scanJob(row)
}

// GetPendingJobs retrieves all pending jobs ordered by creation time
func (r *jobRepo) GetPendingJobs(ctx context.Context) ([]*models.ImportJob, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM import_jobs WHERE status = $1 ORDER BY created_at",
		models.JobStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.ImportJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// MarkJobAsProcessing atomically claims a pending job. Returns false when
// another worker already picked it up.
func (r *jobRepo) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE import_jobs SET status = $1 WHERE id = $2 AND status = $3",
		models.JobStatusProcessing, jobID, models.JobStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// AddIssues bulk-inserts row issues using PostgreSQL COPY
func (r *jobRepo) AddIssues(ctx context.Context, jobID string, issues []models.RowIssue) error {
	if len(issues) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("import_job_issues",
		"job_id", "line", "severity", "message"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, issue := range issues {
		if _, err := stmt.ExecContext(ctx, jobID, issue.Line, issue.Severity, issue.Message); err != nil {
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}

	return tx.Commit()
}

// GetIssues retrieves row issues for a job, ordered by line. A limit of 0
// returns everything.
func (r *jobRepo) GetIssues(ctx context.Context, jobID string, limit int) ([]models.RowIssue, error) {
	query := "SELECT line, severity, message FROM import_job_issues WHERE job_id = $1 ORDER BY line, id"
	args := []interface{}{jobID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []models.RowIssue
	for rows.Next() {
		var issue models.RowIssue
		if err := rows.Scan(&issue.Line, &issue.Severity, &issue.Message); err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func scanJob(row scanner) (*models.ImportJob, error) {
	var job models.ImportJob
	var idempotencyKey, filePath sql.NullString
	var durationMs sql.NullInt64
	var rowsPerSec sql.NullFloat64
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&job.ID, &job.Status, &idempotencyKey, &job.UpdateExisting,
		&job.TotalRows, &job.ValidRows, &job.InvalidRows, &job.WarningRows,
		&job.BlockCount, &job.Inserted, &job.Updated, &job.Skipped,
		&durationMs, &rowsPerSec, &filePath,
		&job.CreatedAt, &startedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	job.IdempotencyKey = idempotencyKey.String
	job.FilePath = filePath.String
	job.DurationMs = durationMs.Int64
	job.RowsPerSec = rowsPerSec.Float64
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}

	return &job, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
