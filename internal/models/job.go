package models

import (
	"time"
)

// JobStatus represents the status of an import job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IssueSeverity distinguishes row errors (row excluded from submission) from
// row warnings (row still submitted)
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ImportJob represents one bulk article import
type ImportJob struct {
	ID             string     `json:"job_id" db:"id"`
	Status         JobStatus  `json:"status" db:"status"`
	IdempotencyKey string     `json:"idempotency_key,omitempty" db:"idempotency_key"`
	UpdateExisting bool       `json:"update_existing" db:"update_existing"`
	TotalRows      int        `json:"total_rows" db:"total_rows"`
	ValidRows      int        `json:"valid_rows" db:"valid_rows"`
	InvalidRows    int        `json:"invalid_rows" db:"invalid_rows"`
	WarningRows    int        `json:"warning_rows" db:"warning_rows"`
	BlockCount     int        `json:"block_count" db:"block_count"`
	Inserted       int        `json:"inserted" db:"inserted_count"`
	Updated        int        `json:"updated" db:"updated_count"`
	Skipped        int        `json:"skipped" db:"skipped_count"`
	DurationMs     int64      `json:"duration_ms,omitempty" db:"duration_ms"`
	RowsPerSec     float64    `json:"rows_per_sec,omitempty" db:"rows_per_sec"`
	FilePath       string     `json:"-" db:"file_path"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// RowIssue is one persisted error or warning attached to a CSV data row
type RowIssue struct {
	Line     int           `json:"line"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// JobResponse is the API response for job status
type JobResponse struct {
	ImportJob
	Issues      []RowIssue `json:"issues,omitempty"`
	IssueCount  int        `json:"issue_count,omitempty"`
	IssueReport string     `json:"issue_report_url,omitempty"`
}

// ImportRequest represents an import job request
type ImportRequest struct {
	UpdateExisting bool   `json:"update_existing" form:"update_existing"`
	IdempotencyKey string `json:"-"` // From header
}
