package api

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tavvy/article-import-api/internal/config"
	"github.com/tavvy/article-import-api/internal/models"
	"github.com/tavvy/article-import-api/internal/parser"
	"github.com/tavvy/article-import-api/internal/service"
)

// ImportHandler handles import endpoints
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// CreateImport handles POST /v1/imports
// Accepts a multipart CSV upload plus an update_existing flag
func (h *ImportHandler) CreateImport(c *gin.Context) {
	ctx := c.Request.Context()

	// Get idempotency key from header
	idempotencyKey := c.GetHeader("Idempotency-Key")

	// Check for existing job with same idempotency key
	if idempotencyKey != "" {
		existingJob, err := h.services.Job.GetJobByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to check idempotency key")
		}
		if existingJob != nil {
			h.log.Info().Str("job_id", existingJob.ID).Msg("Returning existing job for idempotency key")
			c.JSON(http.StatusOK, existingJob)
			return
		}
	}

	updateExisting := c.PostForm("update_existing")
	if updateExisting == "" {
		updateExisting = c.Query("update_existing")
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	// Validate file size
	if header.Size > h.cfg.Import.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large, max size is %d MB", h.cfg.Import.MaxUploadSize/(1024*1024)),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article import requires a CSV file"})
		return
	}

	// Save uploaded file
	uploadDir := h.cfg.Import.UploadDir
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		h.log.Error().Err(err).Msg("Failed to create upload directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	filename := fmt.Sprintf("articles_%s%s", uuid.New().String()[:8], ext)
	filePath := filepath.Join(uploadDir, filename)

	dst, err := os.Create(filePath)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.log.Error().Err(err).Msg("Failed to copy file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	req := &models.ImportRequest{
		UpdateExisting: updateExisting == "true",
		IdempotencyKey: idempotencyKey,
	}

	job, err := h.services.Import.CreateImportJob(ctx, req, filePath)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create import job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create import job"})
		return
	}

	h.log.Info().
		Str("job_id", job.ID).
		Str("file", header.Filename).
		Int64("size_bytes", header.Size).
		Bool("update_existing", job.UpdateExisting).
		Msg("Import job created")

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":          job.ID,
		"status":          job.Status,
		"update_existing": job.UpdateExisting,
		"message":         "Import job created and queued for processing",
	})
}

// PreviewImport handles POST /v1/imports/preview
// Parses the upload synchronously and returns the full report without
// writing anything
func (h *ImportHandler) PreviewImport(c *gin.Context) {
	ctx := c.Request.Context()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.Import.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large, max size is %d MB", h.cfg.Import.MaxUploadSize/(1024*1024)),
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read upload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}

	report, err := h.services.Import.Preview(ctx, string(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetTemplate handles GET /v1/imports/template
// Returns the downloadable CSV template with one example row
func (h *ImportHandler) GetTemplate(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=articles_template.csv")
	c.String(http.StatusOK, parser.TemplateCSV())
}

// GetImportStatus handles GET /v1/imports/:job_id
func (h *ImportHandler) GetImportStatus(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	job, err := h.services.Job.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job status"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetImportIssues handles GET /v1/imports/:job_id/issues
func (h *ImportHandler) GetImportIssues(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	issues, err := h.services.Job.GetJobIssues(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job issues")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get issues"})
		return
	}

	// Determine format from query param
	format := c.Query("format")
	if format == "" {
		format = "json"
	}

	if format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=issues_%s.csv", jobID))
		writer := csv.NewWriter(c.Writer)
		writer.Write([]string{"line", "severity", "message"})
		for _, issue := range issues {
			writer.Write([]string{strconv.Itoa(issue.Line), string(issue.Severity), issue.Message})
		}
		writer.Flush()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":      jobID,
		"issue_count": len(issues),
		"issues":      issues,
	})
}
