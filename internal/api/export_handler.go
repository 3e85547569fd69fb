package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/tavvy/article-import-api/internal/service"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/exports?format=...
// Streams all stored articles directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	ctx := c.Request.Context()

	format := c.Query("format")
	if format == "" {
		format = "ndjson" // Default to NDJSON for streaming
	}
	if format != "ndjson" && format != "json" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json"})
		return
	}

	h.log.Info().Str("format", format).Msg("Starting streaming export")

	if err := h.services.Export.StreamArticles(ctx, c.Writer, format); err != nil {
		h.log.Error().Err(err).Msg("Export failed")
		// Headers may already be written; nothing more to send
	}
}
