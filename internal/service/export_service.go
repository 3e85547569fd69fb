package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tavvy/article-import-api/internal/models"
	"github.com/tavvy/article-import-api/internal/repository"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamArticles streams stored articles in the specified format
func (s *exportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting articles export")

	switch format {
	case "ndjson":
		return s.streamArticlesNDJSON(ctx, w)
	case "json":
		return s.streamArticlesJSON(ctx, w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (s *exportService) streamArticlesNDJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=articles.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.repos.Article.StreamAll(ctx, func(article *models.Article) error {
		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	if err != nil {
		s.log.Error().Err(err).Int("count", count).Msg("Articles export aborted mid-stream")
		return err
	}

	s.log.Info().Int("count", count).Msg("Articles export completed")
	return nil
}

func (s *exportService) streamArticlesJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=articles.json")

	w.Write([]byte("["))
	first := true

	err := s.repos.Article.StreamAll(ctx, func(article *models.Article) error {
		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		if !first {
			w.Write([]byte(","))
		}
		first = false
		w.Write(data)
		return nil
	})
	if err != nil {
		// Headers are already out; leave the document unterminated so the
		// client sees truncation instead of a well-formed partial export
		s.log.Error().Err(err).Msg("Articles export aborted mid-stream")
		return err
	}

	w.Write([]byte("]"))
	return nil
}

// GetCount returns the row count for a resource, used by /metrics
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "articles":
		return s.repos.Article.Count(ctx)
	case "categories":
		return s.repos.Category.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}
