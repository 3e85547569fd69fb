package parser

import (
	"fmt"
	"strings"

	"github.com/tavvy/article-import-api/internal/models"
)

// Columns lists every column the importer recognizes, in template order.
// Unrecognized columns in an upload are ignored.
var Columns = []string{
	"title",
	"slug",
	"excerpt",
	"author",
	"category_slug",
	"content_blocks",
	"section_images",
	"cover_image_url",
	"read_time_minutes",
	"article_template_type",
	"is_featured",
	"status",
}

// Parser turns raw CSV text into ParsedArticle records. The category map is
// fetched once before parsing begins and is read-only here.
type Parser struct {
	categories map[string]string // slug -> id
}

// New creates a Parser over an immutable category slug -> id mapping
func New(categories map[string]string) *Parser {
	return &Parser{categories: categories}
}

// ParseCSV parses a whole CSV file into one ParsedArticle per non-blank data
// row. Invalid rows are retained with their errors so the operator can
// inspect them; only two conditions abort before any rows are produced:
// a missing title or slug column, reported as the returned error, and an
// input of fewer than two lines, which yields an empty result.
func (p *Parser) ParseCSV(fileText string) ([]models.ParsedArticle, error) {
	lines := strings.Split(strings.ReplaceAll(fileText, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return nil, nil
	}

	header := make(map[string]int)
	for i, name := range TokenizeLine(lines[0]) {
		header[strings.ToLower(name)] = i
	}

	if _, ok := header["title"]; !ok {
		return nil, fmt.Errorf("csv is missing required column %q", "title")
	}
	if _, ok := header["slug"]; !ok {
		return nil, fmt.Errorf("csv is missing required column %q", "slug")
	}

	var articles []models.ParsedArticle
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := TokenizeLine(line)
		articles = append(articles, p.buildArticle(header, fields, i+2))
	}

	return articles, nil
}

// Summarize computes aggregate counts over a parsed file
func Summarize(articles []models.ParsedArticle) models.ParseSummary {
	summary := models.ParseSummary{TotalRows: len(articles)}
	for i := range articles {
		if articles[i].IsValid() {
			summary.ValidRows++
		} else {
			summary.InvalidRows++
		}
		if len(articles[i].Warnings) > 0 {
			summary.WarningRows++
		}
		summary.BlockCount += articles[i].BlockCount
	}
	return summary
}
