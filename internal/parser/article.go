package parser

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tavvy/article-import-api/internal/config"
	"github.com/tavvy/article-import-api/internal/models"
	"github.com/tavvy/article-import-api/internal/validation"
)

// buildArticle maps one tokenized data row into a ParsedArticle. Every field
// is looked up by column name; absent columns default, except title and slug
// whose empty values are always hard errors. The record is complete when this
// returns and is never mutated afterward.
func (p *Parser) buildArticle(header map[string]int, fields []string, line int) models.ParsedArticle {
	article := models.ParsedArticle{
		Line:            line,
		Title:           getField(fields, header, "title"),
		Slug:            getField(fields, header, "slug"),
		Excerpt:         getField(fields, header, "excerpt"),
		AuthorName:      getField(fields, header, "author"),
		CategorySlug:    getField(fields, header, "category_slug"),
		CoverImageURL:   getField(fields, header, "cover_image_url"),
		TemplateType:    getField(fields, header, "article_template_type"),
		IsFeatured:      getField(fields, header, "is_featured") == "true",
		Status:          getField(fields, header, "status"),
		ReadTimeMinutes: config.DefaultReadTimeMinutes,
	}

	if article.Title == "" {
		article.Errors = append(article.Errors, "title is required")
	}
	if article.Slug == "" {
		article.Errors = append(article.Errors, "slug is required")
	}

	// Optional metadata defaults. A read_time_minutes value that fails to
	// parse falls back silently rather than warning on every row.
	if article.AuthorName == "" {
		article.AuthorName = config.DefaultAuthorName
	}
	if article.TemplateType == "" {
		article.TemplateType = config.DefaultTemplateType
	}
	if article.Status == "" {
		article.Status = config.DefaultStatus
	} else if !models.ValidStatuses[article.Status] {
		article.Warnings = append(article.Warnings, fmt.Sprintf("unknown status %q, defaulting to %q", article.Status, config.DefaultStatus))
		article.Status = config.DefaultStatus
	}
	if raw := getField(fields, header, "read_time_minutes"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil {
			article.ReadTimeMinutes = minutes
		}
	}

	p.parseContentBlocks(&article, getField(fields, header, "content_blocks"))
	p.parseSectionImages(&article, getField(fields, header, "section_images"))
	p.resolveCategory(&article)

	article.Valid = len(article.Errors) == 0
	return article
}

// parseContentBlocks decodes and validates the content_blocks JSON cell.
// Malformed JSON or a non-array value is a hard error; each array element is
// run through the block validator and every failure lands on the row.
func (p *Parser) parseContentBlocks(article *models.ParsedArticle, cell string) {
	if cell == "" {
		return
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(cell), &decoded); err != nil {
		article.Errors = append(article.Errors, fmt.Sprintf("invalid content_blocks JSON: %v", err))
		return
	}

	blocks, ok := decoded.([]interface{})
	if !ok {
		article.Errors = append(article.Errors, "content_blocks must be a JSON array")
		return
	}

	for i, element := range blocks {
		block, ok := element.(map[string]interface{})
		if !ok {
			article.Errors = append(article.Errors, fmt.Sprintf("block %d: must be a JSON object", i+1))
			continue
		}
		article.Errors = append(article.Errors, validation.ValidateBlock(block, i)...)
	}

	article.ContentBlocks = json.RawMessage(cell)
	article.BlockCount = len(blocks)
}

// parseSectionImages decodes the section_images JSON cell. The field is not
// essential to article validity, so a malformed value only warns.
func (p *Parser) parseSectionImages(article *models.ParsedArticle, cell string) {
	if cell == "" {
		return
	}

	var images []interface{}
	if err := json.Unmarshal([]byte(cell), &images); err != nil {
		article.Warnings = append(article.Warnings, fmt.Sprintf("invalid section_images JSON: %v", err))
		return
	}

	article.SectionImages = json.RawMessage(cell)
}

// resolveCategory cross-references the row's category slug against the known
// category set. An unknown slug demotes to a warning and a nil category
// reference so the row can still import.
func (p *Parser) resolveCategory(article *models.ParsedArticle) {
	if article.CategorySlug == "" {
		return
	}

	id, ok := p.categories[article.CategorySlug]
	if !ok {
		article.Warnings = append(article.Warnings, fmt.Sprintf("unknown category slug %q", article.CategorySlug))
		return
	}
	article.CategoryID = &id
}

// getField returns the trimmed value of a named column, or "" when the
// column is absent from the header or the row is short
func getField(fields []string, header map[string]int, name string) string {
	if idx, ok := header[name]; ok && idx < len(fields) {
		return fields[idx]
	}
	return ""
}
