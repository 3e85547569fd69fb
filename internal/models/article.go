package models

import (
	"encoding/json"
	"time"
)

// Article represents a stored article composed of content blocks
type Article struct {
	ID              string          `json:"id" db:"id"`
	Slug            string          `json:"slug" db:"slug"`
	Title           string          `json:"title" db:"title"`
	Excerpt         string          `json:"excerpt" db:"excerpt"`
	Content         string          `json:"content" db:"content"` // legacy field, mirrors excerpt
	AuthorName      string          `json:"author_name" db:"author_name"`
	CategoryID      *string         `json:"category_id,omitempty" db:"category_id"`
	ContentBlocks   json.RawMessage `json:"content_blocks" db:"content_blocks"`
	SectionImages   json.RawMessage `json:"section_images,omitempty" db:"section_images"`
	CoverImageURL   string          `json:"cover_image_url,omitempty" db:"cover_image_url"`
	ReadTimeMinutes int             `json:"read_time_minutes" db:"read_time_minutes"`
	TemplateType    string          `json:"article_template_type" db:"article_template_type"`
	IsFeatured      bool            `json:"is_featured" db:"is_featured"`
	Status          string          `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[string]bool{
	"draft":     true,
	"published": true,
}

// ParsedArticle is one candidate record produced from a CSV data row. It is
// built once at parse time and never mutated afterward: either it joins the
// submission batch (when Valid) or it is kept only so the operator can see
// what went wrong.
type ParsedArticle struct {
	Line            int             `json:"line"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Excerpt         string          `json:"excerpt,omitempty"`
	AuthorName      string          `json:"author_name"`
	CategorySlug    string          `json:"category_slug,omitempty"`
	CategoryID      *string         `json:"category_id,omitempty"`
	ContentBlocks   json.RawMessage `json:"content_blocks,omitempty"`
	SectionImages   json.RawMessage `json:"section_images,omitempty"`
	CoverImageURL   string          `json:"cover_image_url,omitempty"`
	ReadTimeMinutes int             `json:"read_time_minutes"`
	TemplateType    string          `json:"article_template_type"`
	IsFeatured      bool            `json:"is_featured"`
	Status          string          `json:"status"`
	BlockCount      int             `json:"block_count"`
	Errors          []string        `json:"errors,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
	Valid           bool            `json:"is_valid"`
}

// IsValid reports whether the row is eligible for submission
func (a *ParsedArticle) IsValid() bool {
	return len(a.Errors) == 0
}

// ParseSummary holds aggregate counts over one parsed CSV file
type ParseSummary struct {
	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	InvalidRows int `json:"invalid_rows"`
	WarningRows int `json:"warning_rows"`
	BlockCount  int `json:"block_count"`
}

// ParseReport is the preview response: every parsed row plus the summary
type ParseReport struct {
	Articles []ParsedArticle `json:"articles"`
	Summary  ParseSummary    `json:"summary"`
}

// UpsertResult holds the storage layer's per-batch outcome counts. These are
// surfaced to the operator verbatim; nothing recomputes them upstream.
type UpsertResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// Add accumulates counts from another batch
func (r *UpsertResult) Add(other *UpsertResult) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Skipped += other.Skipped
}
