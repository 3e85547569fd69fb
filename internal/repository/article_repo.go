package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tavvy/article-import-api/internal/database"
	"github.com/tavvy/article-import-api/internal/models"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

const articleColumns = `id, slug, title, excerpt, content, author_name, category_id,
	content_blocks, section_images, cover_image_url, read_time_minutes,
	article_template_type, is_featured, status, created_at, updated_at`

// BulkUpsert writes one batch of articles keyed by slug. With updateExisting
// the batch overwrites matching slugs; without it, matching slugs are skipped
// and counted. The returned counts come straight from the database and are
// what the operator sees.
func (r *articleRepo) BulkUpsert(ctx context.Context, articles []*models.Article, updateExisting bool) (*models.UpsertResult, error) {
	articles = dedupeBySlug(articles)
	if len(articles) == 0 {
		return &models.UpsertResult{}, nil
	}

	now := time.Now()
	placeholders := make([]string, 0, len(articles))
	args := make([]interface{}, 0, len(articles)*16)

	for i, article := range articles {
		base := i * 16
		row := make([]string, 16)
		for j := range row {
			row[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(row, ", ")+")")

		args = append(args,
			article.ID, article.Slug, article.Title, article.Excerpt, article.Content,
			article.AuthorName, article.CategoryID,
			jsonOrEmptyArray(article.ContentBlocks), jsonOrEmptyArray(article.SectionImages),
			article.CoverImageURL, article.ReadTimeMinutes, article.TemplateType,
			article.IsFeatured, article.Status, now, now,
		)
	}

	query := fmt.Sprintf(`INSERT INTO articles (%s) VALUES %s`,
		articleColumns, strings.Join(placeholders, ", "))

	result := &models.UpsertResult{}

	if updateExisting {
		// xmax = 0 distinguishes freshly inserted rows from conflict updates
		query += `
			ON CONFLICT (slug) DO UPDATE SET
				title = EXCLUDED.title,
				excerpt = EXCLUDED.excerpt,
				content = EXCLUDED.content,
				author_name = EXCLUDED.author_name,
				category_id = EXCLUDED.category_id,
				content_blocks = EXCLUDED.content_blocks,
				section_images = EXCLUDED.section_images,
				cover_image_url = EXCLUDED.cover_image_url,
				read_time_minutes = EXCLUDED.read_time_minutes,
				article_template_type = EXCLUDED.article_template_type,
				is_featured = EXCLUDED.is_featured,
				status = EXCLUDED.status,
				updated_at = EXCLUDED.updated_at
			RETURNING (xmax = 0) AS inserted`

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("bulk upsert failed: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var inserted bool
			if err := rows.Scan(&inserted); err != nil {
				return nil, err
			}
			if inserted {
				result.Inserted++
			} else {
				result.Updated++
			}
		}
		return result, rows.Err()
	}

	query += `
		ON CONFLICT (slug) DO NOTHING
		RETURNING id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("bulk insert failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result.Inserted++
	}
	result.Skipped = len(articles) - result.Inserted

	return result, rows.Err()
}

// GetBySlug retrieves an article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE slug = $1`, articleColumns)

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// StreamAll streams all articles for export
func (r *articleRepo) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	query := fmt.Sprintf(`SELECT %s FROM articles ORDER BY created_at`, articleColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return err
		}
		if err := callback(article); err != nil {
			return err
		}
	}

	return rows.Err()
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row scanner) (*models.Article, error) {
	var article models.Article
	var categoryID sql.NullString
	var contentBlocks, sectionImages []byte

	err := row.Scan(
		&article.ID, &article.Slug, &article.Title, &article.Excerpt, &article.Content,
		&article.AuthorName, &categoryID, &contentBlocks, &sectionImages,
		&article.CoverImageURL, &article.ReadTimeMinutes, &article.TemplateType,
		&article.IsFeatured, &article.Status, &article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		article.CategoryID = &categoryID.String
	}
	article.ContentBlocks = json.RawMessage(contentBlocks)
	article.SectionImages = json.RawMessage(sectionImages)

	return &article, nil
}

// jsonOrEmptyArray substitutes an empty JSON array for absent values so the
// jsonb columns never hold NULL
func jsonOrEmptyArray(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}

// dedupeBySlug collapses repeated slugs within one batch, keeping the last
// occurrence in its original position. Postgres rejects a multi-row
// ON CONFLICT DO UPDATE statement that touches the same slug twice
// ("cannot affect row a second time"), so a batch must never carry
// duplicates.
func dedupeBySlug(articles []*models.Article) []*models.Article {
	latest := make(map[string]*models.Article, len(articles))
	for _, article := range articles {
		latest[article.Slug] = article
	}
	if len(latest) == len(articles) {
		return articles
	}

	deduped := make([]*models.Article, 0, len(latest))
	seen := make(map[string]bool, len(latest))
	for _, article := range articles {
		if seen[article.Slug] {
			continue
		}
		seen[article.Slug] = true
		deduped = append(deduped, latest[article.Slug])
	}
	return deduped
}
