package repository

import (
	"context"

	"github.com/tavvy/article-import-api/internal/database"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// SlugMap returns the slug -> id mapping for every known category. The
// importer fetches this once before parsing and treats it as immutable.
func (r *categoryRepo) SlugMap(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT slug, id FROM categories")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slugs := make(map[string]string)
	for rows.Next() {
		var slug, id string
		if err := rows.Scan(&slug, &id); err != nil {
			return nil, err
		}
		slugs[slug] = id
	}
	return slugs, rows.Err()
}

// Count returns the total number of categories
func (r *categoryRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count)
	return count, err
}
