package repository

import (
	"testing"

	"github.com/tavvy/article-import-api/internal/models"
)

// A multi-row ON CONFLICT DO UPDATE statement must never carry the same slug
// twice, so batches are collapsed before the statement is built.
func TestDedupeBySlug(t *testing.T) {
	batch := []*models.Article{
		{Slug: "a", Title: "first"},
		{Slug: "b", Title: "only"},
		{Slug: "a", Title: "last"},
	}

	deduped := dedupeBySlug(batch)

	if len(deduped) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(deduped))
	}
	if deduped[0].Slug != "a" || deduped[1].Slug != "b" {
		t.Errorf("unexpected order: %q, %q", deduped[0].Slug, deduped[1].Slug)
	}
	if deduped[0].Title != "last" {
		t.Errorf("last occurrence must win, got %q", deduped[0].Title)
	}
}

func TestDedupeBySlug_NoDuplicates(t *testing.T) {
	batch := []*models.Article{
		{Slug: "a"},
		{Slug: "b"},
	}

	deduped := dedupeBySlug(batch)
	if len(deduped) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(deduped))
	}
	for i := range batch {
		if deduped[i] != batch[i] {
			t.Errorf("article %d should be untouched", i)
		}
	}
}
