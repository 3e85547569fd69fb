package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tavvy/article-import-api/internal/parser"
	"github.com/tavvy/article-import-api/internal/validation"
)

var benchCategories = map[string]string{
	"city-guides": "11111111-1111-1111-1111-111111111111",
	"food":        "22222222-2222-2222-2222-222222222222",
}

// generateCSV builds a parseable upload with the given number of data rows.
// Every third row carries a content_blocks cell so block validation is part
// of the measured path.
func generateCSV(rows int) string {
	var sb strings.Builder
	sb.WriteString("title,slug,excerpt,author,category_slug,content_blocks,read_time_minutes,status\n")
	for i := 0; i < rows; i++ {
		blocks := ""
		if i%3 == 0 {
			blocks = `"[{"type":"heading","text":"Section","level":2},{"type":"paragraph","text":"Body text for the section."}]"`
		}
		fmt.Fprintf(&sb, "Article %d,article-%d,Short excerpt,Tavvy Team,city-guides,%s,6,published\n", i, i, blocks)
	}
	return sb.String()
}

func BenchmarkParseCSV(b *testing.B) {
	for _, rows := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("rows_%d", rows), func(b *testing.B) {
			text := generateCSV(rows)
			p := parser.New(benchCategories)
			b.SetBytes(int64(len(text)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				articles, err := p.ParseCSV(text)
				if err != nil {
					b.Fatal(err)
				}
				if len(articles) != rows {
					b.Fatalf("expected %d rows, got %d", rows, len(articles))
				}
			}
		})
	}
}

func BenchmarkTokenizeLine(b *testing.B) {
	line := `Article,article-1,Short excerpt,"[{"type":"heading","text":"Hi","level":2}]",city-guides,6`
	b.SetBytes(int64(len(line)))

	for i := 0; i < b.N; i++ {
		fields := parser.TokenizeLine(line)
		if len(fields) != 6 {
			b.Fatalf("expected 6 fields, got %d", len(fields))
		}
	}
}

func BenchmarkValidateBlock(b *testing.B) {
	block := map[string]interface{}{
		"type":  "heading",
		"text":  "Getting There",
		"level": float64(2),
	}

	for i := 0; i < b.N; i++ {
		if errs := validation.ValidateBlock(block, 0); len(errs) != 0 {
			b.Fatalf("unexpected errors: %v", errs)
		}
	}
}

func BenchmarkSummarize(b *testing.B) {
	p := parser.New(benchCategories)
	articles, err := p.ParseCSV(generateCSV(1000))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		summary := parser.Summarize(articles)
		if summary.TotalRows != 1000 {
			b.Fatalf("unexpected total: %d", summary.TotalRows)
		}
	}
}
