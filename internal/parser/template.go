package parser

import (
	"encoding/json"
	"strings"

	"github.com/tavvy/article-import-api/internal/models"
)

// TemplateCSV renders the downloadable CSV template: the recognized header
// row plus one example data row, quoted the way the tokenizer expects.
func TemplateCSV() string {
	blocks := []models.Block{
		{Type: models.BlockHeading, Text: "A Day in Old Town", Level: 2},
		{Type: models.BlockParagraph, Text: "Start early to beat the crowds."},
		{Type: models.BlockCallout, Text: "The funicular closes at sunset.", Style: "tip"},
		{Type: models.BlockDivider},
	}
	blocksJSON, _ := json.Marshal(blocks)
	imagesJSON, _ := json.Marshal([]string{"https://cdn.tavvy.com/img/old-town-square.jpg"})

	example := []string{
		"A Day in Old Town",
		"a-day-in-old-town",
		"A walkable one-day itinerary through the historic center.",
		"Tavvy Team",
		"city-guides",
		string(blocksJSON),
		string(imagesJSON),
		"https://cdn.tavvy.com/img/old-town-cover.jpg",
		"7",
		"standard",
		"false",
		"published",
	}

	quoted := make([]string, len(example))
	for i, field := range example {
		quoted[i] = QuoteField(field)
	}

	return strings.Join(Columns, ",") + "\n" + strings.Join(quoted, ",") + "\n"
}
