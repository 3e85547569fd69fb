package models

// BlockType identifies one kind of article content block
type BlockType string

const (
	BlockHeading      BlockType = "heading"
	BlockParagraph    BlockType = "paragraph"
	BlockBulletList   BlockType = "bullet_list"
	BlockNumberedList BlockType = "numbered_list"
	BlockPlaceCard    BlockType = "place_card"
	BlockItineraryDay BlockType = "itinerary_day"
	BlockCallout      BlockType = "callout"
	BlockChecklist    BlockType = "checklist"
	BlockQuote        BlockType = "quote"
	BlockImage        BlockType = "image"
	BlockDivider      BlockType = "divider"
)

// ValidCalloutStyles defines allowed callout styles
var ValidCalloutStyles = map[string]bool{
	"tip":        true,
	"warning":    true,
	"tavvy_note": true,
}

// Block is the typed form of one content block. The JSON embedded in a CSV
// cell is validated field-by-field before anything is trusted to decode into
// this shape; Block itself is used where the service produces blocks (the
// template example row, exports).
type Block struct {
	Type    BlockType `json:"type"`
	Text    string    `json:"text,omitempty"`
	Level   int       `json:"level,omitempty"`
	Style   string    `json:"style,omitempty"`
	Title   string    `json:"title,omitempty"`
	PlaceID string    `json:"place_id,omitempty"`
	Items   []string  `json:"items,omitempty"`
	Ref     string    `json:"ref,omitempty"`
	URL     string    `json:"url,omitempty"`
	ImageID string    `json:"image_id,omitempty"`
}
