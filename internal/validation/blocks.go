package validation

import (
	"fmt"
	"strings"

	"github.com/tavvy/article-import-api/internal/models"
)

// blockCheck validates the kind-specific fields of one decoded block.
// pos is the 1-based block position used in error messages.
type blockCheck func(block map[string]interface{}, pos int) []string

// blockRules is the single source of truth for which block kinds exist and
// what each requires. The BlockType constants in models must stay in step
// with this table.
var blockRules = map[models.BlockType]blockCheck{
	models.BlockHeading:      checkHeading,
	models.BlockParagraph:    requireText("paragraph"),
	models.BlockBulletList:   requireItems("bullet_list"),
	models.BlockNumberedList: requireItems("numbered_list"),
	models.BlockPlaceCard:    checkPlaceCard,
	models.BlockItineraryDay: checkItineraryDay,
	models.BlockCallout:      checkCallout,
	models.BlockChecklist:    requireItems("checklist"),
	models.BlockQuote:        requireText("quote"),
	models.BlockImage:        checkImage,
	models.BlockDivider:      checkDivider,
}

// ValidateBlock structurally validates one content block decoded from
// untrusted JSON. It returns an empty slice iff the block is valid. A missing
// type short-circuits all other checks; an unknown type is flagged but runs
// no kind-specific checks.
func ValidateBlock(block map[string]interface{}, index int) []string {
	pos := index + 1

	blockType, ok := stringField(block, "type")
	if !ok {
		return []string{fmt.Sprintf("block %d: missing type", pos)}
	}

	check, known := blockRules[models.BlockType(blockType)]
	if !known {
		return []string{fmt.Sprintf("block %d: invalid type %q", pos, blockType)}
	}

	return check(block, pos)
}

func checkHeading(block map[string]interface{}, pos int) []string {
	var errs []string
	if _, ok := stringField(block, "text"); !ok {
		errs = append(errs, fmt.Sprintf("block %d: heading requires text", pos))
	}
	level, ok := block["level"].(float64)
	if !ok || (level != 1 && level != 2 && level != 3) {
		errs = append(errs, fmt.Sprintf("block %d: heading level must be 1, 2 or 3", pos))
	}
	return errs
}

func checkPlaceCard(block map[string]interface{}, pos int) []string {
	if _, ok := stringField(block, "place_id"); !ok {
		return []string{fmt.Sprintf("block %d: place_card requires place_id", pos)}
	}
	return nil
}

func checkItineraryDay(block map[string]interface{}, pos int) []string {
	var errs []string
	if _, ok := stringField(block, "title"); !ok {
		errs = append(errs, fmt.Sprintf("block %d: itinerary_day requires title", pos))
	}
	if _, ok := block["items"].([]interface{}); !ok {
		errs = append(errs, fmt.Sprintf("block %d: itinerary_day items must be an array", pos))
	}
	return errs
}

func checkCallout(block map[string]interface{}, pos int) []string {
	var errs []string
	if _, ok := stringField(block, "text"); !ok {
		errs = append(errs, fmt.Sprintf("block %d: callout requires text", pos))
	}
	style, ok := stringField(block, "style")
	if !ok || !models.ValidCalloutStyles[style] {
		errs = append(errs, fmt.Sprintf("block %d: invalid callout style %q, must be one of: tip, warning, tavvy_note", pos, style))
	}
	return errs
}

func checkImage(block map[string]interface{}, pos int) []string {
	for _, key := range []string{"ref", "url", "image_id"} {
		if _, ok := stringField(block, key); ok {
			return nil
		}
	}
	return []string{fmt.Sprintf("block %d: image requires one of ref, url or image_id", pos)}
}

func checkDivider(map[string]interface{}, int) []string {
	return nil
}

// requireText builds a check for kinds whose only requirement is non-empty text
func requireText(kind string) blockCheck {
	return func(block map[string]interface{}, pos int) []string {
		if _, ok := stringField(block, "text"); !ok {
			return []string{fmt.Sprintf("block %d: %s requires text", pos, kind)}
		}
		return nil
	}
}

// requireItems builds a check for kinds that need a non-empty items array
func requireItems(kind string) blockCheck {
	return func(block map[string]interface{}, pos int) []string {
		items, ok := block["items"].([]interface{})
		if !ok || len(items) == 0 {
			return []string{fmt.Sprintf("block %d: %s requires a non-empty items array", pos, kind)}
		}
		return nil
	}
}

// stringField extracts a non-empty string field from a decoded block
func stringField(block map[string]interface{}, key string) (string, bool) {
	value, ok := block[key].(string)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}
