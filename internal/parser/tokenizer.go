package parser

import (
	"strings"
)

// TokenizeLine splits one CSV line into fields. A double quote toggles the
// in-quotes state, so commas inside a quoted field are literal. Each field is
// whitespace-trimmed and stripped of one wrapping quote pair; quotes inside
// the field (JSON cells) are kept as-is.
//
// This is the simplified dialect the admin console's template exports use,
// not RFC 4180: there is no doubled-quote escape, and an unterminated quote
// consumes the rest of the line without raising an error. Existing exported
// CSVs depend on both behaviors.
func TokenizeLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == ',' && !inQuotes:
			fields = append(fields, cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, cleanField(current.String()))

	return fields
}

// cleanField trims whitespace and removes one wrapping quote pair
func cleanField(field string) string {
	field = strings.TrimSpace(field)
	if len(field) >= 2 && strings.HasPrefix(field, `"`) && strings.HasSuffix(field, `"`) {
		field = field[1 : len(field)-1]
	}
	return field
}

// QuoteField wraps a field in quotes when it needs them under the simplified
// dialect, i.e. when it contains a comma. Used by the template writer and the
// issue report exporter.
func QuoteField(field string) string {
	if strings.Contains(field, ",") {
		return `"` + field + `"`
	}
	return field
}
