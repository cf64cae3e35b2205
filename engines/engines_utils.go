package engines

import (
	"regexp"
	"strconv"
	"strings"
)

// quoteStringLiteral quotes s as a SQL string literal, doubling embedded
// single quotes.
func quoteStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// escapeBackslashes doubles backslashes for engines whose string literals
// treat backslash as an escape character (ClickHouse, MySQL).
func escapeBackslashes(s string) string {
	return strings.ReplaceAll(s, `\`, `\\`)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var identifierSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitizeIdentifier turns a quarantine location into a legal table
// identifier: path separators and other punctuation collapse to
// underscores, so the same location always maps to the same table.
func sanitizeIdentifier(location string) string {
	return identifierSanitizer.ReplaceAllString(strings.Trim(location, "/"), "_")
}
