// utils/validation.go
package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var scriptRegex = regexp.MustCompile(`<script[^>]*>.*?</script>`)

// SanitizeInput sanitizes free-text user input before it is stored.
// Escaping for display stays the client's job.
func SanitizeInput(input string) string {
	// Trim spaces
	input = strings.TrimSpace(input)

	// Remove control characters (keep newlines for letter bodies)
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)

	// Remove any potential script tags
	input = scriptRegex.ReplaceAllString(input, "")

	return input
}
