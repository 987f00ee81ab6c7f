package security

import (
	"regexp"
	"strings"
	"unicode"
)

var htmlTagsRegex = regexp.MustCompile(`<[^>]*>`)

// SanitizeString removes potentially dangerous characters and patterns from input
func SanitizeString(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newlines and tabs
	input = removeControlCharacters(input)

	return input
}

// StripHTMLTags removes all HTML tags from input
func StripHTMLTags(input string) string {
	return htmlTagsRegex.ReplaceAllString(input, "")
}

// TruncateString truncates a string to a maximum length
func TruncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	return input[:maxLength]
}

// removeControlCharacters removes control characters except newlines and tabs
func removeControlCharacters(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
