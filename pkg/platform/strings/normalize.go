// Package strings normalizes user- and client-supplied string values.
package strings

import (
	"mime"
	"strings"
)

// DedupeAndTrimLower trims, lowercases and drops empty or repeated values.
// Order of first occurrence is preserved.
//
// Example:
//
//	DedupeAndTrimLower([]string{"  Image/PNG ", "image/png", ""})
//	// Returns: []string{"image/png"}
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.ToLower(strings.TrimSpace(v))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// MediaType reduces a Content-Type value to its lowercased media type,
// dropping parameters. Unparseable values are trimmed and lowercased as is.
//
// Example:
//
//	MediaType("Application/PDF; charset=binary")
//	// Returns: "application/pdf"
func MediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
