// Package strings provides the text normalisation shared by keyword matching and scope labels.
package strings

import (
	"strings"
)

// NormalizeKeywords lowercases and trims each keyword, dropping empties and
// duplicates. Order of first occurrence is preserved.
//
// Example:
//
//	NormalizeKeywords([]string{"  Terminal ", "plaza", "TERMINAL", ""})
//	// Returns: []string{"terminal", "plaza"}
func NormalizeKeywords(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		k := strings.ToLower(strings.TrimSpace(v))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			result = append(result, k)
		}
	}

	return result
}

// ContainsAny reports whether text contains any of the keywords, ignoring case.
// Keywords are expected to be lowercase already (see NormalizeKeywords).
func ContainsAny(text string, keywords []string) bool {
	if text == "" || len(keywords) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// NormalizeLabel canonicalises a jurisdiction label: trimmed, inner whitespace
// collapsed to single spaces, lowercased. "  San  Isidro " becomes "san isidro".
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
