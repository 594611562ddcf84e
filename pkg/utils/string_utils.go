package utils

import "strings"

// TrimSpaceSlice trims whitespace from all strings in a slice and filters out empty strings
func TrimSpaceSlice(items []string) []string {
	var result []string
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ParseCommaDelimited parses a comma-delimited string into a slice of trimmed, non-empty strings
func ParseCommaDelimited(input string) []string {
	if input == "" {
		return nil
	}

	parts := strings.Split(input, ",")
	return TrimSpaceSlice(parts)
}

// DedupStrings removes repeated entries while keeping first-seen order.
func DedupStrings(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}
	return result
}
