package utils

import "strings"

// MatchesPattern checks a string against a simple wildcard pattern: exact,
// "prefix*", "*suffix" or "*contains*".
func MatchesPattern(str string, pattern string) bool {
	if str == pattern {
		return true
	}

	if !strings.Contains(pattern, "*") {
		return false
	}
	if pattern == "*" || pattern == "**" {
		return true
	}

	switch {
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*"):
		return strings.Contains(str, pattern[1:len(pattern)-1])
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(str, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(str, pattern[:len(pattern)-1])
	}
	return false
}

// MatchesAnyPattern reports whether str matches one of patterns.
func MatchesAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if MatchesPattern(str, pattern) {
			return true
		}
	}
	return false
}
