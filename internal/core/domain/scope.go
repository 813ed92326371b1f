package domain

import "regexp"

// scopePattern matches a valid identifier scope: a DNS-name-like string of at
// most 127 characters. Matching is case-insensitive; generated identifiers
// are lowercased before use.
var scopePattern = regexp.MustCompile(`(?i)^[a-z0-9][a-z0-9.-]{0,126}$`)

// subjectIDPattern is the stricter "global uniqueness" heuristic from the
// SAML subject-id attribute profile. Values that fail it are still emitted,
// with a warning.
var subjectIDPattern = regexp.MustCompile(`(?i)^[a-z0-9][a-z0-9=-]{0,126}@[a-z0-9][a-z0-9.-]{0,126}$`)

// ValidScope reports whether scope is acceptable for identifier generation.
func ValidScope(scope string) bool {
	return scopePattern.MatchString(scope)
}

// MatchesSubjectIDProfile reports whether value satisfies the strict
// subject-id uniqueness pattern.
func MatchesSubjectIDProfile(value string) bool {
	return subjectIDPattern.MatchString(value)
}

// ExtractScope returns the scope part of a scoped value: the substring after
// the first "@" when present, otherwise the whole value.
func ExtractScope(value string) string {
	for i := 0; i < len(value); i++ {
		if value[i] == '@' {
			return value[i+1:]
		}
	}
	return value
}
