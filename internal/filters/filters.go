// Package filters implements the pure string-transform functions available
// inside scaffolding templates: case conversions and identifier validation.
package filters

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

// capitalizer upper-cases the first letter of a segment without touching the
// rest, so acronym segments like "HTTP" survive PascalCase conversion.
var capitalizer = cases.Title(language.Und, cases.NoLower)

// PascalCase converts a name to PascalCase. Segments are split on "_"/"-"
// boundaries and on existing lower-to-upper case boundaries, capitalized,
// and concatenated.
//
//	PascalCase("test_name") == "TestName"
//	PascalCase("http-client") == "HttpClient"
func PascalCase(s string) string {
	var b strings.Builder
	for _, segment := range splitSegments(s) {
		b.WriteString(capitalizer.String(segment))
	}
	return b.String()
}

// SnakeCase converts a name to snake_case. An underscore is inserted before
// every capital-letter run boundary, "-" becomes "_", and the result is
// lower-cased.
//
//	SnakeCase("TestName") == "test_name"
//	SnakeCase("HTTPServer") == "http_server"
func SnakeCase(s string) string {
	segments := splitSegments(s)
	lowered := make([]string, len(segments))
	for i, segment := range segments {
		lowered[i] = strings.ToLower(segment)
	}
	return strings.Join(lowered, "_")
}

// KebabCase converts a name to kebab-case: SnakeCase with "-" separators.
//
//	KebabCase("TestName") == "test-name"
func KebabCase(s string) string {
	return strings.ReplaceAll(SnakeCase(s), "_", "-")
}

// ValidateIdentifier returns s unchanged if it is a legal bare identifier:
// letters, digits, and underscores, not starting with a digit. Otherwise it
// fails with a validation error.
func ValidateIdentifier(s string) (string, error) {
	if !IsIdentifier(s) {
		return "", &stencilerrors.Error{
			Type:    stencilerrors.ErrorTypeValidation,
			Code:    stencilerrors.ErrCodeInvalidIdentifier,
			Message: "not a valid identifier: " + s,
		}
	}
	return s, nil
}

// IsIdentifier reports whether s is a legal bare identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case unicode.IsLetter(r):
		case unicode.IsDigit(r):
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// splitSegments breaks a name into its word segments: explicit "_"/"-"
// separators and case boundaries both count. A capital run followed by a
// lower-case letter splits before its last capital ("HTTPServer" ->
// "HTTP", "Server").
func splitSegments(s string) []string {
	var segments []string
	runes := []rune(s)
	start := 0

	flush := func(end int) {
		if end > start {
			segments = append(segments, string(runes[start:end]))
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '_' || r == '-' {
			flush(i)
			start = i + 1
			continue
		}
		if i == start || !unicode.IsUpper(r) {
			continue
		}
		prev := runes[i-1]
		switch {
		case !unicode.IsUpper(prev) && prev != '_' && prev != '-':
			// lower-to-upper boundary
			flush(i)
			start = i
		case i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			// end of a capital run: split before the capital that
			// starts the next word
			flush(i)
			start = i
		}
	}
	flush(len(runes))

	return segments
}
