package metadata

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

//go:embed default_schema.yml
var defaultSchema []byte

// Builtin returns the schema shipped with the binary. Callers that want a
// project-specific schema load one with Load instead.
func Builtin() (*Config, error) {
	return FromYAML(defaultSchema)
}

// DefaultDocument returns the raw builtin schema document, suitable for
// writing out as a starter configuration file.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultSchema...)
}

// extensionSyntax maps a lowercase file extension (without dot) to the
// comment syntax used for its provenance header.
var extensionSyntax = map[string]SyntaxID{
	"py":   SyntaxHash,
	"yaml": SyntaxHash,
	"yml":  SyntaxHash,
	"sh":   SyntaxHash,
	"bash": SyntaxHash,
	"txt":  SyntaxHash,

	"ts":   SyntaxDoubleSlash,
	"js":   SyntaxDoubleSlash,
	"java": SyntaxDoubleSlash,
	"cs":   SyntaxDoubleSlash,
	"go":   SyntaxDoubleSlash,

	"md":   SyntaxHTMLComment,
	"html": SyntaxHTMLComment,
	"htm":  SyntaxHTMLComment,
	"xml":  SyntaxHTMLComment,

	"jinja2": SyntaxTemplateComment,
	"j2":     SyntaxTemplateComment,
}

// SyntaxForExtension maps a file extension to its comment syntax. The
// extension may carry a leading dot and any case.
func SyntaxForExtension(ext string) (SyntaxID, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	syntax, ok := extensionSyntax[ext]
	return syntax, ok
}

// pairPattern tokenizes a captured metadata payload into key=value pairs
// using a word=non-whitespace-run grammar.
var pairPattern = regexp.MustCompile(`(\w+)=(\S+)`)

// Parse extracts and validates the provenance header of generated content.
//
// It returns (nil, nil) for content that is simply not a scaffolded file:
// empty content, a blank first line, an unmapped extension, or a leading
// comment that carries no metadata payload. Malformed headers return a
// metadata error instead, so callers can distinguish absent from broken.
//
// Headers span up to two lines: when the first line is the filepath comment,
// the metadata line is the second. Parse tries the first line, and falls back
// to the second only when the first matched the syntax's comment prefix.
func (c *Config) Parse(content, ext string) (map[string]string, error) {
	if content == "" {
		return nil, nil
	}

	lines := strings.SplitN(content, "\n", 3)
	first := strings.TrimRight(lines[0], "\r")
	if strings.TrimSpace(first) == "" {
		return nil, nil
	}

	syntax, ok := SyntaxForExtension(ext)
	if !ok {
		return nil, nil
	}
	pattern := c.Pattern(syntax)
	if pattern == nil {
		return nil, nil
	}

	payload, ok := capturePayload(pattern, first)
	if !ok {
		// A prefix-only first line is the filepath comment; the metadata
		// line follows it.
		if !pattern.Prefix.MatchString(first) || len(lines) < 2 {
			return nil, nil
		}
		second := strings.TrimRight(lines[1], "\r")
		if payload, ok = capturePayload(pattern, second); !ok {
			return nil, nil
		}
	}

	parsed := tokenize(payload)
	if len(parsed) == 0 {
		return nil, stencilerrors.NewMetadataError(
			stencilerrors.ErrCodeMetadataNoPairs,
			"no valid key=value pairs",
		)
	}

	return c.validate(parsed)
}

func capturePayload(pattern *CommentPattern, line string) (string, bool) {
	m := pattern.MetadataLine.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// tokenize splits a payload into a field map. Later occurrences of a key
// overwrite earlier ones.
func tokenize(payload string) map[string]string {
	parsed := make(map[string]string)
	for _, m := range pairPattern.FindAllStringSubmatch(payload, -1) {
		parsed[m[1]] = m[2]
	}
	return parsed
}

// validate enforces required fields and value grammars, and drops keys with
// no configured field definition. Matching is case-sensitive throughout.
func (c *Config) validate(parsed map[string]string) (map[string]string, error) {
	for _, field := range c.fields {
		if !field.Required {
			continue
		}
		if _, ok := parsed[field.Name]; !ok {
			return nil, stencilerrors.NewMetadataError(
				stencilerrors.ErrCodeMetadataMissing,
				"missing required field: "+field.Name,
			)
		}
	}

	result := make(map[string]string, len(parsed))
	for key, value := range parsed {
		field := c.Field(key)
		if field == nil {
			continue
		}
		if !field.Pattern.MatchString(value) {
			return nil, stencilerrors.NewMetadataError(
				stencilerrors.ErrCodeMetadataInvalid,
				fmt.Sprintf("invalid value '%s' for field '%s'", value, key),
			)
		}
		result[key] = value
	}

	return result, nil
}
