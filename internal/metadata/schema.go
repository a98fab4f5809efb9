// Package metadata defines the provenance header schema and parser: which
// comment syntax carries the header per source-file family, which key=value
// fields it must contain, and how those values are validated.
package metadata

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

// SyntaxID identifies a comment syntax family.
type SyntaxID string

const (
	SyntaxHash            SyntaxID = "hash"
	SyntaxDoubleSlash     SyntaxID = "double_slash"
	SyntaxHTMLComment     SyntaxID = "html_comment"
	SyntaxTemplateComment SyntaxID = "template_comment"
)

// CommentPattern describes how one comment syntax embeds a provenance
// header: Prefix detects comment lines of the family, MetadataLine matches a
// header-bearing line and captures the raw key=value payload in its first
// group.
type CommentPattern struct {
	Syntax       SyntaxID
	Prefix       *regexp.Regexp
	MetadataLine *regexp.Regexp
}

// MetadataField is one named header field with its value grammar. Defined
// once at config-load time and immutable afterward.
type MetadataField struct {
	Name     string
	Pattern  *regexp.Regexp
	Required bool
}

// Config owns the comment patterns and metadata fields. It is loaded once
// from a declarative document and read-only afterward.
type Config struct {
	patterns     []*CommentPattern
	patternIndex map[SyntaxID]*CommentPattern
	fields       []*MetadataField
	fieldIndex   map[string]*MetadataField
}

// Declarative document shapes.
type configDoc struct {
	CommentPatterns []patternDoc `yaml:"comment_patterns"`
	MetadataFields  []fieldDoc   `yaml:"metadata_fields"`
}

type patternDoc struct {
	Syntax            string `yaml:"syntax"`
	Prefix            string `yaml:"prefix"`
	MetadataLineRegex string `yaml:"metadata_line_regex"`
}

type fieldDoc struct {
	Name        string `yaml:"name"`
	FormatRegex string `yaml:"format_regex"`
	Required    bool   `yaml:"required"`
}

// Load reads and validates a metadata schema document from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stencilerrors.NewConfigError(
			stencilerrors.ErrCodeConfigNotFound,
			"metadata schema file not found: "+path,
		)
	}

	cfg, err := FromYAML(data)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromYAML parses and validates a metadata schema document.
func FromYAML(data []byte) (*Config, error) {
	var doc configDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, stencilerrors.NewConfigError(
			stencilerrors.ErrCodeConfigSyntax,
			"metadata schema has invalid syntax",
		).WithContext("cause", err.Error())
	}

	return build(doc)
}

func build(doc configDoc) (*Config, error) {
	if len(doc.CommentPatterns) == 0 {
		return nil, validationFailed("no comment patterns defined")
	}
	if len(doc.MetadataFields) == 0 {
		return nil, validationFailed("no metadata fields defined")
	}

	cfg := &Config{
		patternIndex: make(map[SyntaxID]*CommentPattern, len(doc.CommentPatterns)),
		fieldIndex:   make(map[string]*MetadataField, len(doc.MetadataFields)),
	}

	for _, p := range doc.CommentPatterns {
		if p.Syntax == "" {
			return nil, validationFailed("comment pattern with empty syntax id")
		}
		if p.Prefix == "" {
			return nil, validationFailed(fmt.Sprintf("comment pattern %q has empty prefix", p.Syntax))
		}

		syntax := SyntaxID(p.Syntax)
		if _, dup := cfg.patternIndex[syntax]; dup {
			return nil, validationFailed(fmt.Sprintf("duplicate comment pattern for syntax %q", p.Syntax))
		}

		prefix, err := regexp.Compile(p.Prefix)
		if err != nil {
			return nil, validationFailed(fmt.Sprintf("comment pattern %q has unparsable prefix: %v", p.Syntax, err))
		}
		line, err := regexp.Compile(p.MetadataLineRegex)
		if err != nil {
			return nil, validationFailed(fmt.Sprintf("comment pattern %q has unparsable metadata line regex: %v", p.Syntax, err))
		}
		if line.NumSubexp() < 1 {
			return nil, validationFailed(fmt.Sprintf("comment pattern %q metadata line regex captures nothing", p.Syntax))
		}

		pattern := &CommentPattern{Syntax: syntax, Prefix: prefix, MetadataLine: line}
		cfg.patterns = append(cfg.patterns, pattern)
		cfg.patternIndex[syntax] = pattern
	}

	for _, f := range doc.MetadataFields {
		if f.Name == "" {
			return nil, validationFailed("metadata field with empty name")
		}
		if f.FormatRegex == "" {
			return nil, validationFailed(fmt.Sprintf("metadata field %q has empty format regex", f.Name))
		}
		if _, dup := cfg.fieldIndex[f.Name]; dup {
			return nil, validationFailed(fmt.Sprintf("duplicate metadata field %q", f.Name))
		}

		pattern, err := regexp.Compile(f.FormatRegex)
		if err != nil {
			return nil, validationFailed(fmt.Sprintf("metadata field %q has unparsable format regex: %v", f.Name, err))
		}

		field := &MetadataField{Name: f.Name, Pattern: pattern, Required: f.Required}
		cfg.fields = append(cfg.fields, field)
		cfg.fieldIndex[f.Name] = field
	}

	return cfg, nil
}

func validationFailed(detail string) *stencilerrors.Error {
	return stencilerrors.NewConfigError(
		stencilerrors.ErrCodeConfigInvalid,
		"metadata schema validation failed: "+detail,
	)
}

// Pattern returns the comment pattern for a syntax id, or nil.
func (c *Config) Pattern(syntax SyntaxID) *CommentPattern {
	return c.patternIndex[syntax]
}

// Field returns the metadata field definition for a name, or nil. Lookup is
// case-sensitive: Template and template are different keys.
func (c *Config) Field(name string) *MetadataField {
	return c.fieldIndex[name]
}

// Fields returns the field definitions in document order.
func (c *Config) Fields() []*MetadataField {
	return c.fields
}

// Patterns returns the comment patterns in document order.
func (c *Config) Patterns() []*CommentPattern {
	return c.patterns
}
