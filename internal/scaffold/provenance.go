package scaffold

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/stencilkit/stencil/internal/metadata"
)

// Header is the provenance stamp prepended to every generated artifact. It
// records which template and version produced the file and when.
type Header struct {
	TemplateID string
	Version    string
	Created    string
	Updated    string
	OutputPath string
}

// VersionHash derives the 8-hex-digit template version from the source text
// of every template in the inheritance chain, root-first. Any edit anywhere
// in the chain changes the hash.
func VersionHash(sources []string) string {
	h := sha256.New()
	for _, src := range sources {
		h.Write([]byte(src))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))[:8]
}

// Render formats the header in the given comment syntax.
//
// With an output path the header spans two lines: the filepath comment, then
// the metadata line. Without one (ephemeral artifacts) it collapses to a
// compact single line carrying only template and version.
func (h *Header) Render(syntax metadata.SyntaxID) string {
	if h.OutputPath == "" {
		return wrap(syntax, fmt.Sprintf("template=%s version=%s", h.TemplateID, h.Version))
	}

	fields := fmt.Sprintf("template=%s version=%s created=%s updated=%s",
		h.TemplateID, h.Version, h.Created, h.Updated)

	return wrap(syntax, h.OutputPath) + "\n" + wrap(syntax, fields)
}

func wrap(syntax metadata.SyntaxID, text string) string {
	switch syntax {
	case metadata.SyntaxDoubleSlash:
		return "// " + text
	case metadata.SyntaxHTMLComment:
		return "<!-- " + text + " -->"
	case metadata.SyntaxTemplateComment:
		return "{# " + text + " #}"
	default:
		return "# " + text
	}
}

// Prepend stamps the header onto rendered content in the comment syntax of
// the output path's extension. Content with no mapped syntax is returned
// unstamped: there is no comment dialect to write the header in.
func (h *Header) Prepend(content, ext string) string {
	syntax, ok := metadata.SyntaxForExtension(ext)
	if !ok {
		return content
	}

	header := h.Render(syntax)
	if content == "" {
		return header + "\n"
	}
	if !strings.HasPrefix(content, "\n") {
		header += "\n"
	}

	return header + content
}
