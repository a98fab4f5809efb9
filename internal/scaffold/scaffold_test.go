package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
	"github.com/stencilkit/stencil/internal/metadata"
	"github.com/stencilkit/stencil/internal/renderer"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 20, 14, 0, 0, 0, time.UTC)
}

func newPipeline(t *testing.T) (*Pipeline, string) {
	t.Helper()

	root := t.TempDir()
	_, err := WriteBuiltinTemplates(root)
	require.NoError(t, err)

	engine, err := renderer.New(root)
	require.NoError(t, err)

	return New(engine, WithClock(fixedClock)), root
}

func TestGenerateDTO(t *testing.T) {
	pipeline, _ := newPipeline(t)

	result, err := pipeline.Generate(context.Background(), Request{
		Template:     "dto_python.py.j2",
		ArtifactType: "dto",
		OutputPath:   "out/order_created.py",
		Variables: map[string]interface{}{
			"event_name": "order_created",
			"fields": []map[string]interface{}{
				{"name": "OrderId", "type": "str"},
				{"name": "placed_at", "type": "datetime"},
			},
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Content, "# out/order_created.py\n"))
	assert.Contains(t, result.Content, "from dataclasses import dataclass")
	assert.Contains(t, result.Content, "class OrderCreated:")
	assert.Contains(t, result.Content, "order_id: str")
	assert.Contains(t, result.Content, "placed_at: datetime")

	assert.Equal(t, "dto-python", result.Header.TemplateID)
	assert.Equal(t, "2026-01-20T14:00:00Z", result.Header.Created)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}$`), result.Header.Version)
}

func TestGeneratedHeaderRoundTrips(t *testing.T) {
	pipeline, _ := newPipeline(t)

	result, err := pipeline.Generate(context.Background(), Request{
		Template:   "dto_python.py.j2",
		OutputPath: "out/order.py",
		Variables: map[string]interface{}{
			"event_name": "order_created",
			"fields":     []map[string]interface{}{},
		},
	})
	require.NoError(t, err)

	cfg, err := metadata.Builtin()
	require.NoError(t, err)

	fields, err := cfg.Parse(result.Content, ".py")
	require.NoError(t, err)
	assert.Equal(t, result.Header.TemplateID, fields["template"])
	assert.Equal(t, result.Header.Version, fields["version"])
	assert.Equal(t, result.Header.Created, fields["created"])
}

func TestGenerateReportsAllMissingFields(t *testing.T) {
	pipeline, _ := newPipeline(t)

	_, err := pipeline.Generate(context.Background(), Request{
		Template:   "dto_python.py.j2",
		OutputPath: "out/x.py",
	})

	require.Error(t, err)
	assert.True(t, stencilerrors.IsType(err, stencilerrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "event_name")
	assert.Contains(t, err.Error(), "fields")
}

func TestGenerateRejectsNilRequiredValue(t *testing.T) {
	pipeline, _ := newPipeline(t)

	_, err := pipeline.Generate(context.Background(), Request{
		Template:   "dto_python.py.j2",
		OutputPath: "out/x.py",
		Variables: map[string]interface{}{
			"event_name": nil,
			"fields":     []map[string]interface{}{},
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required fields: event_name")
}

func TestGenerateEphemeralUsesCompactHeader(t *testing.T) {
	pipeline, _ := newPipeline(t)

	result, err := pipeline.Generate(context.Background(), Request{
		Template: "design_doc.md.j2",
		Variables: map[string]interface{}{
			"title": "Payments v2",
		},
	})
	require.NoError(t, err)

	firstLine := strings.SplitN(result.Content, "\n", 2)[0]
	assert.Regexp(t, regexp.MustCompile(`^<!-- template=design-doc version=[0-9a-f]{8} -->$`), firstLine)
	assert.NotContains(t, firstLine, "created=")
	assert.Contains(t, result.Content, "# Payments v2")
	assert.Contains(t, result.Content, "Author: unassigned")
}

func TestIntrospectClassifiesBuiltins(t *testing.T) {
	pipeline, _ := newPipeline(t)

	schema, version, err := pipeline.Introspect("dto_python.py.j2")
	require.NoError(t, err)

	assert.Equal(t, []string{"tier0/base.j2", "tier1/code.j2", "tier2/python.j2", "dto_python.py.j2"},
		schema.InheritanceChain)
	assert.Contains(t, schema.Required, "event_name")
	assert.Contains(t, schema.Required, "fields")
	assert.Contains(t, schema.Optional, "description")
	assert.Contains(t, schema.Optional, "stdlib_imports")
	assert.Len(t, version, 8)
}

func TestVersionHashTracksChainEdits(t *testing.T) {
	pipeline, root := newPipeline(t)

	_, before, err := pipeline.Introspect("dto_python.py.j2")
	require.NoError(t, err)

	_, again, err := pipeline.Introspect("dto_python.py.j2")
	require.NoError(t, err)
	assert.Equal(t, before, again)

	// Editing an ancestor must change the leaf's version.
	base := filepath.Join(root, "tier0", "base.j2")
	src, err := os.ReadFile(base)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(base, append(src, []byte("{# rev 2 #}\n")...), 0o644))

	_, after, err := pipeline.Introspect("dto_python.py.j2")
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestWriteFile(t *testing.T) {
	pipeline, _ := newPipeline(t)
	out := filepath.Join(t.TempDir(), "generated", "docs", "payments.md")

	result, err := pipeline.Generate(context.Background(), Request{
		Template:   "design_doc.md.j2",
		OutputPath: out,
		Variables:  map[string]interface{}{"title": "Payments"},
	})
	require.NoError(t, err)
	require.NoError(t, pipeline.WriteFile(context.Background(), result))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, result.Content, string(written))
}

func TestWriteFileRejectsEphemeral(t *testing.T) {
	pipeline, _ := newPipeline(t)

	result, err := pipeline.Generate(context.Background(), Request{
		Template:  "design_doc.md.j2",
		Variables: map[string]interface{}{"title": "Payments"},
	})
	require.NoError(t, err)

	assert.Error(t, pipeline.WriteFile(context.Background(), result))
}

func TestWriteBuiltinTemplatesSkipsExisting(t *testing.T) {
	root := t.TempDir()

	custom := filepath.Join(root, "tier0", "base.j2")
	require.NoError(t, os.MkdirAll(filepath.Dir(custom), 0o755))
	require.NoError(t, os.WriteFile(custom, []byte("{% block body %}{% endblock %}\n"), 0o644))

	written, err := WriteBuiltinTemplates(root)
	require.NoError(t, err)
	assert.NotContains(t, written, "tier0/base.j2")

	kept, err := os.ReadFile(custom)
	require.NoError(t, err)
	assert.Equal(t, "{% block body %}{% endblock %}\n", string(kept))
}

func TestGenerateTemplateIDFromDocHeader(t *testing.T) {
	root := t.TempDir()
	write := func(name, content string) {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("event_stub.py.j2", "{#\ntemplate: event-stub\ndescription: minimal event class\n#}\nclass {{ event_name | pascal_case }}:\n    pass\n")
	write("plain_stub.py.j2", "value = \"{{ event_name }}\"\n")

	engine, err := renderer.New(root)
	require.NoError(t, err)
	pipeline := New(engine, WithClock(fixedClock))

	// The header's declared id wins over the filename derivation.
	declared, err := pipeline.Generate(context.Background(), Request{
		Template:   "event_stub.py.j2",
		OutputPath: "out/stub.py",
		Variables:  map[string]interface{}{"event_name": "order_created"},
	})
	require.NoError(t, err)
	assert.Equal(t, "event-stub", declared.Header.TemplateID)
	assert.Contains(t, declared.Content, "template=event-stub ")

	// Without a header the id falls back to the filename.
	fallback, err := pipeline.Generate(context.Background(), Request{
		Template:   "plain_stub.py.j2",
		OutputPath: "out/plain.py",
		Variables:  map[string]interface{}{"event_name": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "plain_stub", fallback.Header.TemplateID)
	assert.Contains(t, fallback.Content, "template=plain_stub ")
}

func TestTemplateID(t *testing.T) {
	cases := map[string]string{
		"dto_python.py.j2":  "dto_python",
		"tier2/python.j2":   "python",
		"Design Doc.md.j2":  "design-doc",
		"weird///.j2":       "template",
		"service.jinja2":    "service",
		"nested/dir/api.j2": "api",
	}

	for in, want := range cases {
		assert.Equal(t, want, TemplateID(in), in)
	}
}

func TestHeaderRenderSyntaxes(t *testing.T) {
	h := &Header{
		TemplateID: "worker",
		Version:    "ab12cd34",
		Created:    "2026-01-20T14:00:00Z",
		OutputPath: "svc/worker.py",
	}

	hash := h.Render(metadata.SyntaxHash)
	assert.Equal(t, "# svc/worker.py\n# template=worker version=ab12cd34 created=2026-01-20T14:00:00Z updated=", hash)

	html := h.Render(metadata.SyntaxHTMLComment)
	assert.True(t, strings.HasPrefix(html, "<!-- svc/worker.py -->\n<!-- template=worker"))
	assert.True(t, strings.HasSuffix(html, "-->"))

	h.Updated = "2026-02-01T09:30Z"
	assert.Contains(t, h.Render(metadata.SyntaxDoubleSlash), "updated=2026-02-01T09:30Z")
}
