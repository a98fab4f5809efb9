package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestNewMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"))

	require.Error(t, err)
	assert.True(t, stencilerrors.IsConfigError(err))
}

func TestNewRootIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := New(file)

	require.Error(t, err)
	assert.True(t, stencilerrors.IsConfigError(err))
}

func TestRenderSimple(t *testing.T) {
	root := writeTemplates(t, map[string]string{
		"greeting.j2": "Hello {{ name }}!",
	})
	engine, err := New(root)
	require.NoError(t, err)

	out, err := engine.Render("greeting.j2", map[string]interface{}{"name": "World"})

	require.NoError(t, err)
	assert.Equal(t, "Hello World!", out)
}

func TestRenderInheritance(t *testing.T) {
	root := writeTemplates(t, map[string]string{
		"base.j2":  "header\n{% block body %}default{% endblock %}\nfooter",
		"child.j2": "{% extends \"base.j2\" %}{% block body %}{{ value }}{% endblock %}",
	})
	engine, err := New(root)
	require.NoError(t, err)

	out, err := engine.Render("child.j2", map[string]interface{}{"value": "payload"})

	require.NoError(t, err)
	assert.Contains(t, out, "header")
	assert.Contains(t, out, "payload")
	assert.Contains(t, out, "footer")
	assert.NotContains(t, out, "default")
}

func TestRenderAppliesFilters(t *testing.T) {
	root := writeTemplates(t, map[string]string{
		"dto.j2": "type {{ name | pascal_case }} struct{} // file {{ name | kebab_case }}.go",
	})
	engine, err := New(root)
	require.NoError(t, err)

	out, err := engine.Render("dto.j2", map[string]interface{}{"name": "order_item"})

	require.NoError(t, err)
	assert.Contains(t, out, "type OrderItem struct{}")
	assert.Contains(t, out, "order-item.go")
}

func TestRenderIdentifierFilterRejectsBadInput(t *testing.T) {
	root := writeTemplates(t, map[string]string{
		"worker.j2": "func {{ name | identifier }}() {}",
	})
	engine, err := New(root)
	require.NoError(t, err)

	_, err = engine.Render("worker.j2", map[string]interface{}{"name": "123bad"})

	assert.Error(t, err)
}

func TestRenderUndefinedVariableFails(t *testing.T) {
	root := writeTemplates(t, map[string]string{
		"greeting.j2": "Hello {{ name }}!",
	})
	engine, err := New(root)
	require.NoError(t, err)

	out, err := engine.Render("greeting.j2", nil)

	require.Error(t, err)
	assert.True(t, stencilerrors.IsType(err, stencilerrors.ErrorTypeRender))
	assert.Contains(t, err.Error(), "name")
	assert.Empty(t, out)
}

func TestRenderUndefinedAncestorVariableFails(t *testing.T) {
	root := writeTemplates(t, map[string]string{
		"base.j2":  "{{ owner }}\n{% block body %}{% endblock %}",
		"child.j2": "{% extends \"base.j2\" %}{% block body %}x{% endblock %}",
	})
	engine, err := New(root)
	require.NoError(t, err)

	_, err = engine.Render("child.j2", map[string]interface{}{"unrelated": 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner")
}

func TestRenderOptionalVariablesMayBeOmitted(t *testing.T) {
	root := writeTemplates(t, map[string]string{
		"doc.j2": "{{ author | default(\"unassigned\") }}{% if draft %} DRAFT{% endif %}",
	})
	engine, err := New(root)
	require.NoError(t, err)

	out, err := engine.Render("doc.j2", nil)

	require.NoError(t, err)
	assert.Contains(t, out, "unassigned")
	assert.NotContains(t, out, "DRAFT")
}

func TestRenderTemplateNotFound(t *testing.T) {
	engine, err := New(writeTemplates(t, map[string]string{"a.j2": "a"}))
	require.NoError(t, err)

	_, err = engine.Render("missing.j2", nil)

	require.Error(t, err)
	assert.True(t, stencilerrors.IsTemplateNotFound(err))
}

func TestListTemplates(t *testing.T) {
	root := writeTemplates(t, map[string]string{
		"tier0/provenance.j2": "{# tier0 #}",
		"tier1/dto.j2":        "{# tier1 #}",
		"macros/naming.j2":    "{# macros #}",
		"notes.txt":           "not a template",
	})
	engine, err := New(root)
	require.NoError(t, err)

	names, err := engine.ListTemplates()

	require.NoError(t, err)
	assert.Equal(t, []string{"macros/naming.j2", "tier0/provenance.j2", "tier1/dto.j2"}, names)
}

func TestSource(t *testing.T) {
	root := writeTemplates(t, map[string]string{"raw.j2": "{{ unparsed }}"})
	engine, err := New(root)
	require.NoError(t, err)

	src, err := engine.Source("raw.j2")
	require.NoError(t, err)
	assert.Equal(t, "{{ unparsed }}", src)

	_, err = engine.Source("absent.j2")
	assert.True(t, stencilerrors.IsTemplateNotFound(err))
}
