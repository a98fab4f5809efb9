package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documented = `{#
template: tier1-code
tier: tier1
extends: tier0/base.j2
description: Source-code artifact structure.
exports:
  - imports
  - definitions
#}
{% extends "tier0/base.j2" %}
`

func writeTemplate(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanIndexesDocHeaders(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "tier1/code.j2", documented)
	writeTemplate(t, root, "plain.j2", "{{ value }}\n")
	writeTemplate(t, root, "notes.txt", "not a template\n")

	reg := New(root)
	require.NoError(t, reg.Scan())

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "plain.j2", list[0].Name)
	assert.Equal(t, "tier1/code.j2", list[1].Name)

	info, ok := reg.Get("tier1/code.j2")
	require.True(t, ok)
	assert.Equal(t, "tier1-code", info.ID)
	assert.Equal(t, "tier1", info.Tier)
	assert.Equal(t, "tier0/base.j2", info.Extends)
	assert.Equal(t, []string{"imports", "definitions"}, info.Exports)
}

func TestScanDerivesFallbackID(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "workers/order_worker.py.j2", "{{ name }}\n")

	reg := New(root)
	require.NoError(t, reg.Scan())

	info, ok := reg.Get("workers/order_worker.py.j2")
	require.True(t, ok)
	assert.Equal(t, "order_worker", info.ID)
}

func TestScanToleratesMalformedHeader(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "broken.j2", "{#\n: not yaml [\n#}\nbody\n")

	reg := New(root)
	require.NoError(t, reg.Scan())

	info, ok := reg.Get("broken.j2")
	require.True(t, ok)
	assert.Equal(t, "broken", info.ID)
	assert.Empty(t, info.Tier)
}

func TestScanEmitsLifecycleEvents(t *testing.T) {
	root := t.TempDir()
	path := writeTemplate(t, root, "a.j2", "one\n")

	reg := New(root)
	events := reg.Watch()

	require.NoError(t, reg.Scan())
	ev := <-events
	assert.Equal(t, EventTypeAdded, ev.Type)
	assert.Equal(t, "a.j2", ev.Template.Name)

	// Force a distinct modtime so the rescan sees an update.
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))
	require.NoError(t, reg.Scan())
	ev = <-events
	assert.Equal(t, EventTypeUpdated, ev.Type)

	require.NoError(t, os.Remove(path))
	require.NoError(t, reg.Scan())
	ev = <-events
	assert.Equal(t, EventTypeRemoved, ev.Type)

	_, ok := reg.Get("a.j2")
	assert.False(t, ok)
}
