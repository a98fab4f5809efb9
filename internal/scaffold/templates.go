package scaffold

import (
	"os"
	"path/filepath"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

// BuiltinTemplates returns the starter template set written by project
// initialization: a four-tier inheritance hierarchy plus a macro library and
// two concrete leaves. Keys are template-root-relative paths.
//
// Each file opens with a documentation comment block declaring identity,
// tier, parent, and exports. The registry reads it; the rendering engine
// treats it as an ordinary comment.
func BuiltinTemplates() map[string]string {
	return map[string]string{
		"tier0/base.j2":    tier0Base,
		"tier1/code.j2":    tier1Code,
		"tier2/python.j2":  tier2Python,
		"macros/naming.j2": macrosNaming,
		"dto_python.py.j2": dtoPython,
		"design_doc.md.j2": designDoc,
	}
}

// WriteBuiltinTemplates materializes the starter set under root, skipping
// any file that already exists so re-initialization never clobbers local
// edits. It returns the paths it created.
func WriteBuiltinTemplates(root string) ([]string, error) {
	var written []string

	for rel, content := range BuiltinTemplates() {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return written, stencilerrors.NewIOError(stencilerrors.ErrCodeIOWrite, "failed to create template directory", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return written, stencilerrors.NewIOError(stencilerrors.ErrCodeIOWrite, "failed to write template "+rel, err)
		}
		written = append(written, rel)
	}

	return written, nil
}

const tier0Base = `{#
template: tier0-base
tier: tier0
description: Universal artifact skeleton shared by every scaffold.
exports:
  - body
#}
{% block body %}{% endblock %}
`

const tier1Code = `{#
template: tier1-code
tier: tier1
extends: tier0/base.j2
description: Source-code artifact structure with import and definition sections.
exports:
  - imports
  - definitions
#}
{% extends "tier0/base.j2" %}
{% block body %}
{% block imports %}{% endblock %}
{% block definitions %}{% endblock %}
{% endblock %}
`

const tier2Python = `{#
template: tier2-python
tier: tier2
extends: tier1/code.j2
description: Python-specific conventions layered over the code structure.
exports:
  - imports
  - definitions
#}
{% extends "tier1/code.j2" %}
{% block imports %}
{%- for module in stdlib_imports | default([]) %}
import {{ module }}
{%- endfor %}
{% endblock %}
`

const macrosNaming = `{#
template: macros-naming
tier: macros
description: Naming helpers shared by concrete templates.
exports:
  - class_name
  - module_name
  - constant_name
#}
{% macro class_name(value) %}{{ value | pascal_case }}{% endmacro %}
{% macro module_name(value) %}{{ value | snake_case }}{% endmacro %}
{% macro constant_name(value) %}{{ value | snake_case | upper }}{% endmacro %}
`

const dtoPython = `{#
template: dto-python
tier: concrete
extends: tier2/python.j2
description: Python dataclass data transfer object.
#}
{% extends "tier2/python.j2" %}
{% block imports %}
from dataclasses import dataclass
{%- for module in stdlib_imports | default([]) %}
import {{ module }}
{%- endfor %}
{% endblock %}
{% block definitions %}
@dataclass
class {{ event_name | pascal_case }}:
    """{{ description | default("Generated data transfer object.") }}"""
{%- if fields %}
{%- for field in fields %}
    {{ field.name | snake_case }}: {{ field.type }}
{%- endfor %}
{%- else %}
    pass
{%- endif %}
{% endblock %}
`

const designDoc = `{#
template: design-doc
tier: concrete
extends: tier0/base.j2
description: Markdown design document skeleton.
#}
{% extends "tier0/base.j2" %}
{% block body %}
# {{ title }}

Author: {{ author | default("unassigned") }}

## Context

{{ context_notes | default("To be written.") }}

## Decision

{{ decision | default("To be written.") }}
{% endblock %}
`
