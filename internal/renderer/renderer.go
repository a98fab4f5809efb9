// Package renderer wraps a Jinja-style template environment fixed to a
// single template root. It resolves inheritance chains and macro imports at
// render time, applies the scaffolding filter library, and caches parsed
// templates for the lifetime of the engine.
package renderer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deicod/gojinja/runtime"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
	"github.com/stencilkit/stencil/internal/filters"
	"github.com/stencilkit/stencil/internal/introspect"
	"github.com/stencilkit/stencil/internal/logging"
)

// templateExtensions are the file suffixes treated as templates when
// enumerating the root. Everything else under the root (schema documents,
// editor droppings) is ignored.
var templateExtensions = map[string]bool{
	".j2":     true,
	".jinja2": true,
}

// Engine renders named templates from a fixed root directory. The root is
// set at construction and immutable for the engine's lifetime.
type Engine struct {
	root   string
	env    *runtime.Environment
	logger logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger to the engine.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.WithComponent("renderer")
	}
}

// New creates an Engine for the given template root. It fails with a config
// error if the root does not exist or is not a directory.
func New(root string, opts ...Option) (*Engine, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, stencilerrors.NewConfigError(
			stencilerrors.ErrCodeConfigNotFound,
			"template root does not exist: "+root,
		)
	}
	if !info.IsDir() {
		return nil, stencilerrors.NewConfigError(
			stencilerrors.ErrCodeConfigInvalid,
			"template root is not a directory: "+root,
		)
	}

	env := runtime.NewEnvironment()
	env.SetLoader(runtime.NewFileSystemLoader(root))
	env.SetAutoescape(false)
	env.SetTrimBlocks(true)
	env.SetLstripBlocks(true)
	env.SetKeepTrailingNewline(true)
	filters.Register(env)

	e := &Engine{
		root:   root,
		env:    env,
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Root returns the template root the engine was constructed with.
func (e *Engine) Root() string {
	return e.root
}

// Render resolves the named template, its inheritance chain, and all macro
// imports, substitutes bindings, applies filters, and returns the rendered
// text. A binding set that leaves a required variable undefined fails with a
// render error; nothing is ever substituted for an undefined name.
func (e *Engine) Render(name string, bindings map[string]interface{}) (string, error) {
	if err := e.checkBindings(name, bindings); err != nil {
		return "", err
	}

	out, err := e.env.RenderTemplate(name, bindings)
	if err != nil {
		var notFound *runtime.TemplateNotFoundError
		if errors.As(err, &notFound) {
			return "", stencilerrors.NewTemplateNotFoundError(name, err)
		}
		return "", stencilerrors.NewRenderError(name, "render failed", err)
	}

	return out, nil
}

// checkBindings enforces strict-undefined semantics. The template
// environment substitutes debug placeholders for undefined names rather than
// erroring, so the chain's required variables are checked statically before
// any rendering happens. Defaulted and guard-only variables may be omitted.
func (e *Engine) checkBindings(name string, bindings map[string]interface{}) error {
	chain, err := introspect.NewResolver(e).ResolveChain(name)
	if err != nil {
		return err
	}

	var missing []string
	for _, required := range introspect.Classify(chain).Required {
		if value, ok := bindings[required]; !ok || value == nil {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return stencilerrors.NewRenderError(name,
			"undefined variables: "+strings.Join(missing, ", "), nil)
	}

	return nil
}

// Source returns the raw, unparsed source of the named template.
func (e *Engine) Source(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", stencilerrors.NewTemplateNotFoundError(name, err)
		}
		return "", stencilerrors.NewIOError(stencilerrors.ErrCodeIORead, "cannot read template source", err).WithTemplate(name)
	}

	return string(data), nil
}

// ListTemplates enumerates every template file under the root as
// root-relative, forward-slash-separated paths, sorted for stable output.
// The listing is a snapshot: files added after the call are not reflected
// in the returned slice.
func (e *Engine) ListTemplates() ([]string, error) {
	var names []string

	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !templateExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, err := filepath.Rel(e.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, stencilerrors.NewIOError(stencilerrors.ErrCodeIORead, "cannot enumerate template root", err)
	}

	sort.Strings(names)

	return names, nil
}

// InvalidateCache drops every parsed template so the next render re-reads
// the root. Used by the watcher when template files change on disk.
func (e *Engine) InvalidateCache() {
	e.env.ClearCache()
}

// IsTemplatePath reports whether a root-relative path names a template file.
func IsTemplatePath(path string) bool {
	return templateExtensions[strings.ToLower(filepath.Ext(path))]
}
