// Package scaffold composes introspection, validation, rendering, and
// provenance stamping into the end-to-end generation pipeline.
package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
	"github.com/stencilkit/stencil/internal/introspect"
	"github.com/stencilkit/stencil/internal/logging"
	"github.com/stencilkit/stencil/internal/metadata"
	"github.com/stencilkit/stencil/internal/registry"
	"github.com/stencilkit/stencil/internal/renderer"
)

// timestampFormat matches the created/updated field grammar.
const timestampFormat = "2006-01-02T15:04:05Z"

// Pipeline drives one scaffold request through introspection, context
// building, validation, rendering, and provenance stamping. Any step's
// failure is terminal for the request; no partial output is produced.
type Pipeline struct {
	engine   *renderer.Engine
	resolver *introspect.Resolver
	logger   logging.Logger
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger attaches a structured logger.
func WithLogger(logger logging.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger.WithComponent("scaffold")
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a Pipeline over a rendering engine.
func New(engine *renderer.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		engine:   engine,
		resolver: introspect.NewResolver(engine),
		logger:   logging.NopLogger{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Request describes one artifact to scaffold.
type Request struct {
	// Template is the root-relative template name, e.g. "dto_python.j2".
	Template string

	// ArtifactType labels the generated artifact; defaults to the template
	// id when empty.
	ArtifactType string

	// OutputPath is where the artifact will live. Empty means ephemeral:
	// the result is returned with a compact header and never written.
	OutputPath string

	// Variables are the caller-supplied template inputs.
	Variables map[string]interface{}
}

// Result is a completed scaffold: stamped content plus the schema and header
// that produced it.
type Result struct {
	Content string
	Schema  *introspect.TemplateSchema
	Header  *Header
}

// Generate runs the pipeline for one request.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Result, error) {
	schema, version, err := p.Introspect(req.Template)
	if err != nil {
		return nil, err
	}
	p.logger.Debug(ctx, "template introspected",
		"template", req.Template,
		"chain", strings.Join(schema.InheritanceChain, " -> "),
		"required", len(schema.Required),
		"optional", len(schema.Optional))

	id := p.templateID(req.Template)
	timestamp := p.now().UTC().Format(timestampFormat)
	bindings := p.buildContext(req, id, version, timestamp)

	if err := validateContext(schema, bindings); err != nil {
		return nil, err
	}

	rendered, err := p.engine.Render(req.Template, bindings)
	if err != nil {
		return nil, err
	}

	header := &Header{
		TemplateID: id,
		Version:    version,
		Created:    timestamp,
		OutputPath: req.OutputPath,
	}

	result := &Result{
		Content: stamp(header, rendered, req),
		Schema:  schema,
		Header:  header,
	}
	p.logger.Info(ctx, "artifact scaffolded",
		"template", req.Template,
		"version", version,
		"output", req.OutputPath,
		"bytes", len(result.Content))

	return result, nil
}

// Introspect resolves the template's inheritance chain, classifies its
// variables, and derives the chain's version hash.
func (p *Pipeline) Introspect(name string) (*introspect.TemplateSchema, string, error) {
	chain, err := p.resolver.ResolveChain(name)
	if err != nil {
		return nil, "", err
	}

	sources := make([]string, 0, len(chain.Chain))
	for _, member := range chain.Chain {
		src, err := p.engine.Source(member)
		if err != nil {
			return nil, "", err
		}
		sources = append(sources, src)
	}

	return introspect.Classify(chain), VersionHash(sources), nil
}

// templateID resolves the provenance id for a template: the id its
// documentation header declares when it fits the id grammar, otherwise one
// derived from the filename.
func (p *Pipeline) templateID(name string) string {
	if src, err := p.engine.Source(name); err == nil {
		if declared := registry.ParseDocHeader(src).Template; templateIDPattern.MatchString(declared) {
			return declared
		}
	}

	return TemplateID(name)
}

// buildContext merges caller variables with the pipeline-injected system
// fields. Caller values never override system fields.
func (p *Pipeline) buildContext(req Request, id, version, timestamp string) map[string]interface{} {
	bindings := make(map[string]interface{}, len(req.Variables)+5)
	for key, value := range req.Variables {
		bindings[key] = value
	}

	artifactType := req.ArtifactType
	if artifactType == "" {
		artifactType = id
	}

	bindings["artifact_type"] = artifactType
	bindings["template_version"] = version
	bindings["generated_at"] = timestamp
	bindings["output_path"] = req.OutputPath
	bindings["output_format"] = outputFormat(req)

	return bindings
}

// validateContext checks every required schema name for a present, non-nil
// value, collecting all offenders into a single error.
func validateContext(schema *introspect.TemplateSchema, bindings map[string]interface{}) error {
	verrs := &stencilerrors.ValidationErrors{}
	for _, name := range schema.Required {
		value, ok := bindings[name]
		if !ok || value == nil {
			verrs.AddMissing(name)
		}
	}

	if err := verrs.ToError(); err != nil {
		return err
	}

	return nil
}

// WriteFile persists a generated artifact, creating parent directories as
// needed. Ephemeral results have no destination and cannot be written.
func (p *Pipeline) WriteFile(ctx context.Context, result *Result) error {
	if result.Header.OutputPath == "" {
		return stencilerrors.NewInternalError("cannot write ephemeral artifact: no output path", nil)
	}

	path := result.Header.OutputPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stencilerrors.NewIOError(stencilerrors.ErrCodeIOWrite, "failed to create output directory", err)
	}
	if err := os.WriteFile(path, []byte(result.Content), 0o644); err != nil {
		return stencilerrors.NewIOError(stencilerrors.ErrCodeIOWrite, "failed to write artifact", err)
	}

	p.logger.Info(ctx, "artifact written", "path", path)
	return nil
}

func stamp(header *Header, rendered string, req Request) string {
	ext := outputExtension(req)
	if ext == "" {
		// No comment dialect to express the header in; fall back to the
		// compact markup form.
		return header.Render(metadata.SyntaxHTMLComment) + "\n" + rendered
	}

	return header.Prepend(rendered, ext)
}

// outputExtension picks the extension governing the header's comment syntax:
// the output path's when present, otherwise the template's inner extension
// ("service.py.j2" scaffolds Python).
func outputExtension(req Request) string {
	if req.OutputPath != "" {
		return filepath.Ext(req.OutputPath)
	}

	name := req.Template
	for renderer.IsTemplatePath(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	return filepath.Ext(name)
}

// outputFormat is the extension without its dot, or "text" when unknowable.
func outputFormat(req Request) string {
	ext := strings.TrimPrefix(outputExtension(req), ".")
	if ext == "" {
		return "text"
	}

	return ext
}

var (
	templateIDPattern   = regexp.MustCompile(`^[a-z0-9_-]+$`)
	templateIDSanitizer = regexp.MustCompile(`[^a-z0-9_-]+`)
)

// TemplateID derives a provenance template id from a template name: the base
// name with template extensions stripped, lowered, and reduced to the id
// grammar. Used when the template's documentation header declares no id.
func TemplateID(name string) string {
	base := filepath.Base(name)
	for renderer.IsTemplatePath(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	id := templateIDSanitizer.ReplaceAllString(strings.ToLower(base), "-")
	id = strings.Trim(id, "-")
	if id == "" {
		return "template"
	}

	return id
}
