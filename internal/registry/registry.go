// Package registry discovers templates under a template root and indexes the
// documentation headers they declare.
package registry

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stencilkit/stencil/internal/renderer"
)

// TemplateInfo holds the indexed metadata of one discovered template.
type TemplateInfo struct {
	// Name is the root-relative template path, e.g. "tier2/python.j2".
	Name string

	// ID is the provenance template id declared by the documentation header,
	// or derived from the filename when the header omits it.
	ID string

	// Version is the optional version declared by the header. The effective
	// version of a scaffold is the inheritance chain hash, not this value.
	Version string

	Tier        string
	Extends     string
	Description string
	Exports     []string
	LastMod     time.Time
}

// TemplateEvent represents a change observed during a rescan.
type TemplateEvent struct {
	Type      EventType
	Template  *TemplateInfo
	Timestamp time.Time
}

// EventType classifies a template event.
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// TemplateRegistry indexes the templates under a fixed root. Reads are safe
// for concurrent use; Scan may run concurrently with readers.
type TemplateRegistry struct {
	root      string
	mu        sync.RWMutex
	templates map[string]*TemplateInfo
	watchers  []chan TemplateEvent
}

// New creates a registry over the given template root. The index is empty
// until the first Scan.
func New(root string) *TemplateRegistry {
	return &TemplateRegistry{
		root:      root,
		templates: make(map[string]*TemplateInfo),
	}
}

// DocHeader is the structured comment block templates open with. Template
// authors declare identity and lineage here; the rendering engine treats the
// block as an ordinary comment.
type DocHeader struct {
	Template    string   `yaml:"template"`
	Version     string   `yaml:"version"`
	Tier        string   `yaml:"tier"`
	Extends     string   `yaml:"extends"`
	Description string   `yaml:"description"`
	Exports     []string `yaml:"exports"`
}

// Scan walks the root, re-indexes every template file, and emits events for
// templates that appeared, changed, or vanished since the previous scan.
func (r *TemplateRegistry) Scan() error {
	found := make(map[string]*TemplateInfo)

	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !renderer.IsTemplatePath(path) {
			return nil
		}

		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		info, err := index(path, rel)
		if err != nil {
			return err
		}
		found[rel] = info

		return nil
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	var events []TemplateEvent
	for name, info := range found {
		previous, exists := r.templates[name]
		switch {
		case !exists:
			events = append(events, event(EventTypeAdded, info))
		case !previous.LastMod.Equal(info.LastMod):
			events = append(events, event(EventTypeUpdated, info))
		}
		r.templates[name] = info
	}
	for name, info := range r.templates {
		if _, still := found[name]; !still {
			delete(r.templates, name)
			events = append(events, event(EventTypeRemoved, info))
		}
	}
	watchers := append([]chan TemplateEvent(nil), r.watchers...)
	r.mu.Unlock()

	for _, ev := range events {
		for _, watcher := range watchers {
			select {
			case watcher <- ev:
			default:
				// Slow watchers miss events rather than blocking the scan.
			}
		}
	}

	return nil
}

func event(t EventType, info *TemplateInfo) TemplateEvent {
	return TemplateEvent{Type: t, Template: info, Timestamp: time.Now()}
}

func index(path, rel string) (*TemplateInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	header := ParseDocHeader(string(data))
	info := &TemplateInfo{
		Name:        rel,
		ID:          header.Template,
		Version:     header.Version,
		Tier:        header.Tier,
		Extends:     header.Extends,
		Description: header.Description,
		Exports:     header.Exports,
		LastMod:     stat.ModTime(),
	}
	if info.ID == "" {
		info.ID = fallbackID(rel)
	}

	return info, nil
}

// ParseDocHeader reads the leading comment block of template source as a
// structured header. Missing or malformed headers are not an error; the zero
// header is returned and callers fall back to derived defaults.
func ParseDocHeader(source string) DocHeader {
	var header DocHeader

	trimmed := strings.TrimLeft(source, " \t\r\n")
	if !strings.HasPrefix(trimmed, "{#") {
		return header
	}
	end := strings.Index(trimmed, "#}")
	if end < 0 {
		return header
	}

	body := trimmed[len("{#"):end]
	if err := yaml.Unmarshal([]byte(body), &header); err != nil {
		return DocHeader{}
	}

	return header
}

// fallbackID derives a template id from a path when no header declares one.
func fallbackID(rel string) string {
	base := filepath.Base(rel)
	for renderer.IsTemplatePath(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Get retrieves a template by its root-relative name.
func (r *TemplateRegistry) Get(name string) (*TemplateInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.templates[name]
	return info, ok
}

// List returns all indexed templates ordered by name.
func (r *TemplateRegistry) List() []*TemplateInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*TemplateInfo, 0, len(r.templates))
	for _, info := range r.templates {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Watch returns a channel receiving events from subsequent scans.
func (r *TemplateRegistry) Watch() <-chan TemplateEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan TemplateEvent, 16)
	r.watchers = append(r.watchers, ch)

	return ch
}
