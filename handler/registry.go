package handler

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/fioncat/gbrowse/browse"
)

// Registry binds file extensions to handler kinds. Extensions are matched
// exactly, so ".TXT" and ".txt" are different bindings.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]Kind
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]Kind)}
}

// LoadRegistry builds a Registry from extension to kind name bindings, as
// found in the config file.
func LoadRegistry(handlers map[string]string) (*Registry, error) {
	r := NewRegistry()
	for ext, name := range handlers {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("parse handler for %q: %w", ext, err)
		}
		err = r.Register(ext, kind)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(ext string, kind Kind) error {
	if len(ext) < 2 || !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, "/\\") {
		return fmt.Errorf("invalid extension %q, should look like \".txt\"", ext)
	}
	if _, ok := kinds[kind]; !ok {
		return fmt.Errorf("invalid handler kind %d", int(kind))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[ext] = kind
	return nil
}

// Lookup returns the kind bound to the extension of name, or KindDefault.
func (r *Registry) Lookup(name string) Kind {
	ext := Ext(name)
	if ext == "" {
		return KindDefault
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.bindings[ext]
	if !ok {
		return KindDefault
	}
	return kind
}

func (r *Registry) Icon(ent *browse.Entry) string {
	if !ent.IsFile {
		return FolderIcon
	}
	return r.Lookup(ent.Name).Icon()
}

// Annotate fills the Icon of every entry.
func (r *Registry) Annotate(entries []*browse.Entry) {
	for _, ent := range entries {
		ent.Icon = r.Icon(ent)
	}
}

type Binding struct {
	Ext  string
	Kind Kind
}

// Bindings returns all registered bindings, ordered by extension.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	bindings := make([]Binding, 0, len(r.bindings))
	for ext, kind := range r.bindings {
		bindings = append(bindings, Binding{Ext: ext, Kind: kind})
	}
	r.mu.RUnlock()

	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].Ext < bindings[j].Ext
	})
	return bindings
}

// Ext returns the last dotted suffix of name, including the dot. Leading
// dots belong to the name, so ".bashrc" has no extension while
// "archive.tar.gz" has ".gz".
func Ext(name string) string {
	name = strings.TrimLeft(path.Base(name), ".")
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}
	return name[idx:]
}
