package splitter

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageSpec describes how to extract chunks from one language's syntax tree.
type LanguageSpec struct {
	Language   *sitter.Language
	Extensions []string

	// FunctionTypes are node types emitted as function chunks, or method
	// chunks when they sit directly inside a class body.
	FunctionTypes map[string]bool

	// ClassTypes are node types emitted as class chunks. A class chunk is
	// always accompanied by one method chunk per direct function in its body.
	ClassTypes map[string]bool

	// WrapperTypes are transparent wrappers (decorators, export statements).
	// The inner definition decides the chunk kind; the outer node decides
	// the line range.
	WrapperTypes map[string]bool

	// Receiver extracts a method's owning type from the declaration itself,
	// for grammars where methods are declared outside the class body
	// (Go receivers). Nil for languages without the concept.
	Receiver func(n *sitter.Node, src []byte) string
}

// unwrap resolves a wrapper node to the definition it contains. Returns the
// node itself when it is not a wrapper.
func (s *LanguageSpec) unwrap(n *sitter.Node) *sitter.Node {
	if s.WrapperTypes == nil || !s.WrapperTypes[n.Type()] {
		return n
	}
	for _, field := range []string{"definition", "declaration"} {
		if c := n.ChildByFieldName(field); c != nil {
			return c
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if s.FunctionTypes[c.Type()] || s.ClassTypes[c.Type()] {
			return c
		}
	}
	return n
}

// Registry maps file extensions to language specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*LanguageSpec // extension (without dot) → spec
	langs map[string]*LanguageSpec // language name → spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]*LanguageSpec),
		langs: make(map[string]*LanguageSpec),
	}
}

// Register adds a language spec under the given name.
func (r *Registry) Register(name string, spec *LanguageSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.langs[name] = spec
	for _, ext := range spec.Extensions {
		r.specs[ext] = spec
	}
}

// Lookup returns the spec for a file path based on its extension, or nil.
func (r *Registry) Lookup(path string) (spec *LanguageSpec, lang string) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[ext]
	if !ok {
		return nil, ""
	}
	for name, sp := range r.langs {
		if sp == s {
			return s, name
		}
	}
	return s, ext
}

// Extensions returns the set of all registered file extensions (without dot).
func (r *Registry) Extensions() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make(map[string]bool, len(r.specs))
	for ext := range r.specs {
		exts[ext] = true
	}
	return exts
}
