// Package splitter extracts semantically bounded code chunks from source
// files using tree-sitter. Files that are small, unparsable, or in an
// unregistered language degrade to a single whole-file chunk.
package splitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"logagent/internal/walker"
)

// DefaultSmallFileThreshold is the character count below which a file is
// kept whole instead of being split.
const DefaultSmallFileThreshold = 1000

// Kind classifies a code chunk. The set is closed.
type Kind string

const (
	KindModule    Kind = "module"
	KindClass     Kind = "class"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindWholeFile Kind = "whole_file"
)

// CodeChunk is one semantically bounded slice of a source file. Chunks are
// immutable once created; Line numbers are 1-indexed and inclusive, and
// Content holds exactly the source lines [StartLine, EndLine].
type CodeChunk struct {
	Content       string
	FilePath      string
	Kind          Kind
	Name          string
	StartLine     int
	EndLine       int
	ParentContext string // enclosing class for methods, empty otherwise
}

// Size returns the character length of the chunk content.
func (c CodeChunk) Size() int { return len(c.Content) }

// Splitter parses source files and extracts chunks.
type Splitter struct {
	registry  *Registry
	threshold int
	log       *zap.Logger
}

// New creates a splitter backed by the given registry. Files shorter than
// threshold characters are never split. A nil logger disables logging.
func New(r *Registry, threshold int, log *zap.Logger) *Splitter {
	if threshold <= 0 {
		threshold = DefaultSmallFileThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Splitter{registry: r, threshold: threshold, log: log}
}

// Split reads the file at path and returns its chunks. The result is never
// empty for a readable file; a missing or unreadable file is an error.
func (s *Splitter) Split(path string) ([]CodeChunk, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(src) < s.threshold {
		return []CodeChunk{wholeFileChunk(path, src)}, nil
	}

	tree, spec, ok := s.parse(path, src)
	if !ok {
		return []CodeChunk{wholeFileChunk(path, src)}, nil
	}
	defer tree.Close()

	lines := strings.Split(string(src), "\n")
	chunks := s.collect(spec, tree.RootNode(), src, lines, path)
	if len(chunks) == 0 {
		return []CodeChunk{wholeFileChunk(path, src)}, nil
	}
	return chunks, nil
}

// SplitDirectory applies Split to every file under root matching pattern.
// Per-file failures are logged and skipped so one corrupt file cannot stop
// the rest of the batch.
func (s *Splitter) SplitDirectory(root, pattern string) ([]CodeChunk, error) {
	files, err := walker.Walk(root, pattern)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	var all []CodeChunk
	for _, f := range files {
		chunks, err := s.Split(f.Path)
		if err != nil {
			s.log.Warn("skipping file", zap.String("path", f.Path), zap.Error(err))
			continue
		}
		all = append(all, chunks...)
	}
	return all, nil
}

// parse returns the syntax tree for src. ok is false when no grammar is
// registered for the file or the source does not parse cleanly; callers
// fall back to whole-file chunking on that branch.
func (s *Splitter) parse(path string, src []byte) (tree *sitter.Tree, spec *LanguageSpec, ok bool) {
	spec, _ = s.registry.Lookup(path)
	if spec == nil {
		return nil, nil, false
	}

	parser := sitter.NewParser()
	parser.SetLanguage(spec.Language)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return nil, nil, false
	}
	if tree.RootNode().HasError() {
		tree.Close()
		return nil, nil, false
	}
	return tree, spec, true
}

// collect walks the tree in source order. Free functions become function
// chunks; classes become one class chunk plus one method chunk per direct
// function in the class body. Functions nested inside functions are not
// separately extracted.
func (s *Splitter) collect(spec *LanguageSpec, node *sitter.Node, src []byte, lines []string, path string) []CodeChunk {
	var out []CodeChunk
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		inner := spec.unwrap(child)

		switch {
		case spec.ClassTypes[inner.Type()]:
			out = append(out, s.extractClass(spec, child, inner, src, lines, path)...)
		case spec.FunctionTypes[inner.Type()]:
			parent := ""
			if spec.Receiver != nil {
				parent = spec.Receiver(inner, src)
			}
			out = append(out, makeChunk(child, inner, src, lines, path, parent, functionKind(parent)))
		default:
			out = append(out, s.collect(spec, child, src, lines, path)...)
		}
	}
	return out
}

// extractClass emits the whole class as one chunk, then each directly
// contained function as a method chunk. Extraction goes one level deep per
// class; nested classes are handled recursively.
func (s *Splitter) extractClass(spec *LanguageSpec, outer, class *sitter.Node, src []byte, lines []string, path string) []CodeChunk {
	className := nodeName(class, src)
	chunks := []CodeChunk{makeChunk(outer, class, src, lines, path, "", KindClass)}

	body := class.ChildByFieldName("body")
	if body == nil {
		return chunks
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		inner := spec.unwrap(member)
		switch {
		case spec.FunctionTypes[inner.Type()]:
			chunks = append(chunks, makeChunk(member, inner, src, lines, path, className, KindMethod))
		case spec.ClassTypes[inner.Type()]:
			chunks = append(chunks, s.extractClass(spec, member, inner, src, lines, path)...)
		}
	}
	return chunks
}

// functionKind maps a parent context to the chunk kind for a function node.
func functionKind(parent string) Kind {
	if parent != "" {
		return KindMethod
	}
	return KindFunction
}

// makeChunk builds a chunk from the outer node's line range. The inner node
// supplies the name; parent is the enclosing class, if any.
func makeChunk(outer, inner *sitter.Node, src []byte, lines []string, path, parent string, kind Kind) CodeChunk {
	start := int(outer.StartPoint().Row) + 1
	end := int(outer.EndPoint().Row) + 1
	if end > len(lines) {
		end = len(lines)
	}

	return CodeChunk{
		Content:       strings.Join(lines[start-1:end], "\n"),
		FilePath:      path,
		Kind:          kind,
		Name:          nodeName(inner, src),
		StartLine:     start,
		EndLine:       end,
		ParentContext: parent,
	}
}

func nodeName(n *sitter.Node, src []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(src)
}

// wholeFileChunk wraps an entire file as a single chunk.
func wholeFileChunk(path string, src []byte) CodeChunk {
	content := string(src)
	return CodeChunk{
		Content:   content,
		FilePath:  path,
		Kind:      KindWholeFile,
		Name:      filepath.Base(path),
		StartLine: 1,
		EndLine:   strings.Count(content, "\n") + 1,
	}
}
