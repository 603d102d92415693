package languages

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"logagent/internal/splitter"
)

func RegisterGo(r *splitter.Registry) {
	r.Register("go", &splitter.LanguageSpec{
		Language: golang.GetLanguage(),
		FunctionTypes: map[string]bool{
			"function_declaration": true,
			"method_declaration":   true,
		},
		// Go has no class declarations; methods hang off receiver types.
		Receiver:   goReceiver,
		Extensions: []string{"go"},
	})
}

// goReceiver returns the receiver type name of a method_declaration, with
// any pointer marker stripped, or "" for plain functions.
func goReceiver(n *sitter.Node, src []byte) string {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		param := recv.NamedChild(i)
		t := param.ChildByFieldName("type")
		if t == nil {
			continue
		}
		name := strings.TrimPrefix(t.Content(src), "*")
		// Drop type parameters on generic receivers.
		if idx := strings.IndexByte(name, '['); idx >= 0 {
			name = name[:idx]
		}
		return name
	}
	return ""
}
