package languages

import (
	"logagent/internal/splitter"

	"github.com/smacker/go-tree-sitter/python"
)

func RegisterPython(r *splitter.Registry) {
	r.Register("python", &splitter.LanguageSpec{
		Language: python.GetLanguage(),
		FunctionTypes: map[string]bool{
			"function_definition": true,
		},
		ClassTypes: map[string]bool{
			"class_definition": true,
		},
		WrapperTypes: map[string]bool{
			"decorated_definition": true,
		},
		Extensions: []string{"py", "pyi"},
	})
}
