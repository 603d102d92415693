package languages

import (
	"logagent/internal/splitter"

	"github.com/smacker/go-tree-sitter/javascript"
)

func RegisterJavaScript(r *splitter.Registry) {
	r.Register("javascript", &splitter.LanguageSpec{
		Language: javascript.GetLanguage(),
		FunctionTypes: map[string]bool{
			"function_declaration":           true,
			"generator_function_declaration": true,
			"method_definition":              true,
		},
		ClassTypes: map[string]bool{
			"class_declaration": true,
		},
		WrapperTypes: map[string]bool{
			"export_statement": true,
		},
		Extensions: []string{"js", "jsx", "mjs", "cjs"},
	})
}
