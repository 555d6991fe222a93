package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// languageDef is a per-language subclass per spec.md §4.3: a grammar plus
// the two node-type sets that drive target collection. NodeTypes are
// emitted as their own segment; RecursionNodeTypes are descended into
// (without themselves being emitted) to find nested targets — this is how
// a method inside a class surfaces as its own segment while the
// surrounding class declaration does not.
type languageDef struct {
	Name               string
	Extensions         []string
	Language           *sitter.Language
	NodeTypes          map[string]bool
	RecursionNodeTypes map[string]bool
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

var languageDefs = buildLanguageDefs()

func buildLanguageDefs() map[string]*languageDef {
	defs := make(map[string]*languageDef)

	defs["go"] = &languageDef{
		Name:       "go",
		Extensions: []string{".go"},
		Language:   golang.GetLanguage(),
		NodeTypes: set(
			"function_declaration",
			"method_declaration",
			"type_declaration",
			"const_declaration",
			"var_declaration",
		),
		RecursionNodeTypes: set(),
	}

	tsNodeTypes := set(
		"function_declaration",
		"method_definition",
		"lexical_declaration",
		"variable_declaration",
		"export_statement",
	)
	tsRecursion := set("class_declaration", "class_body")

	defs["typescript"] = &languageDef{
		Name:       "typescript",
		Extensions: []string{".ts"},
		Language:   typescript.GetLanguage(),
		NodeTypes: unionSet(tsNodeTypes, set(
			"interface_declaration",
			"type_alias_declaration",
		)),
		RecursionNodeTypes: tsRecursion,
	}
	defs["tsx"] = &languageDef{
		Name:       "tsx",
		Extensions: []string{".tsx"},
		Language:   tsx.GetLanguage(),
		NodeTypes: unionSet(tsNodeTypes, set(
			"interface_declaration",
			"type_alias_declaration",
		)),
		RecursionNodeTypes: tsRecursion,
	}
	defs["javascript"] = &languageDef{
		Name:               "javascript",
		Extensions:         []string{".js", ".mjs"},
		Language:           javascript.GetLanguage(),
		NodeTypes:          unionSet(tsNodeTypes, set("function")),
		RecursionNodeTypes: tsRecursion,
	}

	defs["python"] = &languageDef{
		Name:       "python",
		Extensions: []string{".py"},
		Language:   python.GetLanguage(),
		NodeTypes: set(
			"function_definition",
			"decorated_definition",
		),
		RecursionNodeTypes: set("class_definition", "block"),
	}

	defs["java"] = &languageDef{
		Name:       "java",
		Extensions: []string{".java"},
		Language:   java.GetLanguage(),
		NodeTypes: set(
			"method_declaration",
			"constructor_declaration",
			"field_declaration",
		),
		RecursionNodeTypes: set(
			"class_declaration", "class_body",
			"interface_declaration", "interface_body",
			"enum_declaration", "enum_body",
		),
	}

	defs["css"] = &languageDef{
		Name:       "css",
		Extensions: []string{".css"},
		Language:   css.GetLanguage(),
		NodeTypes: set(
			"rule_set",
			"media_statement",
			"keyframes_statement",
			"supports_statement",
		),
		RecursionNodeTypes: set("block"),
	}

	return defs
}

func unionSet(sets ...map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, s := range sets {
		for k := range s {
			out[k] = true
		}
	}
	return out
}
