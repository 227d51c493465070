package model

import (
	"strings"

	"github.com/mvp-joe/stubcheck/internal/phpdoc"
)

// FromSyntaxNode builds a Function from a stub declaration.
//
// Doc comment failures never abort the build: both the deprecation check
// and the return type check run, and each records its own outcome.
func FromSyntaxNode(node SyntaxFunction, parsers DocParsers) *Function {
	f := &Function{
		Name:       QualifiedName(node.Scope(), node.Name()),
		Parameters: []Parameter{},
	}

	// Parameter types fall back to @param tags; a broken comment just means
	// there is nothing to fall back to.
	var block *phpdoc.DocBlock
	if text, ok := node.DocComment(); ok {
		block, _ = parsers.Return.Parse(text)
	}

	for _, p := range node.Parameters() {
		f.Parameters = append(f.Parameters, parameterFromSyntax(p, block))
	}

	f.collectLinks(block)
	f.checkDeprecationTag(node, parsers.Deprecation)
	f.checkReturnTag(node, parsers.Return)
	return f
}

// QualifiedName joins the scope chain and name with "\".
func QualifiedName(scope []string, name string) string {
	var parts []string
	for _, s := range scope {
		if s = strings.Trim(s, `\`); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(append(parts, name), `\`)
}

func parameterFromSyntax(p SyntaxParameter, block *phpdoc.DocBlock) Parameter {
	param := Parameter{
		Name:              strings.TrimPrefix(p.Name(), "$"),
		Type:              p.Type(),
		Variadic:          p.IsVariadic(),
		PassedByReference: p.IsPassedByReference(),
		DefaultValue:      p.DefaultValue(),
	}
	param.Optional = param.Variadic || param.DefaultValue != ""
	if param.Type == "" && block != nil {
		param.Type = docParamType(block, param.Name)
	}
	return param
}

// docParamType finds "@param <type> $name" and returns <type>.
func docParamType(block *phpdoc.DocBlock, name string) string {
	for _, tag := range block.TagsByName("param") {
		fields := strings.Fields(tag.Body())
		if len(fields) < 2 {
			continue
		}
		variable := strings.TrimLeft(fields[1], "&.")
		if variable == "$"+name {
			return fields[0]
		}
	}
	return ""
}

func (f *Function) collectLinks(block *phpdoc.DocBlock) {
	if block == nil {
		return
	}
	for _, tag := range block.Tags {
		if tag.Name() != "link" && tag.Name() != "see" {
			continue
		}
		if fields := strings.Fields(tag.Body()); len(fields) > 0 {
			f.Links = append(f.Links, fields[0])
		}
	}
}

func (f *Function) checkDeprecationTag(node SyntaxFunction, parser DocParser) {
	text, ok := node.DocComment()
	if !ok {
		return
	}

	block, err := parser.Parse(text)
	if err != nil {
		f.record(CheckDeprecation, err)
		return
	}

	f.Deprecated = TristateOf(block.HasTag("deprecated"))
	f.record(CheckDeprecation, nil)
}

func (f *Function) checkReturnTag(node SyntaxFunction, parser DocParser) {
	text, ok := node.DocComment()
	if !ok {
		return
	}

	block, err := parser.Parse(text)
	if err != nil {
		f.record(CheckReturnType, err)
		return
	}

	if ret, ok := block.Return(); ok {
		f.ReturnTag = ret.Type.String()
		f.HasReturnTag = true
		f.ReturnTypeFromDoc = strings.Join(phpdoc.Resolve(ret.Type), "|")
	}
	f.record(CheckReturnType, nil)
}
