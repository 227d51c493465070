package model

import "github.com/mvp-joe/stubcheck/internal/phpdoc"

// Introspector resolves runtime functions by name.
type Introspector interface {
	Resolve(name string) (IntrospectedFunction, error)
}

// IntrospectedFunction is the runtime's view of one function.
type IntrospectedFunction interface {
	Name() string
	IsDeprecated() bool
	Parameters() []IntrospectedParameter
}

// IntrospectedParameter is the runtime's view of one parameter.
type IntrospectedParameter interface {
	Name() string
	Type() string
	IsOptional() bool
	IsVariadic() bool
	IsPassedByReference() bool
	DefaultValue() string
}

// SyntaxFunction is a function declaration read from a stub file.
type SyntaxFunction interface {
	Name() string
	// Scope returns the enclosing namespace segments, outermost first.
	Scope() []string
	Parameters() []SyntaxParameter
	// DocComment returns the raw doc comment preceding the declaration.
	DocComment() (string, bool)
}

// SyntaxParameter is a parameter declaration read from a stub file.
type SyntaxParameter interface {
	// Name returns the parameter name without the leading "$".
	Name() string
	Type() string
	DefaultValue() string
	IsVariadic() bool
	IsPassedByReference() bool
}

// DocParser parses raw doc comment text.
type DocParser interface {
	Parse(text string) (*phpdoc.DocBlock, error)
}

// DocParsers are the parsers used by the two doc comment checks.
type DocParsers struct {
	Deprecation DocParser
	Return      DocParser
}

// DefaultDocParsers returns a strict parser for the deprecation check and a
// lenient one for return types and links.
func DefaultDocParsers() DocParsers {
	return DocParsers{
		Deprecation: phpdoc.NewParser(phpdoc.WithStrict()),
		Return:      phpdoc.NewParser(),
	}
}
