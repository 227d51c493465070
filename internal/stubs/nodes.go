package stubs

import "github.com/mvp-joe/stubcheck/internal/model"

// FunctionNode is a top-level function declaration of a stub file.
// It implements model.SyntaxFunction.
type FunctionNode struct {
	name      string
	namespace []string
	params    []*ParameterNode
	doc       string
	hasDoc    bool

	File string
	Line int
}

func (f *FunctionNode) Name() string    { return f.name }
func (f *FunctionNode) Scope() []string { return f.namespace }

func (f *FunctionNode) Parameters() []model.SyntaxParameter {
	params := make([]model.SyntaxParameter, len(f.params))
	for i, p := range f.params {
		params[i] = p
	}
	return params
}

func (f *FunctionNode) DocComment() (string, bool) { return f.doc, f.hasDoc }

// ParameterNode is one parameter of a FunctionNode.
// It implements model.SyntaxParameter.
type ParameterNode struct {
	name     string
	typ      string
	def      string
	variadic bool
	byRef    bool
}

func (p *ParameterNode) Name() string              { return p.name }
func (p *ParameterNode) Type() string              { return p.typ }
func (p *ParameterNode) DefaultValue() string      { return p.def }
func (p *ParameterNode) IsVariadic() bool          { return p.variadic }
func (p *ParameterNode) IsPassedByReference() bool { return p.byRef }
