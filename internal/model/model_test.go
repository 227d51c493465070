package model

import (
	"errors"
	"testing"

	"github.com/mvp-joe/stubcheck/internal/phpdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for model builders:
// - Reflection: name, deprecation and parameters copied in order
// - Reflection: resolution failure recorded, model returned
// - Stub: fully-qualified name from scope chain
// - Stub: @deprecated present / absent / no comment at all
// - Stub: @return single and union types, nullable, invalid tag
// - Stub: deprecation check fails, return check succeeds
// - Stub: both checks fail
// - Stub: empty parameter list is non-nil
// - Stub: @param type fallback and links

type fakeParam struct {
	name, typ, def     string
	optional, variadic bool
	byRef              bool
}

func (p fakeParam) Name() string              { return p.name }
func (p fakeParam) Type() string              { return p.typ }
func (p fakeParam) IsOptional() bool          { return p.optional }
func (p fakeParam) IsVariadic() bool          { return p.variadic }
func (p fakeParam) IsPassedByReference() bool { return p.byRef }
func (p fakeParam) DefaultValue() string      { return p.def }

type fakeHandle struct {
	name       string
	deprecated bool
	params     []IntrospectedParameter
}

func (h fakeHandle) Name() string                        { return h.name }
func (h fakeHandle) IsDeprecated() bool                  { return h.deprecated }
func (h fakeHandle) Parameters() []IntrospectedParameter { return h.params }

type fakeIntrospector map[string]fakeHandle

var errNoSuchFunction = errors.New("no such function")

func (f fakeIntrospector) Resolve(name string) (IntrospectedFunction, error) {
	h, ok := f[name]
	if !ok {
		return nil, errNoSuchFunction
	}
	return h, nil
}

type fakeNode struct {
	name   string
	scope  []string
	params []SyntaxParameter
	doc    string
	hasDoc bool
}

func (n fakeNode) Name() string                  { return n.name }
func (n fakeNode) Scope() []string               { return n.scope }
func (n fakeNode) Parameters() []SyntaxParameter { return n.params }
func (n fakeNode) DocComment() (string, bool)    { return n.doc, n.hasDoc }

func withDoc(n fakeNode, doc string) fakeNode {
	n.doc = doc
	n.hasDoc = true
	return n
}

func TestFromIntrospection(t *testing.T) {
	t.Parallel()

	in := fakeIntrospector{
		"str_replace": {
			name: "str_replace",
			params: []IntrospectedParameter{
				fakeParam{name: "search", typ: "array|string"},
				fakeParam{name: "replace", typ: "array|string"},
				fakeParam{name: "subject", typ: "array|string"},
				fakeParam{name: "count", optional: true, byRef: true, def: "null"},
			},
		},
		"create_function": {name: "create_function", deprecated: true},
	}

	f := FromIntrospection(in, "str_replace")
	require.False(t, f.Failed())
	assert.Equal(t, "str_replace", f.Name)
	assert.Equal(t, False, f.Deprecated)
	require.Len(t, f.Parameters, 4)
	for i, want := range []string{"search", "replace", "subject", "count"} {
		assert.Equal(t, want, f.Parameters[i].Name)
	}
	assert.Equal(t, Parameter{Name: "count", Optional: true, PassedByReference: true, DefaultValue: "null"}, f.Parameters[3])

	deprecated := FromIntrospection(in, "create_function")
	assert.Equal(t, True, deprecated.Deprecated)
	assert.NotNil(t, deprecated.Parameters)
	assert.Empty(t, deprecated.Parameters)
}

func TestFromIntrospection_NotFound(t *testing.T) {
	t.Parallel()

	f := FromIntrospection(fakeIntrospector{}, "nope")
	require.True(t, f.Failed())
	assert.ErrorIs(t, f.ReflectionErr, errNoSuchFunction)
	assert.ErrorIs(t, f.ParseError(), errNoSuchFunction)
	assert.Equal(t, CheckReflection, f.LastCheck())
	assert.Equal(t, "nope", f.Name)
	assert.Equal(t, Unset, f.Deprecated)
}

func TestFromHandle(t *testing.T) {
	t.Parallel()

	f := FromHandle(fakeHandle{name: "strlen", params: []IntrospectedParameter{fakeParam{name: "string"}}})
	assert.Equal(t, "strlen", f.Name)
	assert.Len(t, f.Parameters, 1)
	assert.NoError(t, f.ParseError())
}

func TestQualifiedName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "strlen", QualifiedName(nil, "strlen"))
	assert.Equal(t, `Foo\bar`, QualifiedName([]string{"Foo"}, "bar"))
	assert.Equal(t, `Foo\Bar\baz`, QualifiedName([]string{`\Foo`, `Bar\`}, "baz"))
	assert.Equal(t, `Foo\Bar\baz`, QualifiedName([]string{`Foo\Bar`}, "baz"))
}

func TestFromSyntaxNode_Deprecation(t *testing.T) {
	t.Parallel()

	node := fakeNode{name: "old_func", scope: []string{"Legacy"}}

	tests := []struct {
		name string
		node fakeNode
		want Tristate
	}{
		{"tag present", withDoc(node, "/**\n * @deprecated 8.0\n */"), True},
		{"no tag", withDoc(node, "/**\n * Does things.\n */"), False},
		{"no comment", node, Unset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FromSyntaxNode(tt.node, DefaultDocParsers())
			assert.Equal(t, `Legacy\old_func`, f.Name)
			assert.Equal(t, tt.want, f.Deprecated)
			assert.False(t, f.Failed())
		})
	}
}

func TestFromSyntaxNode_ReturnType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		doc      string
		tag      string
		resolved string
		has      bool
	}{
		{"/** @return string|int */", "string|int", "string|int", true},
		{"/** @return string */", "string", "string", true},
		{"/** @return ?array */", "?array", "array|null", true},
		{"/** @return (int|false) */", "int|false", "int|false", true},
		{"/** @return */", "", "", false},
		{"/** Nothing returned. */", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			f := FromSyntaxNode(withDoc(fakeNode{name: "f"}, tt.doc), DefaultDocParsers())
			assert.NoError(t, f.ParseError())
			assert.Equal(t, tt.has, f.HasReturnTag)
			assert.Equal(t, tt.tag, f.ReturnTag)
			assert.Equal(t, tt.resolved, f.ReturnTypeFromDoc)
		})
	}
}

func TestFromSyntaxNode_LaterSuccessHidesEarlierFailure(t *testing.T) {
	t.Parallel()

	// The strict deprecation parser rejects "@!", the lenient return parser
	// does not.
	node := withDoc(fakeNode{name: "f"}, "/**\n * @!broken\n * @return int\n */")
	f := FromSyntaxNode(node, DefaultDocParsers())

	assert.Equal(t, Unset, f.Deprecated)
	assert.ErrorIs(t, f.DeprecationErr, phpdoc.ErrParse)
	assert.NoError(t, f.ReturnErr)
	assert.NoError(t, f.ParseError())
	assert.Equal(t, CheckReturnType, f.LastCheck())
	assert.True(t, f.Failed())
	assert.Equal(t, "int", f.ReturnTypeFromDoc)
}

func TestFromSyntaxNode_BothChecksFail(t *testing.T) {
	t.Parallel()

	node := withDoc(fakeNode{name: "f"}, "/* not a doc comment */")
	f := FromSyntaxNode(node, DefaultDocParsers())

	require.Error(t, f.DeprecationErr)
	require.Error(t, f.ReturnErr)
	assert.Same(t, f.ReturnErr, f.ParseError())
	assert.ErrorIs(t, f.Err(), phpdoc.ErrParse)
	assert.False(t, f.HasReturnTag)
	assert.Equal(t, Unset, f.Deprecated)
}

func TestFromSyntaxNode_Parameters(t *testing.T) {
	t.Parallel()

	t.Run("empty list is not nil", func(t *testing.T) {
		f := FromSyntaxNode(fakeNode{name: "time"}, DefaultDocParsers())
		require.NotNil(t, f.Parameters)
		assert.Empty(t, f.Parameters)
	})

	t.Run("order, flags and doc types", func(t *testing.T) {
		node := withDoc(fakeNode{
			name: "preg_match",
			params: []SyntaxParameter{
				fakeParam{name: "$pattern", typ: "string"},
				fakeParam{name: "$subject"},
				fakeParam{name: "matches", byRef: true, def: "null"},
				fakeParam{name: "rest", variadic: true},
			},
		}, `/**
 * @link https://php.net/manual/en/function.preg-match.php
 * @see preg_match_all()
 * @param string $subject The input string.
 * @param mixed &$matches
 * @return int|false
 */`)

		f := FromSyntaxNode(node, DefaultDocParsers())
		require.Len(t, f.Parameters, 4)

		assert.Equal(t, Parameter{Name: "pattern", Type: "string"}, f.Parameters[0])
		assert.Equal(t, Parameter{Name: "subject", Type: "string"}, f.Parameters[1])
		assert.Equal(t, Parameter{Name: "matches", Type: "mixed", Optional: true, PassedByReference: true, DefaultValue: "null"}, f.Parameters[2])
		assert.Equal(t, Parameter{Name: "rest", Optional: true, Variadic: true}, f.Parameters[3])

		assert.Equal(t, []string{"https://php.net/manual/en/function.preg-match.php", "preg_match_all()"}, f.Links)
	})
}

func TestTristate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, True, TristateOf(true))
	assert.Equal(t, False, TristateOf(false))
	assert.False(t, Unset.IsSet())
	assert.True(t, False.IsSet())
	assert.Equal(t, "unset", Unset.String())
}
