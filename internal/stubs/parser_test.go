package stubs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/stubcheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for stub Parser:
// - Collects top-level functions in source order, skipping methods
// - Collects functions guarded by function_exists
// - Attaches the preceding /** comment only
// - Extracts parameter names, types, defaults, by-ref and variadic flags
// - Resolves statement and bracketed namespaces
// - Reports syntax errors and missing files

func findFunction(t *testing.T, file *File, name string) *FunctionNode {
	t.Helper()
	for _, fn := range file.Functions {
		if fn.Name() == name {
			return fn
		}
	}
	require.Failf(t, "function not found", "%s", name)
	return nil
}

func TestParser_ParseFile_Standard(t *testing.T) {
	t.Parallel()

	file, err := NewParser().ParseFile(context.Background(), "../../testdata/stubs/standard/standard.php")
	require.NoError(t, err)

	var names []string
	for _, fn := range file.Functions {
		names = append(names, fn.Name())
	}
	assert.Equal(t, []string{"strlen", "str_replace", "utf8_encode", "array_push", "legacy_helper"}, names)

	strlen := findFunction(t, file, "strlen")
	assert.Empty(t, strlen.Scope())
	assert.Equal(t, 12, strlen.Line)
	assert.Contains(t, strlen.File, "standard.php")
	doc, ok := strlen.DocComment()
	require.True(t, ok)
	assert.Contains(t, doc, "@return int<0,max>")

	params := findFunction(t, file, "str_replace").Parameters()
	require.Len(t, params, 4)
	assert.Equal(t, "search", params[0].Name())
	assert.Empty(t, params[0].Type())
	assert.Equal(t, "count", params[3].Name())
	assert.True(t, params[3].IsPassedByReference())
	assert.Equal(t, "null", params[3].DefaultValue())

	push := findFunction(t, file, "array_push").Parameters()
	require.Len(t, push, 2)
	assert.Equal(t, "array", push[0].Type())
	assert.True(t, push[0].IsPassedByReference())
	assert.True(t, push[1].IsVariadic())
	assert.Equal(t, "values", push[1].Name())
	assert.Equal(t, "mixed", push[1].Type())

	_, ok = findFunction(t, file, "legacy_helper").DocComment()
	assert.True(t, ok)
}

func TestParser_Namespaces(t *testing.T) {
	t.Parallel()

	source := []byte(`<?php
namespace Random\Engine;

/** @return int */
function seed(): int {}

namespace Other {
    function inside() {}
}
`)

	file, err := NewParser().Parse(context.Background(), "ns.php", source)
	require.NoError(t, err)
	require.Len(t, file.Functions, 2)

	assert.Equal(t, []string{"Random", "Engine"}, file.Functions[0].Scope())
	assert.Equal(t, []string{"Other"}, file.Functions[1].Scope())

	f := model.FromSyntaxNode(file.Functions[0], model.DefaultDocParsers())
	assert.Equal(t, `Random\Engine\seed`, f.Name)
	assert.Equal(t, "int", f.ReturnTypeFromDoc)
}

func TestParser_DocCommentAttachment(t *testing.T) {
	t.Parallel()

	source := []byte(`<?php
/* plain block comment */
function plain() {}

// line comment
function line() {}

/** first */
/** second */
function twice() {}

function bare(int $a = 1, string ...$rest) {}
`)

	file, err := NewParser().Parse(context.Background(), "doc.php", source)
	require.NoError(t, err)
	require.Len(t, file.Functions, 4)

	_, ok := file.Functions[0].DocComment()
	assert.False(t, ok, "plain block comment is not a doc comment")

	_, ok = file.Functions[1].DocComment()
	assert.False(t, ok)

	doc, ok := file.Functions[2].DocComment()
	require.True(t, ok)
	assert.Equal(t, "/** second */", doc)

	_, ok = file.Functions[3].DocComment()
	assert.False(t, ok)

	f := model.FromSyntaxNode(file.Functions[3], model.DefaultDocParsers())
	assert.Equal(t, model.Unset, f.Deprecated)
	require.Len(t, f.Parameters, 2)
	assert.Equal(t, model.Parameter{Name: "a", Type: "int", Optional: true, DefaultValue: "1"}, f.Parameters[0])
	assert.Equal(t, model.Parameter{Name: "rest", Type: "string", Optional: true, Variadic: true}, f.Parameters[1])
}

func TestParser_NoFunctions(t *testing.T) {
	t.Parallel()

	file, err := NewParser().Parse(context.Background(), "empty.php", []byte("<?php\n"))
	require.NoError(t, err)
	assert.NotNil(t, file.Functions)
	assert.Empty(t, file.Functions)
}

func TestParser_Errors(t *testing.T) {
	t.Parallel()

	p := NewParser()

	_, err := p.Parse(context.Background(), "broken.php", []byte("<?php\nfunction broken( {}\n"))
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = p.ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.php"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Parse(ctx, "x.php", []byte("<?php\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
