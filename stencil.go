// Package stencil is a small template language: literal text threaded
// with {{ }} code blocks that bind names, write output and iterate
// over arrays and tuples through a pipe-based transform chain.
//
// The two-step FromString/Execute API (parse once, execute many times
// against different data) mirrors the teacher's
// NewTemplateFromString/Execute pair in pongo2.go and template.go; the
// pipeline it drives internally (lex, parse, resolve scopes, walk) has
// no single-file equivalent in the teacher, which fuses parsing and
// execution, so that separation is grounded on CWBudde-go-dws's
// cmd/dwscript lex/parse/run command split instead.
package stencil

import (
	"github.com/stencil-lang/stencil/internal/ast"
	"github.com/stencil-lang/stencil/internal/lexer"
	"github.com/stencil-lang/stencil/internal/parser"
	"github.com/stencil-lang/stencil/internal/runtime"
	"github.com/stencil-lang/stencil/internal/semantics"
	"github.com/stencil-lang/stencil/internal/value"
)

// Value is the runtime value type: a closed tagged union over
// string/int/uint/float/array/tuple/object/optional. Construct one
// with the New*/Some/None helpers below.
type Value = value.Value

// Context binds top-level names to values for a single Execute call.
type Context = runtime.Globals

func NewString(s string) Value          { return value.NewString(s) }
func NewInt(i int64) Value              { return value.NewInt(i) }
func NewUint(u uint64) Value            { return value.NewUint(u) }
func NewFloat(f float64) Value          { return value.NewFloat(f) }
func NewArray(items []Value) Value      { return value.NewArray(items) }
func NewTuple(items []Value) Value      { return value.NewTuple(items) }
func NewObject(attrs map[string]Value) Value { return value.NewObject(attrs) }
func Some(v Value) Value                { return value.Some(v) }
func None() Value                       { return value.None() }

// Template is a parsed and scope-resolved document, ready to Execute
// against any number of Contexts.
type Template struct {
	tree *ast.Tree
}

// FromString lexes, parses and resolves src, returning a Template or
// the first lexical, syntactic or semantic error encountered.
func FromString(src string) (*Template, error) {
	tokens, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}

	tree, err := parser.Parse(tokens)
	if err != nil {
		return nil, err
	}

	if err := semantics.Run(tree); err != nil {
		return nil, err
	}

	return &Template{tree: tree}, nil
}

// Execute walks the template against ctx and returns the text write!
// produced, or the first runtime error encountered.
func (t *Template) Execute(ctx Context) (string, error) {
	return runtime.Run(t.tree, ctx)
}

// Render is a convenience wrapper for the common one-shot case: parse
// src and execute it immediately against ctx.
func Render(src string, ctx Context) (string, error) {
	tmpl, err := FromString(src)
	if err != nil {
		return "", err
	}
	return tmpl.Execute(ctx)
}
