// Package runtime implements the scope-stack tree-walking interpreter
// described in spec.md section 4.4: it walks the semantically resolved
// AST once, left to right, evaluating expressions against an explicit
// stack of name->Value frames and appending write! output to a single
// buffer.
//
// The explicit stack-of-maps (rather than a linked parent-pointer
// context, which is what the teacher's ExecutionContext in context.go
// uses) is spec.md's own requirement; the push-a-frame/pop-a-frame
// shape around a loop body is otherwise grounded on the teacher's
// tags_for.go, which pushes one Context layer per for-loop iteration.
package runtime

import (
	"strconv"
	"strings"

	"github.com/stencil-lang/stencil/internal/ast"
	xerrors "github.com/stencil-lang/stencil/internal/errors"
	"github.com/stencil-lang/stencil/internal/token"
	"github.com/stencil-lang/stencil/internal/value"
)

// Globals is the caller-supplied set of top-level bindings a template
// is rendered against.
type Globals map[string]value.Value

type runtime struct {
	tree  *ast.Tree
	stack []map[string]value.Value
	out   strings.Builder
}

// Run walks tree and returns the text write! produced, or the first
// runtime error encountered. globals seeds the bottom scope frame: each
// entry is wrapped Some(v), since a bare reference resolved only by
// falling through to the global frame is "maybe present" from the
// template's point of view, per the external-data-context lens.
func Run(tree *ast.Tree, globals Globals) (string, error) {
	bottom := make(map[string]value.Value, len(globals))
	for k, v := range globals {
		bottom[k] = value.Some(v)
	}

	rt := &runtime{tree: tree, stack: []map[string]value.Value{bottom}}
	if err := rt.execBody(chainToSlice(tree, tree.Head)); err != nil {
		return "", err
	}
	return rt.out.String(), nil
}

func chainToSlice(tree *ast.Tree, head ast.BlockIndex) []ast.BlockIndex {
	var out []ast.BlockIndex
	for idx := head; idx != ast.NoBlock; idx = tree.Block(idx).NextSibling {
		out = append(out, idx)
	}
	return out
}

func (rt *runtime) pushScope(frame map[string]value.Value) {
	rt.stack = append(rt.stack, frame)
}

func (rt *runtime) popScope() {
	rt.stack = rt.stack[:len(rt.stack)-1]
}

func (rt *runtime) lookup(name string) (value.Value, bool) {
	for i := len(rt.stack) - 1; i >= 0; i-- {
		if v, ok := rt.stack[i][name]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

func (rt *runtime) bind(name string, v value.Value) {
	rt.stack[len(rt.stack)-1][name] = v
}

// execBody runs a flat sequence of sibling blocks in order: this is
// used both for the top-level document and for a render! block's
// Scope, which the semantic pass populates with exactly the same kind
// of flat, already-ordered index list.
func (rt *runtime) execBody(body []ast.BlockIndex) error {
	for _, idx := range body {
		block := rt.tree.Block(idx)
		switch block.Kind {
		case ast.BlockText:
			rt.out.WriteString(block.Text.Text)
		case ast.BlockCodeEnclosed:
			if err := rt.execEnclosed(block); err != nil {
				return err
			}
		case ast.BlockCodeUnclosed:
			if err := rt.execRender(block); err != nil {
				return err
			}
		case ast.BlockCodeClosing:
			// A bare marker; the render! that owns it already consumed
			// its iteration bounds via Scope.
		}
	}
	return nil
}

func (rt *runtime) execEnclosed(block *ast.Block) error {
	stmt := rt.tree.Statement(block.Statement)
	switch stmt.Kind {
	case ast.StmtLet:
		v, err := rt.eval(stmt.Expression)
		if err != nil {
			return err
		}
		return rt.bindPattern(stmt.Pattern, v, stmt.Action.Loc)

	case ast.StmtWrite:
		v, err := rt.eval(stmt.Expression)
		if err != nil {
			return err
		}
		rt.out.WriteString(v.Display())
		return nil

	default:
		return xerrors.At(xerrors.StageRuntime, stmt.Action.Loc.Line, stmt.Action.Loc.Column,
			"unexpected statement kind in an enclosed block")
	}
}

func (rt *runtime) execRender(block *ast.Block) error {
	stmt := rt.tree.Statement(block.Statement)

	iterable, err := rt.eval(stmt.Expression)
	if err != nil {
		return err
	}
	iterable = peelOptional(iterable)
	if iterable.Kind != value.Array && iterable.Kind != value.Tuple {
		return xerrors.At(xerrors.StageRuntime, stmt.Action.Loc.Line, stmt.Action.Loc.Column,
			"render! expects an array or tuple, got %s", iterable.Kind)
	}

	pattern := rt.tree.Pattern(stmt.Pattern)
	for _, item := range iterable.Items() {
		frame := make(map[string]value.Value, len(pattern.Names))
		if err := bindPatternInto(frame, pattern, item, stmt.Action.Loc); err != nil {
			return err
		}
		rt.pushScope(frame)
		err := rt.execBody(block.Scope)
		rt.popScope()
		if err != nil {
			return err
		}
	}
	return nil
}

func (rt *runtime) bindPattern(patIdx ast.PatternIndex, v value.Value, loc token.Location) error {
	pattern := rt.tree.Pattern(patIdx)
	return bindPatternInto(rt.stack[len(rt.stack)-1], pattern, v, loc)
}

// bindPatternInto binds v into frame according to pattern: a single
// name binds v whole, multiple names destructure v as a Tuple of the
// same arity.
func bindPatternInto(frame map[string]value.Value, pattern *ast.Pattern, v value.Value, loc token.Location) error {
	if len(pattern.Names) == 1 {
		frame[pattern.Names[0].Text] = v
		return nil
	}

	v = peelOptional(v)
	if v.Kind != value.Tuple {
		return xerrors.At(xerrors.StageRuntime, loc.Line, loc.Column,
			"pattern of %d names requires a tuple, got %s", len(pattern.Names), v.Kind)
	}
	items := v.Items()
	if len(items) != len(pattern.Names) {
		return xerrors.At(xerrors.StageRuntime, loc.Line, loc.Column,
			"pattern of %d names does not match tuple of %d elements", len(pattern.Names), len(items))
	}
	for i, name := range pattern.Names {
		frame[name.Text] = items[i]
	}
	return nil
}

// eval evaluates an expression: a literal or a dot-path reference,
// followed by its chain of pipe transforms applied left to right.
func (rt *runtime) eval(exprIdx ast.ExpressionIndex) (value.Value, error) {
	expr := rt.tree.Expression(exprIdx)

	var v value.Value

	switch expr.Kind {
	case ast.ExprLiteral:
		lit, err := literalValue(expr.Literal)
		if err != nil {
			return value.Value{}, err
		}
		v = lit

	case ast.ExprReference:
		resolved, err := rt.resolvePath(expr.Path)
		if err != nil {
			return value.Value{}, err
		}
		v = resolved

	default:
		return value.Value{}, xerrors.New(xerrors.StageRuntime, "unreachable expression kind")
	}

	for _, trIdx := range expr.Transforms {
		tr := rt.tree.Transform(trIdx)
		args := make([]value.Value, len(tr.Arguments))
		for i, argIdx := range tr.Arguments {
			av, err := rt.eval(argIdx)
			if err != nil {
				return value.Value{}, err
			}
			args[i] = av
		}

		next, err := value.Apply(tr.Label.Text, v, args)
		if err != nil {
			return value.Value{}, xerrors.At(xerrors.StageRuntime, tr.Label.Loc.Line, tr.Label.Loc.Column,
				"%s", err)
		}
		v = next
	}

	return v, nil
}

func literalValue(tok token.Token) (value.Value, error) {
	switch tok.Kind {
	case token.StringLiteral:
		return value.NewString(tok.Text), nil
	case token.NumberLiteral:
		n, err := strconv.ParseUint(tok.Text, 10, 64)
		if err != nil {
			return value.Value{}, xerrors.At(xerrors.StageRuntime, tok.Loc.Line, tok.Loc.Column,
				"malformed number literal %q: %s", tok.Text, err)
		}
		return value.NewUint(n), nil
	default:
		return value.Value{}, xerrors.At(xerrors.StageRuntime, tok.Loc.Line, tok.Loc.Column,
			"unexpected literal kind %s", tok.Kind)
	}
}

// resolvePath looks up a dot-path's head label in the scope stack
// top-down, falling through to the bottom (global) frame. A head that
// is missing everywhere, or present only by falling all the way
// through to the global frame, evaluates through the Optional lens
// (the global frame's entries are pre-wrapped Some(v) by Run); a head
// found in a template-introduced frame stays raw. Each subsequent path
// label is then a field access via get-style semantics, auto-unwrapping
// an already-Optional current value before the next lookup.
func (rt *runtime) resolvePath(path []token.Token) (value.Value, error) {
	head := path[0]
	v, ok := rt.lookup(head.Text)
	if !ok {
		v = value.None()
	}

	for _, field := range path[1:] {
		next, err := getField(v, field)
		if err != nil {
			return value.Value{}, err
		}
		v = next
	}
	return v, nil
}

// getField applies the "get(label)" field-access semantics a dot-path
// segment uses: looking up a key on an Object always yields Optional
// (Some if present, None otherwise); applied to an already-Optional
// value, it first unwraps one layer (erroring on None, since there is
// nothing left to look a field up on) and recurses into the inner
// value, mirroring the original's Data::get recursion through
// Option(Some(_)).
func getField(v value.Value, field token.Token) (value.Value, error) {
	switch v.Kind {
	case value.Object:
		next, ok := v.Attrs()[field.Text]
		if !ok {
			return value.None(), nil
		}
		return value.Some(next), nil

	case value.Optional:
		inner, ok := v.Unwrap()
		if !ok {
			return value.Value{}, xerrors.At(xerrors.StageRuntime, field.Loc.Line, field.Loc.Column,
				"cannot access field %q: value is None", field.Text)
		}
		return getField(inner, field)

	default:
		return value.Value{}, xerrors.At(xerrors.StageRuntime, field.Loc.Line, field.Loc.Column,
			"cannot access field %q on a %s value", field.Text, v.Kind)
	}
}

// peelOptional strips away Optional layers down to the wrapped value,
// for call sites that need to inspect a concrete Kind (render!'s
// iterable, a tuple pattern's destructure) regardless of whether the
// reference that produced it came from the global frame. A None value
// is left as Optional, so the caller's own Kind check reports it.
func peelOptional(v value.Value) value.Value {
	for v.Kind == value.Optional {
		inner, ok := v.Unwrap()
		if !ok {
			return v
		}
		v = inner
	}
	return v
}
