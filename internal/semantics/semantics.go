// Package semantics implements the pass described in spec.md section
// 4.3: it walks the parser's flat sibling chain of top-level blocks and
// pairs every render! block with its matching {{!}} closing marker,
// populating Block.Scope with the ordered list of blocks in between.
//
// The parser intentionally does not nest render! bodies into the tree
// shape itself (blocks stay a flat sibling chain, per the arena/index
// design grounded on original_source/exclaim); this pass is what gives
// the runtime the grouping it needs, mirroring the explicit
// lexer/parser/semantic/interp separation found in CWBudde-go-dws's
// internal/semantic package, which the teacher (pongo2) has no
// equivalent for since it resolves block structure during parsing.
package semantics

import (
	"github.com/stencil-lang/stencil/internal/ast"
	xerrors "github.com/stencil-lang/stencil/internal/errors"
	"github.com/stencil-lang/stencil/internal/token"
)

type frame struct {
	idx   ast.BlockIndex
	scope []ast.BlockIndex
}

// Run resolves every render!/{{!}} pair in tree, in place. Calling Run
// twice on an already-resolved tree is safe and a no-op: the second
// pass recomputes the same Scope slices from the same sibling chain.
func Run(tree *ast.Tree) error {
	var stack []frame

	for idx := tree.Head; idx != ast.NoBlock; idx = tree.Block(idx).NextSibling {
		block := tree.Block(idx)

		switch block.Kind {
		case ast.BlockCodeUnclosed:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				top.scope = append(top.scope, idx)
			}
			stack = append(stack, frame{idx: idx})

		case ast.BlockCodeClosing:
			if len(stack) == 0 {
				return unexpectedClose(tree, block)
			}
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			tree.Block(closed.idx).Scope = closed.scope

			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				top.scope = append(top.scope, idx)
			}

		default:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				top.scope = append(top.scope, idx)
			}
		}
	}

	if len(stack) > 0 {
		unclosed := tree.Block(stack[len(stack)-1].idx)
		loc := blockLocation(tree, unclosed)
		return xerrors.At(xerrors.StageSemantics, loc.Line, loc.Column,
			"render! at line %d, column %d is never closed with {{!}}", loc.Line, loc.Column)
	}

	return nil
}

func unexpectedClose(tree *ast.Tree, block *ast.Block) error {
	loc := blockLocation(tree, block)
	return xerrors.At(xerrors.StageSemantics, loc.Line, loc.Column,
		"{{!}} has no matching render!")
}

// blockLocation returns the Location to blame for a block: the text
// token's for literal text, the action keyword's otherwise.
func blockLocation(tree *ast.Tree, block *ast.Block) token.Location {
	if block.Kind == ast.BlockText {
		return block.Text.Loc
	}
	return tree.Statement(block.Statement).Action.Loc
}
