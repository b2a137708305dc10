package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencil-lang/stencil/internal/ast"
	"github.com/stencil-lang/stencil/internal/lexer"
	"github.com/stencil-lang/stencil/internal/parser"
)

func mustBuild(t *testing.T, src string) *ast.Tree {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	tree, err := parser.Parse(toks)
	require.NoError(t, err)
	return tree
}

func blockKinds(tree *ast.Tree, scope []ast.BlockIndex) []ast.BlockKind {
	out := make([]ast.BlockKind, len(scope))
	for i, idx := range scope {
		out[i] = tree.Block(idx).Kind
	}
	return out
}

func TestRunPairsSimpleRenderBlock(t *testing.T) {
	tree := mustBuild(t, "{{ render! item : items }}x{{ write! item }}y{{!}}")
	require.NoError(t, Run(tree))

	renderIdx := tree.Head
	scope := tree.Block(renderIdx).Scope
	assert.Equal(t, []ast.BlockKind{ast.BlockText, ast.BlockCodeEnclosed, ast.BlockText}, blockKinds(tree, scope))
}

func TestRunPairsNestedRenderBlocks(t *testing.T) {
	tree := mustBuild(t, "{{ render! a : xs }}before{{ render! b : ys }}inner{{!}}after{{!}}")
	require.NoError(t, Run(tree))

	outer := tree.Block(tree.Head)
	require.Len(t, outer.Scope, 4)
	assert.Equal(t, ast.BlockText, tree.Block(outer.Scope[0]).Kind)
	assert.Equal(t, ast.BlockCodeUnclosed, tree.Block(outer.Scope[1]).Kind)
	assert.Equal(t, ast.BlockCodeClosing, tree.Block(outer.Scope[2]).Kind)
	assert.Equal(t, ast.BlockText, tree.Block(outer.Scope[3]).Kind)

	inner := tree.Block(outer.Scope[1])
	require.Len(t, inner.Scope, 1)
	assert.Equal(t, ast.BlockText, tree.Block(inner.Scope[0]).Kind)
}

func TestRunIsIdempotent(t *testing.T) {
	tree := mustBuild(t, "{{ render! item : items }}x{{!}}")
	require.NoError(t, Run(tree))
	first := append([]ast.BlockIndex{}, tree.Block(tree.Head).Scope...)

	require.NoError(t, Run(tree))
	second := tree.Block(tree.Head).Scope

	assert.Equal(t, first, second)
}

func TestRunUnclosedRenderIsError(t *testing.T) {
	tree := mustBuild(t, "{{ render! item : items }}x")
	err := Run(tree)
	require.Error(t, err)
}

func TestRunUnmatchedClosingMarkerIsError(t *testing.T) {
	tree := mustBuild(t, "x{{!}}")
	err := Run(tree)
	require.Error(t, err)
}
