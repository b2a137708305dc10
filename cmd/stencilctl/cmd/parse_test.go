package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stencil-lang/stencil/internal/ast"
	"github.com/stencil-lang/stencil/internal/lexer"
	"github.com/stencil-lang/stencil/internal/parser"
	"github.com/stencil-lang/stencil/internal/semantics"
)

func TestMain(m *testing.M) {
	code := m.Run()
	snaps.Clean(m)
	os.Exit(code)
}

// captureParseOutput runs the same lex->parse->semantics->printBlock
// pipeline runParse does, over stdout captured into a buffer.
func captureParseOutput(t *testing.T, src string) string {
	t.Helper()
	logger = zap.NewNop()

	tokens, err := lexer.Lex(src)
	require.NoError(t, err)
	tree, err := parser.Parse(tokens)
	require.NoError(t, err)
	require.NoError(t, semantics.Run(tree))

	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w

	for idx := tree.Head; idx != ast.NoBlock; idx = tree.Block(idx).NextSibling {
		printBlock(tree, idx, 0)
	}

	w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestParseOutputSnapshot(t *testing.T) {
	out := captureParseOutput(t, "Hi {{ render! item : items }}- {{ write! item }}{{!}}")
	snaps.MatchSnapshot(t, out)
}
