package cmd

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stencil-lang/stencil/internal/ast"
	"github.com/stencil-lang/stencil/internal/lexer"
	"github.com/stencil-lang/stencil/internal/parser"
	"github.com/stencil-lang/stencil/internal/semantics"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse and scope-resolve a template, printing a block-by-block summary",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading from a file")
}

func runParse(cmd *cobra.Command, args []string) error {
	input, source, err := readInput(parseEval, args)
	if err != nil {
		return err
	}

	logger.Debug("parsing", zap.String("source", source))

	tokens, err := lexer.Lex(input)
	if err != nil {
		return err
	}

	tree, err := parser.Parse(tokens)
	if err != nil {
		return err
	}

	if err := semantics.Run(tree); err != nil {
		return err
	}

	for idx := tree.Head; idx != ast.NoBlock; idx = tree.Block(idx).NextSibling {
		printBlock(tree, idx, 0)
	}
	return nil
}

func printBlock(tree *ast.Tree, idx ast.BlockIndex, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}

	block := tree.Block(idx)
	switch block.Kind {
	case ast.BlockText:
		fmt.Printf("%s#%d text %q\n", indent, idx, block.Text.Text)
	case ast.BlockCodeClosing:
		fmt.Printf("%s#%d !\n", indent, idx)
	default:
		stmt := tree.Statement(block.Statement)
		fmt.Printf("%s#%d %s %s\n", indent, idx, block.Kind, pretty.Sprint(stmt))
		for _, childIdx := range block.Scope {
			printBlock(tree, childIdx, depth+1)
		}
	}
}
