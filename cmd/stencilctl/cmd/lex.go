package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stencil-lang/stencil/internal/lexer"
)

var (
	lexEval    string
	lexShowPos bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a template and print the resulting tokens",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading from a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show each token's line:column")
}

func runLex(cmd *cobra.Command, args []string) error {
	input, source, err := readInput(lexEval, args)
	if err != nil {
		return err
	}

	logger.Debug("lexing", zap.String("source", source), zap.Int("bytes", len(input)))

	tokens, err := lexer.Lex(input)
	if err != nil {
		return err
	}

	for _, tok := range tokens {
		if lexShowPos {
			fmt.Printf("%-10s %-30q @%s\n", tok.Kind, tok.Text, tok.Loc)
		} else {
			fmt.Printf("%-10s %q\n", tok.Kind, tok.Text)
		}
	}
	return nil
}

func readInput(eval string, args []string) (input, source string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("provide a file path or use -e/--eval for inline source")
}
