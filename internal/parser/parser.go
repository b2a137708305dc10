// Package parser implements the recursive-descent parser described in
// spec.md section 4.2: it consumes the lexer's token stream front to
// back, with one token of lookahead, and builds the arena-backed AST,
// threading top-level blocks into a sibling chain as it goes.
//
// The cursor/lookahead shape (Current/Match/Peek/Consume) is grounded
// on the teacher's Parser in parser.go; the grammar itself (write!/
// let!/render!/{{!}} plus a pipe-transform expression language) is
// this project's own rather than pongo2's tag/filter grammar.
package parser

import (
	"github.com/stencil-lang/stencil/internal/ast"
	xerrors "github.com/stencil-lang/stencil/internal/errors"
	"github.com/stencil-lang/stencil/internal/token"
)

type parser struct {
	tokens []token.Token
	pos    int
	tree   *ast.Tree
}

// Parse builds an AST from a token stream produced by the lexer.
// Errors abort the parse immediately; there is no partial recovery.
func Parse(tokens []token.Token) (*ast.Tree, error) {
	p := &parser{tokens: tokens, tree: ast.New()}

	var prev ast.BlockIndex = ast.NoBlock
	for !p.atEnd() {
		idx, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		if prev != ast.NoBlock {
			p.tree.LinkSibling(prev, idx)
		}
		prev = idx
	}
	return p.tree, nil
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) current() *token.Token {
	if p.atEnd() {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) advance() token.Token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

// lastLocation returns the Location to blame for an end-of-stream
// error: the location of the last token, or 0:0 if there are none.
func (p *parser) lastLocation() (line, col int) {
	if len(p.tokens) == 0 {
		return 0, 0
	}
	last := p.tokens[len(p.tokens)-1]
	return last.Loc.Line, last.Loc.Column
}

func (p *parser) errorf(format string, args ...any) error {
	if tok := p.current(); tok != nil {
		return xerrors.At(xerrors.StageParser, tok.Loc.Line, tok.Loc.Column, format, args...)
	}
	line, col := p.lastLocation()
	return xerrors.At(xerrors.StageParser, line, col, "unexpected end of stream: "+format, args...)
}

func (p *parser) isOperator(op token.Operator) bool {
	tok := p.current()
	return tok != nil && tok.Kind == token.OperatorTok && tok.Operator == op
}

func (p *parser) isAction(a token.Action) bool {
	tok := p.current()
	return tok != nil && tok.Kind == token.ActionTok && tok.Action == a
}

func (p *parser) expectOperator(op token.Operator) (token.Token, error) {
	if !p.isOperator(op) {
		return token.Token{}, p.errorf("expected %q", op)
	}
	return p.advance(), nil
}

func (p *parser) expectLabel() (token.Token, error) {
	tok := p.current()
	if tok == nil || tok.Kind != token.Label {
		return token.Token{}, p.errorf("expected an identifier")
	}
	return p.advance(), nil
}

// parseBlock implements the *block* production: either a literal text
// run, or a {{ statement }} code block whose surrounding BlockKind is
// derived from the statement it contains.
func (p *parser) parseBlock() (ast.BlockIndex, error) {
	tok := p.current()
	if tok == nil {
		return 0, p.errorf("expected a block")
	}

	if tok.Kind == token.Text {
		p.advance()
		return p.tree.AddBlock(ast.Block{Kind: ast.BlockText, Text: *tok}), nil
	}

	if _, err := p.expectOperator(token.BlockOpen); err != nil {
		return 0, err
	}

	stmtIdx, kind, err := p.parseStatement()
	if err != nil {
		return 0, err
	}

	if _, err := p.expectOperator(token.BlockClose); err != nil {
		return 0, err
	}

	return p.tree.AddBlock(ast.Block{Kind: kind, Statement: stmtIdx}), nil
}

// parseStatement implements the *statement* production.
func (p *parser) parseStatement() (ast.StatementIndex, ast.BlockKind, error) {
	tok := p.current()
	if tok == nil || tok.Kind != token.ActionTok {
		return 0, 0, p.errorf("expected let!, write!, render! or !")
	}

	switch tok.Action {
	case token.End:
		action := p.advance()
		idx := p.tree.AddStatement(ast.Statement{Kind: ast.StmtEnd, Action: action})
		return idx, ast.BlockCodeClosing, nil

	case token.Let:
		action := p.advance()
		patIdx, err := p.parsePattern()
		if err != nil {
			return 0, 0, err
		}
		if _, err := p.expectOperator(token.Assign); err != nil {
			return 0, 0, err
		}
		exprIdx, err := p.parseExpression()
		if err != nil {
			return 0, 0, err
		}
		idx := p.tree.AddStatement(ast.Statement{
			Kind: ast.StmtLet, Action: action, Pattern: patIdx, Expression: exprIdx,
		})
		return idx, ast.BlockCodeEnclosed, nil

	case token.Render:
		action := p.advance()
		patIdx, err := p.parsePattern()
		if err != nil {
			return 0, 0, err
		}
		if _, err := p.expectOperator(token.Each); err != nil {
			return 0, 0, err
		}
		exprIdx, err := p.parseExpression()
		if err != nil {
			return 0, 0, err
		}
		idx := p.tree.AddStatement(ast.Statement{
			Kind: ast.StmtRender, Action: action, Pattern: patIdx, Expression: exprIdx,
		})
		return idx, ast.BlockCodeUnclosed, nil

	case token.Write:
		action := p.advance()
		exprIdx, err := p.parseExpression()
		if err != nil {
			return 0, 0, err
		}
		idx := p.tree.AddStatement(ast.Statement{Kind: ast.StmtWrite, Action: action, Expression: exprIdx})
		return idx, ast.BlockCodeEnclosed, nil
	}

	return 0, 0, p.errorf("unreachable action kind")
}

// parsePattern implements the *pattern* production: a single label, or
// a parenthesized comma-separated label list.
func (p *parser) parsePattern() (ast.PatternIndex, error) {
	tok := p.current()
	if tok == nil {
		return 0, p.errorf("expected a pattern")
	}

	if tok.Kind == token.Label {
		name := p.advance()
		return p.tree.AddPattern(ast.Pattern{Kind: ast.PatternDeclaration, Names: []token.Token{name}}), nil
	}

	if _, err := p.expectOperator(token.ParenOpen); err != nil {
		return 0, p.errorf("malformed pattern: expected an identifier or '('")
	}

	first, err := p.expectLabel()
	if err != nil {
		return 0, err
	}
	names := []token.Token{first}

	for p.isOperator(token.Comma) {
		p.advance()
		next, err := p.expectLabel()
		if err != nil {
			return 0, err
		}
		names = append(names, next)
	}

	if _, err := p.expectOperator(token.ParenClose); err != nil {
		return 0, err
	}

	return p.tree.AddPattern(ast.Pattern{Kind: ast.PatternDeclaration, Names: names}), nil
}

// parseExpression implements *expression* -> *literal* *transforms* |
// *reference* *transforms*.
func (p *parser) parseExpression() (ast.ExpressionIndex, error) {
	tok := p.current()
	if tok == nil {
		return 0, p.errorf("expected an expression")
	}

	switch tok.Kind {
	case token.StringLiteral, token.NumberLiteral:
		lit := p.advance()
		transforms, err := p.parseTransforms()
		if err != nil {
			return 0, err
		}
		return p.tree.AddExpression(ast.Expression{
			Kind: ast.ExprLiteral, Literal: lit, Transforms: transforms,
		}), nil

	case token.Label:
		first := p.advance()
		path := []token.Token{first}
		for p.isOperator(token.Dot) {
			p.advance()
			next, err := p.expectLabel()
			if err != nil {
				return 0, err
			}
			path = append(path, next)
		}
		transforms, err := p.parseTransforms()
		if err != nil {
			return 0, err
		}
		return p.tree.AddExpression(ast.Expression{
			Kind: ast.ExprReference, Path: path, Transforms: transforms,
		}), nil
	}

	return 0, p.errorf("expected a literal or a reference")
}

// parseTransforms implements *transforms* -> ( '|' Label
// *argument-list*? )*.
func (p *parser) parseTransforms() ([]ast.TransformIndex, error) {
	var out []ast.TransformIndex

	for p.isOperator(token.Pipe) {
		p.advance()
		label, err := p.expectLabel()
		if err != nil {
			return nil, err
		}

		var args []ast.ExpressionIndex
		if p.isOperator(token.ParenOpen) {
			p.advance()
			if !p.isOperator(token.ParenClose) {
				first, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, first)
				for p.isOperator(token.Comma) {
					p.advance()
					next, err := p.parseExpression()
					if err != nil {
						return nil, err
					}
					args = append(args, next)
				}
			}
			if _, err := p.expectOperator(token.ParenClose); err != nil {
				return nil, err
			}
		}

		out = append(out, p.tree.AddTransform(ast.Transform{Label: label, Arguments: args}))
	}

	return out, nil
}
