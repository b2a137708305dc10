// Package lexer implements the deterministic state-machine tokenizer
// described in spec.md section 4.1: it turns a UTF-8 template source
// string into an ordered token stream, tracking line/column for
// diagnostics and distinguishing literal text from in-block syntax.
//
// The state-machine shape (a function that scans some input and returns
// the next state function to run, or nil to stop) is the same pattern
// the teacher's lexer uses; the grammar it recognizes is this project's
// own (a single {{ }} delimiter pair, four action keywords, a small
// operator set) rather than the teacher's Django-style tag grammar.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	xerrors "github.com/stencil-lang/stencil/internal/errors"
	"github.com/stencil-lang/stencil/internal/token"
)

// eof is returned by next() once the input is exhausted. -1 is not a
// valid rune value, so it can never collide with real input.
const eof rune = -1

// twoCharOperators lists every two-character operator, matched greedily
// before any of their single-character prefixes/overlaps.
var twoCharOperators = []struct {
	lit string
	op  token.Operator
}{
	{"==", token.Equality},
	{"!=", token.Inequality},
	{"&&", token.And},
	{"||", token.Or},
	{"{{", token.BlockOpen},
	{"}}", token.BlockClose},
}

// oneCharOperators lists every single-character operator recognized
// inside a block, aside from '!' and '&'. '|' is listed here but is only
// reached after twoCharOperators has failed to match "||".
var oneCharOperators = map[rune]token.Operator{
	'=': token.Assign,
	'.': token.Dot,
	',': token.Comma,
	':': token.Each,
	'[': token.ClosureOpen,
	']': token.ClosureClose,
	'(': token.ParenOpen,
	')': token.ParenClose,
	'|': token.Pipe,
}

// stateFn represents one state of the lexer's state machine. It
// inspects the characters ahead of the cursor and returns the state to
// run next, or nil when lexing should stop (error or end of input).
type stateFn func(*lexer) stateFn

// lexer holds the mutable state of a single tokenization run: the
// input buffer, a cursor, an accumulator delimited by [start, pos), and
// the token list built so far.
type lexer struct {
	input string

	start int // byte offset where the current token's content begins
	pos   int // byte offset of the cursor
	width int // width in bytes of the last rune returned by next()

	startLoc token.Location // Location corresponding to start
	loc      token.Location // Location corresponding to pos

	tokens []token.Token
	err    *xerrors.Error
}

// Lex tokenizes input and returns the resulting token stream, or a
// structured lexical error with a reconstructed source line and caret.
func Lex(input string) ([]token.Token, error) {
	l := &lexer{input: input}
	for state := stateStart; state != nil; {
		state = state(l)
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.tokens, nil
}

func (l *lexer) value() string {
	return l.input[l.start:l.pos]
}

// advanceLoc updates loc for having consumed rune r.
func (l *lexer) advanceLoc(r rune) {
	if r == '\n' {
		l.loc.Line++
		l.loc.Column = 0
	} else {
		l.loc.Column++
	}
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	l.advanceLoc(r)
	return r
}

// peek returns the next rune without consuming it: it snapshots the
// cursor and Location, reads one rune, then restores the snapshot.
func (l *lexer) peek() rune {
	pos, loc, width := l.pos, l.loc, l.width
	r := l.next()
	l.pos, l.loc, l.width = pos, loc, width
	return r
}

// ignore discards any accumulated (but not yet emitted) text, moving
// start up to the current cursor position without emitting a token.
func (l *lexer) ignore() {
	l.start = l.pos
	l.startLoc = l.loc
}

func (l *lexer) emit(kind token.Kind) {
	l.tokens = append(l.tokens, token.Token{
		Kind: kind,
		Text: l.value(),
		Loc:  l.startLoc,
	})
	l.ignore()
}

func (l *lexer) emitAction(a token.Action) {
	l.tokens = append(l.tokens, token.Token{
		Kind:   token.ActionTok,
		Action: a,
		Loc:    l.startLoc,
	})
	l.ignore()
}

func (l *lexer) emitOperator(op token.Operator) {
	l.tokens = append(l.tokens, token.Token{
		Kind:     token.OperatorTok,
		Operator: op,
		Loc:      l.startLoc,
	})
	l.ignore()
}

// sourceLine reconstructs the full text of the given 0-origin line
// number, for caret diagnostics.
func (l *lexer) sourceLine(lineNo int) string {
	lines := strings.Split(l.input, "\n")
	if lineNo < 0 || lineNo >= len(lines) {
		return ""
	}
	return lines[lineNo]
}

// errorf records a lexical error at the current cursor location and
// halts the state machine.
func (l *lexer) errorf(format string, args ...any) stateFn {
	e := xerrors.At(xerrors.StageLexer, l.loc.Line, l.loc.Column, format, args...)
	l.err = e.WithCaret(l.sourceLine(l.loc.Line))
	return nil
}

func (l *lexer) emitPendingText() {
	if l.pos > l.start {
		l.emit(token.Text)
	}
}

// stateStart scans literal text outside any {{ }} block. It watches
// for "{{" (enter a block) and, per spec.md, also eagerly tokenizes a
// stray "}}" into a BlockClose operator even outside a block.
func stateStart(l *lexer) stateFn {
	for {
		if strings.HasPrefix(l.input[l.pos:], "{{") {
			l.emitPendingText()
			consumeLiteral(l, "{{")
			l.emitOperator(token.BlockOpen)
			return stateBlock
		}
		if strings.HasPrefix(l.input[l.pos:], "}}") {
			l.emitPendingText()
			consumeLiteral(l, "}}")
			l.emitOperator(token.BlockClose)
			continue
		}
		r := l.next()
		if r == eof {
			l.emitPendingText()
			return nil
		}
	}
}

// consumeLiteral advances the cursor past the exact ASCII literal s,
// which the caller has already confirmed is a prefix of the remaining
// input. s is always one of the single-byte-rune delimiters, so a
// simple byte-wise advance is sufficient.
func consumeLiteral(l *lexer, s string) {
	for range s {
		l.next()
	}
}

// stateBlock scans the contents of a {{ ... }} block: whitespace,
// identifiers/keywords, numbers, strings and operators, until the
// closing "}}" is emitted.
func stateBlock(l *lexer) stateFn {
	for {
		r := l.peek()
		switch {
		case r == eof:
			// Input ended before the block's closing "}}". Not a
			// lexical error: the parser reports the missing close as
			// an unexpected end of stream, per spec.md section 7.
			return nil
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			l.next()
			l.ignore()
			continue
		case unicode.IsLetter(r) || r == '_':
			return stateLabelOrAction
		case unicode.IsDigit(r):
			return stateDigit
		case r == '"':
			return stateString
		}

		if strings.HasPrefix(l.input[l.pos:], "}}") {
			consumeLiteral(l, "}}")
			l.emitOperator(token.BlockClose)
			return stateStart
		}

		matched := false
		for _, sym := range twoCharOperators {
			if strings.HasPrefix(l.input[l.pos:], sym.lit) {
				consumeLiteral(l, sym.lit)
				l.emitOperator(sym.op)
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		switch r {
		case '!':
			// twoCharOperators already tried "!=" above, so reaching
			// here means a bare '!': the render! scope close marker.
			l.next()
			l.emitAction(token.End)
			continue
		case '&':
			return l.errorf("unexpected '&': did you mean '&&'?")
		}

		if op, ok := oneCharOperators[r]; ok {
			l.next()
			l.emitOperator(op)
			continue
		}

		return l.errorf("unexpected character %q", r)
	}
}

// stateLabelOrAction accumulates an identifier and decides whether it
// terminates as a Label, or—followed immediately by '!' not itself
// followed by '='—one of the let!/write!/render! action keywords.
func stateLabelOrAction(l *lexer) stateFn {
	for {
		r := l.peek()
		if unicode.IsDigit(r) {
			return l.errorf("digit not allowed inside identifier %q", l.value())
		}
		if !(unicode.IsLetter(r) || r == '_') {
			break
		}
		l.next()
	}

	if l.peek() == '!' {
		// Lookahead past the '!' to make sure it's not '!='.
		save := *l
		l.next() // consume '!'
		isNotEq := l.peek() == '='
		*l = save
		if !isNotEq {
			name := l.value()
			l.next() // consume the '!'
			switch name {
			case "let":
				l.emitAction(token.Let)
			case "write":
				l.emitAction(token.Write)
			case "render":
				l.emitAction(token.Render)
			default:
				return l.errorf("unknown action keyword %q!", name)
			}
			return stateBlock
		}
	}

	l.emit(token.Label)
	return stateBlock
}

// stateDigit accumulates a run of decimal digits into a NumberLiteral.
func stateDigit(l *lexer) stateFn {
	for {
		r := l.peek()
		if unicode.IsDigit(r) {
			l.next()
			continue
		}
		if unicode.IsLetter(r) || r == '_' {
			return l.errorf("letter not allowed inside number literal %q", l.value())
		}
		break
	}
	l.emit(token.NumberLiteral)
	return stateBlock
}

// stateString consumes a "..."-delimited string literal. A backslash
// escapes (passes through verbatim) whatever character follows it,
// including an embedded quote.
func stateString(l *lexer) stateFn {
	l.next() // consume opening quote
	l.ignore()

	var b strings.Builder
	for {
		r := l.next()
		switch r {
		case eof:
			return l.errorf("unterminated string literal")
		case '"':
			l.tokens = append(l.tokens, token.Token{
				Kind: token.StringLiteral,
				Text: b.String(),
				Loc:  l.startLoc,
			})
			l.ignore()
			return stateBlock
		case '\\':
			nr := l.next()
			if nr == eof {
				return l.errorf("unterminated string literal")
			}
			b.WriteRune(nr)
		default:
			b.WriteRune(r)
		}
	}
}
