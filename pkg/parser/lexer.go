package parser

import (
	"fmt"
	"unicode/utf8"

	"github.com/hydrokit/flowexpr/pkg/types"
)

const eof = -1

// Lexer converts an expression into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all
// subsequent calls. On a lexical error it returns a TokenError token and
// records the error, retrievable via the Error method.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// Check for two-character symbols first (e.g. ==, <=, **)
	if rts := lookupSymbol2(ch); rts != nil {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				return l.newToken(rt.tt)
			}
		}
	}

	// Check for single-character symbols
	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}

	// Number literals, including a leading decimal point (.5)
	if isDigit(ch) {
		l.backup()
		return l.scanNumber()
	}
	if ch == '.' {
		if l.accept(isDigit) {
			l.backup()
			l.backup()
			return l.scanNumber()
		}
		return l.error(types.ErrInvalidCharacter, "Unexpected character '.'")
	}

	// Variable references and function names
	if isIdentStart(ch) {
		l.backup()
		return l.scanIdent()
	}

	return l.error(types.ErrInvalidCharacter, fmt.Sprintf("Unexpected character %q", ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// scanNumber reads a number literal from the current position.
// Format: [0-9]*(\.[0-9]*)*([eE][+-]?[0-9]*)?
//
// The scan is deliberately permissive: anything that looks like a number is
// consumed as a single token, and the parser rejects malformed values such
// as "1.2.3" or "1.5e" when strconv fails on the full token text.
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)

	for l.acceptRune('.') {
		l.acceptAll(isDigit)
	}

	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		l.acceptAll(isDigit)
	}

	return l.newToken(TokenNumber)
}

// scanIdent reads a variable reference or function name from the current
// position. Identifiers start with a letter or underscore and may contain
// letters, digits, and underscores. Dots join identifier segments into a
// hierarchical reference (data.rain.mm); every dot must be followed by the
// start of a new segment.
func (l *Lexer) scanIdent() Token {
	for {
		l.acceptAll(isIdentPart)

		if !l.acceptRune('.') {
			break
		}

		// A dot must introduce a new segment.
		if !l.accept(isIdentStart) {
			if l.accept(func(r rune) bool { return r == '.' }) {
				l.backup()
				return l.error(types.ErrMalformedReference, "Consecutive dots in reference")
			}
			return l.error(types.ErrMalformedReference, "Expected name after '.' in reference")
		}
	}

	return l.newToken(TokenIdent)
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = &types.Error{
		Code:     code,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
