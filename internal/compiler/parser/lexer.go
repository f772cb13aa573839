// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/compiler/position"
)

// List of keywords.
var keywords = map[string]Kind{
	"boolean": BOOLEAN,
	"class":   CLASS,
	"else":    ELSE,
	"false":   FALSE,
	"if":      IF,
	"int":     INT,
	"new":     NEW,
	"private": PRIVATE,
	"public":  PUBLIC,
	"return":  RETURN,
	"static":  STATIC,
	"this":    THIS,
	"true":    TRUE,
	"void":    VOID,
	"while":   WHILE,
}

// A stateFn represents each state the scanner can be in.
type stateFn func(*Lexer) stateFn

// A Lexer holds the state of the scanner.
type Lexer struct {
	name  string        // Name of program.
	input *bufio.Reader // Source program
	state stateFn       // Current state function of the lexer.

	// The "read cursor" in the input.
	rune  rune // The current rune.
	width int  // Width in bytes.
	line  int  // The line position of the current rune.
	col   int  // The column position of the current rune.

	// The currently being lexed token.
	startcol int             // Starting column of the current token.
	text     strings.Builder // the text of the current token

	tokens chan Token // Output channel for tokens emitted.
}

// NewLexer creates a new scanner type that reads the input provided.
func NewLexer(name string, input io.Reader) *Lexer {
	l := &Lexer{
		name:   name,
		input:  bufio.NewReader(input),
		state:  lexProg,
		tokens: make(chan Token, 2),
	}
	return l
}

// NextToken returns the next token in the input.  When no token is available
// to be returned it executes the next action in the state machine.  Once EOF
// has been returned, every further call returns EOF again.
func (l *Lexer) NextToken() Token {
	for {
		select {
		case tok := <-l.tokens:
			return tok
		default:
			if l.state == nil {
				return Token{Kind: EOF, Pos: l.pos()}
			}
			l.state = l.state(l)
		}
	}
}

func (l *Lexer) pos() position.Position {
	return position.Position{Filename: l.name, Line: l.line, Startcol: l.startcol, Endcol: l.col - 1}
}

// emit passes a token to the client.
func (l *Lexer) emit(kind Kind) {
	pos := l.pos()
	glog.V(2).Infof("Emitting %v spelled %q at %v", kind, l.text.String(), pos)
	l.tokens <- Token{kind, l.text.String(), pos}
	// Reset the current token
	l.text.Reset()
	l.startcol = l.col
}

// Internal end of file value.
const eof rune = -1

// next returns the next rune in the input.
func (l *Lexer) next() rune {
	var err error
	l.rune, l.width, err = l.input.ReadRune()
	if err != nil {
		if err != io.EOF {
			glog.Info(err)
		}
		l.width = 1
		l.rune = eof
	}
	return l.rune
}

// backup indicates that we haven't yet dealt with the next rune. Use when
// terminating tokens on unknown runes.
func (l *Lexer) backup() {
	l.width = 0
	if l.rune == eof {
		return
	}
	if err := l.input.UnreadRune(); err != nil {
		glog.Info(err)
	}
}

// stepCursor moves the read cursor.
func (l *Lexer) stepCursor() {
	if l.rune == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col += l.width
	}
}

// accept accepts the current rune and its position into the current token.
func (l *Lexer) accept() {
	l.text.WriteRune(l.rune)
	l.stepCursor()
}

// skip does not accept the current rune into the current token's text, but
// does accept its position into the token. Use only at the start or end of a
// token.
func (l *Lexer) skip() {
	l.stepCursor()
}

// ignore skips over the current rune, removing it from the text of the token,
// and resetting the start position of the current token. Use only between
// tokens.
func (l *Lexer) ignore() {
	l.stepCursor()
	l.startcol = l.col
}

// errorf returns an error token and resets the scanner.
func (l *Lexer) errorf(format string, args ...interface{}) stateFn {
	l.tokens <- Token{
		Kind:     INVALID,
		Spelling: fmt.Sprintf(format, args...),
		Pos:      l.pos(),
	}
	// Reset the current token
	l.text.Reset()
	l.startcol = l.col
	return lexProg
}

// single accepts the current rune as a one character token.
func (l *Lexer) single(kind Kind) {
	l.accept()
	l.emit(kind)
}

// pair accepts the current rune, and then either the rune second to make the
// token two, or nothing to make the token one.
func (l *Lexer) pair(second rune, two, one Kind) {
	l.accept()
	if l.next() == second {
		l.accept()
		l.emit(two)
		return
	}
	l.backup()
	l.emit(one)
}

// State functions.

// lexProg starts lexing a program.
func lexProg(l *Lexer) stateFn {
	switch r := l.next(); {
	case isSpace(r):
		l.ignore()
	case r == '{':
		l.single(LCURLY)
	case r == '}':
		l.single(RCURLY)
	case r == '(':
		l.single(LPAREN)
	case r == ')':
		l.single(RPAREN)
	case r == '[':
		l.single(LSQUARE)
	case r == ']':
		l.single(RSQUARE)
	case r == ';':
		l.single(SEMICOLON)
	case r == ',':
		l.single(COMMA)
	case r == '.':
		l.single(DOT)
	case r == '+':
		l.single(PLUS)
	case r == '-':
		l.single(MINUS)
	case r == '*':
		l.single(MUL)
	case r == '=':
		l.pair('=', EQ, ASSIGN)
	case r == '<':
		l.pair('=', LE, LT)
	case r == '>':
		l.pair('=', GE, GT)
	case r == '!':
		l.pair('=', NE, NOT)
	case r == '&':
		l.accept()
		if l.next() != '&' {
			l.backup()
			return l.errorf("Unexpected input: %q", r)
		}
		l.accept()
		l.emit(AND)
	case r == '|':
		l.accept()
		if l.next() != '|' {
			l.backup()
			return l.errorf("Unexpected input: %q", r)
		}
		l.accept()
		l.emit(OR)
	case r == '/':
		l.accept()
		switch l.next() {
		case '/':
			l.text.Reset()
			l.ignore()
			return lexLineComment
		case '*':
			l.text.Reset()
			l.ignore()
			return lexBlockComment
		default:
			l.backup()
			l.emit(DIV)
		}
	case isDigit(r):
		l.backup()
		return lexNumeric
	case isAlpha(r):
		return lexIdentifier
	case r == eof:
		l.skip()
		l.emit(EOF)
		// Stop the machine, we're done.
		return nil
	default:
		l.accept()
		return l.errorf("Unexpected input: %q", r)
	}
	return lexProg
}

// Lex a comment that runs to the end of the line.
func lexLineComment(l *Lexer) stateFn {
Loop:
	for {
		switch l.next() {
		case '\n':
			l.ignore()
			break Loop
		case eof:
			l.backup()
			break Loop
		default:
			l.ignore()
		}
	}
	return lexProg
}

// Lex a comment that runs to the next "*/".
func lexBlockComment(l *Lexer) stateFn {
	star := false
	for {
		switch r := l.next(); {
		case r == eof:
			l.backup()
			return l.errorf("Unterminated comment")
		case r == '/' && star:
			l.ignore()
			return lexProg
		default:
			star = r == '*'
			l.ignore()
		}
	}
}

// Lex a decimal integer constant.
func lexNumeric(l *Lexer) stateFn {
	r := l.next()
	for isDigit(r) {
		l.accept()
		r = l.next()
	}
	l.backup()
	l.emit(NUM)
	return lexProg
}

// Lex an identifier, or keyword.
func lexIdentifier(l *Lexer) stateFn {
	l.accept()
Loop:
	for {
		switch r := l.next(); {
		case isAlnum(r) || r == '_':
			l.accept()
		default:
			l.backup()
			break Loop
		}
	}
	if r, ok := keywords[l.text.String()]; ok {
		l.emit(r)
	} else {
		l.emit(ID)
	}
	return lexProg
}

// Helper predicates.

// isAlpha reports whether r is an ASCII letter.
func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isDigit reports whether r is a decimal digit.
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isAlnum reports whether r is an alphanumeric character.
func isAlnum(r rune) bool {
	return isAlpha(r) || isDigit(r)
}

// isSpace reports whether r is whitespace.
func isSpace(r rune) bool {
	return r != eof && unicode.IsSpace(r)
}
