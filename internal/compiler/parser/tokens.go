// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"fmt"

	"github.com/google/minijava/internal/compiler/position"
)

// Kind enumerates the types of lexical tokens in a miniJava program.
type Kind int

const (
	INVALID Kind = iota // An invalid token; the spelling holds the error.
	EOF

	ID
	NUM

	// Keywords.
	CLASS
	PUBLIC
	PRIVATE
	STATIC
	VOID
	INT
	BOOLEAN
	THIS
	IF
	ELSE
	WHILE
	RETURN
	NEW
	TRUE
	FALSE

	// Punctuation.
	LCURLY
	RCURLY
	LPAREN
	RPAREN
	LSQUARE
	RSQUARE
	SEMICOLON
	COMMA
	DOT

	// Operators.
	ASSIGN
	OR
	AND
	EQ
	NE
	LT
	LE
	GT
	GE
	PLUS
	MINUS
	MUL
	DIV
	NOT
)

var kindNames = map[Kind]string{
	INVALID:   "INVALID",
	EOF:       "EOF",
	ID:        "ID",
	NUM:       "NUM",
	CLASS:     "CLASS",
	PUBLIC:    "PUBLIC",
	PRIVATE:   "PRIVATE",
	STATIC:    "STATIC",
	VOID:      "VOID",
	INT:       "INT",
	BOOLEAN:   "BOOLEAN",
	THIS:      "THIS",
	IF:        "IF",
	ELSE:      "ELSE",
	WHILE:     "WHILE",
	RETURN:    "RETURN",
	NEW:       "NEW",
	TRUE:      "TRUE",
	FALSE:     "FALSE",
	LCURLY:    "LCURLY",
	RCURLY:    "RCURLY",
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LSQUARE:   "LSQUARE",
	RSQUARE:   "RSQUARE",
	SEMICOLON: "SEMICOLON",
	COMMA:     "COMMA",
	DOT:       "DOT",
	ASSIGN:    "ASSIGN",
	OR:        "OR",
	AND:       "AND",
	EQ:        "EQ",
	NE:        "NE",
	LT:        "LT",
	LE:        "LE",
	GT:        "GT",
	GE:        "GE",
	PLUS:      "PLUS",
	MINUS:     "MINUS",
	MUL:       "MUL",
	DIV:       "DIV",
	NOT:       "NOT",
}

// String returns a readable name of the token Kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("token%d", int(k))
}

// Token describes a lexed Token from the input, containing its type, the
// original text of the Token, and its position in the input.
type Token struct {
	Kind     Kind
	Spelling string
	Pos      position.Position
}

// String returns a printable form of a Token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q,%s)", t.Kind.String(), t.Spelling, t.Pos)
}
