// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package parser turns miniJava source text into a declaration tree.
package parser

import (
	"io"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/compiler/ast"
	"github.com/google/minijava/internal/compiler/errors"
	"github.com/google/minijava/internal/compiler/position"
	"github.com/google/minijava/internal/compiler/types"
)

// bailout is raised to abandon the parse after the first syntax error.
type bailout struct{}

type parser struct {
	name   string
	l      *Lexer
	tok    Token   // current token
	ahead  []Token // tokens read past the current one
	errors errors.ErrorList
}

// Parse reads a program from input and returns its declaration tree.  The
// returned error is an errors.ErrorList.
func Parse(name string, input io.Reader) (pkg *ast.Package, err error) {
	p := &parser{name: name, l: NewLexer(name, input)}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			pkg, err = nil, p.errors
		}
	}()
	p.advance()
	pkg = p.parseProgram()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return pkg, nil
}

// advance moves to the next token.  Invalid tokens from the lexer are syntax
// errors.
func (p *parser) advance() {
	if len(p.ahead) > 0 {
		p.tok, p.ahead = p.ahead[0], p.ahead[1:]
	} else {
		p.tok = p.l.NextToken()
	}
	glog.V(2).Infof("token %s", p.tok)
	if p.tok.Kind == INVALID {
		p.errorAt(p.tok.Pos, p.tok.Spelling)
	}
}

// peek returns the token n places after the current one.
func (p *parser) peek(n int) Token {
	for len(p.ahead) < n {
		p.ahead = append(p.ahead, p.l.NextToken())
	}
	return p.ahead[n-1]
}

func (p *parser) errorAt(pos position.Position, msg string) {
	p.errors.Add(&pos, msg)
	panic(bailout{})
}

func (p *parser) errorf(format string, args ...interface{}) {
	pos := p.tok.Pos
	p.errors.Addf(&pos, format, args...)
	panic(bailout{})
}

// accept consumes the current token if it is of the expected kind.
func (p *parser) accept(k Kind) (Token, bool) {
	t := p.tok
	if t.Kind != k {
		return t, false
	}
	p.advance()
	return t, true
}

// expect consumes a token of the expected kind or reports a syntax error.
func (p *parser) expect(k Kind) Token {
	t, ok := p.accept(k)
	if !ok {
		p.errorf("syntax error: expecting %s, found %s", expected(k), describe(t))
	}
	return t
}

// expected names a token kind the way it is written in source.
func expected(k Kind) string {
	switch k {
	case ID:
		return "identifier"
	case NUM:
		return "number"
	case EOF:
		return "end of file"
	}
	for word, kw := range keywords {
		if kw == k {
			return "`" + word + "'"
		}
	}
	if s, ok := punctuation[k]; ok {
		return "`" + s + "'"
	}
	return k.String()
}

var punctuation = map[Kind]string{
	LCURLY: "{", RCURLY: "}", LPAREN: "(", RPAREN: ")", LSQUARE: "[", RSQUARE: "]",
	SEMICOLON: ";", COMMA: ",", DOT: ".", ASSIGN: "=",
}

func describe(t Token) string {
	switch t.Kind {
	case EOF:
		return "end of file"
	case ID, NUM:
		return t.Kind.String() + " `" + t.Spelling + "'"
	}
	return "`" + t.Spelling + "'"
}

// Program ::= ClassDecl* EOF
func (p *parser) parseProgram() *ast.Package {
	pkg := &ast.Package{Filename: p.name}
	for p.tok.Kind == CLASS {
		pkg.Classes = append(pkg.Classes, p.parseClass())
	}
	if p.tok.Kind != EOF {
		p.errorf("syntax error: expecting class declaration, found %s", describe(p.tok))
	}
	return pkg
}

// ClassDecl ::= class id { (FieldDecl | MethodDecl)* }
func (p *parser) parseClass() *ast.ClassDecl {
	p.expect(CLASS)
	name := p.expect(ID)
	c := &ast.ClassDecl{P: name.Pos, Name: name.Spelling}
	p.expect(LCURLY)
	for p.tok.Kind != RCURLY {
		p.parseMember(c)
	}
	p.expect(RCURLY)
	return c
}

// Member ::= (public|private)? static? (Type|void) id (; | MethodRest)
func (p *parser) parseMember(c *ast.ClassDecl) {
	private := false
	switch p.tok.Kind {
	case PUBLIC:
		p.advance()
	case PRIVATE:
		private = true
		p.advance()
	}
	_, static := p.accept(STATIC)
	var typ types.Type
	if _, ok := p.accept(VOID); ok {
		typ = types.Void
	} else {
		typ = p.parseType()
	}
	name := p.expect(ID)
	if _, ok := p.accept(SEMICOLON); ok {
		c.Fields = append(c.Fields, &ast.FieldDecl{
			P: name.Pos, Name: name.Spelling, Type: typ,
			IsPrivate: private, IsStatic: static,
		})
		return
	}
	m := &ast.MethodDecl{
		P: name.Pos, Name: name.Spelling, Type: typ,
		IsPrivate: private, IsStatic: static,
	}
	p.expect(LPAREN)
	if p.tok.Kind != RPAREN {
		for {
			pt := p.parseType()
			pn := p.expect(ID)
			m.Params = append(m.Params, &ast.ParamDecl{P: pn.Pos, Name: pn.Spelling, Type: pt})
			if _, ok := p.accept(COMMA); !ok {
				break
			}
		}
	}
	p.expect(RPAREN)
	p.expect(LCURLY)
	for p.tok.Kind != RCURLY && p.tok.Kind != RETURN {
		m.Body = append(m.Body, p.parseStatement())
	}
	if _, ok := p.accept(RETURN); ok {
		if p.tok.Kind != SEMICOLON {
			m.Return = p.parseExpr()
		}
		p.expect(SEMICOLON)
		if p.tok.Kind != RCURLY {
			p.errorf("syntax error: return must be the last statement of a method")
		}
	}
	p.expect(RCURLY)
	c.Methods = append(c.Methods, m)
}

// Type ::= int | boolean | id | int[] | id[]
func (p *parser) parseType() types.Type {
	var t types.Type
	switch p.tok.Kind {
	case INT:
		t = types.Int
	case BOOLEAN:
		p.advance()
		return types.Boolean
	case ID:
		t = types.Class(p.tok.Spelling)
	default:
		p.errorf("syntax error: expecting type, found %s", describe(p.tok))
	}
	p.advance()
	if _, ok := p.accept(LSQUARE); ok {
		p.expect(RSQUARE)
		t = types.Array(t)
	}
	return t
}

// startsVarDecl reports whether the statement at the current token begins
// with a type, which needs up to two tokens of lookahead to tell `C x`
// and `C[] x` from `c = e` and `c[i] = e`.
func (p *parser) startsVarDecl() bool {
	switch p.tok.Kind {
	case INT, BOOLEAN:
		return true
	case ID:
		switch p.peek(1).Kind {
		case ID:
			return true
		case LSQUARE:
			return p.peek(2).Kind == RSQUARE
		}
	}
	return false
}

func (p *parser) parseStatement() ast.Stmt {
	switch p.tok.Kind {
	case LCURLY:
		b := &ast.BlockStmt{P: p.tok.Pos}
		p.advance()
		for p.tok.Kind != RCURLY {
			b.Stmts = append(b.Stmts, p.parseStatement())
		}
		p.expect(RCURLY)
		return b

	case IF:
		s := &ast.IfStmt{P: p.tok.Pos}
		p.advance()
		p.expect(LPAREN)
		s.Cond = p.parseExpr()
		p.expect(RPAREN)
		s.Then = p.parseStatement()
		if _, ok := p.accept(ELSE); ok {
			s.Else = p.parseStatement()
		}
		return s

	case WHILE:
		s := &ast.WhileStmt{P: p.tok.Pos}
		p.advance()
		p.expect(LPAREN)
		s.Cond = p.parseExpr()
		p.expect(RPAREN)
		s.Body = p.parseStatement()
		return s

	case RETURN:
		p.errorf("syntax error: return must be the last statement of a method")
	}

	if p.startsVarDecl() {
		typ := p.parseType()
		name := p.expect(ID)
		p.expect(ASSIGN)
		s := &ast.VarDeclStmt{
			Decl: &ast.LocalDecl{P: name.Pos, Name: name.Spelling, Type: typ},
			Init: p.parseExpr(),
		}
		p.expect(SEMICOLON)
		return s
	}

	ref := p.parseReference()
	var s ast.Stmt
	switch p.tok.Kind {
	case ASSIGN:
		p.advance()
		s = &ast.AssignStmt{Lhs: ref, Rhs: p.parseExpr()}
	case LPAREN:
		s = &ast.CallStmt{Call: p.parseCall(ref)}
	default:
		p.errorf("syntax error: expecting `=' or `(', found %s", describe(p.tok))
	}
	p.expect(SEMICOLON)
	return s
}

// Reference ::= (id | this) ([ Expression ])? (. id ([ Expression ])?)*
func (p *parser) parseReference() ast.Ref {
	var r ast.Ref
	switch p.tok.Kind {
	case THIS:
		r = &ast.ThisRef{P: p.tok.Pos}
	case ID:
		r = &ast.IdRef{P: p.tok.Pos, Name: p.tok.Spelling}
	default:
		p.errorf("syntax error: expecting reference, found %s", describe(p.tok))
	}
	p.advance()
	r = p.parseIndex(r)
	for {
		if _, ok := p.accept(DOT); !ok {
			return r
		}
		name := p.expect(ID)
		r = p.parseIndex(&ast.QualifiedRef{Base: r, P: name.Pos, Name: name.Spelling})
	}
}

func (p *parser) parseIndex(r ast.Ref) ast.Ref {
	if _, ok := p.accept(LSQUARE); !ok {
		return r
	}
	r = &ast.IndexedRef{Base: r, Index: p.parseExpr()}
	p.expect(RSQUARE)
	return r
}

// parseCall parses an argument list following a method reference.
func (p *parser) parseCall(method ast.Ref) *ast.CallExpr {
	c := &ast.CallExpr{Method: method}
	p.expect(LPAREN)
	if p.tok.Kind != RPAREN {
		for {
			c.Args = append(c.Args, p.parseExpr())
			if _, ok := p.accept(COMMA); !ok {
				break
			}
		}
	}
	c.End = p.expect(RPAREN).Pos
	return c
}

// Binary operator precedence, lowest first.
var precedence = [][]Kind{
	{OR},
	{AND},
	{EQ, NE},
	{LT, LE, GT, GE},
	{PLUS, MINUS},
	{MUL, DIV},
}

var binaryOps = map[Kind]ast.Operator{
	OR:    ast.Or,
	AND:   ast.And,
	EQ:    ast.Eq,
	NE:    ast.Ne,
	LT:    ast.Lt,
	LE:    ast.Le,
	GT:    ast.Gt,
	GE:    ast.Ge,
	PLUS:  ast.Plus,
	MINUS: ast.Minus,
	MUL:   ast.Mul,
	DIV:   ast.Div,
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseBinary(0)
}

// parseBinary parses a left-associative chain of operators at the given
// precedence level.
func (p *parser) parseBinary(level int) ast.Expr {
	if level == len(precedence) {
		return p.parseUnary()
	}
	e := p.parseBinary(level + 1)
	for {
		found := false
		for _, k := range precedence[level] {
			if p.tok.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return e
		}
		op := binaryOps[p.tok.Kind]
		p.advance()
		e = &ast.BinaryExpr{Op: op, Lhs: e, Rhs: p.parseBinary(level + 1)}
	}
}

func (p *parser) parseUnary() ast.Expr {
	switch p.tok.Kind {
	case NOT:
		pos := p.tok.Pos
		p.advance()
		return &ast.UnaryExpr{P: pos, Op: ast.Not, Expr: p.parseUnary()}
	case MINUS:
		pos := p.tok.Pos
		p.advance()
		return &ast.UnaryExpr{P: pos, Op: ast.Minus, Expr: p.parseUnary()}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Expr {
	t := p.tok
	switch t.Kind {
	case NUM:
		p.advance()
		return &ast.IntLit{P: t.Pos, Spelling: t.Spelling}
	case TRUE, FALSE:
		p.advance()
		return &ast.BoolLit{P: t.Pos, Value: t.Kind == TRUE}
	case LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(RPAREN)
		return e
	case NEW:
		p.advance()
		return p.parseNew(t.Pos)
	case ID, THIS:
		r := p.parseReference()
		if p.tok.Kind == LPAREN {
			return p.parseCall(r)
		}
		return r
	}
	p.errorf("syntax error: expecting expression, found %s", describe(t))
	return nil
}

// New ::= new id ( ) | new int [ Expression ] | new id [ Expression ]
func (p *parser) parseNew(pos position.Position) ast.Expr {
	switch p.tok.Kind {
	case INT:
		p.advance()
		return p.parseArraySize(pos, types.Int)
	case ID:
		name := p.tok
		p.advance()
		if _, ok := p.accept(LPAREN); ok {
			end := p.expect(RPAREN)
			return &ast.NewObjectExpr{P: *position.Merge(&pos, &end.Pos), ClassName: name.Spelling}
		}
		return p.parseArraySize(pos, types.Class(name.Spelling))
	}
	p.errorf("syntax error: expecting class name or int after new, found %s", describe(p.tok))
	return nil
}

func (p *parser) parseArraySize(pos position.Position, elem types.Type) ast.Expr {
	p.expect(LSQUARE)
	e := &ast.NewArrayExpr{P: pos, Elem: elem, Size: p.parseExpr()}
	p.expect(RSQUARE)
	return e
}
