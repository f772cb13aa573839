// Copyright 2017 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"fmt"
	"strings"

	"github.com/google/minijava/internal/compiler/ast"
)

// Sexp is for converting program syntax trees into typed s-expression for printing
type Sexp struct {
	output strings.Builder // Accumulator for the result

	EmitTypes bool

	col  int // column to indent current line to
	line string
}

func (s *Sexp) indent() {
	s.col += 2
}

func (s *Sexp) outdent() {
	s.col -= 2
}

func (s *Sexp) prefix() string {
	return strings.Repeat(" ", s.col)
}

func (s *Sexp) emit(str string) {
	s.line += str
}

func (s *Sexp) newline() {
	if s.line != "" {
		s.output.WriteString(s.prefix() + s.line)
	}
	s.output.WriteString("\n")
	s.line = ""
}

func modifiers(private, static bool) string {
	var r string
	if private {
		r += "private "
	}
	if static {
		r += "static "
	}
	return r
}

// VisitBefore implements the astNode Visitor interface.
func (s *Sexp) VisitBefore(n ast.Node) (ast.Visitor, ast.Node) {
	s.emit(fmt.Sprintf("( ;;%T ", n))
	if e, ok := n.(ast.Expr); ok && s.EmitTypes {
		s.emit(fmt.Sprintf("<%s> ", e.Type()))
	}
	if p := n.Pos(); p != nil {
		s.emit(fmt.Sprintf("@ %s", p))
	}
	s.newline()
	s.indent()
	switch v := n.(type) {
	case *ast.Package:
		if v.Entry != nil {
			s.emit("entry " + v.Entry.QualifiedName())
		}

	case *ast.ClassDecl:
		s.emit("class " + v.Name)

	case *ast.FieldDecl:
		s.emit(fmt.Sprintf("%s%s %s", modifiers(v.IsPrivate, v.IsStatic), v.Type, v.Name))

	case *ast.MethodDecl:
		s.emit(fmt.Sprintf("%s%s %s", modifiers(v.IsPrivate, v.IsStatic), v.Type, v.Name))

	case *ast.ParamDecl:
		s.emit(fmt.Sprintf("%s %s", v.Type, v.Name))

	case *ast.LocalDecl:
		s.emit(fmt.Sprintf("%s %s", v.Type, v.Name))

	case *ast.UnaryExpr:
		s.emit(v.Op.String())

	case *ast.BinaryExpr:
		s.emit(v.Op.String())

	case *ast.IntLit:
		s.emit(v.Spelling)

	case *ast.BoolLit:
		s.emit(fmt.Sprintf("%t", v.Value))

	case *ast.NewObjectExpr:
		s.emit("new " + v.ClassName)

	case *ast.NewArrayExpr:
		s.emit(fmt.Sprintf("new %s[]", v.Elem))

	case *ast.IdRef:
		s.emit("\"" + v.Name + "\"")

	case *ast.QualifiedRef:
		s.emit("." + v.Name)

	case *ast.ThisRef:
		s.emit("this")

	case *ast.BlockStmt, *ast.VarDeclStmt, *ast.AssignStmt, *ast.CallStmt, *ast.IfStmt, *ast.WhileStmt, *ast.CallExpr, *ast.IndexedRef: // normal walk

	default:
		panic(fmt.Sprintf("sexp found undefined type %T", n))
	}
	if s.line != "" {
		s.newline()
	}
	return s, n
}

// VisitAfter implements the astNode Visitor interface.
func (s *Sexp) VisitAfter(node ast.Node) ast.Node {
	s.outdent()
	s.emit(")")
	s.newline()
	return node
}

// Dump begins the dumping of the syntax tree, returning the s-expression as a single string
func (s *Sexp) Dump(n ast.Node) string {
	ast.Walk(s, n)
	return s.output.String()
}
