// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package ast defines the declaration tree of a miniJava program: classes,
// members, statements, expressions and references.  The parser builds it,
// the checker annotates it with bindings and types, and the code generator
// annotates it with runtime entities.
package ast

import (
	"github.com/google/minijava/internal/compiler/position"
	"github.com/google/minijava/internal/compiler/symbol"
	"github.com/google/minijava/internal/compiler/types"
)

// Node is implemented by every element of the tree.
type Node interface {
	Pos() *position.Position // Returns the position of the node from the original source
}

// Decl is a declaration: a class, field, method, parameter or local
// variable.
type Decl interface {
	Node
	DeclName() string
	DeclType() types.Type
	declNode()
}

// Stmt is a statement in a method body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.  Every expression carries the type assigned to it
// by the checker.
type Expr interface {
	Node
	Type() types.Type
	SetType(types.Type)
	exprNode()
}

// Ref is an expression that names storage or a member: an identifier,
// this, a qualified member or an indexed array element.
type Ref interface {
	Expr
	refNode()
}

// typed holds the type annotation of an expression.  Until the checker runs,
// the type is Error.
type typed struct {
	typ types.Type
}

func (t *typed) Type() types.Type {
	if t.typ == nil {
		return types.Error
	}
	return t.typ
}

func (t *typed) SetType(typ types.Type) {
	t.typ = typ
}

// Package is the root of the tree: all classes of one source file.
type Package struct {
	Filename string
	Classes  []*ClassDecl

	Scope   *symbol.Table // Global class names, set by the checker.
	Entry   *MethodDecl   // The program entry point, set by the checker.
	Println *MethodDecl   // The bootstrap output method, set by the checker.
}

func (p *Package) Pos() *position.Position {
	if p.Filename == "" {
		return nil
	}
	return &position.Position{Filename: p.Filename}
}

// Declarations.

type ClassDecl struct {
	P       position.Position
	Name    string
	Fields  []*FieldDecl
	Methods []*MethodDecl

	Bootstrap bool          // Predefined by the compiler rather than the program.
	Members   *symbol.Table // Field and method names, set by the checker.
	Entity    *RuntimeEntity
}

func (d *ClassDecl) Pos() *position.Position { return &d.P }
func (d *ClassDecl) DeclName() string        { return d.Name }
func (d *ClassDecl) DeclType() types.Type    { return types.Class(d.Name) }

// InstanceMethods returns the non-static methods in declaration order.  A
// method's position in this list is its index in the class descriptor.
func (d *ClassDecl) InstanceMethods() []*MethodDecl {
	var r []*MethodDecl
	for _, m := range d.Methods {
		if !m.IsStatic {
			r = append(r, m)
		}
	}
	return r
}

type FieldDecl struct {
	P         position.Position
	Name      string
	Type      types.Type
	IsPrivate bool
	IsStatic  bool

	Class  *ClassDecl // Declaring class, set by the checker.
	Entity *RuntimeEntity
}

func (d *FieldDecl) Pos() *position.Position { return &d.P }
func (d *FieldDecl) DeclName() string        { return d.Name }
func (d *FieldDecl) DeclType() types.Type    { return d.Type }

type MethodDecl struct {
	P         position.Position
	Name      string
	Type      types.Type // Return type.
	IsPrivate bool
	IsStatic  bool
	Params    []*ParamDecl
	Body      []Stmt
	Return    Expr // Optional.

	Class     *ClassDecl    // Declaring class, set by the checker.
	Scope     *symbol.Table // Parameters and locals, set by the checker.
	IsEntry   bool
	IsPrintln bool
	Entity    *RuntimeEntity
}

func (d *MethodDecl) Pos() *position.Position { return &d.P }
func (d *MethodDecl) DeclName() string        { return d.Name }
func (d *MethodDecl) DeclType() types.Type    { return d.Type }

// QualifiedName returns Class.method, or the bare name if the class is not
// yet known.
func (d *MethodDecl) QualifiedName() string {
	if d.Class == nil {
		return d.Name
	}
	return d.Class.Name + "." + d.Name
}

type ParamDecl struct {
	P    position.Position
	Name string
	Type types.Type

	Entity *RuntimeEntity
}

func (d *ParamDecl) Pos() *position.Position { return &d.P }
func (d *ParamDecl) DeclName() string        { return d.Name }
func (d *ParamDecl) DeclType() types.Type    { return d.Type }

type LocalDecl struct {
	P    position.Position
	Name string
	Type types.Type

	Entity *RuntimeEntity
}

func (d *LocalDecl) Pos() *position.Position { return &d.P }
func (d *LocalDecl) DeclName() string        { return d.Name }
func (d *LocalDecl) DeclType() types.Type    { return d.Type }

func (*ClassDecl) declNode()  {}
func (*FieldDecl) declNode()  {}
func (*MethodDecl) declNode() {}
func (*ParamDecl) declNode()  {}
func (*LocalDecl) declNode()  {}

// Statements.

type BlockStmt struct {
	P     position.Position
	Stmts []Stmt
}

func (s *BlockStmt) Pos() *position.Position { return &s.P }

// VarDeclStmt declares a local variable and initialises it.
type VarDeclStmt struct {
	Decl *LocalDecl
	Init Expr
}

func (s *VarDeclStmt) Pos() *position.Position { return position.Merge(&s.Decl.P, s.Init.Pos()) }

type AssignStmt struct {
	Lhs Ref
	Rhs Expr
}

func (s *AssignStmt) Pos() *position.Position { return position.Merge(s.Lhs.Pos(), s.Rhs.Pos()) }

// CallStmt is a method call evaluated for its effect.
type CallStmt struct {
	Call *CallExpr
}

func (s *CallStmt) Pos() *position.Position { return s.Call.Pos() }

type IfStmt struct {
	P    position.Position
	Cond Expr
	Then Stmt
	Else Stmt // Optional.
}

func (s *IfStmt) Pos() *position.Position { return &s.P }

type WhileStmt struct {
	P    position.Position
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) Pos() *position.Position { return &s.P }

func (*BlockStmt) stmtNode()   {}
func (*VarDeclStmt) stmtNode() {}
func (*AssignStmt) stmtNode()  {}
func (*CallStmt) stmtNode()    {}
func (*IfStmt) stmtNode()      {}
func (*WhileStmt) stmtNode()   {}

// Expressions.

type UnaryExpr struct {
	P    position.Position
	Op   Operator
	Expr Expr
	typed
}

func (e *UnaryExpr) Pos() *position.Position { return position.Merge(&e.P, e.Expr.Pos()) }

type BinaryExpr struct {
	Op       Operator
	Lhs, Rhs Expr
	typed
}

func (e *BinaryExpr) Pos() *position.Position { return position.Merge(e.Lhs.Pos(), e.Rhs.Pos()) }

// IntLit holds the spelling of an integer literal.  The checker verifies
// that it fits in a machine word.
type IntLit struct {
	P        position.Position
	Spelling string
	typed
}

func (e *IntLit) Pos() *position.Position { return &e.P }

type BoolLit struct {
	P     position.Position
	Value bool
	typed
}

func (e *BoolLit) Pos() *position.Position { return &e.P }

// NewObjectExpr is `new C()`.
type NewObjectExpr struct {
	P         position.Position
	ClassName string

	Class *ClassDecl // set by the checker
	typed
}

func (e *NewObjectExpr) Pos() *position.Position { return &e.P }

// NewArrayExpr is `new int[n]` or `new C[n]`.
type NewArrayExpr struct {
	P    position.Position
	Elem types.Type
	Size Expr
	typed
}

func (e *NewArrayExpr) Pos() *position.Position { return position.Merge(&e.P, e.Size.Pos()) }

// CallExpr calls the method named by Method.
type CallExpr struct {
	Method Ref
	Args   []Expr
	End    position.Position // closing parenthesis

	Decl *MethodDecl // set by the checker
	typed
}

func (e *CallExpr) Pos() *position.Position { return position.Merge(e.Method.Pos(), &e.End) }

func (*UnaryExpr) exprNode()     {}
func (*BinaryExpr) exprNode()    {}
func (*IntLit) exprNode()        {}
func (*BoolLit) exprNode()       {}
func (*NewObjectExpr) exprNode() {}
func (*NewArrayExpr) exprNode()  {}
func (*CallExpr) exprNode()      {}

// References.

type ThisRef struct {
	P position.Position

	Class *ClassDecl // set by the checker
	typed
}

func (r *ThisRef) Pos() *position.Position { return &r.P }

// IdRef is a bare identifier.  It may bind to a local, a parameter, a member
// of the enclosing class, or a class name.
type IdRef struct {
	P    position.Position
	Name string

	Decl Decl // set by the checker
	typed
}

func (r *IdRef) Pos() *position.Position { return &r.P }

// QualifiedRef is Base.Name.
type QualifiedRef struct {
	Base Ref
	P    position.Position // position of Name
	Name string

	Decl     Decl // member binding, set by the checker
	IsLength bool // Name is the length of an array
	typed
}

func (r *QualifiedRef) Pos() *position.Position { return position.Merge(r.Base.Pos(), &r.P) }

// IndexedRef is Base[Index].
type IndexedRef struct {
	Base  Ref
	Index Expr
	typed
}

func (r *IndexedRef) Pos() *position.Position { return position.Merge(r.Base.Pos(), r.Index.Pos()) }

func (*ThisRef) exprNode()      {}
func (*IdRef) exprNode()        {}
func (*QualifiedRef) exprNode() {}
func (*IndexedRef) exprNode()   {}

func (*ThisRef) refNode()      {}
func (*IdRef) refNode()        {}
func (*QualifiedRef) refNode() {}
func (*IndexedRef) refNode()   {}

// Operator is a unary or binary operator.
type Operator int

const (
	Or Operator = iota
	And
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Plus
	Minus
	Mul
	Div
	Not
)

var operatorNames = [...]string{"||", "&&", "==", "!=", "<", "<=", ">", ">=", "+", "-", "*", "/", "!"}

func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return "?"
}
