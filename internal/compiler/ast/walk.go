// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package ast

import "fmt"

// Visitor VisitBefore method is invoked for each node encountered by Walk.
// If the result Visitor v is not nil, Walk visits each of the children of that
// node with v.  VisitAfter is called on n at the end.
type Visitor interface {
	VisitBefore(n Node) (Visitor, Node)
	VisitAfter(n Node) Node
}

func walkstmts(v Visitor, list []Stmt) {
	for i, x := range list {
		list[i] = Walk(v, x).(Stmt)
	}
}

func walkexprs(v Visitor, list []Expr) {
	for i, x := range list {
		list[i] = Walk(v, x).(Expr)
	}
}

// Walk traverses (walks) an AST node with the provided Visitor v.  A visitor
// may replace a node with another of the same category.
func Walk(v Visitor, node Node) Node {
	// Returning nil from VisitBefore signals to Walk that the Visitor has
	// handled the children of this node.  VisitAfter will not be called.
	if v, node = v.VisitBefore(node); v == nil {
		return node
	}

	switch n := node.(type) {
	case *Package:
		for i, c := range n.Classes {
			n.Classes[i] = Walk(v, c).(*ClassDecl)
		}

	case *ClassDecl:
		for i, f := range n.Fields {
			n.Fields[i] = Walk(v, f).(*FieldDecl)
		}
		for i, m := range n.Methods {
			n.Methods[i] = Walk(v, m).(*MethodDecl)
		}

	case *MethodDecl:
		for i, p := range n.Params {
			n.Params[i] = Walk(v, p).(*ParamDecl)
		}
		walkstmts(v, n.Body)
		if n.Return != nil {
			n.Return = Walk(v, n.Return).(Expr)
		}

	case *BlockStmt:
		walkstmts(v, n.Stmts)

	case *VarDeclStmt:
		n.Decl = Walk(v, n.Decl).(*LocalDecl)
		n.Init = Walk(v, n.Init).(Expr)

	case *AssignStmt:
		n.Lhs = Walk(v, n.Lhs).(Ref)
		n.Rhs = Walk(v, n.Rhs).(Expr)

	case *CallStmt:
		n.Call = Walk(v, n.Call).(*CallExpr)

	case *IfStmt:
		n.Cond = Walk(v, n.Cond).(Expr)
		n.Then = Walk(v, n.Then).(Stmt)
		if n.Else != nil {
			n.Else = Walk(v, n.Else).(Stmt)
		}

	case *WhileStmt:
		n.Cond = Walk(v, n.Cond).(Expr)
		n.Body = Walk(v, n.Body).(Stmt)

	case *UnaryExpr:
		n.Expr = Walk(v, n.Expr).(Expr)

	case *BinaryExpr:
		n.Lhs = Walk(v, n.Lhs).(Expr)
		n.Rhs = Walk(v, n.Rhs).(Expr)

	case *NewArrayExpr:
		n.Size = Walk(v, n.Size).(Expr)

	case *CallExpr:
		n.Method = Walk(v, n.Method).(Ref)
		walkexprs(v, n.Args)

	case *QualifiedRef:
		n.Base = Walk(v, n.Base).(Ref)

	case *IndexedRef:
		n.Base = Walk(v, n.Base).(Ref)
		n.Index = Walk(v, n.Index).(Expr)

	case *FieldDecl, *ParamDecl, *LocalDecl, *IntLit, *BoolLit, *NewObjectExpr, *ThisRef, *IdRef:
		// These nodes are terminals, thus have no children to walk.

	default:
		panic(fmt.Sprintf("Walk: unexpected node type %T: %v", n, n))
	}

	node = v.VisitAfter(node)
	return node
}

// Inspect calls f for each node of the tree in depth-first order.  If f
// returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) VisitBefore(n Node) (Visitor, Node) {
	if f(n) {
		return f, n
	}
	return nil, n
}

func (f inspector) VisitAfter(n Node) Node {
	return n
}
