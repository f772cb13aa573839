// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package checker implements the semantic analysis of a miniJava program:
// it binds every name to its declaration, checks types, visibility and
// staticness, and finds the program entry point.
package checker

import (
	"fmt"
	"strconv"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/compiler/ast"
	"github.com/google/minijava/internal/compiler/errors"
	"github.com/google/minijava/internal/compiler/position"
	"github.com/google/minijava/internal/compiler/symbol"
	"github.com/google/minijava/internal/compiler/types"
)

// checker holds data for a semantic checker
type checker struct {
	pkg    *ast.Package
	global *symbol.Table // class names

	errors errors.ErrorList
}

// context is the position of the walk: the class and method being checked,
// and the method's scope table.
type context struct {
	class  *ast.ClassDecl
	method *ast.MethodDecl
	scope  *symbol.Table
	static bool

	declaring *ast.LocalDecl // local whose initialiser is being checked
}

// Check performs a semantic check of the program.  The predefined classes
// are added to the front of pkg.Classes, and every reference, expression and
// member in the tree is annotated.  The returned error is an
// errors.ErrorList, or nil if the program is semantically valid.
func Check(pkg *ast.Package) error {
	if !hasBootstrap(pkg) {
		pkg.Classes = append(bootstrapClasses(), pkg.Classes...)
	}
	c := &checker{pkg: pkg, global: symbol.NewTable("global", nil)}
	pkg.Scope = c.global

	c.declareClasses()
	c.resolveMemberTypes()
	c.findEntry()
	for _, cd := range pkg.Classes {
		for _, md := range cd.Methods {
			c.checkMethod(cd, md)
		}
	}
	if len(c.errors) > 0 {
		return c.errors
	}
	return nil
}

func (c *checker) errorf(pos *position.Position, format string, args ...interface{}) {
	glog.V(2).Infof("error at %s: "+format, append([]interface{}{pos}, args...)...)
	c.errors.Addf(pos, format, args...)
}

// bind adds a declaration to a table, reporting a redefinition.
func (c *checker) bind(t *symbol.Table, d ast.Decl, kind symbol.Kind) *symbol.Symbol {
	sym := symbol.NewSymbol(d.DeclName(), kind, d.Pos())
	sym.Type = d.DeclType()
	sym.Decl = d
	if alt := t.Bind(sym); alt != nil {
		c.errorf(d.Pos(), "Redeclaration of %s `%s' previously declared at %s", alt.Kind, d.DeclName(), alt.Pos)
		return nil
	}
	return sym
}

// declareClasses enters every class name into the global table, and every
// member into its class's table, so that later references resolve
// regardless of declaration order.
func (c *checker) declareClasses() {
	for _, cd := range c.pkg.Classes {
		c.bind(c.global, cd, symbol.ClassSymbol)
	}
	for _, cd := range c.pkg.Classes {
		cd.Members = symbol.NewTable(cd.Name, c.global)
		for _, fd := range cd.Fields {
			fd.Class = cd
			c.bind(cd.Members, fd, symbol.FieldSymbol)
		}
		for _, md := range cd.Methods {
			md.Class = cd
			c.bind(cd.Members, md, symbol.MethodSymbol)
			if cd.Bootstrap && cd.Name == PrintStreamClass && md.Name == PrintlnMethod {
				md.IsPrintln = true
				c.pkg.Println = md
			}
		}
	}
}

// lookupClass returns the declaration of the named class, or nil.
func (c *checker) lookupClass(name string) *ast.ClassDecl {
	sym := c.global.LookupKind(name, symbol.ClassSymbol)
	if sym == nil {
		return nil
	}
	cd, _ := sym.Decl.(*ast.ClassDecl)
	return cd
}

// resolveType checks that every class named by t exists.  It returns t, or
// Error if a class is undeclared.
func (c *checker) resolveType(t types.Type, pos *position.Position) types.Type {
	switch t := t.(type) {
	case *types.ClassType:
		if c.lookupClass(t.Name) == nil {
			c.errorf(pos, "Undeclared type `%s'", t.Name)
			return types.Error
		}
	case *types.ArrayType:
		if types.IsError(c.resolveType(t.Elem, pos)) {
			return types.Error
		}
	}
	return t
}

// resolveVarType resolves the type of a field, parameter or local, none of
// which may be void.
func (c *checker) resolveVarType(t types.Type, what, name string, pos *position.Position) types.Type {
	if t.Kind() == types.VoidKind {
		c.errorf(pos, "%s `%s' cannot have type void", what, name)
		return types.Error
	}
	return c.resolveType(t, pos)
}

func (c *checker) resolveMemberTypes() {
	for _, cd := range c.pkg.Classes {
		for _, fd := range cd.Fields {
			fd.Type = c.resolveVarType(fd.Type, "Field", fd.Name, fd.Pos())
			c.updateSymbol(cd.Members, fd)
		}
		for _, md := range cd.Methods {
			md.Type = c.resolveType(md.Type, md.Pos())
			c.updateSymbol(cd.Members, md)
			for _, pd := range md.Params {
				pd.Type = c.resolveVarType(pd.Type, "Parameter", pd.Name, pd.Pos())
			}
		}
	}
}

// updateSymbol copies a resolved declaration type into its symbol.
func (c *checker) updateSymbol(t *symbol.Table, d ast.Decl) {
	if sym := t.LookupLocal(d.DeclName()); sym != nil && sym.Decl == d {
		sym.Type = d.DeclType()
	}
}

// isEntry reports whether md has the signature of a program entry point:
// public static void main(String[] args).
func isEntry(md *ast.MethodDecl) bool {
	return md.Name == EntryMethod &&
		!md.IsPrivate &&
		md.IsStatic &&
		md.Type.Kind() == types.VoidKind &&
		len(md.Params) == 1 &&
		types.Equals(md.Params[0].Type, types.Array(types.Class(StringClass)))
}

func (c *checker) findEntry() {
	for _, cd := range c.pkg.Classes {
		if cd.Bootstrap {
			continue
		}
		for _, md := range cd.Methods {
			if !isEntry(md) {
				continue
			}
			if c.pkg.Entry != nil {
				c.errorf(md.Pos(), "Duplicate entry point `%s' previously declared at %s", md.QualifiedName(), c.pkg.Entry.Pos())
				continue
			}
			md.IsEntry = true
			c.pkg.Entry = md
		}
	}
	if c.pkg.Entry == nil {
		c.errorf(nil, "No entry point: a class must declare `public static void main(String[] args)'")
	}
}

func (c *checker) checkMethod(cd *ast.ClassDecl, md *ast.MethodDecl) {
	glog.V(2).Infof("Checking method %s", md.QualifiedName())
	md.Scope = symbol.NewTable(md.QualifiedName(), cd.Members)
	ctx := &context{class: cd, method: md, scope: md.Scope, static: md.IsStatic}
	for _, pd := range md.Params {
		c.bind(md.Scope, pd, symbol.ParamSymbol)
	}
	md.Scope.Push()
	for _, s := range md.Body {
		c.checkStmt(ctx, s)
	}
	switch {
	case md.Type.Kind() == types.VoidKind && md.Return != nil:
		c.errorf(md.Return.Pos(), "Method `%s' is void and cannot return a value", md.Name)
		c.checkExpr(ctx, md.Return)
	case md.Type.Kind() != types.VoidKind && md.Return == nil:
		c.errorf(md.Pos(), "Method `%s' must return a value of type %s", md.Name, md.Type)
	case md.Return != nil:
		c.expectType(md.Type, c.checkExpr(ctx, md.Return), md.Return.Pos())
	}
	md.Scope.Pop()
}

// expectType reports a mismatch between a required and an actual type.
// Nothing is reported if either is Error, as the cause has been reported
// already.
func (c *checker) expectType(want, got types.Type, pos *position.Position) bool {
	if types.IsError(want) || types.IsError(got) {
		return false
	}
	if !types.Equals(want, got) {
		c.errorf(pos, "Type mismatch: expected %s, received %s", want, got)
		return false
	}
	return true
}

func (c *checker) checkStmt(ctx *context, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.BlockStmt:
		ctx.scope.Push()
		for _, stmt := range s.Stmts {
			c.checkStmt(ctx, stmt)
		}
		ctx.scope.Pop()

	case *ast.VarDeclStmt:
		d := s.Decl
		d.Type = c.resolveVarType(d.Type, "Variable", d.Name, d.Pos())
		c.bind(ctx.scope, d, symbol.LocalSymbol)
		ctx.declaring = d
		t := c.checkExpr(ctx, s.Init)
		ctx.declaring = nil
		c.expectType(d.Type, t, s.Init.Pos())

	case *ast.AssignStmt:
		lt := c.checkRef(ctx, s.Lhs, assignRef)
		rt := c.checkExpr(ctx, s.Rhs)
		c.expectType(lt, rt, s.Rhs.Pos())

	case *ast.CallStmt:
		c.checkCall(ctx, s.Call)

	case *ast.IfStmt:
		c.checkCond(ctx, s.Cond)
		c.checkBranch(ctx, s.Then, "an if branch")
		if s.Else != nil {
			c.checkBranch(ctx, s.Else, "an else branch")
		}

	case *ast.WhileStmt:
		c.checkCond(ctx, s.Cond)
		c.checkBranch(ctx, s.Body, "a while loop")

	default:
		panic(fmt.Sprintf("checkStmt: unexpected statement %T", s))
	}
}

func (c *checker) checkCond(ctx *context, e ast.Expr) {
	t := c.checkExpr(ctx, e)
	if !types.IsError(t) && t.Kind() != types.BooleanKind {
		c.errorf(e.Pos(), "Condition must be boolean, received %s", t)
	}
}

// checkBranch checks the body of a conditional or loop in its own scope.
func (c *checker) checkBranch(ctx *context, s ast.Stmt, what string) {
	if _, ok := s.(*ast.VarDeclStmt); ok {
		c.errorf(s.Pos(), "Variable declaration cannot be the body of %s", what)
	}
	ctx.scope.Push()
	c.checkStmt(ctx, s)
	ctx.scope.Pop()
}

// checkExpr returns the type of e, and annotates e with it.
func (c *checker) checkExpr(ctx *context, e ast.Expr) types.Type {
	t := c.exprType(ctx, e)
	e.SetType(t)
	return t
}

func (c *checker) exprType(ctx *context, e ast.Expr) types.Type {
	switch e := e.(type) {
	case *ast.IntLit:
		if _, err := strconv.ParseInt(e.Spelling, 10, 32); err != nil {
			c.errorf(e.Pos(), "Integer literal %s out of range", e.Spelling)
		}
		return types.Int

	case *ast.BoolLit:
		return types.Boolean

	case *ast.UnaryExpr:
		t := c.checkExpr(ctx, e.Expr)
		want := types.Type(types.Int)
		if e.Op == ast.Not {
			want = types.Boolean
		}
		if !types.IsError(t) && !types.Equals(want, t) {
			c.errorf(e.Pos(), "Operator %s requires %s, received %s", e.Op, want, t)
		}
		return want

	case *ast.BinaryExpr:
		return c.checkBinary(ctx, e)

	case *ast.NewObjectExpr:
		e.Class = c.lookupClass(e.ClassName)
		if e.Class == nil {
			c.errorf(e.Pos(), "Undeclared type `%s'", e.ClassName)
			return types.Error
		}
		return types.Class(e.ClassName)

	case *ast.NewArrayExpr:
		elem := c.resolveType(e.Elem, e.Pos())
		if !types.IsError(elem) && elem.Kind() != types.IntKind && elem.Kind() != types.ClassKind {
			c.errorf(e.Pos(), "Cannot create an array of %s", elem)
			elem = types.Error
		}
		st := c.checkExpr(ctx, e.Size)
		if !types.IsError(st) && st.Kind() != types.IntKind {
			c.errorf(e.Size.Pos(), "Array size must be int, received %s", st)
		}
		if types.IsError(elem) {
			return types.Error
		}
		return types.Array(elem)

	case *ast.CallExpr:
		return c.checkCall(ctx, e)

	case ast.Ref:
		return c.checkRef(ctx, e, valueRef)
	}
	panic(fmt.Sprintf("checkExpr: unexpected expression %T", e))
}

func (c *checker) checkBinary(ctx *context, e *ast.BinaryExpr) types.Type {
	lt := c.checkExpr(ctx, e.Lhs)
	rt := c.checkExpr(ctx, e.Rhs)
	suppress := types.IsError(lt) || types.IsError(rt)
	switch e.Op {
	case ast.Eq, ast.Ne:
		if !suppress && !types.Equals(lt, rt) {
			c.errorf(e.Pos(), "Operands of %s must have the same type, received %s and %s", e.Op, lt, rt)
		}
		return types.Boolean
	case ast.And, ast.Or:
		c.operand(e, types.Boolean, lt)
		c.operand(e, types.Boolean, rt)
		return types.Boolean
	case ast.Lt, ast.Le, ast.Gt, ast.Ge:
		c.operand(e, types.Int, lt)
		c.operand(e, types.Int, rt)
		return types.Boolean
	case ast.Plus, ast.Minus, ast.Mul, ast.Div:
		c.operand(e, types.Int, lt)
		c.operand(e, types.Int, rt)
		return types.Int
	}
	panic(fmt.Sprintf("checkBinary: unexpected operator %s", e.Op))
}

func (c *checker) operand(e *ast.BinaryExpr, want, got types.Type) {
	if !types.IsError(got) && !types.Equals(want, got) {
		c.errorf(e.Pos(), "Operator %s requires %s operands, received %s", e.Op, want, got)
	}
}

// checkCall checks a method call and its arguments, returning the method's
// return type.
func (c *checker) checkCall(ctx *context, e *ast.CallExpr) types.Type {
	t := c.checkRef(ctx, e.Method, callRef)
	md, _ := declOf(e.Method).(*ast.MethodDecl)
	argTypes := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		argTypes[i] = c.checkExpr(ctx, a)
	}
	if md == nil {
		e.SetType(types.Error)
		return types.Error
	}
	e.Decl = md
	e.SetType(md.Type)
	if len(e.Args) != len(md.Params) {
		c.errorf(e.Pos(), "Method `%s' expects %d arguments, received %d", md.Name, len(md.Params), len(e.Args))
		return t
	}
	for i, pd := range md.Params {
		if types.IsError(pd.Type) || types.IsError(argTypes[i]) {
			continue
		}
		if !types.Equals(pd.Type, argTypes[i]) {
			c.errorf(e.Args[i].Pos(), "Argument `%s' of method `%s' must be %s, received %s", pd.Name, md.Name, pd.Type, argTypes[i])
		}
	}
	return t
}

// refMode says how a reference is used.
type refMode int

const (
	valueRef  refMode = iota // read as a value
	assignRef                // assigned to
	callRef                  // called
	baseRef                  // qualified by a member name
)

// declOf returns the declaration a checked reference binds to, or nil for
// this and array elements.
func declOf(r ast.Ref) ast.Decl {
	switch r := r.(type) {
	case *ast.IdRef:
		return r.Decl
	case *ast.QualifiedRef:
		return r.Decl
	}
	return nil
}

func refName(r ast.Ref) string {
	switch r := r.(type) {
	case *ast.IdRef:
		return r.Name
	case *ast.QualifiedRef:
		return r.Name
	case *ast.ThisRef:
		return "this"
	}
	return "array element"
}

// checkRef resolves a reference and returns its type, checking that the
// declaration it binds to can be used in the given mode.
func (c *checker) checkRef(ctx *context, r ast.Ref, mode refMode) types.Type {
	t := c.refType(ctx, r)
	r.SetType(t)
	if types.IsError(t) {
		return t
	}
	d := declOf(r)
	switch mode {
	case valueRef, assignRef:
		switch d.(type) {
		case *ast.MethodDecl:
			c.errorf(r.Pos(), "Method `%s' cannot be used as a value", refName(r))
			return types.Error
		case *ast.ClassDecl:
			c.errorf(r.Pos(), "Class `%s' cannot be used as a value", refName(r))
			return types.Error
		}
	case callRef:
		if _, ok := d.(*ast.MethodDecl); !ok {
			c.errorf(r.Pos(), "`%s' is not a method", refName(r))
			return types.Error
		}
	case baseRef:
		if _, ok := d.(*ast.MethodDecl); ok {
			c.errorf(r.Pos(), "Method `%s' cannot be qualified", refName(r))
			return types.Error
		}
	}
	if mode == assignRef {
		switch r := r.(type) {
		case *ast.ThisRef:
			c.errorf(r.Pos(), "Cannot assign to `this'")
			return types.Error
		case *ast.QualifiedRef:
			if r.IsLength {
				c.errorf(r.Pos(), "Cannot assign to the length of an array")
				return types.Error
			}
		}
	}
	return t
}

func (c *checker) refType(ctx *context, r ast.Ref) types.Type {
	switch r := r.(type) {
	case *ast.ThisRef:
		r.Class = ctx.class
		if ctx.static {
			c.errorf(r.Pos(), "`this' cannot be used in static method `%s'", ctx.method.Name)
			return types.Error
		}
		return types.Class(ctx.class.Name)

	case *ast.IdRef:
		if ctx.declaring != nil && ctx.declaring.Name == r.Name {
			c.errorf(r.Pos(), "Variable `%s' cannot be used in its own initialiser", r.Name)
			return types.Error
		}
		sym := ctx.scope.Lookup(r.Name)
		if sym == nil {
			c.errorf(r.Pos(), "Identifier `%s' not declared.", r.Name)
			return types.Error
		}
		sym.Used = true
		r.Decl = sym.Decl.(ast.Decl)
		switch d := r.Decl.(type) {
		case *ast.FieldDecl:
			if ctx.static && !d.IsStatic {
				c.errorf(r.Pos(), "Cannot access instance member `%s' in static method `%s'", r.Name, ctx.method.Name)
				return types.Error
			}
		case *ast.MethodDecl:
			if ctx.static && !d.IsStatic {
				c.errorf(r.Pos(), "Cannot access instance member `%s' in static method `%s'", r.Name, ctx.method.Name)
				return types.Error
			}
		}
		return r.Decl.DeclType()

	case *ast.QualifiedRef:
		bt := c.checkRef(ctx, r.Base, baseRef)
		if types.IsError(bt) {
			return types.Error
		}
		if _, ok := types.IsArray(bt); ok {
			if r.Name != "length" {
				c.errorf(&r.P, "Arrays have no member `%s'", r.Name)
				return types.Error
			}
			r.IsLength = true
			return types.Int
		}
		name, ok := types.IsClass(bt)
		if !ok {
			c.errorf(r.Pos(), "Cannot select member `%s' of a value of type %s", r.Name, bt)
			return types.Error
		}
		cd := c.lookupClass(name)
		if cd == nil {
			c.errorf(r.Base.Pos(), "Undeclared type `%s'", name)
			return types.Error
		}
		sym := cd.Members.LookupLocal(r.Name)
		if sym == nil {
			c.errorf(&r.P, "Class `%s' has no member `%s'", cd.Name, r.Name)
			return types.Error
		}
		sym.Used = true
		r.Decl = sym.Decl.(ast.Decl)
		private, static := memberFlags(r.Decl)
		if _, ok := declOf(r.Base).(*ast.ClassDecl); ok && !static {
			c.errorf(&r.P, "Cannot access instance member `%s' through class `%s'", r.Name, cd.Name)
			return types.Error
		}
		if private && cd != ctx.class {
			c.errorf(&r.P, "Cannot access private member `%s' of class `%s'", r.Name, cd.Name)
			return types.Error
		}
		return r.Decl.DeclType()

	case *ast.IndexedRef:
		bt := c.checkRef(ctx, r.Base, valueRef)
		it := c.checkExpr(ctx, r.Index)
		if !types.IsError(it) && it.Kind() != types.IntKind {
			c.errorf(r.Index.Pos(), "Array index must be int, received %s", it)
		}
		if types.IsError(bt) {
			return types.Error
		}
		elem, ok := types.IsArray(bt)
		if !ok {
			c.errorf(r.Base.Pos(), "Cannot index a value of type %s", bt)
			return types.Error
		}
		return elem
	}
	panic(fmt.Sprintf("checkRef: unexpected reference %T", r))
}

func memberFlags(d ast.Decl) (private, static bool) {
	switch d := d.(type) {
	case *ast.FieldDecl:
		return d.IsPrivate, d.IsStatic
	case *ast.MethodDecl:
		return d.IsPrivate, d.IsStatic
	}
	return false, false
}
