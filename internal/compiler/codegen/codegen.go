// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package codegen lays out a checked miniJava program in the mJAM machine
// and emits its bytecode.
package codegen

import (
	"fmt"
	"strconv"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/compiler/ast"
	"github.com/google/minijava/internal/compiler/errors"
	"github.com/google/minijava/internal/compiler/position"
	"github.com/google/minijava/internal/compiler/types"
	"github.com/google/minijava/internal/vm/code"
)

// codegen represents a code generator.
type codegen struct {
	name string // Name of the program.

	errors errors.ErrorList // Any compile errors detected are accumulated here.
	obj    code.Object      // The object to return, if successful.
	syms   code.Symbols

	dynamicDispatch bool
	maxCodeSize     int

	entities   []*ast.RuntimeEntity
	staticSize int
	patches    []patch // Calls to resolve once every method has an address.

	localOffset int // Next free local slot in the current frame.
}

// patch is a call instruction whose target is the entry of a method.
type patch struct {
	instr  int
	method *ast.MethodDecl
}

// Option configures the code generator.
type Option func(*codegen) error

// DynamicDispatch makes calls of instance methods dispatch through the class
// descriptor of the receiver.
func DynamicDispatch() Option {
	return func(c *codegen) error {
		c.dynamicDispatch = true
		return nil
	}
}

// MaxCodeSize sets the code segment capacity the program must fit in.
func MaxCodeSize(n int) Option {
	return func(c *codegen) error {
		if n <= 0 {
			return errors.Errorf("invalid code size %d", n)
		}
		c.maxCodeSize = n
		return nil
	}
}

// CodeGen is the function that compiles the checked program to bytecode.
func CodeGen(name string, pkg *ast.Package, options ...Option) (*code.Object, error) {
	c := &codegen{name: name, maxCodeSize: code.DefaultCodeCapacity}
	for _, o := range options {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	if pkg.Entry == nil {
		c.errorf(nil, "no entry point")
		return nil, c.errors
	}
	c.syms.Source = pkg.Filename

	c.layout(pkg)
	c.emitProgram(pkg)
	c.writeCalls()

	if len(c.obj.Program) > c.maxCodeSize {
		c.errorf(nil, "program of %d instructions exceeds the code segment size %d", len(c.obj.Program), c.maxCodeSize)
	}
	if len(c.errors) > 0 {
		return nil, c.errors
	}
	c.syms.Sort()
	c.obj.Symbols = &c.syms
	return &c.obj, nil
}

func (c *codegen) errorf(pos *position.Position, format string, args ...interface{}) {
	e := "Internal compiler error, aborting compilation: " + fmt.Sprintf(format, args...)
	c.errors.Add(pos, e)
}

func (c *codegen) emit(n ast.Node, op code.Opcode, size int, r code.Reg, d int) {
	line := 0
	if n != nil {
		if p := n.Pos(); p != nil {
			line = p.Line
		}
	}
	i := code.Instr{Op: op, N: size, R: r, D: d}
	glog.V(2).Infof("emitting `%s' from line %d", i, line)
	c.obj.Program = append(c.obj.Program, i)
	c.syms.Lines = append(c.syms.Lines, line)
}

func (c *codegen) emitPrim(n ast.Node, p code.Prim) {
	i := p.Instr()
	c.emit(n, i.Op, i.N, i.R, i.D)
}

// pc returns the program offset of the next instruction.
func (c *codegen) pc() int {
	return len(c.obj.Program)
}

// patchJump points the placeholder jump at instr to the next instruction.
func (c *codegen) patchJump(instr int) {
	c.obj.Program[instr].D = c.pc()
}

// emitProgram emits the static area, every class, and the call of the entry
// point.
func (c *codegen) emitProgram(pkg *ast.Package) {
	c.emit(pkg, code.Push, 0, code.ZR, c.staticSize)
	for _, cd := range pkg.Classes {
		c.emitClass(cd)
	}
	c.emit(pkg.Entry, code.Loadl, 0, code.ZR, code.NullRep)
	c.emitCall(pkg.Entry, pkg.Entry, code.Call)
	c.emit(pkg.Entry, code.Halt, 0, code.ZR, 0)
}

// emitClass emits a jump over the methods of cd, the methods, and then the
// instructions that push the class descriptor.
func (c *codegen) emitClass(cd *ast.ClassDecl) {
	cd.Entity.PatchTarget = c.pc()
	c.emit(cd, code.Jump, 0, code.CB, 0)
	for _, md := range cd.Methods {
		c.emitMethod(md)
	}
	c.patchJump(cd.Entity.PatchTarget)

	c.syms.Classes = append(c.syms.Classes, code.Entry{Addr: cd.Entity.Addr, Name: cd.Name, Line: cd.P.Line})
	methods := cd.InstanceMethods()
	c.emit(cd, code.Loadl, 0, code.ZR, code.NoSuperclass)
	c.emit(cd, code.Loadl, 0, code.ZR, cd.Entity.Size)
	c.emit(cd, code.Loadl, 0, code.ZR, len(methods))
	for _, md := range methods {
		c.emit(cd, code.Loadl, 0, code.ZR, md.Entity.Addr)
	}
}

func (c *codegen) emitMethod(md *ast.MethodDecl) {
	md.Entity.Addr = c.pc()
	c.syms.Methods = append(c.syms.Methods, code.Entry{Addr: md.Entity.Addr, Name: md.QualifiedName(), Line: md.P.Line})
	c.localOffset = code.LinkDataSize
	for _, s := range md.Body {
		c.emitStmt(s)
	}
	result := 0
	if md.Return != nil {
		c.emitExpr(md.Return)
		result = types.Size(md.Type)
	}
	c.emit(md, code.Return, result, code.ZR, paramSize(md))
}

func (c *codegen) emitStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.BlockStmt:
		saved := c.localOffset
		for _, stmt := range s.Stmts {
			c.emitStmt(stmt)
		}
		if n := c.localOffset - saved; n > 0 {
			c.emit(s, code.Pop, 0, code.ZR, n)
		}
		c.localOffset = saved

	case *ast.VarDeclStmt:
		size := types.Size(s.Decl.Type)
		s.Decl.Entity = ast.NewEntity(size, c.localOffset, code.LB)
		c.localOffset += size
		// The initial value is left on the stack, in the variable's slot.
		c.emitExpr(s.Init)

	case *ast.AssignStmt:
		c.emitAssign(s)

	case *ast.CallStmt:
		c.emitCallExpr(s.Call)
		if n := types.Size(s.Call.Type()); n > 0 {
			c.emit(s, code.Pop, 0, code.ZR, n)
		}

	case *ast.IfStmt:
		c.emitExpr(s.Cond)
		toElse := c.pc()
		c.emit(s, code.Jumpif, code.FalseRep, code.CB, 0)
		c.emitStmt(s.Then)
		if s.Else == nil {
			c.patchJump(toElse)
			return
		}
		toEnd := c.pc()
		c.emit(s, code.Jump, 0, code.CB, 0)
		c.patchJump(toElse)
		c.emitStmt(s.Else)
		c.patchJump(toEnd)

	case *ast.WhileStmt:
		loop := c.pc()
		c.emitExpr(s.Cond)
		exit := c.pc()
		c.emit(s, code.Jumpif, code.FalseRep, code.CB, 0)
		c.emitStmt(s.Body)
		c.emit(s, code.Jump, 0, code.CB, loop)
		c.patchJump(exit)

	default:
		c.errorf(s.Pos(), "unexpected statement %T", s)
	}
}

// entity returns the runtime entity of a declaration bound by a reference,
// reporting an internal error if the declaration was never laid out.
func (c *codegen) entity(n ast.Node, d ast.Decl) *ast.RuntimeEntity {
	e := ast.EntityOf(d)
	if e == nil {
		name := "<nil>"
		if d != nil {
			name = d.DeclName()
		}
		c.errorf(n.Pos(), "no runtime entity for `%s'", name)
	}
	return e
}

// isStatic reports whether d is a static member.
func isStatic(d ast.Decl) bool {
	switch d := d.(type) {
	case *ast.FieldDecl:
		return d.IsStatic
	case *ast.MethodDecl:
		return d.IsStatic
	}
	return false
}

// direct reports whether the instance member selected by r is addressed
// from OB: either unqualified or qualified by this.
func direct(r ast.Ref) bool {
	switch r := r.(type) {
	case *ast.IdRef:
		return true
	case *ast.QualifiedRef:
		_, ok := r.Base.(*ast.ThisRef)
		return ok
	}
	return false
}

func (c *codegen) emitAssign(s *ast.AssignStmt) {
	switch lhs := s.Lhs.(type) {
	case *ast.IdRef, *ast.QualifiedRef:
		d := declOf(lhs)
		e := c.entity(lhs, d)
		if e == nil {
			return
		}
		if isStatic(d) || direct(lhs) {
			c.emitExpr(s.Rhs)
			c.emit(s, code.Store, e.Size, e.Base, e.Addr)
			return
		}
		c.emitExpr(lhs.(*ast.QualifiedRef).Base)
		c.emit(s, code.Loadl, 0, code.ZR, e.Addr)
		c.emitExpr(s.Rhs)
		c.emitPrim(s, code.Fieldupd)

	case *ast.IndexedRef:
		c.emitExpr(lhs.Base)
		c.emitExpr(lhs.Index)
		c.emitExpr(s.Rhs)
		c.emitPrim(s, code.Arrayupd)

	default:
		c.errorf(s.Pos(), "cannot assign to %T", lhs)
	}
}

func declOf(r ast.Ref) ast.Decl {
	switch r := r.(type) {
	case *ast.IdRef:
		return r.Decl
	case *ast.QualifiedRef:
		return r.Decl
	}
	return nil
}

var binaryPrims = map[ast.Operator]code.Prim{
	ast.Or:    code.Or,
	ast.And:   code.And,
	ast.Eq:    code.Eq,
	ast.Ne:    code.Ne,
	ast.Lt:    code.Lt,
	ast.Le:    code.Le,
	ast.Gt:    code.Gt,
	ast.Ge:    code.Ge,
	ast.Plus:  code.Add,
	ast.Minus: code.Sub,
	ast.Mul:   code.Mult,
	ast.Div:   code.Div,
}

// emitExpr emits code that leaves the value of e on the stack.
func (c *codegen) emitExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.IntLit:
		v, err := strconv.ParseInt(e.Spelling, 10, 32)
		if err != nil {
			c.errorf(e.Pos(), "%s", err)
			return
		}
		c.emit(e, code.Loadl, 0, code.ZR, int(v))

	case *ast.BoolLit:
		v := code.FalseRep
		if e.Value {
			v = code.TrueRep
		}
		c.emit(e, code.Loadl, 0, code.ZR, v)

	case *ast.UnaryExpr:
		c.emitExpr(e.Expr)
		if e.Op == ast.Not {
			c.emitPrim(e, code.Not)
		} else {
			c.emitPrim(e, code.Neg)
		}

	case *ast.BinaryExpr:
		c.emitExpr(e.Lhs)
		var skip int
		if e.Op == ast.And || e.Op == ast.Or {
			// The left operand decides the result when it is false for &&
			// and true for ||.
			decides := code.FalseRep
			if e.Op == ast.Or {
				decides = code.TrueRep
			}
			c.emit(e, code.Load, 1, code.ST, -1)
			skip = c.pc()
			c.emit(e, code.Jumpif, decides, code.CB, 0)
		}
		c.emitExpr(e.Rhs)
		p, ok := binaryPrims[e.Op]
		if !ok {
			c.errorf(e.Pos(), "unexpected operator %s", e.Op)
			return
		}
		c.emitPrim(e, p)
		if e.Op == ast.And || e.Op == ast.Or {
			c.patchJump(skip)
		}

	case *ast.NewObjectExpr:
		if e.Class == nil || e.Class.Entity == nil {
			c.errorf(e.Pos(), "no runtime entity for class `%s'", e.ClassName)
			return
		}
		desc := e.Class.Entity
		c.emit(e, code.Loada, 0, desc.Base, desc.Addr)
		c.emit(e, code.Loadl, 0, code.ZR, desc.Size)
		c.emitPrim(e, code.Newobj)

	case *ast.NewArrayExpr:
		c.emitExpr(e.Size)
		c.emitPrim(e, code.Newarr)

	case *ast.CallExpr:
		c.emitCallExpr(e)

	case *ast.ThisRef:
		c.emit(e, code.Loada, 0, code.OB, 0)

	case *ast.IdRef:
		en := c.entity(e, e.Decl)
		if en == nil {
			return
		}
		c.emit(e, code.Load, en.Size, en.Base, en.Addr)

	case *ast.QualifiedRef:
		if e.IsLength {
			c.emitExpr(e.Base)
			c.emit(e, code.Loadl, 0, code.ZR, -code.HeaderSize)
			c.emitPrim(e, code.Sub)
			c.emit(e, code.Loadi, 1, code.ZR, 0)
			return
		}
		en := c.entity(e, e.Decl)
		if en == nil {
			return
		}
		if isStatic(e.Decl) || direct(e) {
			c.emit(e, code.Load, en.Size, en.Base, en.Addr)
			return
		}
		c.emitExpr(e.Base)
		c.emit(e, code.Loadl, 0, code.ZR, en.Addr)
		c.emitPrim(e, code.Fieldref)

	case *ast.IndexedRef:
		c.emitExpr(e.Base)
		c.emitExpr(e.Index)
		c.emitPrim(e, code.Arrayref)

	default:
		c.errorf(e.Pos(), "unexpected expression %T", e)
	}
}

// emitCallExpr pushes the arguments of a call right to left, then the
// receiver of an instance method, and calls the method.
func (c *codegen) emitCallExpr(e *ast.CallExpr) {
	md := e.Decl
	if md == nil {
		c.errorf(e.Pos(), "call of unbound method")
		return
	}
	if md.IsPrintln {
		for _, a := range e.Args {
			c.emitExpr(a)
		}
		c.emitPrim(e, code.Putintnl)
		return
	}
	for i := len(e.Args) - 1; i >= 0; i-- {
		c.emitExpr(e.Args[i])
	}
	if md.IsStatic {
		c.emitCall(e, md, code.Call)
		return
	}
	if direct(e.Method) {
		c.emit(e, code.Loada, 0, code.OB, 0)
	} else {
		c.emitExpr(e.Method.(*ast.QualifiedRef).Base)
	}
	if c.dynamicDispatch {
		index := -1
		for i, m := range md.Class.InstanceMethods() {
			if m == md {
				index = i
			}
		}
		if index < 0 {
			c.errorf(e.Pos(), "method `%s' not in its class descriptor", md.QualifiedName())
			return
		}
		c.emit(e, code.Calld, 0, code.ZR, index)
		return
	}
	c.emitCall(e, md, code.Calli)
}

// emitCall emits a call of md whose address is filled in by writeCalls.
func (c *codegen) emitCall(n ast.Node, md *ast.MethodDecl, op code.Opcode) {
	c.patches = append(c.patches, patch{c.pc(), md})
	c.emit(n, op, 0, code.CB, 0)
}

// writeCalls resolves every call to the entry address of its method.
func (c *codegen) writeCalls() {
	for _, p := range c.patches {
		e := p.method.Entity
		if e == nil || e.Addr < 0 {
			c.errorf(p.method.Pos(), "unresolved call of `%s' at %d", p.method.QualifiedName(), p.instr)
			continue
		}
		c.obj.Program[p.instr].D = e.Addr
	}
}
