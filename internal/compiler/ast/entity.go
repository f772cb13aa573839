// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package ast

import (
	"fmt"

	"github.com/google/minijava/internal/vm/code"
)

// NoPatch and NoParent are the empty values of the optional entity fields.
const (
	NoPatch  = -1
	NoParent = -1
)

// RuntimeEntity is the runtime address of a declaration: Addr words from the
// Base register, occupying Size words.  For methods the address is a code
// address, for classes it is the descriptor offset and Size is the instance
// size.
type RuntimeEntity struct {
	Size int
	Addr int
	Base code.Reg

	// PatchTarget is the index of a placeholder instruction that jumps past
	// the declaration's code, to be fixed up once the code is emitted.
	PatchTarget int
	// Parent is the index of the entity of the enclosing declaration in the
	// code generator's entity table.
	Parent int
}

// NewEntity returns an entity with no patch target and no parent.
func NewEntity(size, addr int, base code.Reg) *RuntimeEntity {
	return &RuntimeEntity{Size: size, Addr: addr, Base: base, PatchTarget: NoPatch, Parent: NoParent}
}

func (e *RuntimeEntity) String() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("{size %d, %d[%s]}", e.Size, e.Addr, e.Base)
}

// EntityOf returns the runtime entity of a declaration, or nil.
func EntityOf(d Decl) *RuntimeEntity {
	switch d := d.(type) {
	case *ClassDecl:
		return d.Entity
	case *FieldDecl:
		return d.Entity
	case *MethodDecl:
		return d.Entity
	case *ParamDecl:
		return d.Entity
	case *LocalDecl:
		return d.Entity
	}
	return nil
}
