// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code

import "fmt"

// Instr is a single mJAM instruction.
type Instr struct {
	Op Opcode // operation
	N  int    // length field, 0 to 255
	R  Reg    // register field
	D  int    // displacement, a signed 32 bit value
}

// debug print for instructions.
func (i Instr) String() string {
	return fmt.Sprintf("{%s %d %s %d}", i.Op, i.N, i.R, i.D)
}

// Prim returns the instruction that calls primitive p.
func (p Prim) Instr() Instr {
	return Instr{Op: Call, R: PB, D: int(p)}
}

// Object is the bytecode resulting from compiled program source, with the
// optional symbols that describe it.
type Object struct {
	Program []Instr  // The program bytecode, starting at CodeBase.
	Symbols *Symbols // Debugging information, possibly nil.
}
