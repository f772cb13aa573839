// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package code contains the instructions, registers and primitive routines of
// the mJAM abstract machine, and the object file that carries them.
package code

import "fmt"

// Opcode is the operation field of an instruction.
type Opcode int

const (
	Load   Opcode = iota // Push the word at d[r].
	Loada                // Push the address d[r].
	Loadi                // Pop an address, push the word stored there.
	Loadl                // Push the literal d.
	Store                // Pop a word and store it at d[r].
	Storei               // Pop an address, pop a word, store the word at the address.
	Call                 // Call the routine at d[r], or a primitive if d[r] is in the primitive segment.
	Calli                // Call the instance method at d[r]; the instance is on top of the arguments.
	Calld                // Dispatch method number d through the class descriptor of the instance on top of the arguments.
	Return               // Return n result words, popping d argument words.
	Push                 // Push d uninitialised words.
	Pop                  // Pop d words.
	Jump                 // Jump to d[r].
	Jumpi                // Pop a code address and jump to it.
	Jumpif               // Pop a word; jump to d[r] if it equals n.
	Halt                 // Stop the machine; with n > 0, dump the state and continue.

	numOpcodes
)

var opNames = map[Opcode]string{
	Load:   "LOAD",
	Loada:  "LOADA",
	Loadi:  "LOADI",
	Loadl:  "LOADL",
	Store:  "STORE",
	Storei: "STOREI",
	Call:   "CALL",
	Calli:  "CALLI",
	Calld:  "CALLD",
	Return: "RETURN",
	Push:   "PUSH",
	Pop:    "POP",
	Jump:   "JUMP",
	Jumpi:  "JUMPI",
	Jumpif: "JUMPIF",
	Halt:   "HALT",
}

func (o Opcode) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Valid reports whether o is a defined opcode.
func (o Opcode) Valid() bool {
	return o >= 0 && o < numOpcodes
}

// Reg names a machine register.  The register field of an instruction holds
// one of these.
type Reg int

const (
	ZR Reg = iota // zero
	CB            // code base
	CT            // code top
	CP            // code pointer
	PB            // primitives base
	PT            // primitives top
	SB            // stack base
	ST            // stack top
	LB            // local frame base
	HB            // heap base
	HT            // heap top
	OB            // object base

	numRegs
)

var regNames = [...]string{"ZR", "CB", "CT", "CP", "PB", "PT", "SB", "ST", "LB", "HB", "HT", "OB"}

func (r Reg) String() string {
	if r >= 0 && r < numRegs {
		return regNames[r]
	}
	return fmt.Sprintf("reg(%d)", int(r))
}

// Valid reports whether r is a defined register.
func (r Reg) Valid() bool {
	return r >= 0 && r < numRegs
}

// Prim identifies a primitive routine by its displacement from PB.
type Prim int

const (
	Id Prim = iota
	Not
	And
	Or
	Succ
	Pred
	Neg
	Add
	Sub
	Mult
	Div
	Mod
	Lt
	Le
	Ge
	Gt
	Eq
	Ne
	Eol
	Eof
	Get
	Put
	Geteol
	Puteol
	Getint
	Putint
	Putintnl
	Alloc
	Dispose
	Newobj
	Newarr
	Arrayref
	Arrayupd
	Fieldref
	Fieldupd

	// NumPrims is the size of the primitive segment.
	NumPrims
)

var primNames = [...]string{
	"id", "not", "and", "or", "succ", "pred", "neg", "add", "sub", "mult",
	"div", "mod", "lt", "le", "ge", "gt", "eq", "ne", "eol", "eof", "get",
	"put", "geteol", "puteol", "getint", "putint", "putintnl", "alloc",
	"dispose", "newobj", "newarr", "arrayref", "arrayupd", "fieldref",
	"fieldupd",
}

func (p Prim) String() string {
	if p >= 0 && p < NumPrims {
		return primNames[p]
	}
	return fmt.Sprintf("prim(%d)", int(p))
}
