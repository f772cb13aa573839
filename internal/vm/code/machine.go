// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code

import "math"

// Fixed layout of the machine.  The code segment capacity and the data store
// size are only defaults; the vm accepts other sizes.
const (
	DefaultCodeCapacity  = 1024
	DefaultDataStoreSize = 1024

	// CodeBase is the address of the first instruction.
	CodeBase = 0
	// StackBase is the address of the first stack word.
	StackBase = 0

	// LinkDataSize is the size of a call frame: saved OB, dynamic link and
	// return address.
	LinkDataSize = 3

	AddressSize = 1
	IntegerSize = 1
	BooleanSize = 1

	FalseRep = 0
	TrueRep  = 1
	NullRep  = 0

	// ArrayTag is stored in place of the class descriptor address in the
	// header of every array.
	ArrayTag = -2
	// NoSuperclass is the superclass link of every class descriptor.
	NoSuperclass = -1

	MaxInt = math.MaxInt32
	MinInt = math.MinInt32
)

// Offsets of the words in a class descriptor.  The method table follows the
// method count.
const (
	DescSuperclass = iota
	DescInstanceSize
	DescMethodCount
	DescMethods
)

// Offsets of the header words in front of a heap object or array, relative
// to the address handed to the program.
const (
	HeaderClass = -2
	HeaderSize  = -1
	HeaderWords = 2
)
