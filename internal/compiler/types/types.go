// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package types describes the static types of miniJava expressions and
// declarations.
package types

import (
	"fmt"
)

// Kind enumerates the variants of Type.
type Kind int

const (
	VoidKind Kind = iota
	IntKind
	BooleanKind
	ClassKind
	ArrayKind
	ErrorKind
)

func (k Kind) String() string {
	switch k {
	case VoidKind:
		return "void"
	case IntKind:
		return "int"
	case BooleanKind:
		return "boolean"
	case ClassKind:
		return "class"
	case ArrayKind:
		return "array"
	case ErrorKind:
		return "error"
	default:
		panic(fmt.Sprintf("unexpected type kind %d", int(k)))
	}
}

// Type is the interface satisfied by every type variant.
type Type interface {
	Kind() Kind
	String() string
}

// Basic is a type with no further structure.
type Basic struct {
	kind Kind
}

func (b *Basic) Kind() Kind {
	return b.kind
}

func (b *Basic) String() string {
	if b.kind == ErrorKind {
		return "Error"
	}
	return b.kind.String()
}

var (
	Void    = &Basic{VoidKind}
	Int     = &Basic{IntKind}
	Boolean = &Basic{BooleanKind}
	// Error is the type of an expression that could not be resolved.
	Error = &Basic{ErrorKind}
)

// ClassType is the type of a reference to an instance of the named class.
type ClassType struct {
	Name string
}

func (c *ClassType) Kind() Kind {
	return ClassKind
}

func (c *ClassType) String() string {
	return c.Name
}

// Class returns the type of instances of the class called name.
func Class(name string) *ClassType {
	return &ClassType{Name: name}
}

// ArrayType is the type of a reference to an array of Elem.
type ArrayType struct {
	Elem Type
}

func (a *ArrayType) Kind() Kind {
	return ArrayKind
}

func (a *ArrayType) String() string {
	return a.Elem.String() + "[]"
}

// Array returns the type of arrays of elem.
func Array(elem Type) *ArrayType {
	return &ArrayType{Elem: elem}
}

// Equals reports whether two types match.  Class types match by name, array
// types match if their elements match, and everything else matches by kind.
func Equals(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch at := a.(type) {
	case *ClassType:
		return at.Name == b.(*ClassType).Name
	case *ArrayType:
		return Equals(at.Elem, b.(*ArrayType).Elem)
	}
	return true
}

// IsError reports whether t is the unresolved type.
func IsError(t Type) bool {
	return t != nil && t.Kind() == ErrorKind
}

// IsClass reports whether t is a class type, and returns the class name.
func IsClass(t Type) (string, bool) {
	if c, ok := t.(*ClassType); ok {
		return c.Name, true
	}
	return "", false
}

// IsArray reports whether t is an array type, and returns its element type.
func IsArray(t Type) (Type, bool) {
	if a, ok := t.(*ArrayType); ok {
		return a.Elem, true
	}
	return nil, false
}

// Size returns the number of machine words occupied by a value of type t.
func Size(t Type) int {
	switch t.Kind() {
	case VoidKind:
		return 0
	case IntKind, BooleanKind, ClassKind, ArrayKind:
		return 1
	}
	return 0
}
