// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package symbol

import (
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"

	"github.com/google/minijava/internal/compiler/types"
	"github.com/google/minijava/internal/testutil"
)

func TestInsertLookup(t *testing.T) {
	s := NewTable("global", nil)

	sym1 := NewSymbol("foo", ClassSymbol, nil)
	if r := s.Bind(sym1); r != nil {
		t.Errorf("Insert already had sym1: %v", r)
	}

	r1 := s.Lookup("foo")
	testutil.ExpectNoDiff(t, r1, sym1, testutil.AllowUnexported(types.Basic{}))
	if s.Lookup("bar") != nil {
		t.Errorf("found undeclared bar")
	}
}

func TestRedeclarationInSameScope(t *testing.T) {
	s := NewTable("method", nil)
	first := NewSymbol("x", ParamSymbol, nil)
	if alt := s.Bind(first); alt != nil {
		t.Fatalf("unexpected alt %v", alt)
	}
	if alt := s.Bind(NewSymbol("x", LocalSymbol, nil)); alt != first {
		t.Errorf("redeclaration not flagged, got alt %v", alt)
	}
}

func TestRedeclarationInNestedBlockOfSameTable(t *testing.T) {
	s := NewTable("method", nil)
	outer := NewSymbol("x", LocalSymbol, nil)
	s.Bind(outer)
	s.Push()
	if alt := s.Bind(NewSymbol("x", LocalSymbol, nil)); alt != outer {
		t.Errorf("redeclaration in a block of the same method not flagged")
	}
	s.Pop()
}

func TestShadowingAcrossTables(t *testing.T) {
	class := NewTable("class A", nil)
	field := NewSymbol("x", FieldSymbol, nil)
	field.Type = types.Boolean
	class.Bind(field)

	method := NewTable("method A.m", class)
	local := NewSymbol("x", LocalSymbol, nil)
	local.Type = types.Int
	if alt := method.Bind(local); alt != nil {
		t.Fatalf("local should shadow field, got alt %v", alt)
	}
	if got := method.Lookup("x"); got != local {
		t.Errorf("inner declaration did not win: %v", got)
	}
	if got := class.Lookup("x"); got != field {
		t.Errorf("outer table changed: %v", got)
	}
	if got := method.Owner("x"); got != method {
		t.Errorf("owner of x = %v", got.Name)
	}
}

func TestPopForgetsBlockNames(t *testing.T) {
	s := NewTable("method", nil)
	s.Push()
	s.Bind(NewSymbol("y", LocalSymbol, nil))
	if s.Lookup("y") == nil {
		t.Fatal("y not bound")
	}
	s.Pop()
	if s.Lookup("y") != nil {
		t.Error("y survived its block")
	}
	if s.Bind(NewSymbol("y", LocalSymbol, nil)) != nil {
		t.Error("y could not be rebound after its block closed")
	}
	if s.Depth() != 1 {
		t.Errorf("depth = %d", s.Depth())
	}
}

func TestLookupKindSkipsOtherKinds(t *testing.T) {
	global := NewTable("global", nil)
	class := NewSymbol("A", ClassSymbol, nil)
	global.Bind(class)
	method := NewTable("method", global)
	method.Bind(NewSymbol("A", LocalSymbol, nil))

	if got := method.LookupKind("A", ClassSymbol); got != class {
		t.Errorf("LookupKind found %v", got)
	}
	if got := method.Lookup("A"); got.Kind != LocalSymbol {
		t.Errorf("Lookup found %v", got)
	}
}

func TestPopOutermostPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewTable("t", nil).Pop()
}

// Generate implements the quick.Generator interface for Kind.
func (Kind) Generate(rand *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(Kind(rand.Intn(int(LocalSymbol) + 1)))
}

func TestBindThenLookupFindsSymbol(t *testing.T) {
	if err := quick.Check(func(name string, kind Kind) bool {
		s := NewTable("q", NewTable("parent", nil))
		sym := NewSymbol(name, kind, nil)
		if s.Bind(sym) != nil {
			return false
		}
		return s.Lookup(name) == sym && s.LookupKind(name, kind) == sym
	}, nil); err != nil {
		t.Error(err)
	}
}
