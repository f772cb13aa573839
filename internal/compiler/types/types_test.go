// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package types

import (
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"
)

var typeEqualityTests = []struct {
	a, b Type
	want bool
}{
	{Int, Int, true},
	{Boolean, Boolean, true},
	{Void, Void, true},
	{Error, Error, true},
	{Int, Boolean, false},
	{Int, Error, false},
	{Error, Boolean, false},
	{Class("A"), Class("A"), true},
	{Class("A"), Class("B"), false},
	{Class("A"), Int, false},
	{Array(Int), Array(Int), true},
	{Array(Int), Array(Class("A")), false},
	{Array(Class("String")), Array(Class("String")), true},
	{Array(Class("String")), Array(Class("Strung")), false},
	{Array(Int), Int, false},
	{Array(Array(Int)), Array(Array(Int)), true},
	{Array(Array(Int)), Array(Array(Boolean)), false},
}

func TestTypeEquals(t *testing.T) {
	for _, tc := range typeEqualityTests {
		tc := tc
		t.Run(tc.a.String()+"=="+tc.b.String(), func(t *testing.T) {
			if got := Equals(tc.a, tc.b); got != tc.want {
				t.Errorf("Equals(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := Equals(tc.b, tc.a); got != tc.want {
				t.Errorf("Equals(%v, %v) = %v, want %v", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

// typeGen wraps a Type so that testing/quick can generate random trees.
type typeGen struct {
	T Type
}

var classNames = []string{"A", "B", "String", "_PrintStream"}

func randomType(r *rand.Rand, depth int) Type {
	n := 5
	if depth > 3 {
		n = 4
	}
	switch r.Intn(n) {
	case 0:
		return Int
	case 1:
		return Boolean
	case 2:
		return Error
	case 3:
		return Class(classNames[r.Intn(len(classNames))])
	default:
		return Array(randomType(r, depth+1))
	}
}

func (typeGen) Generate(r *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(typeGen{randomType(r, 0)})
}

func TestEqualsIsReflexive(t *testing.T) {
	f := func(g typeGen) bool {
		return Equals(g.T, g.T)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestArrayEqualsIsStructural(t *testing.T) {
	f := func(a, b typeGen) bool {
		return Equals(Array(a.T), Array(b.T)) == Equals(a.T, b.T)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestSize(t *testing.T) {
	for _, tc := range []struct {
		t    Type
		want int
	}{
		{Void, 0},
		{Int, 1},
		{Boolean, 1},
		{Class("A"), 1},
		{Array(Int), 1},
	} {
		if got := Size(tc.t); got != tc.want {
			t.Errorf("Size(%v) = %d, want %d", tc.t, got, tc.want)
		}
	}
}
