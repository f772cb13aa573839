// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/google/minijava/internal/testutil"
	"github.com/google/minijava/internal/vm/code"
)

const counter = `class Main {
  public static void main(String[] args) {
    int i = 0;
    while (i < 3) {
      i = i + 1;
    }
    System.out.println(i);
  }
}
`

func TestCompile(t *testing.T) {
	obj, err := Compile("counter.java", strings.NewReader(counter))
	testutil.FatalIfErr(t, err)
	last := obj.Program[len(obj.Program)-1]
	testutil.ExpectNoDiff(t, code.Instr{Op: code.Halt}, last)
	if obj.Symbols == nil || len(obj.Symbols.Methods) == 0 {
		t.Errorf("expected method symbols, got %v", obj.Symbols)
	}
}

func TestCompileStripsDirectory(t *testing.T) {
	obj, err := Compile("/tmp/progs/counter.java", strings.NewReader(counter))
	testutil.FatalIfErr(t, err)
	if obj.Symbols.Source != "counter.java" {
		t.Errorf("unexpected source %q", obj.Symbols.Source)
	}
}

var compileErrorTests = []struct {
	name    string
	program string
	errors  string
}{
	{"syntax",
		"int x;",
		"syntax:1:1-3: syntax error: expecting class declaration, found `int'"},
	{"type mismatch",
		`class Main {
  public static void main(String[] args) {
    int x = true;
  }
}`,
		"type mismatch:3:13-16: Type mismatch: expected int, received boolean"},
	{"no entry",
		"class A { }",
		"No entry point: a class must declare `public static void main(String[] args)'"},
}

func TestCompileErrors(t *testing.T) {
	for _, tc := range compileErrorTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.name, strings.NewReader(tc.program))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			testutil.ExpectNoDiff(t, tc.errors, strings.TrimSpace(err.Error()))
		})
	}
}

func TestCompilerOptions(t *testing.T) {
	if _, err := New(MaxCodeSize(-1)); err == nil {
		t.Error("expected error for negative code size")
	}
	c, err := New(EmitAst(), EmitAstTypes(), MaxCodeSize(8))
	testutil.FatalIfErr(t, err)
	if _, err := c.Compile(context.Background(), "counter", strings.NewReader(counter)); err == nil {
		t.Error("expected code size error")
	}
}

func TestCompileDynamicDispatch(t *testing.T) {
	const prog = `class Main {
  public static void main(String[] args) {
    Main m = new Main();
    m.f();
  }
  public void f() { }
}`
	static, err := Compile("static", strings.NewReader(prog))
	testutil.FatalIfErr(t, err)
	c, err := New(DynamicDispatch())
	testutil.FatalIfErr(t, err)
	dynamic, err := c.Compile(context.Background(), "dynamic", strings.NewReader(prog))
	testutil.FatalIfErr(t, err)

	count := func(obj *code.Object, op code.Opcode) (n int) {
		for _, i := range obj.Program {
			if i.Op == op {
				n++
			}
		}
		return
	}
	if count(static, code.Calli) != 1 || count(static, code.Calld) != 0 {
		t.Errorf("static program: %v", static.Program)
	}
	if count(dynamic, code.Calli) != 0 || count(dynamic, code.Calld) != 1 {
		t.Errorf("dynamic program: %v", dynamic.Program)
	}
}
