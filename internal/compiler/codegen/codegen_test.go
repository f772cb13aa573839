// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package codegen

import (
	"strings"
	"testing"

	"github.com/google/minijava/internal/compiler/checker"
	"github.com/google/minijava/internal/compiler/parser"
	"github.com/google/minijava/internal/testutil"
	"github.com/google/minijava/internal/vm/code"
)

func compile(t *testing.T, name, program string, options ...Option) (*code.Object, error) {
	t.Helper()
	pkg, err := parser.Parse(name, strings.NewReader(program))
	testutil.FatalIfErr(t, err)
	testutil.FatalIfErr(t, checker.Check(pkg))
	return CodeGen(name, pkg, options...)
}

func loadl(d int) code.Instr { return code.Instr{Op: code.Loadl, D: d} }

func TestCodegenPrintln(t *testing.T) {
	obj, err := compile(t, "println", `class Main {
  public static void main(String[] args) {
    System.out.println(3);
  }
}`)
	testutil.FatalIfErr(t, err)

	expected := []code.Instr{
		{Op: code.Push, D: 1}, // System.out
		// String
		{Op: code.Jump, R: code.CB, D: 2},
		loadl(-1), loadl(0), loadl(0),
		// _PrintStream
		{Op: code.Jump, R: code.CB, D: 7},
		{Op: code.Return, D: 1},
		loadl(-1), loadl(0), loadl(1), loadl(6),
		// System
		{Op: code.Jump, R: code.CB, D: 12},
		loadl(-1), loadl(0), loadl(0),
		// Main
		{Op: code.Jump, R: code.CB, D: 19},
		loadl(3),
		code.Putintnl.Instr(),
		{Op: code.Return, D: 1},
		loadl(-1), loadl(0), loadl(0),
		// entry
		loadl(code.NullRep),
		{Op: code.Call, R: code.CB, D: 16},
		{Op: code.Halt},
	}
	testutil.ExpectNoDiff(t, expected, obj.Program)

	expectedMethods := []code.Entry{
		{Addr: 6, Name: "_PrintStream.println", Line: 1},
		{Addr: 16, Name: "Main.main", Line: 1},
	}
	testutil.ExpectNoDiff(t, expectedMethods, obj.Symbols.Methods)
	var classes []string
	var descs []int
	for _, e := range obj.Symbols.Classes {
		classes = append(classes, e.Name)
		descs = append(descs, e.Addr)
	}
	testutil.ExpectNoDiff(t, []string{"String", "_PrintStream", "System", "Main"}, classes)
	testutil.ExpectNoDiff(t, []int{1, 4, 8, 11}, descs)
	if len(obj.Symbols.Lines) != len(obj.Program) {
		t.Errorf("line table has %d entries for %d instructions", len(obj.Symbols.Lines), len(obj.Program))
	}
	if line, _ := obj.Symbols.Line(16); line != 2 {
		t.Errorf("line of println argument: expected 2, received %d", line)
	}
}

const counterProgram = `class Main {
  public static void main(String[] args) {
    Counter c = new Counter();
    c.add(2);
    c.add(3);
    System.out.println(c.get());
  }
}
class Counter {
  int n;
  static int unused;
  public void add(int d) { n = n + d; }
  public int get() { return this.n; }
}`

// find returns the addresses of the instructions with opcode op.
func find(prog []code.Instr, op code.Opcode) []int {
	var r []int
	for i, instr := range prog {
		if instr.Op == op {
			r = append(r, i)
		}
	}
	return r
}

func TestCodegenInstanceCalls(t *testing.T) {
	obj, err := compile(t, "counter", counterProgram)
	testutil.FatalIfErr(t, err)

	add, _ := methodAddr(obj, "Counter.add")
	get, _ := methodAddr(obj, "Counter.get")
	var targets []int
	for _, i := range find(obj.Program, code.Calli) {
		targets = append(targets, obj.Program[i].D)
	}
	testutil.ExpectNoDiff(t, []int{add, add, get}, targets)
	if n := len(find(obj.Program, code.Calld)); n != 0 {
		t.Errorf("unexpected CALLD instructions: %d", n)
	}

	// Static size is System.out and Counter.unused.
	testutil.ExpectNoDiff(t, code.Instr{Op: code.Push, D: 2}, obj.Program[0])

	// The instance field is stored relative to OB.
	stores := find(obj.Program, code.Store)
	if len(stores) != 1 {
		t.Fatalf("expected one STORE, received %d", len(stores))
	}
	testutil.ExpectNoDiff(t, code.Instr{Op: code.Store, N: 1, R: code.OB, D: 0}, obj.Program[stores[0]])
}

func methodAddr(obj *code.Object, name string) (int, bool) {
	for _, e := range obj.Symbols.Methods {
		if e.Name == name {
			return e.Addr, true
		}
	}
	return 0, false
}

func TestCodegenDynamicDispatch(t *testing.T) {
	obj, err := compile(t, "counter", counterProgram, DynamicDispatch())
	testutil.FatalIfErr(t, err)

	if n := len(find(obj.Program, code.Calli)); n != 0 {
		t.Errorf("unexpected CALLI instructions: %d", n)
	}
	var indexes []int
	for _, i := range find(obj.Program, code.Calld) {
		indexes = append(indexes, obj.Program[i].D)
	}
	testutil.ExpectNoDiff(t, []int{0, 0, 1}, indexes)
}

func TestCodegenBlockPopsLocals(t *testing.T) {
	obj, err := compile(t, "block", `class Main {
  public static void main(String[] args) {
    int a = 1;
    { int x = 2; int y = 3; a = x + y; }
    int b = 4;
  }
}`)
	testutil.FatalIfErr(t, err)

	var stores, pops []code.Instr
	for _, i := range find(obj.Program, code.Store) {
		stores = append(stores, obj.Program[i])
	}
	for _, i := range find(obj.Program, code.Pop) {
		pops = append(pops, obj.Program[i])
	}
	testutil.ExpectNoDiff(t, []code.Instr{{Op: code.Store, N: 1, R: code.LB, D: 3}}, stores)
	testutil.ExpectNoDiff(t, []code.Instr{{Op: code.Pop, D: 2}}, pops)

	var loads []code.Instr
	for _, i := range find(obj.Program, code.Load) {
		loads = append(loads, obj.Program[i])
	}
	testutil.ExpectNoDiff(t, []code.Instr{
		{Op: code.Load, N: 1, R: code.LB, D: 4},
		{Op: code.Load, N: 1, R: code.LB, D: 5},
	}, loads)
}

func TestCodegenShortCircuit(t *testing.T) {
	obj, err := compile(t, "and", `class Main {
  public static void main(String[] args) {
    boolean b = false && true;
  }
}`)
	testutil.FatalIfErr(t, err)
	main, _ := methodAddr(obj, "Main.main")
	expected := []code.Instr{
		loadl(code.FalseRep),
		{Op: code.Load, N: 1, R: code.ST, D: -1},
		{Op: code.Jumpif, N: code.FalseRep, R: code.CB, D: main + 5},
		loadl(code.TrueRep),
		code.And.Instr(),
		{Op: code.Return, D: 1},
	}
	testutil.ExpectNoDiff(t, expected, obj.Program[main:main+6])
}

func TestCodegenArrays(t *testing.T) {
	obj, err := compile(t, "arrays", `class Main {
  public static void main(String[] args) {
    int[] xs = new int[4];
    xs[1] = xs.length;
  }
}`)
	testutil.FatalIfErr(t, err)
	main, _ := methodAddr(obj, "Main.main")
	expected := []code.Instr{
		loadl(4),
		code.Newarr.Instr(),
		{Op: code.Load, N: 1, R: code.LB, D: 3},
		loadl(1),
		{Op: code.Load, N: 1, R: code.LB, D: 3},
		loadl(1),
		code.Sub.Instr(),
		{Op: code.Loadi, N: 1},
		code.Arrayupd.Instr(),
		{Op: code.Return, D: 1},
	}
	testutil.ExpectNoDiff(t, expected, obj.Program[main:main+len(expected)])
}

func TestCodegenControlFlow(t *testing.T) {
	obj, err := compile(t, "while", `class Main {
  public static void main(String[] args) {
    int i = 0;
    while (i < 3) i = i + 1;
    if (i == 3) System.out.println(1); else System.out.println(0);
  }
}`)
	testutil.FatalIfErr(t, err)
	m, _ := methodAddr(obj, "Main.main")
	expected := []code.Instr{
		loadl(0),
		// while
		{Op: code.Load, N: 1, R: code.LB, D: 3},
		loadl(3),
		code.Lt.Instr(),
		{Op: code.Jumpif, N: code.FalseRep, R: code.CB, D: m + 10},
		{Op: code.Load, N: 1, R: code.LB, D: 3},
		loadl(1),
		code.Add.Instr(),
		{Op: code.Store, N: 1, R: code.LB, D: 3},
		{Op: code.Jump, R: code.CB, D: m + 1},
		// if
		{Op: code.Load, N: 1, R: code.LB, D: 3},
		loadl(3),
		code.Eq.Instr(),
		{Op: code.Jumpif, N: code.FalseRep, R: code.CB, D: m + 17},
		loadl(1),
		code.Putintnl.Instr(),
		{Op: code.Jump, R: code.CB, D: m + 19},
		loadl(0),
		code.Putintnl.Instr(),
		{Op: code.Return, D: 1},
	}
	testutil.ExpectNoDiff(t, expected, obj.Program[m:m+len(expected)])
}

func TestCodegenMaxCodeSize(t *testing.T) {
	_, err := compile(t, "big", counterProgram, MaxCodeSize(10))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.HasPrefix(err.Error(), "Internal compiler error, aborting compilation: program of ") {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestCodegenBadOption(t *testing.T) {
	if _, err := compile(t, "opt", counterProgram, MaxCodeSize(0)); err == nil {
		t.Error("expected an error")
	}
}
