// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package checker

import (
	"strings"
	"testing"

	"github.com/google/minijava/internal/compiler/ast"
	"github.com/google/minijava/internal/compiler/errors"
	"github.com/google/minijava/internal/compiler/parser"
	"github.com/google/minijava/internal/compiler/types"
	"github.com/google/minijava/internal/testutil"
)

const mainClass = `
class Main {
  public static void main(String[] args) { }
}
`

func parseAndCheck(t *testing.T, name, program string) (*ast.Package, error) {
	t.Helper()
	pkg, err := parser.Parse(name, strings.NewReader(program))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	return pkg, Check(pkg)
}

var checkerValidPrograms = []struct {
	name    string
	program string
}{
	{"minimal", mainClass},
	{"println",
		`class Main {
  public static void main(String[] args) {
    System.out.println(3);
  }
}`},
	{"fields and methods",
		`class Main {
  public static void main(String[] args) {
    Counter c = new Counter();
    c.add(4);
    System.out.println(c.get());
  }
}
class Counter {
  private int n;
  public void add(int d) { n = n + d; }
  public int get() { return this.n; }
}`},
	{"forward class reference",
		`class Main {
  public static void main(String[] args) {
    B b = new B();
    b.a = new A();
    b.a.x = 7;
    System.out.println(b.a.x);
  }
}
class B { A a; }
class A { int x; }`},
	{"arrays",
		`class Main {
  public static void main(String[] args) {
    int[] xs = new int[3];
    xs[0] = xs.length;
    Main[] ms = new Main[xs[0]];
    boolean b = ms.length == 3 && !(xs[1] > 2);
  }
}`},
	{"static members",
		`class Main {
  static int total;
  public static void main(String[] args) {
    total = Main.twice(3);
    Main.total = total + 1;
  }
  static int twice(int x) { return x * 2; }
}`},
	{"private access within class",
		`class Main {
  private int secret;
  public static void main(String[] args) { }
  int peek(Main other) { return other.secret; }
}`},
	{"shadowing in blocks",
		`class Main {
  int x;
  public static void main(String[] args) {
    { int y = 1; }
    { boolean y = true; }
    while (false) { int z = 2; }
  }
  void f() { int x = 3; }
}`},
	{"recursion",
		`class Main {
  public static void main(String[] args) {
    System.out.println(8 + fact(3));
  }
  static int fact(int n) {
    int r = 1;
    if (n > 1) r = n * fact(n - 1);
    return r;
  }
}`},
	{"null comparison of same class",
		`class Main {
  public static void main(String[] args) {
    Main a = new Main();
    Main b = a;
    if (a == b) System.out.println(1); else System.out.println(0);
  }
}`},
	{"largest int",
		`class Main {
  public static void main(String[] args) { int x = 2147483647; }
}`},
}

func TestCheckValidPrograms(t *testing.T) {
	for _, tc := range checkerValidPrograms {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseAndCheck(t, tc.name, tc.program)
			if err != nil {
				t.Errorf("unexpected check errors:\n%s", err)
			}
		})
	}
}

var checkerInvalidPrograms = []struct {
	name    string
	program string
	errors  []string
}{
	{"no entry point",
		`class A { }`,
		[]string{"No entry point: a class must declare `public static void main(String[] args)'"}},

	{"duplicate entry point",
		mainClass + `class B { public static void main(String[] args) { } }`,
		[]string{"duplicate entry point:5:30-33: Duplicate entry point `B.main' previously declared at duplicate entry point:3:22-25"}},

	{"class redeclared",
		mainClass + `class Main { }`,
		[]string{"class redeclared:5:7-10: Redeclaration of class `Main' previously declared at class redeclared:2:7-10"}},

	{"bootstrap class redeclared",
		mainClass + `class String { }`,
		[]string{"bootstrap class redeclared:5:7-12: Redeclaration of class `String' previously declared at <predefined>:1:1"}},

	{"member redeclared",
		mainClass + `class A { int x; boolean x; }`,
		[]string{"member redeclared:5:26: Redeclaration of field `x' previously declared at member redeclared:5:15"}},

	{"local redeclares parameter",
		mainClass + `class A { void f(int x) { int x = 1; } }`,
		[]string{"local redeclares parameter:5:31: Redeclaration of parameter `x' previously declared at local redeclares parameter:5:22"}},

	{"undeclared type",
		mainClass + `class A { B b; }`,
		[]string{"undeclared type:5:13: Undeclared type `B'"}},

	{"void field",
		mainClass + `class A { void v; }`,
		[]string{"void field:5:16: Field `v' cannot have type void"}},

	{"undeclared identifier",
		mainClass + `class A { void f() { x = 1; } }`,
		[]string{"undeclared identifier:5:22: Identifier `x' not declared."}},

	{"type mismatch",
		mainClass + `class A { void f() { int x = 3; x = true; } }`,
		[]string{"type mismatch:5:37-40: Type mismatch: expected int, received boolean"}},

	{"variable in own initialiser",
		mainClass + `class A { void f() { int x = x + 1; } }`,
		[]string{"variable in own initialiser:5:30: Variable `x' cannot be used in its own initialiser"}},

	{"this in static method",
		mainClass + `class A { static void f() { A a = this; } }`,
		[]string{"this in static method:5:35-38: `this' cannot be used in static method `f'"}},

	{"instance field in static method",
		mainClass + `class A { int n; static void f() { n = 1; } }`,
		[]string{"instance field in static method:5:36: Cannot access instance member `n' in static method `f'"}},

	{"instance member through class",
		mainClass + `class A { int n; void f() { A.n = 1; } }`,
		[]string{"instance member through class:5:31: Cannot access instance member `n' through class `A'"}},

	{"private member",
		mainClass + `class A { private int n; } class B { void f(A a) { a.n = 1; } }`,
		[]string{"private member:5:54: Cannot access private member `n' of class `A'"}},

	{"no such member",
		mainClass + `class A { void f() { this.g(); } }`,
		[]string{"no such member:5:27: Class `A' has no member `g'"}},

	{"wrong argument count",
		mainClass + `class A { void f(int a) { f(1, 2); } }`,
		[]string{"wrong argument count:5:27-33: Method `f' expects 1 arguments, received 2"}},

	{"wrong argument type",
		mainClass + `class A { void f(int a) { f(false); } }`,
		[]string{"wrong argument type:5:29-33: Argument `a' of method `f' must be int, received boolean"}},

	{"missing return value",
		mainClass + `class A { int f() { } }`,
		[]string{"missing return value:5:15: Method `f' must return a value of type int"}},

	{"void method returns value",
		mainClass + `class A { void f() { return 1; } }`,
		[]string{"void method returns value:5:29: Method `f' is void and cannot return a value"}},

	{"variable declaration as branch",
		mainClass + `class A { void f() { if (true) int x = 1; } }`,
		[]string{"variable declaration as branch:5:36-40: Variable declaration cannot be the body of an if branch"}},

	{"condition not boolean",
		mainClass + `class A { void f() { while (1) { } } }`,
		[]string{"condition not boolean:5:29: Condition must be boolean, received int"}},

	{"integer literal out of range",
		mainClass + `class A { void f() { int x = 2147483648; } }`,
		[]string{"integer literal out of range:5:30-39: Integer literal 2147483648 out of range"}},

	{"method used as value",
		mainClass + `class A { int f() { return f; } }`,
		[]string{"method used as value:5:28: Method `f' cannot be used as a value"}},

	{"not a method",
		mainClass + `class A { int n; void f() { n(); } }`,
		[]string{"not a method:5:29: `n' is not a method"}},

	{"assign to length",
		mainClass + `class A { void f(int[] a) { a.length = 1; } }`,
		[]string{"assign to length:5:29-36: Cannot assign to the length of an array"}},

	{"index non-array",
		mainClass + `class A { void f(int a) { a[0] = 1; } }`,
		[]string{"index non-array:5:27: Cannot index a value of type int"}},

	{"unequal comparison",
		mainClass + `class A { void f() { boolean b = 1 == true; } }`,
		[]string{"unequal comparison:5:34-42: Operands of == must have the same type, received int and boolean"}},

	{"arithmetic on boolean",
		mainClass + `class A { void f() { int x = 1 + true; } }`,
		[]string{"arithmetic on boolean:5:30-37: Operator + requires int operands, received boolean"}},

	{"errors cascade once",
		mainClass + `class A { void f() { int x = y + 1; x = y; } }`,
		[]string{
			"errors cascade once:5:30: Identifier `y' not declared.",
			"errors cascade once:5:41: Identifier `y' not declared.",
		}},
}

func TestCheckInvalidPrograms(t *testing.T) {
	for _, tc := range checkerInvalidPrograms {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseAndCheck(t, tc.name, tc.program)
			if err == nil {
				t.Fatal("check succeeded, expected errors")
			}
			testutil.ExpectNoDiff(t, tc.errors, strings.Split(err.Error(), "\n"))
		})
	}
}

func TestCheckErrorListType(t *testing.T) {
	_, err := parseAndCheck(t, "x", `class A { }`)
	l, ok := err.(errors.ErrorList)
	if !ok {
		t.Fatalf("expected ErrorList, received %T", err)
	}
	if len(l) != 1 {
		t.Errorf("expected 1 error, received %d", len(l))
	}
}

func TestCheckAnnotations(t *testing.T) {
	pkg, err := parseAndCheck(t, "annotations",
		`class Main {
  public static void main(String[] args) {
    int[] xs = new int[2];
    System.out.println(xs.length);
  }
}`)
	testutil.FatalIfErr(t, err)

	if len(pkg.Classes) != 4 || !pkg.Classes[0].Bootstrap || pkg.Classes[3].Name != "Main" {
		t.Fatalf("bootstrap classes not prepended: %v", pkg.Classes)
	}
	if pkg.Entry == nil || pkg.Entry.QualifiedName() != "Main.main" || !pkg.Entry.IsEntry {
		t.Errorf("entry not found: %v", pkg.Entry)
	}
	if pkg.Println == nil || !pkg.Println.IsPrintln || pkg.Println.Class.Name != PrintStreamClass {
		t.Errorf("println not found: %v", pkg.Println)
	}

	call := pkg.Entry.Body[1].(*ast.CallStmt).Call
	if call.Decl != pkg.Println {
		t.Errorf("call not bound to println: %v", call.Decl)
	}
	length := call.Args[0].(*ast.QualifiedRef)
	if !length.IsLength || !types.Equals(length.Type(), types.Int) {
		t.Errorf("length not annotated: %v %s", length.IsLength, length.Type())
	}
	xs := length.Base.(*ast.IdRef)
	if xs.Decl != pkg.Entry.Body[0].(*ast.VarDeclStmt).Decl {
		t.Errorf("xs not bound to its declaration: %v", xs.Decl)
	}
	out := call.Method.(*ast.QualifiedRef).Base.(*ast.QualifiedRef)
	if fd, ok := out.Decl.(*ast.FieldDecl); !ok || fd.Name != OutField || !fd.IsStatic {
		t.Errorf("System.out not bound: %v", out.Decl)
	}
}

func TestCheckIdempotentBootstrap(t *testing.T) {
	pkg, err := parseAndCheck(t, "twice", mainClass)
	testutil.FatalIfErr(t, err)
	n := len(pkg.Classes)
	// A checked package already carries the predefined classes.
	pkg.Entry, pkg.Println = nil, nil
	for _, cd := range pkg.Classes {
		for _, md := range cd.Methods {
			md.IsEntry = false
		}
	}
	testutil.FatalIfErr(t, Check(pkg))
	if len(pkg.Classes) != n {
		t.Errorf("classes: expected %d, received %d", n, len(pkg.Classes))
	}
}
