// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/minijava/internal/compiler/ast"
	"github.com/google/minijava/internal/testutil"
)

var parserTests = []struct {
	name    string
	program string
}{
	{"empty", ""},
	{"empty class", "class A {}"},
	{"fields",
		`class A {
  int a;
  private boolean b;
  public static A c;
  int[] d;
  B[] e;
}`},
	{"entry point",
		`class Main {
  public static void main(String[] args) {
    System.out.println(3);
  }
}`},
	{"methods",
		`class A {
  int n;
  public int get() { return n; }
  private void set(int v, boolean w) { n = v; return; }
  static A make() { return new A(); }
}`},
	{"declarations",
		`class A {
  void f() {
    int x = 1;
    boolean b = true;
    A a = new A();
    A[] as = new A[3];
    int[] xs = new int[x + 1];
  }
}`},
	{"assignments and references",
		`class A {
  int[] xs;
  A next;
  void f() {
    xs[0] = 1;
    this.xs[1] = xs.length;
    next.next.xs[2] = this.next.xs[0];
    a[b[c]] = d.e[f].g;
  }
}`},
	{"control flow",
		`class A {
  void f() {
    if (x < 3) y = 1; else { y = 2; }
    while (!done) { i = i + 1; if (i == 10) done = true; }
    { }
  }
}`},
	{"calls",
		`class A {
  int f(int a, int b) {
    g();
    this.g();
    other.h(1, f(2, 3), x[4]);
    return f(a, b) + k.m();
  }
}`},
	{"comments",
		`// leading
class A { /* inline */ int x; // trailing
  /* multi
     line */
}`},
}

func TestParserRoundTrip(t *testing.T) {
	for _, tc := range parserTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			pkg, err := Parse(tc.name, strings.NewReader(tc.program))
			if err != nil {
				t.Fatalf("Parse(%q) error: %s", tc.program, err)
			}
			s := Sexp{EmitTypes: true}
			t.Logf("AST:\n%s", s.Dump(pkg))
		})
	}
}

// render prints an expression fully parenthesised.
func render(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", render(e.Lhs), e.Op, render(e.Rhs))
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s%s)", e.Op, render(e.Expr))
	case *ast.IntLit:
		return e.Spelling
	case *ast.BoolLit:
		return fmt.Sprintf("%t", e.Value)
	case *ast.IdRef:
		return e.Name
	case *ast.ThisRef:
		return "this"
	case *ast.QualifiedRef:
		return render(e.Base) + "." + e.Name
	case *ast.IndexedRef:
		return render(e.Base) + "[" + render(e.Index) + "]"
	case *ast.CallExpr:
		var args []string
		for _, a := range e.Args {
			args = append(args, render(a))
		}
		return render(e.Method) + "(" + strings.Join(args, ", ") + ")"
	case *ast.NewObjectExpr:
		return "new " + e.ClassName + "()"
	case *ast.NewArrayExpr:
		return fmt.Sprintf("new %s[%s]", e.Elem, render(e.Size))
	}
	return fmt.Sprintf("?%T", e)
}

func TestExpressionPrecedence(t *testing.T) {
	for _, tc := range []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"a || b && c", "(a || (b && c))"},
		{"a == b < c", "(a == (b < c))"},
		{"x < y + 1 && !b || c != d", "(((x < (y + 1)) && (!b)) || (c != d))"},
		{"-x * -3", "((-x) * (-3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"- - 1", "(-(-1))"},
		{"a.b[c].d(e)", "a.b[c].d(e)"},
		{"this.f(1, g())", "this.f(1, g())"},
		{"new A()", "new A()"},
		{"new int[n * 2]", "new int[(n * 2)]"},
		{"new A[3].length", "?"},
	} {
		prog := "class A { void f() { x = " + tc.expr + "; } }"
		pkg, err := Parse("expr", strings.NewReader(prog))
		if tc.want == "?" {
			if err == nil {
				t.Errorf("Parse(%q) succeeded", tc.expr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) error: %s", tc.expr, err)
			continue
		}
		s := pkg.Classes[0].Methods[0].Body[0].(*ast.AssignStmt)
		if got := render(s.Rhs); got != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.expr, got, tc.want)
		}
	}
}

func TestStatementKinds(t *testing.T) {
	prog := `class A {
  int f() {
    A[] as = new A[1];
    as[0] = null0;
    A a = as[0];
    int[] xs = new int[2];
    xs[1] = 3;
    g(a);
    return xs[1];
  }
}`
	pkg, err := Parse("stmts", strings.NewReader(prog))
	testutil.FatalIfErr(t, err)
	m := pkg.Classes[0].Methods[0]
	var kinds []string
	for _, s := range m.Body {
		kinds = append(kinds, fmt.Sprintf("%T", s))
	}
	testutil.ExpectNoDiff(t, []string{
		"*ast.VarDeclStmt",
		"*ast.AssignStmt",
		"*ast.VarDeclStmt",
		"*ast.VarDeclStmt",
		"*ast.AssignStmt",
		"*ast.CallStmt",
	}, kinds)
	if m.Return == nil {
		t.Fatal("no return expression")
	}
	if got := render(m.Return); got != "xs[1]" {
		t.Errorf("return %s", got)
	}
	d := m.Body[0].(*ast.VarDeclStmt).Decl
	if d.Name != "as" || d.Type.String() != "A[]" {
		t.Errorf("first declaration is %s %s", d.Type, d.Name)
	}
}

func TestMemberModifiers(t *testing.T) {
	prog := `class A {
  private static int a;
  public boolean b;
  static void c() {}
  private int[] d(A x) { return null0; }
}`
	pkg, err := Parse("mods", strings.NewReader(prog))
	testutil.FatalIfErr(t, err)
	c := pkg.Classes[0]
	if len(c.Fields) != 2 || len(c.Methods) != 2 {
		t.Fatalf("got %d fields and %d methods", len(c.Fields), len(c.Methods))
	}
	if f := c.Fields[0]; !f.IsPrivate || !f.IsStatic || f.Type.String() != "int" {
		t.Errorf("field a: %+v", f)
	}
	if f := c.Fields[1]; f.IsPrivate || f.IsStatic || f.Type.String() != "boolean" {
		t.Errorf("field b: %+v", f)
	}
	if m := c.Methods[0]; !m.IsStatic || m.IsPrivate || m.Type.String() != "void" || m.Return != nil {
		t.Errorf("method c: %+v", m)
	}
	if m := c.Methods[1]; !m.IsPrivate || len(m.Params) != 1 || m.Params[0].Type.String() != "A" || m.Type.String() != "int[]" {
		t.Errorf("method d: %+v", m)
	}
}

var parserInvalidPrograms = []struct {
	name    string
	program string
	want    string
}{
	{"return not last",
		"class A { void f() { return 1; x = 2; } }",
		"invalid:1:32: syntax error: return must be the last statement of a method"},
	{"return in block",
		"class A { void f() { { return; } } }",
		"invalid:1:24-29: syntax error: return must be the last statement of a method"},
	{"missing expression",
		"class A { void f() { x = ; } }",
		"invalid:1:26: syntax error: expecting expression, found `;'"},
	{"top level junk",
		"int x;",
		"invalid:1:1-3: syntax error: expecting class declaration, found `int'"},
	{"bare reference",
		"class A { void f() { a.b; } }",
		"invalid:1:25: syntax error: expecting `=' or `(', found `;'"},
	{"missing semicolon",
		"class A { void f() { x = 1 } }",
		"invalid:1:28: syntax error: expecting `;', found `}'"},
	{"bad character",
		"class A { # }",
		"invalid:1:11: Unexpected input: '#'"},
	{"parameter without name",
		"class A { void f(int) {} }",
		"invalid:1:21: syntax error: expecting identifier, found `)'"},
	{"field without semicolon",
		"class A { int f }",
		"invalid:1:17: syntax error: expecting `(', found `}'"},
	{"new without class",
		"class A { void f() { x = new 3; } }",
		"invalid:1:30: syntax error: expecting class name or int after new, found NUM `3'"},
	{"unterminated class",
		"class A { int x;",
		"invalid:1:17: syntax error: expecting type, found end of file"},
}

func TestParseInvalidPrograms(t *testing.T) {
	for _, tc := range parserInvalidPrograms {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			pkg, err := Parse("invalid", strings.NewReader(tc.program))
			if err == nil {
				t.Fatalf("Parse(%q) succeeded:\n%s", tc.program, (&Sexp{}).Dump(pkg))
			}
			if got := err.Error(); got != tc.want {
				t.Errorf("error:\n got %q\nwant %q", got, tc.want)
			}
		})
	}
}

func TestSexpDump(t *testing.T) {
	pkg, err := Parse("t", strings.NewReader("class A { int f; }"))
	testutil.FatalIfErr(t, err)
	want := `( ;;*ast.Package @ t:1:1
  ( ;;*ast.ClassDecl @ t:1:7
    class A
    ( ;;*ast.FieldDecl @ t:1:15
      int f
    )
  )
)
`
	s := Sexp{}
	testutil.ExpectNoDiff(t, want, s.Dump(pkg))
}
