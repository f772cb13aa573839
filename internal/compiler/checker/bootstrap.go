// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package checker

import (
	"github.com/google/minijava/internal/compiler/ast"
	"github.com/google/minijava/internal/compiler/position"
	"github.com/google/minijava/internal/compiler/types"
)

// bootstrapFile is the pseudo file name of the predefined classes.
const bootstrapFile = "<predefined>"

// Names of the predefined classes and members.
const (
	StringClass      = "String"
	PrintStreamClass = "_PrintStream"
	SystemClass      = "System"
	PrintlnMethod    = "println"
	OutField         = "out"
	EntryMethod      = "main"
)

func bootstrapPos(line int) position.Position {
	return position.Position{Filename: bootstrapFile, Line: line}
}

// bootstrapClasses returns fresh declarations of
//
//	class String { }
//	class _PrintStream { public void println(int n) { } }
//	class System { public static _PrintStream out; }
func bootstrapClasses() []*ast.ClassDecl {
	return []*ast.ClassDecl{
		{
			P:         bootstrapPos(0),
			Name:      StringClass,
			Bootstrap: true,
		},
		{
			P:         bootstrapPos(1),
			Name:      PrintStreamClass,
			Bootstrap: true,
			Methods: []*ast.MethodDecl{{
				P:      bootstrapPos(1),
				Name:   PrintlnMethod,
				Type:   types.Void,
				Params: []*ast.ParamDecl{{P: bootstrapPos(1), Name: "n", Type: types.Int}},
			}},
		},
		{
			P:         bootstrapPos(2),
			Name:      SystemClass,
			Bootstrap: true,
			Fields: []*ast.FieldDecl{{
				P:        bootstrapPos(2),
				Name:     OutField,
				Type:     types.Class(PrintStreamClass),
				IsStatic: true,
			}},
		},
	}
}

// hasBootstrap reports whether the package already starts with the
// predefined classes.
func hasBootstrap(pkg *ast.Package) bool {
	return len(pkg.Classes) > 0 && pkg.Classes[0].Bootstrap
}
