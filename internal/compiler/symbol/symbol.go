// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package symbol implements the scope tables used to bind names in a
// miniJava program to their declarations.
package symbol

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/google/minijava/internal/compiler/position"
	"github.com/google/minijava/internal/compiler/types"
)

// Kind enumerates the kind of a Symbol.
type Kind int

// Kind enumerates the kinds of symbols found in the program text.
const (
	ClassSymbol  Kind = iota // Class names
	FieldSymbol              // Fields of a class
	MethodSymbol             // Methods of a class
	ParamSymbol              // Method parameters
	LocalSymbol              // Local variables
)

func (k Kind) String() string {
	switch k {
	case ClassSymbol:
		return "class"
	case FieldSymbol:
		return "field"
	case MethodSymbol:
		return "method"
	case ParamSymbol:
		return "parameter"
	case LocalSymbol:
		return "local variable"
	default:
		panic("unexpected symbolkind")
	}
}

// Symbol describes a named program object.
type Symbol struct {
	Name string             // identifier name
	Kind Kind               // kind of program object
	Type types.Type         // object's type
	Pos  *position.Position // Source file position of definition
	Decl interface{}        // the declaration node this name is bound to
	Used bool               // Optional marker that this symbol is used after declaration.
}

// NewSymbol creates a record of a given symbol kind, named name, found at pos.
func NewSymbol(name string, kind Kind, pos *position.Position) *Symbol {
	return &Symbol{Name: name, Kind: kind, Type: types.Error, Pos: pos}
}

// Table maintains the identifiers declared by one program construct: the
// whole program, a class, or a method.  A table holds a stack of mappings,
// innermost last, so that a method's blocks can be opened and closed without
// creating new tables.  The parent link is only followed by lookups.
type Table struct {
	Name   string // describes the construct, for debugging
	Parent *Table

	scopes []map[string]*Symbol
}

// NewTable creates a table with a single mapping, enclosed by parent.
func NewTable(name string, parent *Table) *Table {
	return &Table{Name: name, Parent: parent, scopes: []map[string]*Symbol{{}}}
}

// Push opens a new innermost mapping.
func (t *Table) Push() {
	t.scopes = append(t.scopes, make(map[string]*Symbol))
}

// Pop discards the innermost mapping and the names bound in it.  The
// outermost mapping is never popped.
func (t *Table) Pop() {
	if len(t.scopes) == 1 {
		panic("symbol table " + t.Name + ": pop of outermost scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the number of open mappings.
func (t *Table) Depth() int {
	return len(t.scopes)
}

// Bind attempts to insert a symbol into the innermost mapping.  If any
// mapping of this table already contains a symbol alt with the same name, the
// table is unchanged and the function returns alt.  Otherwise the symbol is
// inserted, and returns nil.
func (t *Table) Bind(sym *Symbol) (alt *Symbol) {
	if alt = t.LookupLocal(sym.Name); alt == nil {
		t.scopes[len(t.scopes)-1][sym.Name] = sym
	}
	return
}

// LookupLocal returns the symbol with the given name bound in this table,
// searching mappings from innermost to outermost, otherwise nil.
func (t *Table) LookupLocal(name string) *Symbol {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym := t.scopes[i][name]; sym != nil {
			return sym
		}
	}
	return nil
}

// Lookup returns the symbol with the given name if it is found in this or any
// parent table, otherwise nil.
func (t *Table) Lookup(name string) *Symbol {
	for table := t; table != nil; table = table.Parent {
		if sym := table.LookupLocal(name); sym != nil {
			return sym
		}
	}
	return nil
}

// LookupKind is Lookup restricted to symbols of one kind.  Symbols of other
// kinds with the same name are skipped, not treated as a miss.
func (t *Table) LookupKind(name string, kind Kind) *Symbol {
	for table := t; table != nil; table = table.Parent {
		for i := len(table.scopes) - 1; i >= 0; i-- {
			if sym := table.scopes[i][name]; sym != nil && sym.Kind == kind {
				return sym
			}
		}
	}
	return nil
}

// Owner returns the table in the parent chain that binds name, or nil.
func (t *Table) Owner(name string) *Table {
	for table := t; table != nil; table = table.Parent {
		if table.LookupLocal(name) != nil {
			return table
		}
	}
	return nil
}

// String prints the table and all parents to a string, recursing up to the
// root table.  This method is only used for debugging.
func (t *Table) String() string {
	if t == nil {
		return "table <nil> {}\n"
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "table %s {\n", t.Name)
	for depth, scope := range t.scopes {
		names := make([]string, 0, len(scope))
		for name := range scope {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sym := scope[name]
			fmt.Fprintf(&buf, "\t%d %q: %s %s %v\n", depth, name, sym.Kind, sym.Type, sym.Used)
		}
	}
	if t.Parent != nil {
		fmt.Fprintf(&buf, "%s", t.Parent.String())
	}
	fmt.Fprintf(&buf, "}\n")
	return buf.String()
}
