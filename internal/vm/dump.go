// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package vm

import (
	"fmt"
	"io"

	"github.com/google/minijava/internal/vm/code"
)

// Dump writes the heap, the stack and the registers.  Call frames on the
// stack are separated, and their link data labelled.
func (v *VM) Dump(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "At instruction %d, state of mJAM data store and registers is:\n", v.cp)
	if m, ok := v.syms.MethodContaining(v.cp); ok {
		if line, ok := v.syms.Line(v.cp); ok {
			fmt.Fprintf(w, "(in %s, line %d)\n", m.Name, line+1)
		} else {
			fmt.Fprintf(w, "(in %s)\n", m.Name)
		}
	}
	fmt.Fprintln(w)
	if v.ht == v.hb {
		fmt.Fprintln(w, "            |--------|          (heap is empty)")
	} else {
		fmt.Fprintln(w, "      HB--> ")
		fmt.Fprintln(w, "            |--------|")
		for addr := v.hb - 1; addr >= v.ht; addr-- {
			marker := "      "
			switch addr {
			case v.ob:
				marker = "OB--> "
			case v.ht:
				marker = "HT--> "
			}
			fmt.Fprintf(w, "%-6s%s|%8d|\n", fmt.Sprintf("%d:", addr), marker, v.data[addr])
		}
		fmt.Fprintln(w, "            |--------|")
	}
	fmt.Fprintln(w, "            |////////|")
	fmt.Fprintln(w, "            |////////|")
	if v.st == code.StackBase {
		fmt.Fprintln(w, "            |--------|          (stack is empty)")
	} else {
		link := v.lb
		fmt.Fprintln(w, "      ST--> |////////|")
		fmt.Fprintln(w, "            |--------|")
		for addr := v.st - 1; addr >= code.StackBase; addr-- {
			marker := "      "
			switch addr {
			case code.StackBase:
				marker = "SB--> "
			case v.lb:
				marker = "LB--> "
			}
			word := v.data[addr]
			var cell string
			switch {
			case link != code.StackBase && addr == link:
				cell = fmt.Sprintf("|OB=%5d|", word)
			case link != code.StackBase && addr == link+1:
				cell = fmt.Sprintf("|DL=%5d|", word)
			case link != code.StackBase && addr == link+2:
				cell = fmt.Sprintf("|RA=%5d|", word)
			default:
				cell = fmt.Sprintf("|%8d|", word)
			}
			if c, ok := v.syms.ClassAt(addr); ok {
				cell += " " + c.Name
			}
			fmt.Fprintf(w, "%-6s%s%s\n", fmt.Sprintf("%d: ", addr), marker, cell)
			if addr == link {
				fmt.Fprintln(w, "            |--------|")
				if addr+1 < len(v.data) {
					link = int(v.data[addr+1])
				}
			}
		}
	}
	fmt.Fprintln(w)
}

// ShowStatus writes the status line.  Unless the program halted normally,
// the failure detail and the full dump follow.
func (v *VM) ShowStatus(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "*** %s\n", v.status)
	if v.status == Halted {
		return
	}
	if v.detail != "" {
		fmt.Fprintf(w, "*** %s\n", v.detail)
	}
	v.Dump(w)
}
