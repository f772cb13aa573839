// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Labels assigns a label to every code address that is the target of a jump
// or a call, numbering them in address order from L10.
func Labels(prog []Instr) map[int]string {
	targets := make(map[int]bool)
	for addr, i := range prog {
		switch i.Op {
		case Call, Calli:
			if i.R == CB {
				targets[i.D] = true
			}
		case Jump:
			targets[addr+1] = true
			if i.R == CB {
				targets[i.D] = true
			}
		case Jumpif:
			if i.R == CB {
				targets[i.D] = true
			}
		}
	}
	addrs := make([]int, 0, len(targets))
	for a := range targets {
		addrs = append(addrs, a)
	}
	sort.Ints(addrs)
	labels := make(map[int]string, len(addrs))
	for n, a := range addrs {
		labels[a] = fmt.Sprintf("L%d", n+10)
	}
	return labels
}

// FormatInstr renders a single instruction in assembler syntax, using labels
// for code addresses where one is known.
func FormatInstr(i Instr, labels map[int]string) string {
	target := "***"
	if i.R == CB {
		if l, ok := labels[i.D]; ok {
			target = l
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-7s", i.Op)
	blankN := func() { b.WriteString("      ") }
	writeN := func() { fmt.Fprintf(&b, "%-6s", fmt.Sprintf("(%d)", i.N)) }
	writeR := func() { fmt.Fprintf(&b, "[%s]", i.R) }
	switch i.Op {
	case Load, Loada, Store:
		blankN()
		fmt.Fprintf(&b, "%d", i.D)
		writeR()
	case Loadi, Storei, Jumpi:
	case Loadl, Calld, Push, Pop:
		blankN()
		fmt.Fprintf(&b, "%d", i.D)
	case Call:
		blankN()
		if i.R == PB {
			fmt.Fprintf(&b, "%-8s", Prim(i.D))
		} else {
			b.WriteString(target)
		}
	case Calli, Jump:
		blankN()
		b.WriteString(target)
	case Return:
		writeN()
		fmt.Fprintf(&b, "%d", i.D)
	case Jumpif:
		writeN()
		b.WriteString(target)
	case Halt:
		writeN()
	default:
		b.WriteString("????  ")
		writeN()
		fmt.Fprintf(&b, "%d", i.D)
		writeR()
	}
	return strings.TrimRight(b.String(), " ")
}

// Disassemble writes an assembler listing of prog to w.  When symbols are
// available, method entry points and source lines are annotated.
func Disassemble(w io.Writer, prog []Instr, syms *Symbols) error {
	bw := bufio.NewWriter(w)
	labels := Labels(prog)
	for addr, i := range prog {
		if m, ok := syms.MethodAt(addr); ok {
			fmt.Fprintf(bw, "     ; %s\n", m.Name)
		}
		fmt.Fprintf(bw, "%3d  ", addr)
		if l, ok := labels[addr]; ok {
			fmt.Fprintf(bw, "%-7s", l+":")
		} else {
			bw.WriteString("       ")
		}
		text := FormatInstr(i, labels)
		if line, ok := syms.Line(addr); ok {
			fmt.Fprintf(bw, "%-32s; line %d", text, line+1)
		} else {
			bw.WriteString(text)
		}
		bw.WriteString("\n")
	}
	return errors.Wrap(bw.Flush(), "writing disassembly")
}
