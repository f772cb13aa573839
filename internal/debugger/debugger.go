// Copyright 2018 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package debugger provides an interactive shell for stepping through a
// program on the mJAM machine.
package debugger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/vm"
	"github.com/google/minijava/internal/vm/code"
	"github.com/pkg/errors"
)

var help = []string{
	"p or print:",
	"     print entire machine state",
	"l or list [offset] [size]:",
	"     print the instructions around CP + offset, with size lines on either side",
	"     offset = 0 and size = 2 by default",
	"b or break [address]:",
	"     set a breakpoint at address",
	"     address = CP by default",
	"del address...:",
	"     delete one or more breakpoints",
	"n or next:",
	"     execute one instruction",
	"c or continue:",
	"     continue running the program from current position, until next breakpoint or completion",
	"r or run:",
	"     run the program from start, until next breakpoint or completion",
	"i or info:",
	"     list the current breakpoints",
	"q, quit or <EOF>:",
	"     quit the debugger",
	"Simply press enter to repeat the last command",
	"? or help:",
	"     print this help",
}

// Debugger runs commands read from an input against a VM.
type Debugger struct {
	vm    *vm.VM
	in    *bufio.Scanner
	out   io.Writer
	lines []string // listing line for each code address
}

// New creates a Debugger for v that reads commands from in and writes its
// responses to out.
func New(v *vm.VM, in io.Reader, out io.Writer) *Debugger {
	prog := v.Program()
	labels := code.Labels(prog)
	lines := make([]string, len(prog))
	for addr, i := range prog {
		lines[addr] = fmt.Sprintf("%3d  %-7s%s", addr, labelOf(labels, addr), code.FormatInstr(i, labels))
	}
	return &Debugger{vm: v, in: bufio.NewScanner(in), out: out, lines: lines}
}

func labelOf(labels map[int]string, addr int) string {
	if l, ok := labels[addr]; ok {
		return l + ":"
	}
	return ""
}

func (d *Debugger) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}

func (d *Debugger) line(addr int) string {
	if addr < code.CodeBase || addr-code.CodeBase >= len(d.lines) {
		return strconv.Itoa(addr)
	}
	return d.lines[addr-code.CodeBase]
}

// Run reads and executes commands until quit or the end of the input.
func (d *Debugger) Run(ctx context.Context) error {
	var last []string
	for {
		d.printf("\n: ")
		if !d.in.Scan() {
			d.printf("\n")
			return errors.Wrap(d.in.Err(), "reading debugger command")
		}
		args := strings.Fields(d.in.Text())
		if len(args) == 0 {
			args = last
		}
		last = args
		if len(args) == 0 {
			continue
		}
		glog.V(2).Infof("debugger command %q", args)
		if quit := d.execute(ctx, args[0], args[1:]); quit {
			return nil
		}
	}
}

func (d *Debugger) execute(ctx context.Context, cmd string, args []string) (quit bool) {
	switch strings.ToLower(cmd) {
	case "?", "help":
		d.printHelp()
	case "p", "print":
		d.vm.Dump(d.out)
	case "l", "list":
		d.list(args)
	case "b", "break":
		d.setBreakpoint(args)
	case "del":
		for _, a := range args {
			addr, err := strconv.Atoi(a)
			if err != nil || !d.vm.ClearBreakpoint(addr) {
				d.printf("No breakpoint at %s\n", a)
			}
		}
	case "n", "next":
		if d.vm.Status() != vm.Running {
			d.printf("Program is not running\n")
			return
		}
		d.vm.Step()
		d.report(false)
	case "c", "continue":
		if d.vm.Status() != vm.Running {
			d.printf("Program is not running\n")
			return
		}
		d.vm.Run(ctx)
		d.report(true)
	case "r", "run":
		d.vm.Reset()
		// Run only stops after executing at least one instruction.
		if d.vm.Status() == vm.Running && d.vm.IsBreakpoint(d.vm.CP()) {
			d.printf("Breakpoint hit: %s\n", d.line(d.vm.CP()))
			return
		}
		d.vm.Run(ctx)
		d.report(true)
	case "i", "info":
		d.printf("Breakpoints:\n")
		for _, b := range d.vm.Breakpoints() {
			d.printf("\t%s\n", d.line(b))
		}
	case "q", "quit":
		return true
	default:
		d.printf("Unknown command '%s'.\n", cmd)
		d.printHelp()
	}
	return false
}

func (d *Debugger) printHelp() {
	for _, l := range help {
		d.printf("  %s\n", l)
	}
}

// report describes where the machine stopped after stepping or running.
func (d *Debugger) report(ran bool) {
	switch {
	case d.vm.Status() != vm.Running:
		d.vm.ShowStatus(d.out)
	case ran && d.vm.Paused():
		d.printf("Breakpoint hit: %s\n", d.line(d.vm.CP()))
	}
}

func (d *Debugger) list(args []string) {
	offset, size := 0, 2
	var err error
	if len(args) > 0 {
		if offset, err = strconv.Atoi(args[0]); err != nil {
			d.printf("Invalid offset %q\n", args[0])
			return
		}
	}
	if len(args) > 1 {
		if size, err = strconv.Atoi(args[1]); err != nil {
			d.printf("Invalid size %q\n", args[1])
			return
		}
	}
	cp := d.vm.CP()
	for a := cp + offset - size; a <= cp+offset+size; a++ {
		if a < code.CodeBase || a-code.CodeBase >= len(d.lines) {
			continue
		}
		marker := "  "
		if a == cp {
			marker = " >"
		}
		d.printf("%s%s\n", marker, d.line(a))
	}
}

func (d *Debugger) setBreakpoint(args []string) {
	addr := d.vm.CP()
	if len(args) > 0 {
		var err error
		if addr, err = strconv.Atoi(args[0]); err != nil {
			d.printf("Invalid address %q\n", args[0])
			return
		}
	}
	if err := d.vm.SetBreakpoint(addr); err != nil {
		d.printf("%s\n", err)
		return
	}
	d.printf("Added breakpoint at %s\n", d.line(addr))
}
