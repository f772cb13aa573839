// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package vm provides the mJAM abstract machine that executes compiled
// miniJava programs.
package vm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/vm/code"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// VM is an mJAM machine loaded with one program.  The code segment holds the
// program from CB upward, and the primitive routines follow the code segment
// capacity.  The data store holds the stack growing up from SB and the heap
// growing down from HB.
type VM struct {
	name string
	prog []code.Instr
	syms *code.Symbols

	codeCapacity int
	data         []int32

	// Registers.  CB and SB are fixed at zero.
	ct, cp, pb, pt     int
	st, lb, hb, ht, ob int

	status Status
	detail string // describes the cause of a failure status

	in          io.Reader
	out         io.Writer
	currentChar int // last character read, -1 at end of input

	breakpoints map[int]bool
	paused      bool

	HardCrash bool // User settable flag to make the VM crash instead of recover on panic.

	runtimeErrorMu sync.RWMutex // protects runtimeError
	runtimeError   string       // records the last runtime error from fail()
}

// Option configures a VM.
type Option func(*VM) error

// Input sets the reader used by the input primitives.
func Input(r io.Reader) Option {
	return func(v *VM) error {
		v.in = r
		return nil
	}
}

// Output sets the writer used by the output primitives and the dump.
func Output(w io.Writer) Option {
	return func(v *VM) error {
		v.out = w
		return nil
	}
}

// DataStoreSize sets the number of words in the data store.
func DataStoreSize(n int) Option {
	return func(v *VM) error {
		if n <= code.LinkDataSize {
			return errors.Errorf("data store size %d too small", n)
		}
		v.data = make([]int32, n)
		return nil
	}
}

// CodeCapacity sets the size of the code segment, which fixes the address of
// the primitive segment.
func CodeCapacity(n int) Option {
	return func(v *VM) error {
		if n <= 0 {
			return errors.Errorf("invalid code capacity %d", n)
		}
		v.codeCapacity = n
		return nil
	}
}

// Symbols attaches debugging information used in failure reports and the
// disassembly.
func Symbols(s *code.Symbols) Option {
	return func(v *VM) error {
		v.syms = s
		return nil
	}
}

// Breakpoints sets breakpoints at each code address.
func Breakpoints(addrs ...int) Option {
	return func(v *VM) error {
		for _, a := range addrs {
			if err := v.SetBreakpoint(a); err != nil {
				return err
			}
		}
		return nil
	}
}

// HardCrash makes the VM panic on an internal error instead of failing the
// program.
func HardCrash() Option {
	return func(v *VM) error {
		v.HardCrash = true
		return nil
	}
}

// New creates a new virtual machine with the given name, loaded with the
// program and symbols of obj.
func New(name string, obj *code.Object, options ...Option) (*VM, error) {
	v := &VM{
		name:         name,
		prog:         obj.Program,
		syms:         obj.Symbols,
		codeCapacity: code.DefaultCodeCapacity,
		in:           consoleReader(),
		out:          consoleWriter(),
		breakpoints:  make(map[int]bool),
	}
	for _, o := range options {
		if err := o(v); err != nil {
			return nil, err
		}
	}
	if v.data == nil {
		v.data = make([]int32, code.DefaultDataStoreSize)
	}
	if len(v.prog) > v.codeCapacity {
		return nil, errors.Errorf("program of %d instructions exceeds the code capacity %d", len(v.prog), v.codeCapacity)
	}
	v.Reset()
	return v, nil
}

// Reset clears the data store and restarts the program from its first
// instruction.  Breakpoints are kept.
func (v *VM) Reset() {
	for i := range v.data {
		v.data[i] = 0
	}
	v.ct = code.CodeBase + len(v.prog)
	v.pb = code.CodeBase + v.codeCapacity
	v.pt = v.pb + int(code.NumPrims)
	v.hb = len(v.data)
	v.st = code.StackBase
	v.ht = v.hb
	v.lb = code.StackBase
	v.cp = code.CodeBase
	v.ob = code.NullRep
	v.status = Running
	v.detail = ""
	v.currentChar = 0
	v.paused = false
	if v.ct == code.CodeBase {
		v.fail(FailedInvalidCodeAddress, "empty program")
	}
}

// Status returns the current status of the machine.
func (v *VM) Status() Status {
	return v.status
}

// Detail returns the cause of a failure status.
func (v *VM) Detail() string {
	return v.detail
}

// CP returns the code pointer: the address of the next instruction.
func (v *VM) CP() int {
	return v.cp
}

// Program returns the loaded bytecode.
func (v *VM) Program() []code.Instr {
	return v.prog
}

// Paused reports whether the last Run stopped at a breakpoint.
func (v *VM) Paused() bool {
	return v.paused
}

// SetBreakpoint stops Run before the instruction at addr.
func (v *VM) SetBreakpoint(addr int) error {
	if addr < code.CodeBase || addr >= code.CodeBase+len(v.prog) {
		return errors.Errorf("breakpoint address %d outside code [%d, %d)", addr, code.CodeBase, code.CodeBase+len(v.prog))
	}
	v.breakpoints[addr] = true
	return nil
}

// IsBreakpoint reports whether there is a breakpoint at addr.
func (v *VM) IsBreakpoint(addr int) bool {
	return v.breakpoints[addr]
}

// ClearBreakpoint removes the breakpoint at addr, reporting whether there was
// one.
func (v *VM) ClearBreakpoint(addr int) bool {
	if !v.breakpoints[addr] {
		return false
	}
	delete(v.breakpoints, addr)
	return true
}

// Breakpoints returns the breakpoint addresses in order.
func (v *VM) Breakpoints() []int {
	r := make([]int, 0, len(v.breakpoints))
	for a := range v.breakpoints {
		r = append(r, a)
	}
	sort.Ints(r)
	return r
}

// Run executes instructions until the machine reaches a terminal status or
// the code pointer reaches a breakpoint.
func (v *VM) Run(ctx context.Context) Status {
	_, span := trace.StartSpan(ctx, "vm.Run")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("prog", v.name))

	start := time.Now()
	var executed int64
	defer func() {
		instructionsExecuted.WithLabelValues(v.name).Add(float64(executed))
		runDurations.WithLabelValues(v.name).Observe(time.Since(start).Seconds())
		if v.status != Running {
			terminations.WithLabelValues(v.name, v.status.Name()).Inc()
			span.AddAttributes(trace.StringAttribute("status", v.status.Name()))
		}
	}()

	v.paused = false
	for v.status == Running {
		v.step()
		executed++
		if v.status == Running && v.breakpoints[v.cp] {
			glog.V(1).Infof("%s: breakpoint at %d", v.name, v.cp)
			v.paused = true
			break
		}
	}
	return v.status
}

// Step executes a single instruction, if the machine is running.
func (v *VM) Step() Status {
	if v.status == Running {
		v.step()
		instructionsExecuted.WithLabelValues(v.name).Inc()
		if v.status != Running {
			terminations.WithLabelValues(v.name, v.status.Name()).Inc()
		}
	}
	return v.status
}

// step executes the instruction at CP.  Unexpected panics fail the program
// with an invalid instruction unless HardCrash is set.
func (v *VM) step() {
	defer func() {
		if r := recover(); r != nil {
			if v.HardCrash {
				panic(r)
			}
			glog.Infof("%s: panic at instruction %d: %v\n%s", v.name, v.cp, r, debug.Stack())
			v.fail(FailedInvalidInstruction, "internal error: %v", r)
		}
	}()
	v.execute(v.prog[v.cp-code.CodeBase])
}

// fail sets a failure status and records the runtime error.
func (v *VM) fail(s Status, format string, args ...interface{}) {
	if v.status != Running {
		return
	}
	v.status = s
	v.detail = fmt.Sprintf(format, args...)
	ProgRuntimeErrors.Add(v.name, 1)

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s\n", v.detail)
	fmt.Fprintf(&b, "Error occurred at instruction %d", v.cp)
	if v.cp >= code.CodeBase && v.cp < v.ct {
		fmt.Fprintf(&b, " %s", v.prog[v.cp-code.CodeBase])
	}
	if m, ok := v.syms.MethodContaining(v.cp); ok {
		fmt.Fprintf(&b, ", in %s", m.Name)
	}
	if line, ok := v.syms.Line(v.cp); ok {
		fmt.Fprintf(&b, " at line %d", line+1)
	}
	v.runtimeErrorMu.Lock()
	v.runtimeError = b.String()
	v.runtimeErrorMu.Unlock()
	glog.V(1).Infof("%s: runtime error: %s", v.name, v.runtimeError)
}

// RuntimeErrorString returns the last runtime error that the program encountered.
func (v *VM) RuntimeErrorString() string {
	v.runtimeErrorMu.RLock()
	defer v.runtimeErrorMu.RUnlock()
	return v.runtimeError
}

// DumpByteCode emits the program disassembly to a string.
func (v *VM) DumpByteCode() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Prog: %s\n", v.name)
	if err := code.Disassemble(&b, v.prog, v.syms); err != nil {
		glog.Infof("disassemble error: %s", err)
	}
	return b.String()
}
