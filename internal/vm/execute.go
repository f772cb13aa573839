// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package vm

import (
	"github.com/google/minijava/internal/vm/code"
)

// reg returns the content of register r.
func (v *VM) reg(r code.Reg) (int, bool) {
	switch r {
	case code.ZR:
		return 0, true
	case code.CB:
		return code.CodeBase, true
	case code.CT:
		return v.ct, true
	case code.CP:
		return v.cp, true
	case code.PB:
		return v.pb, true
	case code.PT:
		return v.pt, true
	case code.SB:
		return code.StackBase, true
	case code.ST:
		return v.st, true
	case code.LB:
		return v.lb, true
	case code.HB:
		return v.hb, true
	case code.HT:
		return v.ht, true
	case code.OB:
		return v.ob, true
	}
	v.fail(FailedInvalidInstruction, "invalid register %d", int(r))
	return 0, false
}

// effective returns the address d[r] of an instruction.
func (v *VM) effective(i code.Instr) (int, bool) {
	base, ok := v.reg(i.R)
	return base + i.D, ok
}

// read returns the data word at addr.
func (v *VM) read(addr int) (int, bool) {
	if addr < 0 || addr >= len(v.data) {
		v.fail(FailedInvalidInstruction, "data address %d outside data store [0, %d)", addr, len(v.data))
		return 0, false
	}
	return int(v.data[addr]), true
}

// write stores value at the data word addr.
func (v *VM) write(addr, value int) bool {
	if addr < 0 || addr >= len(v.data) {
		v.fail(FailedInvalidInstruction, "data address %d outside data store [0, %d)", addr, len(v.data))
		return false
	}
	v.data[addr] = int32(value)
	return true
}

// checkSpace fails the program if the stack cannot grow by n words without
// meeting the heap.
func (v *VM) checkSpace(n int) bool {
	if v.ht-v.st < n {
		v.fail(FailedDataStoreFull, "no room for %d words between stack top %d and heap top %d", n, v.st, v.ht)
		return false
	}
	return true
}

func (v *VM) push(value int) bool {
	if !v.checkSpace(1) {
		return false
	}
	v.data[v.st] = int32(value)
	v.st++
	return true
}

func (v *VM) pop() (int, bool) {
	if v.st <= code.StackBase {
		v.fail(FailedInvalidInstruction, "pop of empty stack")
		return 0, false
	}
	v.st--
	return int(v.data[v.st]), true
}

// args returns the top n words of the stack, deepest first, without popping
// them.
func (v *VM) args(n int) ([]int, bool) {
	if v.st-n < code.StackBase {
		v.fail(FailedInvalidInstruction, "stack holds %d words, %d needed", v.st-code.StackBase, n)
		return nil, false
	}
	r := make([]int, n)
	for i := range r {
		r[i] = int(v.data[v.st-n+i])
	}
	return r, true
}

// pushFrame writes the link data of a call frame at addr: the caller's OB,
// the dynamic link and the return address.
func (v *VM) pushFrame(addr, ob int) {
	v.data[addr] = int32(v.ob)
	v.data[addr+1] = int32(v.lb)
	v.data[addr+2] = int32(v.cp + 1)
	v.ob = ob
	v.lb = addr
	v.st = addr + code.LinkDataSize
}

// execute performs one instruction and advances the code pointer.
func (v *VM) execute(i code.Instr) {
	next := v.cp + 1
	switch i.Op {
	case code.Load:
		addr, ok := v.effective(i)
		if !ok {
			return
		}
		w, ok := v.read(addr)
		if !ok {
			return
		}
		v.push(w)

	case code.Loada:
		addr, ok := v.effective(i)
		if !ok {
			return
		}
		v.push(addr)

	case code.Loadi:
		addr, ok := v.pop()
		if !ok {
			return
		}
		w, ok := v.read(addr)
		if !ok {
			return
		}
		v.push(w)

	case code.Loadl:
		v.push(i.D)

	case code.Store:
		addr, ok := v.effective(i)
		if !ok {
			return
		}
		w, ok := v.pop()
		if !ok {
			return
		}
		v.write(addr, w)

	case code.Storei:
		a, ok := v.args(2)
		if !ok {
			return
		}
		v.st -= 2
		v.write(a[1], a[0])

	case code.Call:
		addr, ok := v.effective(i)
		if !ok {
			return
		}
		if addr >= v.pb && addr < v.pt {
			v.callPrimitive(code.Prim(addr - v.pb))
			break
		}
		if !v.checkSpace(code.LinkDataSize) {
			return
		}
		v.pushFrame(v.st, code.NullRep)
		next = addr

	case code.Calli:
		addr, ok := v.effective(i)
		if !ok {
			return
		}
		if addr < code.CodeBase || addr >= v.ct {
			v.fail(FailedInvalidInstruction, "instance method address %d outside code", addr)
			return
		}
		a, ok := v.args(1)
		if !ok || !v.checkSpace(code.LinkDataSize-1) {
			return
		}
		// The instance address is overwritten by the frame.
		v.pushFrame(v.st-1, a[0])
		next = addr

	case code.Calld:
		a, ok := v.args(1)
		if !ok || !v.heapRef(a[0]) {
			return
		}
		instance := a[0]
		desc := int(v.data[instance+code.HeaderClass])
		if desc < code.StackBase || desc+code.DescMethods > v.st {
			v.fail(FailedMethodIndex, "instance %d has no class descriptor (%d)", instance, desc)
			return
		}
		count := int(v.data[desc+code.DescMethodCount])
		if i.D < 0 || i.D >= count || desc+code.DescMethods+i.D >= v.st {
			v.fail(FailedMethodIndex, "method index %d outside descriptor %d of %d methods", i.D, desc, count)
			return
		}
		if !v.checkSpace(code.LinkDataSize - 1) {
			return
		}
		next = int(v.data[desc+code.DescMethods+i.D])
		v.pushFrame(v.st-1, instance)

	case code.Return:
		if i.N < 0 || i.N > 1 {
			v.fail(FailedInvalidInstruction, "return of %d words", i.N)
			return
		}
		addr := v.lb - i.D
		if addr < code.StackBase || v.lb+code.LinkDataSize > v.st {
			v.fail(FailedInvalidInstruction, "return from invalid frame at %d", v.lb)
			return
		}
		var result int
		if i.N == 1 {
			var ok bool
			if result, ok = v.pop(); !ok {
				return
			}
		}
		v.ob = int(v.data[v.lb])
		next = int(v.data[v.lb+2])
		v.lb = int(v.data[v.lb+1])
		if i.N == 1 {
			v.data[addr] = int32(result)
		}
		v.st = addr + i.N

	case code.Push:
		if i.D < 0 {
			v.fail(FailedInvalidInstruction, "push of %d words", i.D)
			return
		}
		if !v.checkSpace(i.D) {
			return
		}
		v.st += i.D

	case code.Pop:
		if i.D < 0 || v.st-i.D < code.StackBase {
			v.fail(FailedInvalidInstruction, "pop of %d words from a stack of %d", i.D, v.st-code.StackBase)
			return
		}
		v.st -= i.D

	case code.Jump:
		addr, ok := v.effective(i)
		if !ok {
			return
		}
		next = addr

	case code.Jumpi:
		addr, ok := v.pop()
		if !ok {
			return
		}
		next = addr

	case code.Jumpif:
		w, ok := v.pop()
		if !ok {
			return
		}
		if w == i.N {
			addr, ok := v.effective(i)
			if !ok {
				return
			}
			next = addr
		}

	case code.Halt:
		if i.N > 0 {
			v.Dump(v.out)
			break
		}
		v.status = Halted
		return

	default:
		v.fail(FailedInvalidInstruction, "invalid opcode %d", int(i.Op))
		return
	}
	if v.status != Running {
		return
	}
	v.cp = next
	if v.cp < code.CodeBase || v.cp >= v.ct {
		v.fail(FailedInvalidCodeAddress, "code address %d outside code [%d, %d)", v.cp, code.CodeBase, v.ct)
	}
}
