// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package vm

import (
	"fmt"
	"io"
	"unicode"

	"github.com/google/minijava/internal/vm/code"
)

func boolRep(b bool) int {
	if b {
		return code.TrueRep
	}
	return code.FalseRep
}

// overflowChecked returns x as a machine word, failing the program if it
// does not fit.
func (v *VM) overflowChecked(x int64) (int, bool) {
	if x < code.MinInt || x > code.MaxInt {
		v.fail(FailedOverflow, "result %d outside the 32 bit range", x)
		return 0, false
	}
	return int(x), true
}

// heapRef fails the program unless addr refers to an object or array in the
// heap.
func (v *VM) heapRef(addr int) bool {
	if addr == code.NullRep {
		v.fail(FailedHeapRef, "null pointer reference")
		return false
	}
	// An object without fields has the address HB.
	if addr < v.ht+code.HeaderWords || addr > v.hb {
		v.fail(FailedHeapRef, "address %d outside heap [%d, %d)", addr, v.ht, v.hb)
		return false
	}
	return true
}

// allocate reserves size words below the heap top with a two word header,
// zeroes them and returns the address of the first word.
func (v *VM) allocate(tag, size int) (int, bool) {
	if size < 0 {
		v.fail(FailedInvalidInstruction, "allocation of %d words", size)
		return 0, false
	}
	total := size + code.HeaderWords
	if !v.checkSpace(total) {
		return 0, false
	}
	v.ht -= total
	v.data[v.ht] = int32(tag)
	v.data[v.ht+1] = int32(size)
	addr := v.ht + code.HeaderWords
	for i := 0; i < size; i++ {
		v.data[addr+i] = 0
	}
	return addr, true
}

// unary replaces the stack top with f applied to it.
func (v *VM) unary(f func(x int64) (int, bool)) {
	a, ok := v.args(1)
	if !ok {
		return
	}
	if r, ok := f(int64(a[0])); ok {
		v.data[v.st-1] = int32(r)
	}
}

// binary replaces the top two stack words with f applied to them.
func (v *VM) binary(f func(x, y int64) (int, bool)) {
	a, ok := v.args(2)
	if !ok {
		return
	}
	if r, ok := f(int64(a[0]), int64(a[1])); ok {
		v.st--
		v.data[v.st-1] = int32(r)
	}
}

func (v *VM) compare(f func(x, y int64) bool) {
	v.binary(func(x, y int64) (int, bool) { return boolRep(f(x, y)), true })
}

func (v *VM) arith(f func(x, y int64) int64) {
	v.binary(func(x, y int64) (int, bool) { return v.overflowChecked(f(x, y)) })
}

func (v *VM) divide(f func(x, y int64) int64) {
	v.binary(func(x, y int64) (int, bool) {
		if y == 0 {
			v.fail(FailedZeroDivide, "division of %d by zero", x)
			return 0, false
		}
		return v.overflowChecked(f(x, y))
	})
}

// callPrimitive runs the primitive routine p on the stack.
func (v *VM) callPrimitive(p code.Prim) {
	switch p {
	case code.Id:

	case code.Not:
		v.unary(func(x int64) (int, bool) { return boolRep(x != code.TrueRep), true })
	case code.And:
		v.compare(func(x, y int64) bool { return x == code.TrueRep && y == code.TrueRep })
	case code.Or:
		v.compare(func(x, y int64) bool { return x == code.TrueRep || y == code.TrueRep })
	case code.Succ:
		v.unary(func(x int64) (int, bool) { return v.overflowChecked(x + 1) })
	case code.Pred:
		v.unary(func(x int64) (int, bool) { return v.overflowChecked(x - 1) })
	case code.Neg:
		v.unary(func(x int64) (int, bool) { return v.overflowChecked(-x) })
	case code.Add:
		v.arith(func(x, y int64) int64 { return x + y })
	case code.Sub:
		v.arith(func(x, y int64) int64 { return x - y })
	case code.Mult:
		v.arith(func(x, y int64) int64 { return x * y })
	case code.Div:
		v.divide(func(x, y int64) int64 { return x / y })
	case code.Mod:
		v.divide(func(x, y int64) int64 { return x % y })
	case code.Lt:
		v.compare(func(x, y int64) bool { return x < y })
	case code.Le:
		v.compare(func(x, y int64) bool { return x <= y })
	case code.Ge:
		v.compare(func(x, y int64) bool { return x >= y })
	case code.Gt:
		v.compare(func(x, y int64) bool { return x > y })
	case code.Eq:
		v.compare(func(x, y int64) bool { return x == y })
	case code.Ne:
		v.compare(func(x, y int64) bool { return x != y })

	case code.Eol:
		v.push(boolRep(v.currentChar == '\n'))
	case code.Eof:
		v.push(boolRep(v.currentChar == -1))
	case code.Get:
		a, ok := v.args(1)
		if !ok || !v.readChar() {
			return
		}
		v.st--
		v.write(a[0], v.currentChar)
	case code.Put:
		c, ok := v.pop()
		if !ok {
			return
		}
		v.print(string(rune(c)))
	case code.Geteol:
		for v.readChar() && v.currentChar != '\n' && v.currentChar != -1 {
		}
	case code.Puteol:
		v.print("\n")
	case code.Getint:
		a, ok := v.args(1)
		if !ok {
			return
		}
		n, ok := v.readInt()
		if !ok {
			return
		}
		v.st--
		v.write(a[0], n)
	case code.Putint:
		n, ok := v.pop()
		if !ok {
			return
		}
		v.print(fmt.Sprint(n))
	case code.Putintnl:
		n, ok := v.pop()
		if !ok {
			return
		}
		v.print(fmt.Sprintf(">>> %d\n", n))

	case code.Alloc:
		a, ok := v.args(1)
		if !ok {
			return
		}
		if a[0] < 0 {
			v.fail(FailedInvalidInstruction, "allocation of %d words", a[0])
			return
		}
		if !v.checkSpace(a[0]) {
			return
		}
		v.ht -= a[0]
		v.data[v.st-1] = int32(v.ht)
	case code.Dispose:
		v.pop()
	case code.Newobj:
		// ..., class descriptor, number of fields => ..., new object
		a, ok := v.args(2)
		if !ok {
			return
		}
		addr, ok := v.allocate(a[0], a[1])
		if !ok {
			return
		}
		v.st -= 2
		v.push(addr)
	case code.Newarr:
		// ..., number of elements => ..., new array
		a, ok := v.args(1)
		if !ok {
			return
		}
		addr, ok := v.allocate(code.ArrayTag, a[0])
		if !ok {
			return
		}
		v.data[v.st-1] = int32(addr)
	case code.Arrayref:
		// ..., array, index => ..., element
		a, ok := v.args(2)
		if !ok || !v.arrayIndex(a[0], a[1]) {
			return
		}
		v.st--
		v.data[v.st-1] = v.data[a[0]+a[1]]
	case code.Arrayupd:
		// ..., array, index, value => ...
		a, ok := v.args(3)
		if !ok || !v.arrayIndex(a[0], a[1]) {
			return
		}
		v.data[a[0]+a[1]] = int32(a[2])
		v.st -= 3
	case code.Fieldref:
		// ..., object, field index => ..., field value
		a, ok := v.args(2)
		if !ok || !v.fieldIndex(a[0], a[1]) {
			return
		}
		v.st--
		v.data[v.st-1] = v.data[a[0]+a[1]]
	case code.Fieldupd:
		// ..., object, field index, value => ...
		a, ok := v.args(3)
		if !ok || !v.fieldIndex(a[0], a[1]) {
			return
		}
		v.data[a[0]+a[1]] = int32(a[2])
		v.st -= 3

	default:
		v.fail(FailedInvalidInstruction, "invalid primitive %d", int(p))
	}
}

// arrayIndex fails the program unless addr is an array with an element at
// index.
func (v *VM) arrayIndex(addr, index int) bool {
	if !v.heapRef(addr) {
		return false
	}
	if v.data[addr+code.HeaderClass] != code.ArrayTag {
		v.fail(FailedArrayIndex, "address %d is not an array", addr)
		return false
	}
	if n := int(v.data[addr+code.HeaderSize]); index < 0 || index >= n || addr+index >= v.hb {
		v.fail(FailedArrayIndex, "index %d outside array of length %d", index, n)
		return false
	}
	return true
}

// fieldIndex fails the program unless addr is an object with a field at
// index.
func (v *VM) fieldIndex(addr, index int) bool {
	if !v.heapRef(addr) {
		return false
	}
	if n := int(v.data[addr+code.HeaderSize]); index < 0 || index >= n || addr+index >= v.hb {
		v.fail(FailedArrayIndex, "field %d outside object of %d fields", index, n)
		return false
	}
	return true
}

// readChar reads one byte of input into currentChar, which is -1 at the end
// of the input.
func (v *VM) readChar() bool {
	var b [1]byte
	for {
		n, err := v.in.Read(b[:])
		if n == 1 {
			v.currentChar = int(b[0])
			return true
		}
		if err == io.EOF {
			v.currentChar = -1
			return true
		}
		if err != nil {
			v.fail(FailedIOError, "read: %s", err)
			return false
		}
	}
}

// readInt reads an optionally signed decimal integer, skipping leading
// white space.  The character after the integer is consumed.
func (v *VM) readInt() (int, bool) {
	for {
		if !v.readChar() {
			return 0, false
		}
		if v.currentChar == -1 || !unicode.IsSpace(rune(v.currentChar)) {
			break
		}
	}
	sign := int64(1)
	for v.currentChar == '-' || v.currentChar == '+' {
		if v.currentChar == '-' {
			sign = -1
		} else {
			sign = 1
		}
		if !v.readChar() {
			return 0, false
		}
	}
	var n int64
	for v.currentChar >= '0' && v.currentChar <= '9' {
		n = n*10 + int64(v.currentChar-'0')
		if n > code.MaxInt+1 {
			v.fail(FailedOverflow, "integer input too large")
			return 0, false
		}
		if !v.readChar() {
			return 0, false
		}
	}
	return v.overflowChecked(sign * n)
}

func (v *VM) print(s string) {
	if _, err := io.WriteString(v.out, s); err != nil {
		v.fail(FailedIOError, "write: %s", err)
	}
}
