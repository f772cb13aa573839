// Copyright 2018 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package code

import "testing"

func TestOpcodeHasString(t *testing.T) {
	for o := Load; o < numOpcodes; o++ {
		if o.String() != opNames[o] {
			t.Errorf("opcode string not match.  Expected %s, received %s", opNames[o], o.String())
		}
		if !o.Valid() {
			t.Errorf("opcode %s not valid", o)
		}
	}
	if numOpcodes.Valid() {
		t.Errorf("opcode %d should not be valid", int(numOpcodes))
	}
}

func TestRegAndPrimNames(t *testing.T) {
	if len(regNames) != int(numRegs) {
		t.Errorf("register names: expected %d, received %d", numRegs, len(regNames))
	}
	if len(primNames) != int(NumPrims) {
		t.Errorf("primitive names: expected %d, received %d", NumPrims, len(primNames))
	}
	for _, tc := range []struct {
		s    string
		want string
	}{
		{OB.String(), "OB"},
		{Reg(40).String(), "reg(40)"},
		{Fieldupd.String(), "fieldupd"},
		{Prim(-1).String(), "prim(-1)"},
		{Opcode(99).String(), "op(99)"},
	} {
		if tc.s != tc.want {
			t.Errorf("expected %q, received %q", tc.want, tc.s)
		}
	}
}
