// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/minijava/internal/testutil"
	"github.com/google/minijava/internal/vm/code"
)

func TestAsmPath(t *testing.T) {
	testutil.ExpectNoDiff(t, "/tmp/Main.asm", asmPath("/tmp/Main.mJAM"))
	testutil.ExpectNoDiff(t, "prog.asm", asmPath("prog"))
}

func TestDisassemble(t *testing.T) {
	dir := testutil.TestTempDir(t)
	objPath := filepath.Join(dir, "sum.mJAM")
	obj := &code.Object{Program: []code.Instr{
		{Op: code.Loadl, D: 5},
		code.Putintnl.Instr(),
		{Op: code.Halt},
	}}
	testutil.FatalIfErr(t, code.WriteFile(objPath, obj))

	var b bytes.Buffer
	testutil.FatalIfErr(t, disassemble(&b, objPath))
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	expected := []string{
		"  0         LOADL        5",
		"  1         CALL         putintnl",
		"  2         HALT   (0)",
	}
	testutil.ExpectNoDiff(t, expected, lines)
}

func TestDisassembleMissing(t *testing.T) {
	var b bytes.Buffer
	if err := disassemble(&b, filepath.Join(testutil.TestTempDir(t), "none.mJAM")); err == nil {
		t.Error("expected error")
	}
}
