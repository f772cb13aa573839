// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/minijava/internal/config"
	"github.com/google/minijava/internal/runtime"
	"github.com/google/minijava/internal/testutil"
	"github.com/google/minijava/internal/vm/code"
)

func TestOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Compiler.DynamicDispatch = true
	cfg.Compiler.MaxCodeSize = 100
	defer testutil.TestSetFlag(t, "symbols", "true")()
	defer testutil.TestSetFlag(t, "dynamic_dispatch", "false")()

	overrideConfig(cfg)
	testutil.ExpectNoDiff(t, true, cfg.Compiler.Symbols)
	testutil.ExpectNoDiff(t, false, cfg.Compiler.DynamicDispatch)
	testutil.ExpectNoDiff(t, 100, cfg.Compiler.MaxCodeSize)
}

var compileTests = []struct {
	name   string
	source string
	status int
	output string
}{
	{
		"good.java",
		`class Main {
    public static void main(String[] args) {
        System.out.println(3);
    }
}
`,
		0,
		"",
	},
	{
		"mismatch.java",
		`class Main {
    public static void main(String[] args) {
        int x = 3 < 4;
        System.out.println(x);
    }
}
`,
		exitCompileFailed,
		"Type mismatch: expected int, received boolean",
	},
}

func TestCompile(t *testing.T) {
	r, err := runtime.New()
	testutil.FatalIfErr(t, err)
	dir := testutil.TestTempDir(t)
	for _, tc := range compileTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			path := testutil.WriteSourceFile(t, dir, tc.name, tc.source)
			var out bytes.Buffer
			testutil.ExpectNoDiff(t, tc.status, compile(context.Background(), r, path, &out))
			if tc.output == "" {
				testutil.ExpectNoDiff(t, "", out.String())
			} else if !strings.Contains(out.String(), tc.output) {
				t.Errorf("output %q does not contain %q", out.String(), tc.output)
			}
			testutil.ExpectNoDiff(t, tc.status == 0, testutil.FileExists(t, code.ObjectPath(path)))
		})
	}
}

func TestCompileMissingSource(t *testing.T) {
	r, err := runtime.New()
	testutil.FatalIfErr(t, err)
	var out bytes.Buffer
	path := filepath.Join(testutil.TestTempDir(t), "missing.java")
	testutil.ExpectNoDiff(t, exitCompileFailed, compile(context.Background(), r, path, &out))
	if !strings.Contains(out.String(), "failed to read program") {
		t.Errorf("unexpected output %q", out.String())
	}
}
