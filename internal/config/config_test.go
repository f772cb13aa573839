// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/minijava/internal/testutil"
)

var parseTests = []struct {
	name     string
	input    string
	expected *Config
}{
	{"empty", "", Default()},
	{"machine",
		`[machine]
data_store_size = 4096
code_capacity = 2048
breakpoints = [3, 17]
`,
		&Config{
			Machine:  Machine{DataStoreSize: 4096, CodeCapacity: 2048, Breakpoints: []int{3, 17}},
			Compiler: Compiler{MaxCodeSize: 1024},
		}},
	{"compiler",
		`[compiler]
dynamic_dispatch = true
symbols = true
max_code_size = 512
`,
		&Config{
			Machine:  Machine{DataStoreSize: 1024, CodeCapacity: 1024},
			Compiler: Compiler{DynamicDispatch: true, Symbols: true, MaxCodeSize: 512},
		}},
}

func TestParse(t *testing.T) {
	for _, tc := range parseTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse(strings.NewReader(tc.input))
			testutil.FatalIfErr(t, err)
			testutil.ExpectNoDiff(t, tc.expected, c)
		})
	}
}

var invalidTests = []struct {
	name  string
	input string
	err   string
}{
	{"unknown key",
		"[machine]\nstack = 3\n",
		"unknown configuration keys: machine.stack"},
	{"negative store",
		"[machine]\ndata_store_size = -1\n",
		"data_store_size must be positive, not -1"},
	{"code too big",
		"[compiler]\nmax_code_size = 2000\n",
		"max_code_size 2000 exceeds code_capacity 1024"},
	{"bad breakpoint",
		"[machine]\nbreakpoints = [-4]\n",
		"invalid breakpoint -4"},
}

func TestParseInvalid(t *testing.T) {
	for _, tc := range invalidTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("expected error")
			}
			testutil.ExpectNoDiff(t, tc.err, err.Error())
		})
	}
}

func TestParseUnknownTable(t *testing.T) {
	_, err := Parse(strings.NewReader("[vm]\nsize = 3\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "unknown configuration keys: ") || !strings.Contains(err.Error(), "vm.size") {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := Parse(strings.NewReader("[machine\n")); err == nil {
		t.Error("expected error")
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	testutil.FatalIfErr(t, err)
	testutil.ExpectNoDiff(t, Default(), c)

	dir := testutil.TestTempDir(t)
	path := testutil.WriteSourceFile(t, dir, "mjam.toml", "[machine]\ndata_store_size = 64\n")
	c, err = Load(path)
	testutil.FatalIfErr(t, err)
	if c.Machine.DataStoreSize != 64 {
		t.Errorf("data store size %d, want 64", c.Machine.DataStoreSize)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
