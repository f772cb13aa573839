// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

/*
Command mjdis disassembles an mJAM object file.

	mjdis [flags] Program.mJAM

The listing is written to Program.asm, or to standard output with -stdout.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/runtime"
	"github.com/google/minijava/internal/vm/code"
	"github.com/pkg/errors"
)

var (
	version = flag.Bool("version", false, "Print version information.")
	stdout  = flag.Bool("stdout", false, "Write the listing to standard output instead of a file.")
)

var (
	// Branch as well as Version and Revision identifies where in the git
	// history the build came from, as supplied by the linker when compiled
	// with `make'.  The defaults here indicate that the user did not use
	// `make' as instructed.
	Branch   = "invalid:-use-make-to-build"
	Version  = "invalid:-use-make-to-build"
	Revision = "invalid:-use-make-to-build"
)

// asmPath returns the listing file name for an object file.
func asmPath(object string) string {
	return strings.TrimSuffix(object, filepath.Ext(object)) + ".asm"
}

func disassemble(w io.Writer, objPath string) error {
	obj, err := code.ReadFile(objPath)
	if err != nil {
		return err
	}
	return code.Disassemble(w, obj.Program, obj.Symbols)
}

func main() {
	buildInfo := runtime.BuildInfo{
		Branch:   Branch,
		Version:  Version,
		Revision: Revision,
	}
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", buildInfo.String())
		fmt.Fprintf(os.Stderr, "\nUsage: %s [flags] Program.mJAM\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *version {
		fmt.Println(buildInfo.String())
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	objPath := flag.Arg(0)

	if *stdout {
		w := bufio.NewWriter(os.Stdout)
		if err := disassemble(w, objPath); err != nil {
			glog.Exit(err)
		}
		if err := w.Flush(); err != nil {
			glog.Exit(err)
		}
		return
	}

	out := asmPath(objPath)
	f, err := os.Create(filepath.Clean(out))
	if err != nil {
		glog.Exit(errors.Wrapf(err, "failed to create %q", out))
	}
	err = disassemble(f, objPath)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := os.Remove(out); rerr != nil {
			glog.Warning(rerr)
		}
		glog.Exit(err)
	}
	glog.Infof("Wrote %s", out)
}
