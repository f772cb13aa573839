// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/glog"
)

// WriteString writes str to f and, for regular files, syncs it so that the
// write happens-before this returns.
func WriteString(tb testing.TB, f io.StringWriter, str string) int {
	tb.Helper()
	n, err := f.WriteString(str)
	FatalIfErr(tb, err)
	glog.Infof("Wrote %d bytes", n)
	if v, ok := f.(*os.File); ok {
		fi, err := v.Stat()
		FatalIfErr(tb, err)
		if fi.Mode().IsRegular() {
			glog.Infof("This is a regular file, doing a sync.")
			FatalIfErr(tb, v.Sync())
		}
	}
	return n
}

// WriteSourceFile creates name under dir with the given program text and
// returns the full pathname.
func WriteSourceFile(tb testing.TB, dir, name, text string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	f := TruncateFile(tb, path)
	defer func() {
		FatalIfErr(tb, f.Close())
	}()
	WriteString(tb, f, text)
	return path
}

// FileExists reports whether the pathname names an existing file.
func FileExists(tb testing.TB, path string) bool {
	tb.Helper()
	_, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		tb.Fatal(err)
	}
	return err == nil
}
