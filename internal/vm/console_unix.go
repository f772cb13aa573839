// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

//go:build !windows
// +build !windows

package vm

import (
	"io"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"
)

// fdReader reads directly from a file descriptor, so that a program reading
// one character at a time consumes no more of the input than it asks for.
type fdReader int

func (fd fdReader) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(int(fd), p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 && len(p) > 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

type fdWriter int

func (fd fdWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(int(fd), p[written:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			glog.V(1).Infof("console write: %s", err)
			return written, err
		}
		written += n
	}
	return written, nil
}

func consoleReader() io.Reader { return fdReader(unix.Stdin) }
func consoleWriter() io.Writer { return fdWriter(unix.Stdout) }
