// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

//go:build windows
// +build windows

package vm

import (
	"io"
	"os"
)

func consoleReader() io.Reader { return os.Stdin }
func consoleWriter() io.Writer { return os.Stdout }
