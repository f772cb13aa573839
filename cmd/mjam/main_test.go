// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package main

import (
	"testing"

	"github.com/google/minijava/internal/testutil"
)

func TestSeqIntFlag(t *testing.T) {
	var f seqIntFlag
	testutil.FatalIfErr(t, f.Set("3, 17"))
	testutil.FatalIfErr(t, f.Set("20"))
	testutil.ExpectNoDiff(t, seqIntFlag{3, 17, 20}, f)
	testutil.ExpectNoDiff(t, "[3 17 20]", f.String())
	if err := f.Set("x"); err == nil {
		t.Error("expected error for a non-numeric address")
	}
}
