// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package vm

import "fmt"

// Status is the execution state of the machine.  Every status other than
// Running is terminal.
type Status int

const (
	Running Status = iota
	Halted
	FailedDataStoreFull
	FailedInvalidCodeAddress
	FailedInvalidInstruction
	FailedOverflow
	FailedZeroDivide
	FailedIOError
	FailedArrayIndex
	FailedHeapRef
	FailedMethodIndex
)

var statusMessages = map[Status]string{
	Running:                  "Program is running.",
	Halted:                   "Program has halted normally.",
	FailedDataStoreFull:      "Program has failed due to exhaustion of Data Store.",
	FailedInvalidCodeAddress: "Program has failed due to an invalid code address.",
	FailedInvalidInstruction: "Program has failed due to an invalid instruction.",
	FailedOverflow:           "Program has failed due to overflow.",
	FailedZeroDivide:         "Program has failed due to division by zero.",
	FailedIOError:            "Program has failed due to an IO error.",
	FailedArrayIndex:         "Program has failed due to an array index error.",
	FailedHeapRef:            "Program has failed due to an invalid Heap reference.",
	FailedMethodIndex:        "Program has failed due to an improper method index in CALLD.",
}

var statusNames = map[Status]string{
	Running:                  "running",
	Halted:                   "halted",
	FailedDataStoreFull:      "data_store_full",
	FailedInvalidCodeAddress: "invalid_code_address",
	FailedInvalidInstruction: "invalid_instruction",
	FailedOverflow:           "overflow",
	FailedZeroDivide:         "zero_divide",
	FailedIOError:            "io_error",
	FailedArrayIndex:         "array_index",
	FailedHeapRef:            "heap_ref",
	FailedMethodIndex:        "method_index",
}

// String returns the status line message.
func (s Status) String() string {
	if m, ok := statusMessages[s]; ok {
		return m
	}
	return "Machine is in an unknown state."
}

// Name returns a short identifier for the status, used as a metric label.
func (s Status) Name() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status_%d", int(s))
}

// Failed reports whether s is one of the failure states.
func (s Status) Failed() bool {
	return s != Running && s != Halted
}
