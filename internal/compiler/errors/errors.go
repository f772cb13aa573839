// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package errors collects positioned diagnostics produced while compiling a
// program.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/minijava/internal/compiler/position"
	"github.com/pkg/errors"
)

type compileError struct {
	pos *position.Position
	msg string
}

func (e compileError) Error() string {
	if e.pos == nil {
		return e.msg
	}
	return e.pos.String() + ": " + e.msg
}

// ErrorList contains a list of compile errors.
type ErrorList []*compileError

// Add appends an error at a position to the list of errors.  A nil position
// is allowed for errors that belong to the whole program.
func (p *ErrorList) Add(pos *position.Position, msg string) {
	var pp *position.Position
	if pos != nil {
		c := *pos
		pp = &c
	}
	*p = append(*p, &compileError{pp, msg})
}

// Addf formats and appends an error at a position.
func (p *ErrorList) Addf(pos *position.Position, format string, args ...interface{}) {
	p.Add(pos, fmt.Sprintf(format, args...))
}

// Append puts an ErrorList on the end of this ErrorList.
func (p *ErrorList) Append(l ErrorList) {
	*p = append(*p, l...)
}

// Sort orders the list by source position, keeping errors without a position
// at the end.  Errors at the same position keep their report order.
func (p ErrorList) Sort() {
	sort.SliceStable(p, func(i, j int) bool {
		a, b := p[i].pos, p[j].pos
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
}

// Messages returns the bare messages, without positions, in order.
func (p ErrorList) Messages() []string {
	r := make([]string, 0, len(p))
	for _, e := range p {
		r = append(r, e.msg)
	}
	return r
}

// ErrorList implements the error interface.
func (p ErrorList) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	}
	var r strings.Builder
	for i, e := range p {
		if i > 0 {
			r.WriteString("\n")
		}
		r.WriteString(e.Error())
	}
	return r.String()
}

// Err returns the list as an error, or nil if it is empty.
func (p ErrorList) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}
