// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package compiler translates miniJava source into mJAM bytecode.
package compiler

import (
	"context"
	"io"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/compiler/checker"
	"github.com/google/minijava/internal/compiler/codegen"
	"github.com/google/minijava/internal/compiler/parser"
	"github.com/google/minijava/internal/vm/code"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// Compiler holds the options that apply to every compilation.
type Compiler struct {
	emitAst         bool
	emitAstTypes    bool
	dynamicDispatch bool
	maxCodeSize     int
}

// Option configures a Compiler.
type Option func(*Compiler) error

// EmitAst logs the tree of each program after parsing.
func EmitAst() Option {
	return func(c *Compiler) error {
		c.emitAst = true
		return nil
	}
}

// EmitAstTypes logs the tree of each program with its type annotations
// after checking.
func EmitAstTypes() Option {
	return func(c *Compiler) error {
		c.emitAstTypes = true
		return nil
	}
}

// DynamicDispatch compiles instance method calls to dispatch through the
// class descriptor of the receiver.
func DynamicDispatch() Option {
	return func(c *Compiler) error {
		c.dynamicDispatch = true
		return nil
	}
}

// MaxCodeSize sets the code segment capacity programs must fit in.
func MaxCodeSize(n int) Option {
	return func(c *Compiler) error {
		if n <= 0 {
			return errors.Errorf("invalid code size %d", n)
		}
		c.maxCodeSize = n
		return nil
	}
}

// New creates a Compiler with the given options.
func New(options ...Option) (*Compiler, error) {
	c := &Compiler{maxCodeSize: code.DefaultCodeCapacity}
	for _, o := range options {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Compile compiles a program from the input into bytecode and symbols stored
// in an Object, or a list of compile errors.
func (c *Compiler) Compile(ctx context.Context, name string, input io.Reader) (*code.Object, error) {
	ctx, span := trace.StartSpan(ctx, "compiler.Compile")
	defer span.End()
	name = filepath.Base(name)
	span.AddAttributes(trace.StringAttribute("name", name))

	_, parseSpan := trace.StartSpan(ctx, "compiler.Parse")
	pkg, err := parser.Parse(name, input)
	parseSpan.End()
	if err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeInvalidArgument, Message: "parse error"})
		return nil, err
	}
	if c.emitAst {
		s := parser.Sexp{}
		glog.Infof("%s AST:\n%s", name, s.Dump(pkg))
	}

	_, checkSpan := trace.StartSpan(ctx, "compiler.Check")
	err = checker.Check(pkg)
	checkSpan.End()
	if err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeInvalidArgument, Message: "check error"})
		return nil, err
	}
	if c.emitAstTypes {
		s := parser.Sexp{}
		s.EmitTypes = true
		glog.Infof("%s AST with Type Annotation:\n%s", name, s.Dump(pkg))
	}

	_, genSpan := trace.StartSpan(ctx, "compiler.CodeGen")
	defer genSpan.End()
	opts := []codegen.Option{codegen.MaxCodeSize(c.maxCodeSize)}
	if c.dynamicDispatch {
		opts = append(opts, codegen.DynamicDispatch())
	}
	obj, err := codegen.CodeGen(name, pkg, opts...)
	if err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeInternal, Message: "code generation error"})
		return nil, err
	}
	span.AddAttributes(trace.Int64Attribute("instructions", int64(len(obj.Program))))
	return obj, nil
}

// Compile compiles a program with the default options.
func Compile(name string, input io.Reader) (*code.Object, error) {
	c, err := New()
	if err != nil {
		return nil, err
	}
	return c.Compile(context.Background(), name, input)
}
