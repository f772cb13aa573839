// Copyright 2021 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package runtime

import (
	"contrib.go.opencensus.io/exporter/jaeger"
	"github.com/google/minijava/internal/compiler"
	"github.com/google/minijava/internal/vm"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// Option configures a new Runtime.
type Option func(*Runtime) error

// DumpAst instructs the Runtime to log the AST after parsing.
func DumpAst() Option {
	return func(r *Runtime) error {
		r.cOpts = append(r.cOpts, compiler.EmitAst())
		return nil
	}
}

// DumpAstTypes instructs the Runtime to log the AST after type checking.
func DumpAstTypes() Option {
	return func(r *Runtime) error {
		r.cOpts = append(r.cOpts, compiler.EmitAstTypes())
		return nil
	}
}

// DumpBytecode instructs the Runtime to log the bytecode of each program it
// compiles or loads.
func DumpBytecode() Option {
	return func(r *Runtime) error {
		r.dumpBytecode = true
		return nil
	}
}

// DynamicDispatch compiles instance calls to dispatch through class
// descriptors.
func DynamicDispatch() Option {
	return func(r *Runtime) error {
		r.cOpts = append(r.cOpts, compiler.DynamicDispatch())
		return nil
	}
}

// MaxCodeSize limits the size of compiled programs.
func MaxCodeSize(n int) Option {
	return func(r *Runtime) error {
		r.cOpts = append(r.cOpts, compiler.MaxCodeSize(n))
		return nil
	}
}

// EmitSymbols writes a symbol sidecar next to each object file.
func EmitSymbols() Option {
	return func(r *Runtime) error {
		r.emitSymbols = true
		return nil
	}
}

// CacheSize sets the number of compiled objects kept in memory.
func CacheSize(n int) Option {
	return func(r *Runtime) error {
		if n <= 0 {
			return errors.Errorf("invalid cache size %d", n)
		}
		r.cacheSize = n
		return nil
	}
}

// VMOptions sets the options for every machine the Runtime creates.
func VMOptions(opts ...vm.Option) Option {
	return func(r *Runtime) error {
		r.vmOpts = append(r.vmOpts, opts...)
		return nil
	}
}

// SetBuildInfo sets the build information reported by the build info metric.
func SetBuildInfo(info BuildInfo) Option {
	return func(r *Runtime) error {
		r.buildInfo = info
		return nil
	}
}

// JaegerReporter sends trace spans to the Jaeger collector at endpoint,
// under the given service name.
func JaegerReporter(endpoint, service string) Option {
	return func(r *Runtime) error {
		je, err := jaeger.NewExporter(jaeger.Options{
			CollectorEndpoint: endpoint,
			Process: jaeger.Process{
				ServiceName: service,
			},
		})
		if err != nil {
			return errors.Wrapf(err, "failed to create jaeger exporter for %q", endpoint)
		}
		trace.RegisterExporter(je)
		return nil
	}
}
