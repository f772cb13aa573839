// Copyright 2015 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package runtime manages the lifecycle of miniJava programs: compiling
// sources to object files, loading them, and running them on mJAM machines.
package runtime

import (
	"bytes"
	"context"
	"crypto/sha256"
	"expvar"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/golang/groupcache/lru"
	"github.com/google/minijava/internal/compiler"
	"github.com/google/minijava/internal/vm"
	"github.com/google/minijava/internal/vm/code"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"
	"go.opencensus.io/trace"
)

var (
	// ProgCompiles counts the number of successful compilations.
	ProgCompiles = expvar.NewMap("prog_compiles_total")
	// ProgCompileErrors counts the number of failed compilations.
	ProgCompileErrors = expvar.NewMap("prog_compile_errors_total")
	// ProgCacheHits counts the compilations answered from the object cache.
	ProgCacheHits = expvar.NewMap("prog_cache_hits_total")

	compileDurations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "minijava",
		Name:      "compile_duration_seconds",
		Help:      "Compile time distribution in seconds, by program.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2.0, 14),
	}, []string{"prog"})
)

const defaultCacheSize = 64

type cacheKey struct {
	name string
	hash [sha256.Size]byte
}

// Runtime compiles, loads and runs programs.
type Runtime struct {
	reg *prometheus.Registry

	cOpts []compiler.Option // options for constructing `c`
	c     *compiler.Compiler

	vmOpts []vm.Option

	cacheMu   sync.Mutex // guards cache
	cache     *lru.Cache
	cacheSize int

	programErrorMu sync.RWMutex     // guards programErrors
	programErrors  map[string]error // result of the last compile of each watched source

	buildInfo    BuildInfo
	emitSymbols  bool
	dumpBytecode bool
}

// New creates a Runtime with the given options.
func New(options ...Option) (*Runtime, error) {
	r := &Runtime{
		// Using a non-pedantic registry means we can be looser with metrics that
		// are not fully specified at startup.
		reg:           prometheus.NewRegistry(),
		cacheSize:     defaultCacheSize,
		programErrors: make(map[string]error),
	}
	if err := r.SetOption(options...); err != nil {
		return nil, err
	}
	var err error
	if r.c, err = compiler.New(r.cOpts...); err != nil {
		return nil, err
	}
	r.cache = lru.New(r.cacheSize)
	r.initMetrics()
	return r, nil
}

// SetOption takes one or more option functions and applies them in order to Runtime.
func (r *Runtime) SetOption(options ...Option) error {
	for _, option := range options {
		if err := option(r); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) initMetrics() {
	expvarDescs := map[string]*prometheus.Desc{
		"prog_compiles_total":         prometheus.NewDesc("prog_compiles_total", "number of successful compilations by program source filename", []string{"prog"}, nil),
		"prog_compile_errors_total":   prometheus.NewDesc("prog_compile_errors_total", "number of failed compilations by program source filename", []string{"prog"}, nil),
		"prog_cache_hits_total":       prometheus.NewDesc("prog_cache_hits_total", "number of compilations served from the object cache by program source filename", []string{"prog"}, nil),
		"prog_runtime_errors_total":   prometheus.NewDesc("prog_runtime_errors_total", "number of failed runs by program name", []string{"prog"}, nil),
		"source_watcher_errors_total": prometheus.NewDesc("source_watcher_errors_total", "number of errors reported by the source watcher", nil, nil),
		"source_watcher_events_total": prometheus.NewDesc("source_watcher_events_total", "number of source file events by kind", []string{"op"}, nil),
	}
	r.reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	// Prefix all expvar metrics with 'minijava_'
	prometheus.WrapRegistererWithPrefix("minijava_", r.reg).MustRegister(
		prometheus.NewExpvarCollector(expvarDescs))
	r.reg.MustRegister(compileDurations)
	r.reg.MustRegister(vm.Collectors()...)

	// Create minijava_build_info metric.
	version.Branch = r.buildInfo.Branch
	version.Version = r.buildInfo.Version
	version.Revision = r.buildInfo.Revision
	r.reg.MustRegister(version.NewCollector("minijava"))
}

// Registry returns the registry holding the runtime, compiler and machine
// metrics.
func (r *Runtime) Registry() *prometheus.Registry {
	return r.reg
}

// WriteMetrics writes the current metrics to path in the Prometheus text
// exposition format.
func (r *Runtime) WriteMetrics(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, r.reg), "failed to write metrics to %q", path)
}

// Compile compiles a program read from input.  Compiling the same content
// under the same name again returns the cached object.
func (r *Runtime) Compile(ctx context.Context, name string, input io.Reader) (*code.Object, error) {
	var buf bytes.Buffer
	hasher := sha256.New()
	if _, err := io.Copy(hasher, io.TeeReader(input, &buf)); err != nil {
		ProgCompileErrors.Add(name, 1)
		return nil, errors.Wrapf(err, "reading %q failed", name)
	}
	key := cacheKey{name: name}
	copy(key.hash[:], hasher.Sum(nil))

	r.cacheMu.Lock()
	cached, ok := r.cache.Get(key)
	r.cacheMu.Unlock()
	if ok {
		glog.V(1).Infof("contents match, not recompiling %q", name)
		ProgCacheHits.Add(name, 1)
		return cached.(*code.Object), nil
	}

	start := time.Now()
	obj, err := r.c.Compile(ctx, name, &buf)
	compileDurations.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		ProgCompileErrors.Add(name, 1)
		return nil, err
	}
	ProgCompiles.Add(name, 1)
	glog.Infof("Compiled %s: %d instructions", name, len(obj.Program))

	r.cacheMu.Lock()
	r.cache.Add(key, obj)
	r.cacheMu.Unlock()
	return obj, nil
}

// CompileFile compiles the source file at path and writes the object file
// next to it, returning the object file name.  On any error no object file
// is written, and one left by an earlier compile of path is removed.
func (r *Runtime) CompileFile(ctx context.Context, path string) (string, *code.Object, error) {
	ctx, span := trace.StartSpan(ctx, "runtime.CompileFile")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("path", path))

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		ProgCompileErrors.Add(filepath.Base(path), 1)
		return "", nil, errors.Wrapf(err, "failed to read program %q", path)
	}
	defer func() {
		if err := f.Close(); err != nil {
			glog.Warning(err)
		}
	}()
	obj, err := r.Compile(ctx, filepath.Base(path), f)
	if err != nil {
		removeObject(code.ObjectPath(path))
		return "", nil, err
	}
	if r.dumpBytecode {
		glog.Infof("Dumping bytecode of %s\n%s", path, disassemble(obj))
	}
	objPath := code.ObjectPath(path)
	out := obj
	if !r.emitSymbols {
		out = &code.Object{Program: obj.Program}
		if err := os.Remove(code.SymbolsPath(objPath)); err != nil && !os.IsNotExist(err) {
			glog.Warning(err)
		}
	}
	if err := code.WriteFile(objPath, out); err != nil {
		return "", nil, err
	}
	return objPath, obj, nil
}

// removeObject deletes an object file and its symbols, so a stale program
// cannot be run after a failed compile.
func removeObject(objPath string) {
	for _, p := range []string{objPath, code.SymbolsPath(objPath)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			glog.Warning(err)
		}
	}
}

// LoadObject reads an object file and its symbols, if present.
func (r *Runtime) LoadObject(path string) (*code.Object, error) {
	obj, err := code.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if r.dumpBytecode {
		glog.Infof("Dumping bytecode of %s\n%s", path, disassemble(obj))
	}
	return obj, nil
}

// NewVM creates a machine loaded with obj, using the runtime's machine
// options followed by opts.
func (r *Runtime) NewVM(name string, obj *code.Object, opts ...vm.Option) (*vm.VM, error) {
	all := append(append([]vm.Option(nil), r.vmOpts...), opts...)
	return vm.New(name, obj, all...)
}

// Run creates a machine for obj and runs it to completion, or until it stops
// at a breakpoint.
func (r *Runtime) Run(ctx context.Context, name string, obj *code.Object) (*vm.VM, error) {
	v, err := r.NewVM(name, obj)
	if err != nil {
		return nil, err
	}
	s := v.Run(ctx)
	glog.V(1).Infof("%s finished: %s", name, s.Name())
	return v, nil
}

// CompileAndRun compiles a program read from input and runs it.  Compile
// errors are returned; runtime failures are reported by the machine status.
func (r *Runtime) CompileAndRun(ctx context.Context, name string, input io.Reader) (*vm.VM, error) {
	obj, err := r.Compile(ctx, name, input)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, name, obj)
}

func disassemble(obj *code.Object) string {
	var b bytes.Buffer
	if err := code.Disassemble(&b, obj.Program, obj.Symbols); err != nil {
		glog.Warning(err)
	}
	return b.String()
}
