// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

/*
Command mjc compiles a miniJava source file into an mJAM object file.

	mjc [flags] Program.java

On success the object file Program.mJAM is written next to the source.  Any
error in the source writes no object file and exits with status 4.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/config"
	"github.com/google/minijava/internal/runtime"
	"github.com/google/minijava/internal/watcher"
	"go.opencensus.io/trace"
)

var (
	version = flag.Bool("version", false, "Print version information.")

	configFile = flag.String("config", "", "Path of a TOML configuration file.  Flags override its values.")

	// Compiler behaviour flags.
	dumpAst         = flag.Bool("dump_ast", false, "Dump AST of programs after parse (to INFO log).")
	dumpAstTypes    = flag.Bool("dump_ast_types", false, "Dump AST of programs with type annotation after typecheck (to INFO log).")
	dumpBytecode    = flag.Bool("dump_bytecode", false, "Dump bytecode of programs (to INFO log).")
	dynamicDispatch = flag.Bool("dynamic_dispatch", false, "Dispatch instance method calls through the class descriptor of the receiver.")
	symbols         = flag.Bool("symbols", false, "Write a symbol file next to the object file, for the debugger and disassembler.")

	// Watch mode flags.
	watch        = flag.Bool("watch", false, "Keep running, and recompile the source every time it changes.")
	pollInterval = flag.Duration("poll_interval", 250*time.Millisecond, "Interval to poll the source for changes in watch mode; zero relies on fsnotify alone.")

	// Ops flags.
	metricsTextfile = flag.String("metrics_textfile", "", "If set, write the compiler metrics to this file on exit, in the Prometheus text format.")

	// Tracing.
	jaegerEndpoint    = flag.String("jaeger_endpoint", "", "If set, collector endpoint URL of jaeger thrift service")
	traceSamplePeriod = flag.Int("trace_sample_period", 0, "Sample period for traces.  If non-zero, every nth trace will be sampled.")
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

// exitCompileFailed is the exit status for programs that fail to compile.
const exitCompileFailed = 4

func main() {
	buildInfo := runtime.BuildInfo{
		Branch:   Branch,
		Version:  Version,
		Revision: Revision,
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", buildInfo.String())
		fmt.Fprintf(os.Stderr, "\nUsage: %s [flags] Program.java\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *version {
		fmt.Println(buildInfo.String())
		os.Exit(0)
	}
	glog.Info(buildInfo.String())
	glog.Infof("Commandline: %q", os.Args)
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	source := flag.Arg(0)

	cfg, err := config.Load(*configFile)
	if err != nil {
		glog.Exit(err)
	}
	overrideConfig(cfg)

	if *traceSamplePeriod > 0 {
		trace.ApplyConfig(trace.Config{DefaultSampler: trace.ProbabilitySampler(1 / float64(*traceSamplePeriod))})
	}

	opts := []runtime.Option{
		runtime.SetBuildInfo(buildInfo),
		runtime.MaxCodeSize(cfg.Compiler.MaxCodeSize),
	}
	if cfg.Compiler.DynamicDispatch {
		opts = append(opts, runtime.DynamicDispatch())
	}
	if cfg.Compiler.Symbols {
		opts = append(opts, runtime.EmitSymbols())
	}
	if *dumpAst {
		opts = append(opts, runtime.DumpAst())
	}
	if *dumpAstTypes {
		opts = append(opts, runtime.DumpAstTypes())
	}
	if *dumpBytecode {
		opts = append(opts, runtime.DumpBytecode())
	}
	if *jaegerEndpoint != "" {
		opts = append(opts, runtime.JaegerReporter(*jaegerEndpoint, "mjc"))
	}
	r, err := runtime.New(opts...)
	if err != nil {
		glog.Exit(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status := 0
	if *watch {
		status = watchSource(ctx, cancel, r, source)
	} else {
		status = compile(ctx, r, source, os.Stdout)
	}

	if *metricsTextfile != "" {
		if err := r.WriteMetrics(*metricsTextfile); err != nil {
			glog.Error(err)
		}
	}
	cancel()
	os.Exit(status) //nolint:gocritic // cancel has been called
}

// overrideConfig replaces configuration values with those of the flags set
// on the command line.
func overrideConfig(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dynamic_dispatch":
			cfg.Compiler.DynamicDispatch = *dynamicDispatch
		case "symbols":
			cfg.Compiler.Symbols = *symbols
		}
	})
}

// compile compiles source once, printing any errors to w, and returns the
// exit status.
func compile(ctx context.Context, r *runtime.Runtime, source string, w io.Writer) int {
	if _, _, err := r.CompileFile(ctx, source); err != nil {
		fmt.Fprintln(w, err)
		return exitCompileFailed
	}
	return 0
}

// watchSource recompiles source on every change until the process is
// interrupted.
func watchSource(ctx context.Context, cancel context.CancelFunc, r *runtime.Runtime, source string) int {
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigint
		glog.Infof("Received %+v, exiting...", sig)
		cancel()
	}()

	w, err := watcher.NewSourceWatcher(*pollInterval, true)
	if err != nil {
		glog.Error(err)
		return 1
	}
	defer func() {
		if err := w.Close(); err != nil {
			glog.Warning(err)
		}
	}()
	if err := r.Watch(ctx, w, source); err != nil {
		glog.Error(err)
		return 1
	}
	if _, err := r.LastCompile(source); err != nil {
		fmt.Println(err)
	}
	<-ctx.Done()
	return 0
}
