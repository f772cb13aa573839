// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

/*
Command mjam runs an mJAM object file.

	mjam [flags] Program.mJAM

The program runs to completion and the final status of the machine is
printed; a failed program is followed by a dump of the machine state.  The
exit status is 0 when the program halts normally and 1 otherwise.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/google/minijava/internal/config"
	"github.com/google/minijava/internal/debugger"
	"github.com/google/minijava/internal/runtime"
	"github.com/google/minijava/internal/vm"
	"go.opencensus.io/trace"
)

type seqIntFlag []int

func (f *seqIntFlag) String() string {
	return fmt.Sprint(*f)
}

func (f *seqIntFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*f = append(*f, n)
	}
	return nil
}

var breakpoints seqIntFlag

var (
	version = flag.Bool("version", false, "Print version information.")

	configFile = flag.String("config", "", "Path of a TOML configuration file.  Flags override its values.")

	debug        = flag.Bool("debug", false, "Run the program under the interactive debugger.")
	dumpBytecode = flag.Bool("dump_bytecode", false, "Dump bytecode of the program (to INFO log).")

	// Ops flags.
	metricsTextfile = flag.String("metrics_textfile", "", "If set, write the machine metrics to this file on exit, in the Prometheus text format.")

	// Tracing.
	jaegerEndpoint    = flag.String("jaeger_endpoint", "", "If set, collector endpoint URL of jaeger thrift service")
	traceSamplePeriod = flag.Int("trace_sample_period", 0, "Sample period for traces.  If non-zero, every nth trace will be sampled.")
)

func init() {
	flag.Var(&breakpoints, "break", "Code addresses to stop at, separated by commas.  The machine state is dumped at each one.  This flag may be specified multiple times.")
}

var (
	// Branch as well as Version and Revision identifies where in the git
	// history the build came from, as supplied by the linker when compiled
	// with `make'.  The defaults here indicate that the user did not use
	// `make' as instructed.
	Branch   = "invalid:-use-make-to-build"
	Version  = "invalid:-use-make-to-build"
	Revision = "invalid:-use-make-to-build"
)

func main() {
	buildInfo := runtime.BuildInfo{
		Branch:   Branch,
		Version:  Version,
		Revision: Revision,
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", buildInfo.String())
		fmt.Fprintf(os.Stderr, "\nUsage: %s [flags] Program.mJAM\n", os.Args[0])
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
	objPath := flag.Arg(0)

	cfg, err := config.Load(*configFile)
	if err != nil {
		glog.Exit(err)
	}
	if len(breakpoints) > 0 {
		cfg.Machine.Breakpoints = breakpoints
	}

	if *traceSamplePeriod > 0 {
		trace.ApplyConfig(trace.Config{DefaultSampler: trace.ProbabilitySampler(1 / float64(*traceSamplePeriod))})
	}

	opts := []runtime.Option{
		runtime.SetBuildInfo(buildInfo),
		runtime.VMOptions(
			vm.DataStoreSize(cfg.Machine.DataStoreSize),
			vm.CodeCapacity(cfg.Machine.CodeCapacity),
			vm.Breakpoints(cfg.Machine.Breakpoints...)),
	}
	if *dumpBytecode {
		opts = append(opts, runtime.DumpBytecode())
	}
	if *jaegerEndpoint != "" {
		opts = append(opts, runtime.JaegerReporter(*jaegerEndpoint, "mjam"))
	}
	r, err := runtime.New(opts...)
	if err != nil {
		glog.Exit(err)
	}

	status := run(r, objPath)

	if *metricsTextfile != "" {
		if err := r.WriteMetrics(*metricsTextfile); err != nil {
			glog.Error(err)
		}
	}
	os.Exit(status)
}

// run loads and runs the object file, returning the process exit status.
func run(r *runtime.Runtime, objPath string) int {
	ctx := context.Background()
	obj, err := r.LoadObject(objPath)
	if err != nil {
		fmt.Printf("Unable to load object file %s: %s\n", objPath, err)
		return 1
	}
	name := strings.TrimSuffix(filepath.Base(objPath), filepath.Ext(objPath))
	v, err := r.NewVM(name, obj)
	if err != nil {
		fmt.Println(err)
		return 1
	}

	if *debug {
		d := debugger.New(v, os.Stdin, os.Stdout)
		if err := d.Run(ctx); err != nil {
			glog.Error(err)
		}
	} else {
		for v.Run(ctx) == vm.Running {
			// Stopped at a breakpoint.
			v.Dump(os.Stdout)
		}
	}
	v.ShowStatus(os.Stdout)
	if v.Status() != vm.Halted {
		return 1
	}
	return 0
}
