// Copyright 2011 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package vm

import (
	"expvar"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	instructionsExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mjam",
		Name:      "instructions_executed_total",
		Help:      "Number of mJAM instructions executed, by program.",
	}, []string{"prog"})

	runDurations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mjam",
		Name:      "run_duration_seconds",
		Help:      "Program run time distribution in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.00002, 2.0, 16),
	}, []string{"prog"})

	terminations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mjam",
		Name:      "terminations_total",
		Help:      "Number of program runs that reached a terminal status, by program and status.",
	}, []string{"prog", "status"})

	// ProgRuntimeErrors counts failed runs per program name.
	ProgRuntimeErrors = expvar.NewMap("prog_runtime_errors_total")
)

// Collectors returns the prometheus collectors of the machine, for
// registration by the embedding server.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{instructionsExecuted, runDurations, terminations}
}
