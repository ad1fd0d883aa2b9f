/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package metrics is the in-process instrumentation surface added on
// top of the recorder's write path: how many records each rank has
// encoded, how often the memory arena has flushed to disk, and how
// often the windowed encoder found a usable diff slot versus falling
// back to a full record. It mirrors the counter/registry/collector
// split the rest of this codebase's metrics stack uses, scaled down to
// this module's handful of signals.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var rankLabel = "rank"

var (
	// RecordsEncoded counts records passed through a rank's encoder,
	// labeled by rank.
	RecordsEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_records_encoded_total",
			Help: "Total records encoded, by rank.",
		},
		[]string{rankLabel},
	)

	// BufferFlushes counts how many times a rank's memory arena has
	// flushed its contents to the underlying data file.
	BufferFlushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_buffer_flushes_total",
			Help: "Total memory-arena flushes to the data file, by rank.",
		},
		[]string{rankLabel},
	)

	// WindowHits counts windowed-encoder calls that found a viable
	// diff slot in the sliding window.
	WindowHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recorder_window_hits_total",
			Help: "Records encoded as a diff against a prior window slot.",
		},
	)

	// WindowMisses counts windowed-encoder calls that fell back to a
	// full record because no window slot diffed cheaply enough.
	WindowMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recorder_window_misses_total",
			Help: "Records encoded in full because no window slot diffed cheaply enough.",
		},
	)
)

// Registry is the package-local prometheus registry every counter
// above is registered into; WriteSnapshotFile gathers from it instead
// of the global DefaultRegisterer so embedding this
// module doesn't collide with a host process's own metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(RecordsEncoded, BufferFlushes, WindowHits, WindowMisses)
}
