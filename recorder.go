/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package recorder is the small, explicit entry point a host program
// (or a thin wrapper package that intercepts calls via function
// variables) links against. Go has no symbol interposition and no
// destructor attribute, so where the C original wires
// recorder_init/recorder_finalize to __attribute__((constructor)) and
// __attribute__((destructor)), this package wires Init to its own
// init() when RECORDER_WITH_NON_MPI=1 is set, and leaves Finalize to
// an explicit Shutdown() call or to OnCrash's signal handler
// (spec.md §5, §6).
package recorder

import (
	"os"

	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/internal/logging"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
	"github.com/nydus-snapshotter-labs/recorder/pkg/tracer"
)

var global = tracer.New()

func init() {
	if os.Getenv("RECORDER_WITH_NON_MPI") != "1" {
		return
	}
	logging.Debugf("recorder: RECORDER_WITH_NON_MPI=1, running startup hook")
	if err := global.Init(); err != nil {
		logging.Errorf("recorder: startup hook failed: %v", err)
		return
	}
	global.OnCrash()
}

// Init brings the process from Uninit to InitNoMPI, treating it as
// rank 0 of a single-process run.
func Init() error {
	return global.Init()
}

// InitDistributed brings the process to InitWithMPI under the given
// rank/nprocs identity, which the host's message-passing layer is
// responsible for agreeing on across processes beforehand.
func InitDistributed(rank, nprocs int) error {
	return global.InitDistributed(rank, nprocs)
}

// Record hands a single completed call to the active tracer. A no-op
// before Init or after Finalize.
func Record(r *record.Record) {
	global.Append(r)
}

// Finalize flushes and closes this process's output files.
func Finalize() error {
	return global.Finalize()
}

// OnCrash installs a signal handler that finalizes once and re-raises
// the signal's default behavior. sigs defaults to SIGINT and SIGTERM.
func OnCrash(sigs ...os.Signal) {
	global.OnCrash(sigs...)
}

// Shutdown is the explicit teardown hook a host program calls at
// normal process exit when RECORDER_WITH_NON_MPI started the tracer
// from init() — the Go analogue of the C original's
// __attribute__((destructor)) finalize call. Safe to call even if
// Init was never reached (e.g. RECORDER_WITH_NON_MPI unset): Finalize
// then returns errdefs.ErrNotInitialized, which Shutdown swallows
// after logging, matching the online path's "never break the host"
// rule (spec.md §7).
func Shutdown() {
	if err := global.Finalize(); err != nil {
		logging.Debugf("recorder: Shutdown: %v", err)
	}
}

// OutputDirName is re-exported from config so a host embedding this
// module doesn't need a second import just to read the fixed output
// directory name.
const OutputDirName = config.OutputDirName
