/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package tracer is the lifecycle controller (spec.md §5, component
// C7): the state machine that takes a process from Uninit through
// InitNoMPI or InitWithMPI to Finalized, owning the one Writer and
// Encoder a rank uses for its whole run. The top-level recorder
// package is a thin wrapper around a single package-level Tracer.
package tracer

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/internal/logging"
	"github.com/nydus-snapshotter-labs/recorder/pkg/clock"
	"github.com/nydus-snapshotter-labs/recorder/pkg/encoder"
	"github.com/nydus-snapshotter-labs/recorder/pkg/errdefs"
	"github.com/nydus-snapshotter-labs/recorder/pkg/realcalls"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
	"github.com/nydus-snapshotter-labs/recorder/pkg/writer"
)

type state int

const (
	stateUninit state = iota
	stateInitNoMPI
	stateInitWithMPI
	stateFinalized
)

// Tracer drives one process's recorder lifecycle. The zero value is
// not usable; construct with New.
type Tracer struct {
	mu    sync.Mutex
	state state

	tbl *realcalls.Table
	w   *writer.Writer
	enc encoder.Encoder
	cfg config.Config

	startWall float64
	sigCh     chan os.Signal
}

// New returns an uninitialized Tracer.
func New() *Tracer {
	return &Tracer{tbl: realcalls.New()}
}

// Init brings the tracer from Uninit to InitNoMPI, treating the
// process as rank 0 of a single-process run unless a prior
// InitDistributed call already published different identity (spec.md
// §7(e)). Calling Init from any other state is a no-op, logged at
// debug level.
func (t *Tracer) Init() error {
	return t.initLocked(clock.Global.Rank(), clock.Global.NProcs())
}

// InitDistributed publishes rank/nprocs identity before bringing the
// tracer to InitWithMPI. The host's message-passing layer is expected
// to have already agreed on rank/nprocs and to call this from every
// process at the same point.
func (t *Tracer) InitDistributed(rank, nprocs int) error {
	clock.Global.Set(rank, nprocs)
	return t.initLocked(rank, nprocs)
}

func (t *Tracer) initLocked(rank, nprocs int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != stateUninit {
		logging.Debugf("recorder: Init called in state %d, ignoring", t.state)
		return nil
	}

	t.cfg = config.FromEnv()
	if t.cfg.Debug {
		logging.L.SetLevel(logrus.DebugLevel)
	}
	t.startWall = clock.Now()
	logging.Debugf("recorder: initializing rank %d of %d, compression mode %d", rank, nprocs, t.cfg.CompressionMode)

	w, err := writer.Open(t.tbl, config.OutputDirName, rank, nprocs, t.cfg.CompressionMode, 0)
	if err != nil {
		logging.Errorf("recorder: init failed: %v", err)
		return errors.Wrap(err, "open writer")
	}

	t.w = w
	t.enc = encoder.New(t.cfg.CompressionMode, w.Sink(), w, t.startWall)

	if nprocs > 1 {
		t.state = stateInitWithMPI
	} else {
		t.state = stateInitNoMPI
	}
	return nil
}

// Append hands one completed call to the active encoder. Per spec.md
// §7(b): any failure here is logged and swallowed, never surfaced to
// the host program, and a call outside Init..Finalize is silently
// dropped rather than treated as an error.
func (t *Tracer) Append(r *record.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != stateInitNoMPI && t.state != stateInitWithMPI {
		return
	}
	if err := t.enc.Encode(r); err != nil {
		logging.Errorf("recorder: encode failed: %v", err)
	}
}

// Finalize flushes and closes this rank's output files exactly once.
// A second call returns errdefs.ErrAlreadyFinalized; a call before
// Init returns errdefs.ErrNotInitialized — both are reported to the
// caller (unlike Append) since Finalize is an explicit, deliberate API
// call, not something that happens inside an interceptor.
func (t *Tracer) Finalize() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case stateUninit:
		return errdefs.ErrNotInitialized
	case stateFinalized:
		return errdefs.ErrAlreadyFinalized
	}

	logging.Debugf("recorder: finalizing")
	if err := t.w.Finalize(); err != nil {
		logging.Errorf("recorder: finalize failed: %v", err)
		return errors.Wrap(err, "finalize writer")
	}

	t.state = stateFinalized
	logging.Infof("[Recorder] elapsed time: %.2f", clock.Now()-t.startWall)
	return nil
}

// OnCrash installs a signal handler that runs Finalize once on receipt
// of any of sigs (SIGINT and SIGTERM if none given), then re-raises
// the signal so the process still terminates the way it would have
// without the handler installed. Grounded on the teacher's
// pkg/fanotify/waiter.go signal.Notify pattern. Calling OnCrash twice
// on the same Tracer is a no-op.
func (t *Tracer) OnCrash(sigs ...os.Signal) {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	t.mu.Lock()
	if t.sigCh != nil {
		t.mu.Unlock()
		return
	}
	ch := make(chan os.Signal, 1)
	t.sigCh = ch
	t.mu.Unlock()

	signal.Notify(ch, sigs...)
	go func() {
		sig := <-ch
		logging.Infof("recorder: caught signal %v, finalizing", sig)
		if err := t.Finalize(); err != nil && !errdefs.IsAlreadyFinalized(err) {
			logging.Errorf("recorder: finalize on crash failed: %v", err)
		}
		signal.Stop(ch)

		if p, err := os.FindProcess(os.Getpid()); err == nil {
			signal.Reset(sig)
			_ = p.Signal(sig)
		}
	}()
}
