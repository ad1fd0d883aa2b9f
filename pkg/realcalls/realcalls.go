/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package realcalls is the Go analogue of the C tracer's GOTCHA/dlsym
// real-call table (spec.md §4.1, component C1): the one place the
// tracer's own I/O is allowed to go through, bypassing whatever
// interception layer the host program has wrapped around the standard
// library. Go has no symbol interposition, so "resolving the real
// call" degenerates to a one-time sync.Once step, after which each
// method calls the os function directly — but the discipline matters for the same reason it does in the
// original: any path reachable from inside an interceptor must call
// through here, never through a wrapper that might recurse back into
// the tracer.
package realcalls

import (
	"os"
	"sync"
)

// Table is the entry point for the primitives the tracer needs for its
// own I/O. Resolution is idempotent: the sync.Once runs once per Table,
// and every call of a method goes to the same os function (spec.md
// §4.1 invariant).
type Table struct {
	once sync.Once
}

// New returns a Table ready for use. There is exactly one of these per
// process in normal operation (pkg/tracer owns it), but Table carries
// no process-global state itself so tests can construct their own.
func New() *Table {
	return &Table{}
}

// resolve is called by every method below before touching the
// underlying primitive; it exists so the shape of this package mirrors
// the C MAP_OR_FAIL(...) call sequence in logger_init, even though in
// Go the "resolution" is just making sure init-time setup has run once.
func (t *Table) resolve() {
	t.once.Do(func() {})
}

// OpenFile is the real (non-intercepted) file-open primitive.
func (t *Table) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	t.resolve()
	return os.OpenFile(name, flag, perm)
}

// Remove is the real remove/rmdir primitive.
func (t *Table) Remove(name string) error {
	t.resolve()
	return os.RemoveAll(name)
}

// Mkdir is the real directory-creation primitive.
func (t *Table) Mkdir(name string, perm os.FileMode) error {
	t.resolve()
	return os.MkdirAll(name, perm)
}

// Access is the real existence-check primitive (POSIX access(F_OK)).
func (t *Table) Access(name string) bool {
	t.resolve()
	_, err := os.Stat(name)
	return err == nil
}

// Stat is the real stat primitive, used only at finalize time when the
// file handle is guaranteed closed (spec.md §4.2), so it can never
// recurse into an interceptor the host installed around stat-like
// calls.
func (t *Table) Stat(name string) (os.FileInfo, error) {
	t.resolve()
	return os.Stat(name)
}

// Write issues a real, unbuffered write to f. Callers (pkg/membuf) are
// the only path permitted to call this directly.
func (t *Table) Write(f *os.File, p []byte) (int, error) {
	t.resolve()
	return f.Write(p)
}

// BarrierFunc is a distributed-barrier implementation. Table.Barrier
// runs fn, or a no-op when fn is nil. pkg/writer.Open passes nil and
// nothing in this module supplies a real barrier function, so ranks
// are not synchronized by it.
type BarrierFunc func()

var defaultBarrier BarrierFunc = func() {}

func (t *Table) Barrier(fn BarrierFunc) {
	t.resolve()
	if fn == nil {
		fn = defaultBarrier
	}
	fn()
}
