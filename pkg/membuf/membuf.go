/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package membuf is the fixed-capacity byte arena that batches record
// bytes before they hit the underlying data file (spec.md §4.3,
// component C5).
package membuf

import (
	"os"

	"github.com/nydus-snapshotter-labs/recorder/pkg/metrics"
	"github.com/nydus-snapshotter-labs/recorder/pkg/realcalls"
)

// DefaultCapacity is the design default: 6 MiB.
const DefaultCapacity = 6 * 1024 * 1024

// MemBuf batches writes to dst and flushes through tbl's real fwrite.
// It enforces single-writer discipline by construction: it has no
// internal locking, so callers (pkg/tracer) must serialize all calls
// to Append the way spec.md §5 requires.
type MemBuf struct {
	tbl  *realcalls.Table
	dst  *os.File
	rank int

	buf []byte
	pos int
}

// New allocates a MemBuf of the given capacity that flushes to dst via
// tbl. capacity <= 0 uses DefaultCapacity. rank labels this arena's
// flush counter in pkg/metrics.
func New(tbl *realcalls.Table, dst *os.File, capacity int, rank int) *MemBuf {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemBuf{
		tbl:  tbl,
		dst:  dst,
		rank: rank,
		buf:  make([]byte, capacity),
	}
}

// Append batches p into the arena, flushing first if needed. Per
// spec.md §4.3: a record at least as large as the whole arena bypasses
// it entirely (flush, then a direct write) so one pathological record
// can't force the arena to grow.
func (m *MemBuf) Append(p []byte) error {
	if len(p) >= len(m.buf) {
		if err := m.Flush(); err != nil {
			return err
		}
		_, err := m.tbl.Write(m.dst, p)
		return err
	}

	if m.pos+len(p) >= len(m.buf) {
		if err := m.Flush(); err != nil {
			return err
		}
	}

	copy(m.buf[m.pos:], p)
	m.pos += len(p)
	return nil
}

// Flush writes the buffered bytes through the real-call table and
// resets pos to 0.
func (m *MemBuf) Flush() error {
	if m.pos == 0 {
		return nil
	}
	_, err := m.tbl.Write(m.dst, m.buf[:m.pos])
	m.pos = 0
	metrics.IncFlush(m.rank)
	return err
}

// Destroy releases the backing arena. The caller is expected to have
// already called Flush (spec.md §4.3: destroy does not imply flush).
func (m *MemBuf) Destroy() {
	m.buf = nil
	m.pos = 0
}

// Pos reports the current buffered byte count, mostly useful for tests.
func (m *MemBuf) Pos() int {
	return m.pos
}
