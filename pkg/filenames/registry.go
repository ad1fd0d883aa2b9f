/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package filenames implements the deduplicated pathname -> id mapping
// described in spec.md §4.2 (component C3).
package filenames

import (
	"github.com/nydus-snapshotter-labs/recorder/internal/logging"
	"github.com/nydus-snapshotter-labs/recorder/pkg/realcalls"
)

// Entry is one filename registry row, as written to local metadata.
type Entry struct {
	ID       int
	Path     string
	FileSize int64
}

// Registry is a single-writer, insertion-ordered set of observed
// pathnames. IDs are dense integers assigned by Intern on first sight —
// on-disk ID assignment is insertion order, but the spec explicitly does not
// require callers to rely on that (spec.md §3 invariant only requires
// density, 0..num_files-1).
type Registry struct {
	order []string
	ids   map[string]int
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{ids: make(map[string]int)}
}

// Intern assigns a dense ID to path on first sight and returns the
// stored ID on every subsequent call (spec.md §4.2).
func (r *Registry) Intern(path string) int {
	if id, ok := r.ids[path]; ok {
		return id
	}
	id := len(r.order)
	r.order = append(r.order, path)
	r.ids[path] = id
	return id
}

// Len returns the number of distinct filenames interned so far.
func (r *Registry) Len() int {
	return len(r.order)
}

// Iterate returns (id, path) pairs in insertion order. On-disk IDs are
// insertion order in this implementation, which trivially satisfies
// the spec's "insertion order irrelevant to on-disk IDs" note.
func (r *Registry) Iterate() []Entry {
	out := make([]Entry, len(r.order))
	for id, path := range r.order {
		out[id] = Entry{ID: id, Path: path}
	}
	return out
}

// SizeOnDisk stats path via the real-call table. Called only at
// finalize time, when the file handle is guaranteed closed so the
// underlying stat is not itself intercepted (spec.md §4.2). A failed
// stat never fails the host program: it logs and records size 0.
func SizeOnDisk(tbl *realcalls.Table, path string) int64 {
	info, err := tbl.Stat(path)
	if err != nil {
		logging.Debugf("recorder: stat %q failed, recording size 0: %v", path, err)
		return 0
	}
	return info.Size()
}

// Resolve fills in FileSize for every entry via SizeOnDisk.
func (r *Registry) Resolve(tbl *realcalls.Table) []Entry {
	entries := r.Iterate()
	for i := range entries {
		entries[i].FileSize = SizeOnDisk(tbl, entries[i].Path)
	}
	return entries
}
