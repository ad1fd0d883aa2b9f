/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package cst implements the offline call-signature table (spec.md
// §3, §4.8): a dedup table from a record's signature to a dense
// terminal id, consulted by pkg/sequitur when growing the per-rank
// grammar.
package cst

import (
	"bytes"

	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
	"github.com/nydus-snapshotter-labs/recorder/pkg/wire"
)

// Entry is one CST row as serialized to disk: (terminal_id, rank,
// key_len, count, key_bytes) per spec.md §4.8.
type Entry struct {
	TerminalID int
	Rank       int
	Count      int32
	Key        []byte
}

// Table is an insertion-ordered, dense-id call-signature table. Shared
// across every rank being processed by the filter tool (spec.md §4.8:
// "all ranks share the same CST contents").
type Table struct {
	order []string
	ids   map[string]int
	count map[string]int32
	rank  map[string]int
}

func New() *Table {
	return &Table{ids: make(map[string]int), count: make(map[string]int32), rank: make(map[string]int)}
}

// Key builds the byte-key spec.md §3 defines: tid ∥ func_id ∥
// call_depth ∥ arg_count ∥ arg_blob_length ∥ arg_blob, where arg_blob
// is the same space-prefixed tail the wire encoders use (one space
// before each argument, none after the last), so the separator count
// equals arg_count end to end.
func Key(r *record.Record) []byte {
	tail := record.FormatArgTail(r.Args)
	var buf bytes.Buffer
	buf.Write(wire.PutInt64(r.TID))
	buf.Write(wire.PutInt32(int32(r.FuncID)))
	buf.Write(wire.PutInt32(int32(r.CallDepth)))
	buf.Write(wire.PutInt32(int32(r.ArgCount())))
	buf.Write(wire.PutInt32(int32(len(tail))))
	buf.WriteString(tail)
	return buf.Bytes()
}

// Intern assigns a dense terminal id to key on first sight (insertion
// order from 0, spec.md §3 invariant) and increments its occurrence
// count on every call, including the first.
func (t *Table) Intern(key []byte, rank int) int {
	k := string(key)
	id, ok := t.ids[k]
	if !ok {
		id = len(t.order)
		t.order = append(t.order, k)
		t.ids[k] = id
		t.rank[k] = rank
	}
	t.count[k]++
	return id
}

// Len returns the number of distinct signatures interned.
func (t *Table) Len() int {
	return len(t.order)
}

// Entries returns every row in terminal-id order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.order))
	for id, k := range t.order {
		out[id] = Entry{TerminalID: id, Rank: t.rank[k], Count: t.count[k], Key: []byte(k)}
	}
	return out
}

// Serialize writes the length-prefixed CST blob spec.md §4.8 describes:
// entry count, then each entry (terminal_id, rank, key_len, count,
// key_bytes). This is the payload that gets zlib-framed by pkg/filter,
// not the on-disk .cst file itself.
func (t *Table) Serialize() []byte {
	entries := t.Entries()
	var buf bytes.Buffer
	buf.Write(wire.PutInt32(int32(len(entries))))
	for _, e := range entries {
		buf.Write(wire.PutInt32(int32(e.TerminalID)))
		buf.Write(wire.PutInt32(int32(e.Rank)))
		buf.Write(wire.PutInt32(int32(len(e.Key))))
		buf.Write(wire.PutInt32(e.Count))
		buf.Write(e.Key)
	}
	return buf.Bytes()
}

// Deserialize reverses Serialize, used by pkg/reader.
func Deserialize(b []byte) []Entry {
	off := 0
	n := int(wire.GetInt32(b[off : off+4]))
	off += 4
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		id := int(wire.GetInt32(b[off : off+4]))
		off += 4
		rank := int(wire.GetInt32(b[off : off+4]))
		off += 4
		klen := int(wire.GetInt32(b[off : off+4]))
		off += 4
		count := wire.GetInt32(b[off : off+4])
		off += 4
		key := make([]byte, klen)
		copy(key, b[off:off+klen])
		off += klen
		out[i] = Entry{TerminalID: id, Rank: rank, Count: count, Key: key}
	}
	return out
}
