/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package record holds the in-memory representation of one intercepted
// call (spec.md §3, component C4).
package record

// Status bits for the on-wire status byte (spec.md §6).
const (
	StatusFull = 0x00
	StatusDiff = 0x80
	ArgMask    = 0x7F
)

// Record is a single intercepted call: created by an interceptor just
// before issuing the real call, handed to an encoder, and freed by the
// encoder unless retained in the windowed encoder's sliding window.
//
// Args entries are pointers so a nil argument (the traced call was
// given a null pointer) is distinguishable from an interned empty
// string; both render differently on the wire (spec.md §8 boundary
// behaviors): nil -> "???", non-nil empty -> a zero-length token.
type Record struct {
	TID       int64
	CallDepth int
	FuncID    int
	TStart    float64
	TEnd      float64
	Res       int64
	Args      []*string
	Status    byte
}

// ArgCount returns len(Args), capped conceptually at 255 per spec.md §3;
// callers that exceed that should not reach the encoder (see
// errdefs.ErrRecordTooLarge).
func (r *Record) ArgCount() int {
	return len(r.Args)
}

// Clone returns a deep copy, used by the sliding window to retain a
// record across diff comparisons without aliasing the caller's slice.
func (r *Record) Clone() *Record {
	cp := *r
	cp.Args = make([]*string, len(r.Args))
	for i, a := range r.Args {
		if a == nil {
			continue
		}
		v := *a
		cp.Args[i] = &v
	}
	return &cp
}

// StrArg is a convenience constructor for a non-null argument.
func StrArg(s string) *string { return &s }
