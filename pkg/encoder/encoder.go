/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package encoder implements the three interchangeable record
// encodings (spec.md §4.4, component C6): plain text, raw binary, and
// windowed-differential binary with the sliding-window peephole
// compressor.
package encoder

import (
	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
)

// Sink is the write target every encoder emits through — in
// production this is a *membuf.MemBuf, kept as an interface so
// encoders can be tested without a real file behind them.
type Sink interface {
	Append(p []byte) error
}

// Stats receives the per-record side effect every mode applies before
// encoding (spec.md §4.4): increment total_records and
// function_count[func_id] in local metadata.
type Stats interface {
	IncRecord(funcID int)
}

// Encoder consumes a Record and writes its wire representation to a
// Sink. Only the windowed encoder retains the Record after Encode
// returns; the others free it immediately (a Go GC concern, so "free"
// here just means "don't keep a reference").
type Encoder interface {
	Encode(r *record.Record) error
}

// New builds the Encoder selected by mode, wrapping it so every mode
// applies the shared per-record stats side effect first.
func New(mode config.CompressionMode, sink Sink, stats Stats, startTimestamp float64) Encoder {
	var inner Encoder
	switch mode {
	case config.CompressionText:
		inner = &TextEncoder{Sink: sink}
	case config.CompressionBinary:
		inner = &BinaryEncoder{Sink: sink, StartTimestamp: startTimestamp}
	default:
		inner = NewWindowedEncoder(sink, startTimestamp)
	}
	return &statsEncoder{inner: inner, stats: stats}
}

type statsEncoder struct {
	inner Encoder
	stats Stats
}

func (s *statsEncoder) Encode(r *record.Record) error {
	s.stats.IncRecord(r.FuncID)
	return s.inner.Encode(r)
}
