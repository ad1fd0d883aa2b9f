/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package encoder

import (
	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
	"github.com/nydus-snapshotter-labs/recorder/pkg/wire"
)

// BinaryEncoder emits mode 1: status | tstart_ticks | tend_ticks | res
// | func_id | arg tail, with no compression (spec.md §4.4, §6).
type BinaryEncoder struct {
	Sink           Sink
	StartTimestamp float64
}

// Ticks converts a wall-clock timestamp to the integer tick count the
// wire format stores, truncating toward zero like the C (int) cast
// (spec.md §6: ticks = (t - epoch) / resolution, truncated).
func Ticks(t, start float64) int32 {
	return int32((t - start) / config.TimeResolution)
}

func (e *BinaryEncoder) Encode(r *record.Record) error {
	return EncodeBinaryFields(e.Sink, r.Status, Ticks(r.TStart, e.StartTimestamp), Ticks(r.TEnd, e.StartTimestamp), int32(r.Res), int32(r.FuncID), r.Args)
}

// EncodeBinaryFields writes the shared mode 1/2 wire layout: this is
// split out so the windowed encoder can reuse it for both full and
// diff records, which share everything but how func_id and args are
// populated.
func EncodeBinaryFields(sink Sink, status byte, tstart, tend, res, funcIDOrWindowIdx int32, args []*string) error {
	buf := make([]byte, 0, 1+4+4+4+4+16)
	buf = append(buf, wire.PutUint8(status)...)
	buf = append(buf, wire.PutInt32(tstart)...)
	buf = append(buf, wire.PutInt32(tend)...)
	buf = append(buf, wire.PutInt32(res)...)
	buf = append(buf, wire.PutInt32(funcIDOrWindowIdx)...)
	buf = append(buf, []byte(record.FormatArgTail(args))...)
	buf = append(buf, '\n')
	return sink.Append(buf)
}
