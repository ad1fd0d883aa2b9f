/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package encoder

import (
	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/pkg/metrics"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
)

// WindowedEncoder emits mode 2: binary + sliding-window peephole
// compression (spec.md §4.4). It owns the window of up to W=3 prior
// Records and is the only encoder that retains a Record past Encode.
type WindowedEncoder struct {
	sink           Sink
	startTimestamp float64
	window         [config.PeepholeWindowSize]*record.Record
}

func NewWindowedEncoder(sink Sink, startTimestamp float64) *WindowedEncoder {
	return &WindowedEncoder{sink: sink, startTimestamp: startTimestamp}
}

func (e *WindowedEncoder) Encode(r *record.Record) error {
	refIdx := -1
	var diffArgs []*string
	var mask byte

	argCount := r.ArgCount()
	if argCount > 0 && argCount < 8 {
		for i, old := range e.window {
			if old == nil {
				break
			}
			if old.FuncID != r.FuncID || old.ArgCount() != argCount {
				continue
			}

			args, m, diffCount := diffArguments(old.Args, r.Args)
			// First slot whose diff is strictly smaller than the total
			// argument count wins — spec.md locks this "first viable"
			// behavior in rather than a global-minimum search, which
			// is what the C original actually does despite its
			// min_diff_count naming.
			if diffCount < argCount {
				refIdx, diffArgs, mask = i, args, m
				break
			}
		}
	}

	var err error
	if refIdx >= 0 {
		metrics.IncWindowHit()
		status := record.StatusDiff | mask
		err = EncodeBinaryFields(e.sink, status,
			Ticks(r.TStart, e.startTimestamp), Ticks(r.TEnd, e.startTimestamp),
			int32(r.Res), int32(refIdx), diffArgs)
	} else {
		metrics.IncWindowMiss()
		r.Status = record.StatusFull
		err = EncodeBinaryFields(e.sink, record.StatusFull,
			Ticks(r.TStart, e.startTimestamp), Ticks(r.TEnd, e.startTimestamp),
			int32(r.Res), int32(r.FuncID), r.Args)
	}
	if err != nil {
		return err
	}

	e.shift(r.Clone())
	return nil
}

// shift evicts the oldest slot and installs r at index 0.
func (e *WindowedEncoder) shift(r *record.Record) {
	for i := len(e.window) - 1; i > 0; i-- {
		e.window[i] = e.window[i-1]
	}
	e.window[0] = r
}

func diffArguments(oldArgs, newArgs []*string) (diff []*string, mask byte, count int) {
	for i := range newArgs {
		if argEqual(oldArgs[i], newArgs[i]) {
			continue
		}
		diff = append(diff, newArgs[i])
		mask |= 1 << uint(i)
		count++
	}
	return
}

func argEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
