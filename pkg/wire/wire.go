/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package wire holds the small binary-encoding helpers shared by the
// online encoder pipeline and the offline reader, so the two sides of
// the on-wire contract (spec.md §6) can't drift from each other.
//
// All multi-byte fields are little-endian. The C original's "int" maps
// to a 4-byte field here and "size_t" to an 8-byte field, matching the
// widths spec.md §6 calls out for the global/local metadata headers
// and the zlib blob framing.
package wire

import (
	"encoding/binary"
	"math"
)

func PutUint8(b byte) []byte { return []byte{b} }

func PutInt32(v int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

func PutInt64(v int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}

func PutFloat64(v float64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}

func GetInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

func GetInt64(b []byte) int64 {
	return int64(binary.LittleEndian.Uint64(b))
}

func GetFloat64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

const (
	SizeUint8   = 1
	SizeInt32   = 4
	SizeInt64   = 8
	SizeFloat64 = 8
)
