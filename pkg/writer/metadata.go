/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package writer

import (
	"bytes"
	"io"
	"strings"

	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/pkg/filenames"
	"github.com/nydus-snapshotter-labs/recorder/pkg/funcnames"
	"github.com/nydus-snapshotter-labs/recorder/pkg/wire"
)

const versionString = "3.2.0"

// GlobalMetadata is recorder.mt's contents (spec.md §6): packed header
// followed by one function name per line.
type GlobalMetadata struct {
	TimeResolution     float64
	TotalRanks         int32
	CompressionMode    config.CompressionMode
	PeepholeWindowSize int32
	FuncNames          []string
}

func encodeGlobalMetadata(m GlobalMetadata) []byte {
	var buf bytes.Buffer
	buf.Write(wire.PutFloat64(m.TimeResolution))
	buf.Write(wire.PutInt32(m.TotalRanks))
	buf.Write(wire.PutInt32(int32(m.CompressionMode)))
	buf.Write(wire.PutInt32(m.PeepholeWindowSize))
	buf.WriteString(strings.Join(m.FuncNames, "\n"))
	buf.WriteByte('\n')
	return buf.Bytes()
}

// WriteGlobalMetadataTo writes m's encoding to w, exported so
// pkg/filter can emit a rewritten recorder.mt into `_filtered` without
// duplicating the wire format.
func WriteGlobalMetadataTo(w io.Writer, m GlobalMetadata) error {
	_, err := w.Write(encodeGlobalMetadata(m))
	return err
}

// DecodeGlobalMetadata reverses encodeGlobalMetadata; used by pkg/reader.
func DecodeGlobalMetadata(b []byte) GlobalMetadata {
	m := GlobalMetadata{
		TimeResolution:     wire.GetFloat64(b[0:8]),
		TotalRanks:         wire.GetInt32(b[8:12]),
		CompressionMode:    config.CompressionMode(wire.GetInt32(b[12:16])),
		PeepholeWindowSize: wire.GetInt32(b[16:20]),
	}
	rest := strings.TrimSuffix(string(b[20:]), "\n")
	if rest != "" {
		m.FuncNames = strings.Split(rest, "\n")
	}
	return m
}

// LocalMetadata is one rank's <rank>.mt contents: per-record counters
// plus that rank's filename table (spec.md §4.2, §6).
type LocalMetadata struct {
	TotalRecords  int32
	FunctionCount []int32
	TStart        float64
	TEnd          float64
	Files         []filenames.Entry
}

func encodeLocalMetadata(m LocalMetadata) []byte {
	var buf bytes.Buffer
	buf.Write(wire.PutInt32(m.TotalRecords))
	buf.Write(wire.PutInt32(int32(len(m.FunctionCount))))
	for _, c := range m.FunctionCount {
		buf.Write(wire.PutInt32(c))
	}
	buf.Write(wire.PutInt32(int32(len(m.Files))))
	buf.Write(wire.PutFloat64(m.TStart))
	buf.Write(wire.PutFloat64(m.TEnd))
	for _, f := range m.Files {
		buf.Write(wire.PutInt32(int32(f.ID)))
		buf.Write(wire.PutInt64(f.FileSize))
		buf.Write(wire.PutInt32(int32(len(f.Path))))
		buf.WriteString(f.Path)
	}
	return buf.Bytes()
}

// DecodeLocalMetadata reverses encodeLocalMetadata; used by pkg/reader.
func DecodeLocalMetadata(b []byte) LocalMetadata {
	m := LocalMetadata{TotalRecords: wire.GetInt32(b[0:4])}
	off := 4
	nfunc := int(wire.GetInt32(b[off : off+4]))
	off += 4
	m.FunctionCount = make([]int32, nfunc)
	for i := 0; i < nfunc; i++ {
		m.FunctionCount[i] = wire.GetInt32(b[off : off+4])
		off += 4
	}
	nfiles := int(wire.GetInt32(b[off : off+4]))
	off += 4
	m.TStart = wire.GetFloat64(b[off : off+8])
	off += 8
	m.TEnd = wire.GetFloat64(b[off : off+8])
	off += 8
	m.Files = make([]filenames.Entry, nfiles)
	for i := 0; i < nfiles; i++ {
		id := int(wire.GetInt32(b[off : off+4]))
		off += 4
		size := wire.GetInt64(b[off : off+8])
		off += 8
		plen := int(wire.GetInt32(b[off : off+4]))
		off += 4
		path := string(b[off : off+plen])
		off += plen
		m.Files[i] = filenames.Entry{ID: id, Path: path, FileSize: size}
	}
	return m
}

func staticFuncNames() []string {
	out := make([]string, len(funcnames.Table))
	for i := range funcnames.Table {
		out[i] = funcnames.DisplayName(i)
	}
	return out
}
