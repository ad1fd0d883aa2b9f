/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package reader implements the offline trace reader (spec.md §4.7,
// component C9): parses a trace directory's global/local metadata and
// re-materializes each rank's Record stream, reversing whichever
// encoding recorder.mt names.
package reader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/pkg/blobframe"
	"github.com/nydus-snapshotter-labs/recorder/pkg/cst"
	"github.com/nydus-snapshotter-labs/recorder/pkg/errdefs"
	"github.com/nydus-snapshotter-labs/recorder/pkg/funcnames"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
	"github.com/nydus-snapshotter-labs/recorder/pkg/sequitur"
	"github.com/nydus-snapshotter-labs/recorder/pkg/wire"
	"github.com/nydus-snapshotter-labs/recorder/pkg/writer"
)

const (
	globalMetaFile = "recorder.mt"
)

// Reader owns an open trace directory's global metadata; LocalMetadata
// and DecodeRecords are read on demand per rank.
type Reader struct {
	dir    string
	global writer.GlobalMetadata
}

// Open reads the directory's global metadata (spec.md §4.7).
func Open(dir string) (*Reader, error) {
	raw, err := os.ReadFile(filepath.Join(dir, globalMetaFile))
	if err != nil {
		return nil, errors.Wrap(err, "read global metadata")
	}
	if len(raw) < 20 {
		return nil, errdefs.ErrMalformedTrace
	}
	return &Reader{dir: dir, global: writer.DecodeGlobalMetadata(raw)}, nil
}

func (r *Reader) TotalRanks() int                       { return int(r.global.TotalRanks) }
func (r *Reader) CompressionMode() config.CompressionMode { return r.global.CompressionMode }
func (r *Reader) TimeResolution() float64                { return r.global.TimeResolution }

// LocalMetadata reads one rank's <rank>.mt.
func (r *Reader) LocalMetadata(rank int) (writer.LocalMetadata, error) {
	raw, err := os.ReadFile(filepath.Join(r.dir, fmt.Sprintf("%d.mt", rank)))
	if err != nil {
		return writer.LocalMetadata{}, errors.Wrap(err, "read local metadata")
	}
	return writer.DecodeLocalMetadata(raw), nil
}

// DecodeRecords streams rank's decoded Record sequence to fn in trace
// order. The Reader owns each Record until fn returns; fn must copy if
// it needs to retain one (spec.md §4.7).
func (r *Reader) DecodeRecords(rank int, fn func(*record.Record)) error {
	raw, err := os.ReadFile(filepath.Join(r.dir, fmt.Sprintf("%d.itf", rank)))
	if err != nil {
		return errors.Wrap(err, "read trace stream")
	}

	switch r.global.CompressionMode {
	case config.CompressionText:
		return decodeText(raw, fn)
	case config.CompressionBinary:
		return decodeBinary(raw, r.global.TimeResolution, fn)
	default:
		return decodeWindowed(raw, r.global.TimeResolution, fn)
	}
}

// FuncName prefers the global metadata's function-name table (the
// names actually shipped with this trace) and falls back to the
// compiled-in static table.
func (r *Reader) FuncName(rec *record.Record) string {
	if rec.FuncID >= 0 && rec.FuncID < len(r.global.FuncNames) {
		return r.global.FuncNames[rec.FuncID]
	}
	return funcnames.DisplayName(rec.FuncID)
}

// CST reads a filtered trace's shared call-signature table, present
// only in `_filtered` output directories (spec.md §4.8). Returns nil,
// nil if no .cst file exists for this rank.
func (r *Reader) CST(rank int) ([]cst.Entry, error) {
	raw, err := readOptionalBlob(filepath.Join(r.dir, fmt.Sprintf("%d.cst", rank)))
	if raw == nil || err != nil {
		return nil, err
	}
	payload, err := blobframe.ReadFramed(raw)
	if err != nil {
		return nil, errors.Wrap(err, "unframe cst blob")
	}
	return cst.Deserialize(payload), nil
}

// CFG reads a filtered trace's per-rank grammar, present only in
// `_filtered` output directories. Returns nil, nil if no .cfg file
// exists for this rank.
func (r *Reader) CFG(rank int) (*sequitur.Grammar, error) {
	raw, err := readOptionalBlob(filepath.Join(r.dir, fmt.Sprintf("%d.cfg", rank)))
	if raw == nil || err != nil {
		return nil, err
	}
	payload, err := blobframe.ReadFramed(raw)
	if err != nil {
		return nil, errors.Wrap(err, "unframe cfg blob")
	}
	return sequitur.Deserialize(payload), nil
}

func readOptionalBlob(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func decodeText(raw []byte, fn func(*record.Record)) error {
	text := strings.TrimRight(string(raw), "\n")
	if text == "" {
		return nil
	}
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 4)
		if len(parts) < 4 {
			return errdefs.ErrMalformedTrace
		}
		tstart, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return errors.Wrap(errdefs.ErrMalformedTrace, err.Error())
		}
		tend, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return errors.Wrap(errdefs.ErrMalformedTrace, err.Error())
		}
		res, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return errors.Wrap(errdefs.ErrMalformedTrace, err.Error())
		}

		rest := parts[3]
		name, tail := rest, ""
		if i := strings.IndexByte(rest, ' '); i >= 0 {
			name, tail = rest[:i], rest[i:]
		}
		id, ok := funcnames.IDByDisplayName(name)
		if !ok {
			id = funcnames.RecorderUserFunction
		}

		fn(&record.Record{FuncID: id, TStart: tstart, TEnd: tend, Res: res, Args: record.ParseArgTail(tail)})
	}
	return nil
}

// binaryFieldsLen is the fixed-size prefix before the variable-length
// arg tail in mode 1/2 (spec.md §6): status(1) + 4 int32 fields.
const binaryFieldsLen = 1 + 4 + 4 + 4 + 4

func readBinaryFields(raw []byte, off int) (status byte, tstartTicks, tendTicks, res, fourth int32, tail []byte, next int, err error) {
	if off+binaryFieldsLen > len(raw) {
		err = errdefs.ErrMalformedTrace
		return
	}
	status = raw[off]
	tstartTicks = wire.GetInt32(raw[off+1 : off+5])
	tendTicks = wire.GetInt32(raw[off+5 : off+9])
	res = wire.GetInt32(raw[off+9 : off+13])
	fourth = wire.GetInt32(raw[off+13 : off+17])
	rest := raw[off+binaryFieldsLen:]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		err = errdefs.ErrMalformedTrace
		return
	}
	tail = rest[:nl]
	next = off + binaryFieldsLen + nl + 1
	return
}

func decodeBinary(raw []byte, timeResolution float64, fn func(*record.Record)) error {
	off := 0
	for off < len(raw) {
		status, tstartTicks, tendTicks, res, funcID, tail, next, err := readBinaryFields(raw, off)
		if err != nil {
			return err
		}
		off = next

		fn(&record.Record{
			Status: status,
			FuncID: int(funcID),
			TStart: float64(tstartTicks) * timeResolution,
			TEnd:   float64(tendTicks) * timeResolution,
			Res:    int64(res),
			Args:   record.ParseArgTail(string(tail)),
		})
	}
	return nil
}

func decodeWindowed(raw []byte, timeResolution float64, fn func(*record.Record)) error {
	var window [config.PeepholeWindowSize]*record.Record

	off := 0
	for off < len(raw) {
		status, tstartTicks, tendTicks, res, fourth, tail, next, err := readBinaryFields(raw, off)
		if err != nil {
			return err
		}
		off = next

		tstart := float64(tstartTicks) * timeResolution
		tend := float64(tendTicks) * timeResolution

		var rec *record.Record
		if status&record.StatusDiff != 0 {
			refIdx := int(fourth)
			if refIdx < 0 || refIdx >= len(window) || window[refIdx] == nil {
				return errdefs.ErrMalformedTrace
			}
			ref := window[refIdx]
			args := make([]*string, ref.ArgCount())
			copy(args, ref.Args)

			diffVals := record.ParseArgTail(string(tail))
			mask := status & record.ArgMask
			vi := 0
			for i := range args {
				if mask&(1<<uint(i)) != 0 {
					if vi >= len(diffVals) {
						return errdefs.ErrMalformedTrace
					}
					args[i] = diffVals[vi]
					vi++
				}
			}
			rec = &record.Record{Status: status, FuncID: ref.FuncID, TStart: tstart, TEnd: tend, Res: int64(res), Args: args}
		} else {
			rec = &record.Record{Status: status, FuncID: int(fourth), TStart: tstart, TEnd: tend, Res: int64(res), Args: record.ParseArgTail(string(tail))}
		}

		fn(rec)

		for i := len(window) - 1; i > 0; i-- {
			window[i] = window[i-1]
		}
		window[0] = rec.Clone()
	}
	return nil
}
