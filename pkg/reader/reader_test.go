/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package reader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/pkg/encoder"
	"github.com/nydus-snapshotter-labs/recorder/pkg/realcalls"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
	"github.com/nydus-snapshotter-labs/recorder/pkg/writer"
)

func strp(s string) *string { return &s }

func writeTrace(t *testing.T, mode config.CompressionMode, recs []*record.Record) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "recorder-logs")
	tbl := realcalls.New()

	w, err := writer.Open(tbl, dir, 0, 1, mode, 0)
	require.NoError(t, err)

	enc := encoder.New(mode, w.Sink(), w, 0)
	for _, r := range recs {
		require.NoError(t, enc.Encode(r))
	}
	require.NoError(t, w.Finalize())
	return dir
}

func TestDecodeRecordsTextMode(t *testing.T) {
	recs := []*record.Record{
		{FuncID: 0, TStart: 0.000001, TEnd: 0.000002, Res: 3, Args: []*string{strp("a"), strp("0")}},
		{FuncID: 3, TStart: 0.000002, TEnd: 0.000003, Res: 2, Args: []*string{strp("3"), strp("hi")}},
		{FuncID: 1, TStart: 0.000003, TEnd: 0.000004, Res: 0, Args: []*string{strp("3")}},
	}
	dir := writeTrace(t, config.CompressionText, recs)

	r, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, r.TotalRanks())
	assert.Equal(t, config.CompressionText, r.CompressionMode())

	var got []*record.Record
	require.NoError(t, r.DecodeRecords(0, func(rec *record.Record) {
		got = append(got, rec.Clone())
	}))

	require.Len(t, got, 3)
	for i, rec := range got {
		assert.Equal(t, recs[i].FuncID, rec.FuncID)
		assert.Equal(t, recs[i].Res, rec.Res)
		require.Len(t, rec.Args, len(recs[i].Args))
		for j := range rec.Args {
			assert.Equal(t, *recs[i].Args[j], *rec.Args[j])
		}
	}
}

func TestDecodeRecordsBinaryMode(t *testing.T) {
	recs := []*record.Record{
		{FuncID: 3, TStart: 1.0, TEnd: 1.5, Res: 0, Args: []*string{strp("x")}},
		{FuncID: 3, TStart: 1.5, TEnd: 2.0, Res: 0, Args: []*string{strp("y")}},
	}
	dir := writeTrace(t, config.CompressionBinary, recs)

	r, err := Open(dir)
	require.NoError(t, err)

	var got []*record.Record
	require.NoError(t, r.DecodeRecords(0, func(rec *record.Record) {
		got = append(got, rec.Clone())
	}))
	require.Len(t, got, 2)
	assert.Equal(t, "x", *got[0].Args[0])
	assert.Equal(t, "y", *got[1].Args[0])
}

func TestDecodeRecordsWindowedModeResolvesDiffs(t *testing.T) {
	writeCall := func(n string) *record.Record {
		return &record.Record{FuncID: 3, Args: []*string{strp("3"), strp(n)}}
	}
	recs := []*record.Record{writeCall("100"), writeCall("200"), writeCall("300")}
	dir := writeTrace(t, config.CompressionWindowed, recs)

	r, err := Open(dir)
	require.NoError(t, err)

	var got []*record.Record
	require.NoError(t, r.DecodeRecords(0, func(rec *record.Record) {
		got = append(got, rec.Clone())
	}))

	require.Len(t, got, 3)
	for i, rec := range got {
		assert.Equal(t, 3, rec.FuncID)
		require.Len(t, rec.Args, 2)
		assert.Equal(t, "3", *rec.Args[0])
		assert.Equal(t, *recs[i].Args[1], *rec.Args[1])
	}
}

func TestLocalMetadataRoundTrip(t *testing.T) {
	recs := []*record.Record{
		{FuncID: 0, Args: []*string{strp("a")}},
		{FuncID: 0, Args: []*string{strp("a")}},
	}
	dir := writeTrace(t, config.CompressionText, recs)

	r, err := Open(dir)
	require.NoError(t, err)
	meta, err := r.LocalMetadata(0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, meta.TotalRecords)
	assert.EqualValues(t, 2, meta.FunctionCount[0])
}
