/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package filter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/pkg/encoder"
	"github.com/nydus-snapshotter-labs/recorder/pkg/reader"
	"github.com/nydus-snapshotter-labs/recorder/pkg/realcalls"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
	"github.com/nydus-snapshotter-labs/recorder/pkg/writer"
)

func makeTrace(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "recorder-logs")
	tbl := realcalls.New()
	w, err := writer.Open(tbl, dir, 0, 1, config.CompressionBinary, 0)
	require.NoError(t, err)

	enc := encoder.New(config.CompressionBinary, w.Sink(), w, 0)
	recs := []*record.Record{
		{FuncID: 3, Args: []*string{strp("3"), strp("50")}},
		{FuncID: 3, Args: []*string{strp("3"), strp("50")}},
		{FuncID: 3, Args: []*string{strp("3"), strp("9000")}},
	}
	for _, r := range recs {
		require.NoError(t, enc.Encode(r))
	}
	require.NoError(t, w.Finalize())
	return dir
}

func TestRewriteTraceIdentityFilterIsVerbatim(t *testing.T) {
	dir := makeTrace(t)
	res, err := RewriteTrace(dir, filepath.Join(dir, "does-not-exist.filter"))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warnings)

	_, err = os.Stat(filepath.Join(res.OutputDir, "0.cst"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(res.OutputDir, "0.cfg"))
	assert.NoError(t, err)
}

func TestRewriteTraceAppliesBucketFilter(t *testing.T) {
	dir := makeTrace(t)
	filterPath := filepath.Join(dir, "rules.filter")
	require.NoError(t, os.WriteFile(filterPath, []byte("write 0 1[0:100-small,100:100000-big]\n"), 0o644))

	res, err := RewriteTrace(dir, filterPath)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	r, err := reader.Open(res.OutputDir)
	require.NoError(t, err)
	assert.Equal(t, config.CompressionBinary, r.CompressionMode())

	entries, err := r.CST(0)
	require.NoError(t, err)
	// two distinct bucketed signatures: ("3","small") and ("3","big")
	assert.Len(t, entries, 2)

	g, err := r.CFG(0)
	require.NoError(t, err)
	assert.NotEmpty(t, g.ProductionRules())
}

func TestRewriteTraceRerunIsIdempotent(t *testing.T) {
	dir := makeTrace(t)
	filterPath := filepath.Join(dir, "rules.filter")
	require.NoError(t, os.WriteFile(filterPath, []byte(""), 0o644))

	res1, err := RewriteTrace(dir, filterPath)
	require.NoError(t, err)
	r1, err := reader.Open(res1.OutputDir)
	require.NoError(t, err)
	entries1, err := r1.CST(0)
	require.NoError(t, err)

	dir2 := makeTrace(t)
	filterPath2 := filepath.Join(dir2, "rules.filter")
	require.NoError(t, os.WriteFile(filterPath2, []byte(""), 0o644))
	res2, err := RewriteTrace(dir2, filterPath2)
	require.NoError(t, err)
	r2, err := reader.Open(res2.OutputDir)
	require.NoError(t, err)
	entries2, err := r2.CST(0)
	require.NoError(t, err)

	assert.Equal(t, entries1, entries2)
}

func TestLoadFilterSetParsesRealFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.filter")
	require.NoError(t, os.WriteFile(path, []byte("write 0\n"), 0o644))
	set, warnings := loadFilterSet(path)
	assert.Empty(t, warnings)
	assert.Contains(t, set, "write")
	_ = strings.TrimSpace("")
}
