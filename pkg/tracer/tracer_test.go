/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package tracer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/pkg/errdefs"
	"github.com/nydus-snapshotter-labs/recorder/pkg/reader"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return dir
}

func TestInitAppendFinalizeHappyPath(t *testing.T) {
	chdirTemp(t)
	tr := New()

	require.NoError(t, tr.Init())
	tr.Append(&record.Record{FuncID: 0, Args: []*string{record.StrArg("a")}})
	require.NoError(t, tr.Finalize())

	_, err := os.Stat(filepath.Join(config.OutputDirName, "recorder.mt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(config.OutputDirName, "0.itf"))
	assert.NoError(t, err)
}

func TestSecondInitIsNoOp(t *testing.T) {
	chdirTemp(t)
	tr := New()
	require.NoError(t, tr.Init())
	require.NoError(t, tr.Init())
	require.NoError(t, tr.Finalize())
}

func TestFinalizeBeforeInitReturnsNotInitialized(t *testing.T) {
	tr := New()
	err := tr.Finalize()
	assert.True(t, errdefs.IsNotInitialized(err))
}

func TestSecondFinalizeReturnsAlreadyFinalized(t *testing.T) {
	chdirTemp(t)
	tr := New()
	require.NoError(t, tr.Init())
	require.NoError(t, tr.Finalize())

	err := tr.Finalize()
	assert.True(t, errdefs.IsAlreadyFinalized(err))
}

func TestAppendBeforeInitIsSilentlyDropped(t *testing.T) {
	tr := New()
	assert.NotPanics(t, func() {
		tr.Append(&record.Record{FuncID: 0})
	})
}

func TestAppendAfterFinalizeIsSilentlyDropped(t *testing.T) {
	chdirTemp(t)
	tr := New()
	require.NoError(t, tr.Init())
	require.NoError(t, tr.Finalize())
	assert.NotPanics(t, func() {
		tr.Append(&record.Record{FuncID: 0})
	})
}

func TestInitDistributedPublishesIdentityAndTotalRanks(t *testing.T) {
	chdirTemp(t)
	tr := New()
	require.NoError(t, tr.InitDistributed(0, 4))
	require.NoError(t, tr.Finalize())

	r, err := reader.Open(config.OutputDirName)
	require.NoError(t, err)
	assert.Equal(t, 4, r.TotalRanks())
}
