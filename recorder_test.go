/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package recorder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
	"github.com/nydus-snapshotter-labs/recorder/pkg/tracer"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestPackageLevelInitRecordFinalize(t *testing.T) {
	chdirTemp(t)
	prior := global
	global = tracer.New()
	defer func() { global = prior }()

	require.NoError(t, Init())
	Record(&record.Record{FuncID: 0, Args: []*string{record.StrArg("x")}})
	require.NoError(t, Finalize())

	_, err := os.Stat(filepath.Join(OutputDirName, "recorder.mt"))
	assert.NoError(t, err)
}

func TestShutdownSwallowsNotInitializedError(t *testing.T) {
	prior := global
	global = tracer.New()
	defer func() { global = prior }()

	assert.NotPanics(t, Shutdown)
}

func TestOutputDirNameMatchesConfig(t *testing.T) {
	assert.Equal(t, "recorder-logs", OutputDirName)
}
