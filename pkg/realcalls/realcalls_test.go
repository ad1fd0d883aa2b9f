/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package realcalls

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMkdirAccessRemove(t *testing.T) {
	tbl := New()
	dir := filepath.Join(t.TempDir(), "sub", "leaf")

	assert.False(t, tbl.Access(dir))
	assert.NoError(t, tbl.Mkdir(dir, 0755))
	assert.True(t, tbl.Access(dir))
	assert.NoError(t, tbl.Remove(dir))
	assert.False(t, tbl.Access(dir))
}

func TestOpenFileAndWrite(t *testing.T) {
	tbl := New()
	path := filepath.Join(t.TempDir(), "f.bin")

	f, err := tbl.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	assert.NoError(t, err)
	n, err := tbl.Write(f, []byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.NoError(t, f.Close())

	info, err := tbl.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
}

func TestBarrierDefaultsToNoop(t *testing.T) {
	tbl := New()
	assert.NotPanics(t, func() { tbl.Barrier(nil) })

	called := false
	tbl.Barrier(func() { called = true })
	assert.True(t, called)
}
