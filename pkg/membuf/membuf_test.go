/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package membuf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nydus-snapshotter-labs/recorder/pkg/realcalls"
)

func openTemp(t *testing.T) (*realcalls.Table, *os.File, string) {
	t.Helper()
	tbl := realcalls.New()
	path := filepath.Join(t.TempDir(), "data.itf")
	f, err := tbl.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	assert.NoError(t, err)
	return tbl, f, path
}

func TestAppendBuffersUntilFlush(t *testing.T) {
	tbl, f, path := openTemp(t)
	m := New(tbl, f, 1024, 0)

	assert.NoError(t, m.Append([]byte("hello")))
	assert.Equal(t, 5, m.Pos())

	assert.NoError(t, m.Flush())
	assert.Equal(t, 0, m.Pos())
	assert.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestAppendFlushesWhenFull(t *testing.T) {
	tbl, f, path := openTemp(t)
	m := New(tbl, f, 8, 0)

	assert.NoError(t, m.Append([]byte("abcd")))
	assert.NoError(t, m.Append([]byte("efgh"))) // pos+len >= cap -> flush first
	assert.Equal(t, 4, m.Pos())

	assert.NoError(t, m.Flush())
	assert.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "abcdefgh", string(data))
}

func TestAppendBypassesBufferForOversizeRecord(t *testing.T) {
	tbl, f, path := openTemp(t)
	m := New(tbl, f, 4, 0)

	assert.NoError(t, m.Append([]byte("ab")))
	huge := []byte("this-is-longer-than-capacity")
	assert.NoError(t, m.Append(huge))
	assert.Equal(t, 0, m.Pos(), "oversize record must bypass and leave pos at 0")

	assert.NoError(t, f.Close())
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "ab"+string(huge), string(data))
}

func TestDestroyDoesNotFlush(t *testing.T) {
	tbl, f, path := openTemp(t)
	m := New(tbl, f, 1024, 0)
	assert.NoError(t, m.Append([]byte("pending")))
	m.Destroy()
	assert.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Empty(t, data)
}
