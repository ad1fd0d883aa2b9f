/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package filenames

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nydus-snapshotter-labs/recorder/pkg/realcalls"
)

func TestInternIsIdempotent(t *testing.T) {
	r := New()
	id1 := r.Intern("/a")
	id2 := r.Intern("/b")
	id3 := r.Intern("/a")
	assert.Equal(t, id1, id3)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, r.Len())
}

func TestIDsAreDense(t *testing.T) {
	r := New()
	for _, p := range []string{"/a", "/b", "/c"} {
		r.Intern(p)
	}
	entries := r.Iterate()
	seen := make(map[int]bool)
	for _, e := range entries {
		seen[e.ID] = true
	}
	for i := 0; i < len(entries); i++ {
		assert.True(t, seen[i], "id %d missing", i)
	}
}

func TestSizeOnDiskMissingFileIsZero(t *testing.T) {
	tbl := realcalls.New()
	assert.Equal(t, int64(0), SizeOnDisk(tbl, filepath.Join(t.TempDir(), "nope")))
}

func TestResolvePopulatesSizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	tb := realcalls.New()
	fh, err := tb.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	assert.NoError(t, err)
	_, err = tb.Write(fh, []byte("hello world"))
	assert.NoError(t, err)
	assert.NoError(t, fh.Close())

	r := New()
	r.Intern(path)
	entries := r.Resolve(tb)
	assert.Equal(t, int64(11), entries[0].FileSize)
}
