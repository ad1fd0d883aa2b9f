/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package blobframe implements the zlib blob framing spec.md §6
// describes for the CST and CFG blobs: a two-size_t header
// (compressed_size, decompressed_size), reserved before compression
// and back-patched after, followed by the deflated payload.
package blobframe

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/nydus-snapshotter-labs/recorder/pkg/wire"
)

const headerSize = wire.SizeInt64 * 2

// WriteFramed compresses payload and writes it to w as
// compressed_size | decompressed_size | deflated bytes, reserving both
// size fields before compressing and seeking back to patch them
// afterward (spec.md §6).
func WriteFramed(w io.WriteSeeker, payload []byte) error {
	start, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.Write(make([]byte, headerSize)); err != nil {
		return err
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(payload); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if _, err := w.Write(compressed.Bytes()); err != nil {
		return err
	}

	end, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.Seek(start, io.SeekStart); err != nil {
		return err
	}
	header := make([]byte, 0, headerSize)
	header = append(header, wire.PutInt64(int64(compressed.Len()))...)
	header = append(header, wire.PutInt64(int64(len(payload)))...)
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Seek(end, io.SeekStart)
	return err
}

// ReadFramed reverses WriteFramed given the whole framed blob in
// memory.
func ReadFramed(b []byte) ([]byte, error) {
	if len(b) < headerSize {
		return nil, io.ErrUnexpectedEOF
	}
	compressedSize := wire.GetInt64(b[0:8])
	decompressedSize := wire.GetInt64(b[8:16])
	body := b[headerSize:]
	if int64(len(body)) < compressedSize {
		return nil, io.ErrUnexpectedEOF
	}

	zr, err := zlib.NewReader(bytes.NewReader(body[:compressedSize]))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, 0, decompressedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
