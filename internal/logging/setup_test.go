/*
 * Copyright (c) 2022. Nydus Developers. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testLogDirName = "test-rotate-logs"

func countRotatedFiles(testLogDir string, suffix string) int {
	i := 0
	_ = filepath.Walk(testLogDir, func(fname string, fi os.FileInfo, _ error) error {
		if fi != nil && !fi.IsDir() && strings.HasSuffix(fname, suffix) {
			i++
		}
		return nil
	})
	return i
}

func TestSetUpStderr(t *testing.T) {
	err := SetUp("info", "", nil)
	assert.NoError(t, err)
	assert.Equal(t, os.Stderr, L.Out)
}

func TestSetUpRequiresRotateArgsForFile(t *testing.T) {
	err := SetUp("info", testLogDirName, nil)
	assert.ErrorContains(t, err, "logRotateArgs is needed")
}

func TestSetUpRotates(t *testing.T) {
	os.RemoveAll(testLogDirName)
	defer os.RemoveAll(testLogDirName)

	logRotateArgs := &RotateLogArgs{
		RotateLogMaxSize:    1, // 1MB
		RotateLogMaxBackups: 5,
		RotateLogLocalTime:  true,
		RotateLogCompress:   true,
	}

	err := SetUp("info", testLogDirName, logRotateArgs)
	assert.NoError(t, err)

	for i := 0; i < 100000; i++ {
		Infof("test log, now: %s", time.Now().Format("2006-01-02 15:04:05"))
	}
	assert.Equal(t, logRotateArgs.RotateLogMaxBackups, countRotatedFiles(testLogDirName, "log.gz"))
}
