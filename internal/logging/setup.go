/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 * Copyright (c) 2023. Nydus Developers. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package logging is the recorder's debug/info/error logging surface.
//
// The online tracer keeps this off the append_record hot path unless
// RECORDER_DEBUG=1 is set: L defaults to logrus.ErrorLevel, and every
// call site guards with IsLevelEnabled before formatting. The offline
// tool runs at InfoLevel by default.
package logging

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLogDirName  = "logs"
	defaultLogFileName = "recorder.log"
)

// L is the process-wide logger, mirroring the single Logger/MemBuf
// globals the tracer centralizes behind an opaque handle.
var L = logrus.New()

func init() {
	L.SetLevel(logrus.ErrorLevel)
	L.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000000000Z07:00",
		FullTimestamp:   true,
	})
}

type RotateLogArgs struct {
	RotateLogMaxSize    int
	RotateLogMaxBackups int
	RotateLogMaxAge     int
	RotateLogLocalTime  bool
	RotateLogCompress   bool
}

// SetUp configures the package logger. logDir == "" keeps output on
// stderr, the default for the in-band tracer, which must never depend
// on a writable log directory existing before recorder-logs/ does.
func SetUp(logLevel string, logDir string, logRotateArgs *RotateLogArgs) error {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	L.SetLevel(lvl)

	if logDir == "" {
		L.SetOutput(os.Stderr)
		return nil
	}

	if logRotateArgs == nil {
		return errors.New("logRotateArgs is needed when logDir is set")
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return errors.Wrapf(err, "create log dir %s", logDir)
	}

	L.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, defaultLogFileName),
		MaxSize:    logRotateArgs.RotateLogMaxSize,
		MaxBackups: logRotateArgs.RotateLogMaxBackups,
		MaxAge:     logRotateArgs.RotateLogMaxAge,
		Compress:   logRotateArgs.RotateLogCompress,
		LocalTime:  logRotateArgs.RotateLogLocalTime,
	})
	return nil
}

// Debugf logs at debug level, guarded so the hot tracing path pays no
// formatting cost when RECORDER_DEBUG is unset.
func Debugf(format string, args ...interface{}) {
	if L.IsLevelEnabled(logrus.DebugLevel) {
		L.Debugf(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	L.Infof(format, args...)
}

func Errorf(format string, args ...interface{}) {
	L.Errorf(format, args...)
}
