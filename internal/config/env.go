/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package config holds the online tracer's environment-driven config
// and the offline tool's TOML-driven config.
package config

import (
	"os"
	"strconv"
)

// CompressionMode selects one of the three encoders (spec.md §4.4).
type CompressionMode int

const (
	CompressionText     CompressionMode = 0
	CompressionBinary   CompressionMode = 1
	CompressionWindowed CompressionMode = 2

	// TimeResolution is fixed at 10^-6 seconds (spec.md §3).
	TimeResolution = 0.000001
	// PeepholeWindowSize is the sliding window depth W (design constant).
	PeepholeWindowSize = 3

	// OutputDirName is the fixed output directory name every rank
	// writes under, relative to the host process's working directory
	// (spec.md §6).
	OutputDirName = "recorder-logs"

	envWithNonMPI  = "RECORDER_WITH_NON_MPI"
	envCompression = "RECORDER_COMPRESSION_MODE"
	envDebug       = "RECORDER_DEBUG"
)

// Config is the online tracer's process-wide configuration, read once
// at Init() from the environment (spec.md §6). A bad or out-of-range
// value falls back to the default rather than failing the host
// program; nothing logs it.
type Config struct {
	WithNonMPI      bool
	CompressionMode CompressionMode
	Debug           bool
}

// FromEnv parses the environment variables recorder.md names. Unset or
// malformed values fall back to defaults silently at this layer; the
// caller is responsible for logging if it cares.
func FromEnv() Config {
	cfg := Config{
		CompressionMode: CompressionWindowed,
	}

	if v := os.Getenv(envWithNonMPI); v == "1" {
		cfg.WithNonMPI = true
	}

	if v, ok := os.LookupEnv(envCompression); ok {
		if mode, err := strconv.Atoi(v); err == nil && mode >= 0 && mode <= 2 {
			cfg.CompressionMode = CompressionMode(mode)
		}
	}

	if v := os.Getenv(envDebug); v == "1" {
		cfg.Debug = true
	}

	return cfg
}
