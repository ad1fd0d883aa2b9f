/*
 * Copyright (c) 2022. Nydus Developers. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package config

import (
	"fmt"

	"github.com/pelletier/go-toml"
)

// ToolConfig carries defaults for the offline filter/rewrite tool
// (cmd/recorder-filter's -config flag). CLI flags override any field
// set here. With no -config path given no file is read and the tool
// uses flag defaults; a named file that cannot be loaded is an error.
type ToolConfig struct {
	TraceDir    string `toml:"trace_dir"`
	FilterFile  string `toml:"filter_file"`
	OutputDir   string `toml:"output_dir"`
	LogLevel    string `toml:"log_level"`
	LogDir      string `toml:"log_dir"`
	Verbose     bool   `toml:"verbose"`
}

// LoadToolConfig reads a TOML config file for the offline tool.
func LoadToolConfig(path string) (*ToolConfig, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tool configuration file: %w", err)
	}

	var cfg ToolConfig
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal tool configuration file: %w", err)
	}

	return &cfg, nil
}
