/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const defaultLogLevel = logrus.InfoLevel

// Args holds the parsed command-line arguments, mirroring the
// teacher's cmd/containerd-nydus-grpc/pkg/command.Args pattern of one
// flat struct populated via cli.Flag Destination pointers.
type Args struct {
	ConfigPath string
	TraceDir   string
	FilterFile string
	OutputDir  string
	LogLevel   string
	Verbose    bool
}

func buildFlags(args *Args) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to a TOML tool configuration file",
			Destination: &args.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "trace-dir",
			Aliases:     []string{"t"},
			Usage:       "trace directory to read",
			Destination: &args.TraceDir,
		},
		&cli.StringFlag{
			Name:        "filter-file",
			Aliases:     []string{"f"},
			Usage:       "filter-rule file path",
			Destination: &args.FilterFile,
		},
		&cli.StringFlag{
			Name:        "output-dir",
			Aliases:     []string{"o"},
			Usage:       "override for the `_filtered` output directory (default: <trace-dir>/_filtered)",
			Destination: &args.OutputDir,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Value:       defaultLogLevel.String(),
			Aliases:     []string{"l"},
			Usage:       "set the logging `LEVEL` [trace, debug, info, warn, error, fatal, panic]",
			Destination: &args.LogLevel,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "echo every decoded record to stdout while iterating",
			Destination: &args.Verbose,
		},
	}
}

// NewFlags returns an empty Args plus the cli.Flag set bound to it.
func NewFlags() (*Args, []cli.Flag) {
	var args Args
	return &args, buildFlags(&args)
}
