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

// Args holds recorder-cfg-export's parsed command-line arguments.
type Args struct {
	TraceDir string
	Rank     int
	LogLevel string
}

func buildFlags(args *Args) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "trace-dir",
			Aliases:     []string{"t"},
			Usage:       "trace directory to read (typically a `_filtered` directory)",
			Destination: &args.TraceDir,
		},
		&cli.IntFlag{
			Name:        "rank",
			Aliases:     []string{"r"},
			Value:       -1,
			Usage:       "dump a single rank's grammar; -1 dumps every rank",
			Destination: &args.Rank,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Value:       defaultLogLevel.String(),
			Aliases:     []string{"l"},
			Usage:       "set the logging `LEVEL` [trace, debug, info, warn, error, fatal, panic]",
			Destination: &args.LogLevel,
		},
	}
}

// NewFlags returns an empty Args plus the cli.Flag set bound to it.
func NewFlags() (*Args, []cli.Flag) {
	var args Args
	args.Rank = -1
	return &args, buildFlags(&args)
}
