/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Command recorder-cfg-export is the restored companion tool
// (original_source/tools/cfg-exporter.cpp): it opens a trace directory
// — typically one already run through recorder-filter — and dumps each
// rank's grammar as human-readable production rules, without having to
// re-run the filter stage to inspect what it built.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/nydus-snapshotter-labs/recorder/internal/logging"
	"github.com/nydus-snapshotter-labs/recorder/pkg/reader"
)

func dumpRank(r *reader.Reader, rank int) error {
	g, err := r.CFG(rank)
	if err != nil {
		return errors.Wrapf(err, "read rank %d grammar", rank)
	}
	if g == nil {
		logging.Errorf("recorder-cfg-export: rank %d has no grammar (not a filtered trace?)", rank)
		return nil
	}

	fmt.Printf("# rank %d\n", rank)
	for _, line := range g.ProductionRules() {
		fmt.Println(line)
	}
	return nil
}

func run(args *Args) error {
	if args.TraceDir == "" {
		return errors.New("trace-dir is required")
	}
	if err := logging.SetUp(args.LogLevel, "", nil); err != nil {
		return errors.Wrap(err, "set up logging")
	}

	r, err := reader.Open(args.TraceDir)
	if err != nil {
		return errors.Wrap(err, "open trace")
	}

	if args.Rank >= 0 {
		return dumpRank(r, args.Rank)
	}
	for rank := 0; rank < r.TotalRanks(); rank++ {
		if err := dumpRank(r, rank); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	args, flags := NewFlags()
	app := &cli.App{
		Name:  "recorder-cfg-export",
		Usage: "dump a filtered recorder trace's per-rank grammar as production rules",
		Flags: flags,
		Action: func(*cli.Context) error {
			return run(args)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.Errorf("recorder-cfg-export: %v", err)
		os.Exit(1)
	}
}
