/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Command recorder-filter is the offline filter/rewrite tool (spec.md
// §4.8): it reads a trace directory, applies a filter-rule file to
// every record, and writes a `_filtered` subdirectory carrying the
// rewritten CST/CFG. Errors here are fatal and reported on stderr,
// unlike the online tracer which never surfaces failures to its host
// (spec.md §7(c)).
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/internal/logging"
	"github.com/nydus-snapshotter-labs/recorder/pkg/filter"
	"github.com/nydus-snapshotter-labs/recorder/pkg/funcnames"
	"github.com/nydus-snapshotter-labs/recorder/pkg/reader"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
)

func applyToolConfig(args *Args) error {
	if args.ConfigPath == "" {
		return nil
	}
	cfg, err := config.LoadToolConfig(args.ConfigPath)
	if err != nil {
		return err
	}
	if args.TraceDir == "" {
		args.TraceDir = cfg.TraceDir
	}
	if args.FilterFile == "" {
		args.FilterFile = cfg.FilterFile
	}
	if args.OutputDir == "" {
		args.OutputDir = cfg.OutputDir
	}
	if !args.Verbose {
		args.Verbose = cfg.Verbose
	}
	return nil
}

// dumpVerbose restores the C original's iterate_record stdout dump
// (recorder-filter.cpp, original_source), echoing
// "tstart tend func_name depth func_id ( args... )" with a decimal
// precision derived from the trace's time resolution, the same
// sprintf(formatting_record, ...) dance the original performs once at
// startup. func_id stands in for the original's recorder_get_func_type
// result — this port doesn't model a separate function-type taxonomy.
func dumpVerbose(r *reader.Reader, rank int) error {
	decimals := int(math.Log10(1 / r.TimeResolution()))
	format := fmt.Sprintf("%%.%df %%.%df %%s %%d %%d (", decimals, decimals)

	return r.DecodeRecords(rank, func(rec *record.Record) {
		fmt.Printf(format, rec.TStart, rec.TEnd, r.FuncName(rec), rec.CallDepth, rec.FuncID)
		userFunc := rec.FuncID == funcnames.RecorderUserFunction
		if !userFunc {
			for _, a := range rec.Args {
				if a == nil {
					fmt.Print(" ???")
				} else {
					fmt.Printf(" %s", *a)
				}
			}
		}
		fmt.Println(" )")
	})
}

func run(args *Args) error {
	if err := applyToolConfig(args); err != nil {
		return errors.Wrap(err, "load tool configuration")
	}
	if args.TraceDir == "" {
		return errors.New("trace-dir is required")
	}
	if args.FilterFile == "" {
		return errors.New("filter-file is required")
	}

	if err := logging.SetUp(args.LogLevel, "", nil); err != nil {
		return errors.Wrap(err, "set up logging")
	}

	if args.Verbose {
		r, err := reader.Open(args.TraceDir)
		if err != nil {
			return errors.Wrap(err, "open trace for verbose dump")
		}
		for rank := 0; rank < r.TotalRanks(); rank++ {
			if err := dumpVerbose(r, rank); err != nil {
				return errors.Wrapf(err, "dump rank %d", rank)
			}
		}
	}

	var (
		result *filter.Result
		err    error
	)
	if args.OutputDir != "" {
		result, err = filter.RewriteTraceTo(args.TraceDir, args.FilterFile, args.OutputDir)
	} else {
		result, err = filter.RewriteTrace(args.TraceDir, args.FilterFile)
	}
	if err != nil {
		return errors.Wrap(err, "rewrite trace")
	}

	for _, w := range result.Warnings {
		logging.Errorf("recorder-filter: %s", w)
	}
	logging.Infof("recorder-filter: wrote %s for %d rank(s)", result.OutputDir, len(result.PerRank))
	return nil
}

func main() {
	args, flags := NewFlags()
	app := &cli.App{
		Name:  "recorder-filter",
		Usage: "filter and rewrite a recorder trace into a CST/CFG representation",
		Flags: flags,
		Action: func(*cli.Context) error {
			return run(args)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.Errorf("recorder-filter: %v", err)
		os.Exit(1)
	}
}
