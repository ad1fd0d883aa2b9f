/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package filter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nydus-snapshotter-labs/recorder/internal/config"
	"github.com/nydus-snapshotter-labs/recorder/internal/logging"
	"github.com/nydus-snapshotter-labs/recorder/pkg/blobframe"
	"github.com/nydus-snapshotter-labs/recorder/pkg/cst"
	"github.com/nydus-snapshotter-labs/recorder/pkg/reader"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
	"github.com/nydus-snapshotter-labs/recorder/pkg/sequitur"
	"github.com/nydus-snapshotter-labs/recorder/pkg/writer"
)

const filteredDirName = "_filtered"

// Result summarizes one rewrite run; cmd/recorder-filter logs its
// warnings and a one-line summary whether or not -verbose is set.
type Result struct {
	OutputDir string
	Warnings  []string
	PerRank   map[int]RankResult
}

// RankResult is the per-rank outcome of a rewrite.
type RankResult struct {
	TerminalsAppended int
	RuleCount         int
}

// RewriteTrace is the offline filter/rewriter entry point (spec.md
// §4.8): reads traceDir, applies filterFile's rules to every record,
// grows a shared CST and a per-rank grammar, and writes `_filtered`.
// An unreadable filter file is a warning, not a fatal error: the
// rewrite proceeds as a verbatim copy (identity filter).
func RewriteTrace(traceDir, filterFile string) (*Result, error) {
	return RewriteTraceTo(traceDir, filterFile, filepath.Join(traceDir, filteredDirName))
}

// RewriteTraceTo is RewriteTrace with an explicit output directory,
// for callers (cmd/recorder-filter's -output-dir flag) that don't want
// the default `_filtered` sibling of traceDir.
func RewriteTraceTo(traceDir, filterFile, outDir string) (*Result, error) {
	r, err := reader.Open(traceDir)
	if err != nil {
		return nil, errors.Wrap(err, "open trace")
	}

	set, warnings := loadFilterSet(filterFile)

	table := cst.New()
	grammars := make(map[int]*sequitur.Grammar, r.TotalRanks())

	for rank := 0; rank < r.TotalRanks(); rank++ {
		g := sequitur.New()
		grammars[rank] = g

		decodeErr := r.DecodeRecords(rank, func(rec *record.Record) {
			name := r.FuncName(rec)
			rewritten := Apply(set, name, rec)
			terminalID := table.Intern(cst.Key(rewritten), rank)
			g.AppendTerminal(terminalID, 1)
		})
		if decodeErr != nil {
			return nil, errors.Wrapf(decodeErr, "decode rank %d", rank)
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create output dir")
	}

	cstBlob := table.Serialize()
	perRank := make(map[int]RankResult, len(grammars))
	for rank, g := range grammars {
		if err := writeFramedFile(filepath.Join(outDir, fmt.Sprintf("%d.cst", rank)), cstBlob); err != nil {
			return nil, errors.Wrapf(err, "write rank %d cst", rank)
		}
		if err := writeFramedFile(filepath.Join(outDir, fmt.Sprintf("%d.cfg", rank)), g.Serialize()); err != nil {
			return nil, errors.Wrapf(err, "write rank %d cfg", rank)
		}
		perRank[rank] = RankResult{TerminalsAppended: len(g.Expand()), RuleCount: len(g.ProductionRules())}
	}

	if err := copyFile(filepath.Join(traceDir, "VERSION"), filepath.Join(outDir, "VERSION")); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "copy VERSION")
	}
	if err := copyFile(filepath.Join(traceDir, "recorder.ts"), filepath.Join(outDir, "recorder.ts")); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "copy recorder.ts")
	}
	if err := writeRewrittenGlobalMetadata(traceDir, outDir); err != nil {
		return nil, errors.Wrap(err, "write filtered recorder.mt")
	}

	return &Result{OutputDir: outDir, Warnings: warnings, PerRank: perRank}, nil
}

func loadFilterSet(path string) (Set, []string) {
	f, err := os.Open(path)
	if err != nil {
		logging.Errorf("recorder-filter: filter file %q unreadable, continuing with identity filter: %v", path, err)
		return Set{}, []string{fmt.Sprintf("filter file %q unreadable: %v", path, err)}
	}
	defer f.Close()
	return Parse(f)
}

func writeFramedFile(path string, payload []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return blobframe.WriteFramed(f, payload)
}

func copyFile(src, dst string) error {
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0o644)
}

// writeRewrittenGlobalMetadata copies recorder.mt into `_filtered`,
// forcing the compression mode to CompressionBinary: downstream
// consumers read records from the CST/CFG representation, not the
// per-record windowed-differential encoding, so the interprocess
// peephole-compression flag no longer applies (spec.md §4.8).
func writeRewrittenGlobalMetadata(traceDir, outDir string) error {
	raw, err := os.ReadFile(filepath.Join(traceDir, "recorder.mt"))
	if err != nil {
		return err
	}
	meta := writer.DecodeGlobalMetadata(raw)
	meta.CompressionMode = config.CompressionBinary

	out, err := os.Create(filepath.Join(outDir, "recorder.mt"))
	if err != nil {
		return err
	}
	defer out.Close()
	return writer.WriteGlobalMetadataTo(out, meta)
}
