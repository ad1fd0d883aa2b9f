/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package filter implements the offline filter/rewriter (spec.md
// §4.8, component C10): parses the bucketing filter-file language,
// rewrites each record's argument list, and grows a shared call-
// signature table plus per-rank Sequitur grammar over the rewritten
// records.
package filter

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
)

// Interval is one `lo:hi-value` bucket: an argument whose integer
// value falls in [Lo, Hi) is replaced by Value; first match wins
// (spec.md §4.8).
type Interval struct {
	Lo, Hi int64
	Value  string
}

// IndexRule is the transform declared for one argument position.
// HasIntervals false means "bare index": pass the argument through
// unchanged, but still keep it in the rewritten record (spec.md §4.8
// "no transform on argument N").
type IndexRule struct {
	HasIntervals bool
	Intervals    []Interval
}

// Rule is one filter-file line: a function name plus the index rules
// declared for it, keyed by the index's original string token so the
// documented sorted-string-order rewrite quirk (spec.md §9 Open
// Questions) can be reproduced exactly.
type Rule struct {
	FuncName string
	Indices  map[string]IndexRule
}

// Set is every parsed filter rule, keyed by function name.
type Set map[string]Rule

// Parse reads the filter-file language (spec.md §4.8): whitespace-
// tokenized lines, first token a function name, each following token a
// bare index or a bracketed interval list. A malformed token is
// skipped with a warning; the rest of the line still applies
// (spec.md §4.8 failure handling).
func Parse(r io.Reader) (Set, []string) {
	set := make(Set)
	var warnings []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		funcName := fields[0]
		rule := Rule{FuncName: funcName, Indices: make(map[string]IndexRule)}

		for _, tok := range fields[1:] {
			idx, ir, ok := parseToken(tok)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("filter: skipping malformed token %q on line for %q", tok, funcName))
				continue
			}
			rule.Indices[idx] = ir
		}
		set[funcName] = rule
	}
	return set, warnings
}

func parseToken(tok string) (idx string, ir IndexRule, ok bool) {
	br := strings.IndexByte(tok, '[')
	if br < 0 {
		if _, err := strconv.Atoi(tok); err != nil {
			return "", IndexRule{}, false
		}
		return tok, IndexRule{}, true
	}
	if !strings.HasSuffix(tok, "]") {
		return "", IndexRule{}, false
	}
	idx = tok[:br]
	if _, err := strconv.Atoi(idx); err != nil {
		return "", IndexRule{}, false
	}

	var intervals []Interval
	for _, part := range strings.Split(tok[br+1:len(tok)-1], ",") {
		iv, ok := parseInterval(part)
		if !ok {
			return "", IndexRule{}, false
		}
		intervals = append(intervals, iv)
	}
	return idx, IndexRule{HasIntervals: true, Intervals: intervals}, true
}

func parseInterval(s string) (Interval, bool) {
	dash := strings.LastIndexByte(s, '-')
	if dash < 0 {
		return Interval{}, false
	}
	rangePart, value := s[:dash], s[dash+1:]
	colon := strings.IndexByte(rangePart, ':')
	if colon < 0 {
		return Interval{}, false
	}
	lo, err1 := strconv.ParseInt(rangePart[:colon], 10, 64)
	hi, err2 := strconv.ParseInt(rangePart[colon+1:], 10, 64)
	if err1 != nil || err2 != nil {
		return Interval{}, false
	}
	return Interval{Lo: lo, Hi: hi, Value: value}, true
}

// Apply rewrites rec per the filter rule matching its function name.
// Non-matching records pass through unchanged (spec.md §4.8). Matching
// records deliberately reproduce the source tool's documented quirk:
// the new argument list is built by iterating the rule's declared
// indices in sorted STRING order, not numeric or declaration order, so
// any index never mentioned in the rule is silently dropped rather
// than passed through (spec.md §9 Open Questions).
func Apply(set Set, funcName string, rec *record.Record) *record.Record {
	rule, ok := set[funcName]
	if !ok {
		return rec
	}

	keys := make([]string, 0, len(rule.Indices))
	for k := range rule.Indices {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	newArgs := make([]*string, 0, len(keys))
	for _, k := range keys {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || idx >= len(rec.Args) {
			continue
		}
		newArgs = append(newArgs, applyIndexRule(rule.Indices[k], rec.Args[idx]))
	}

	out := rec.Clone()
	out.Args = newArgs
	return out
}

func applyIndexRule(ir IndexRule, arg *string) *string {
	if !ir.HasIntervals || arg == nil {
		return arg
	}
	v, err := strconv.ParseInt(*arg, 10, 64)
	if err != nil {
		return arg
	}
	for _, iv := range ir.Intervals {
		if v >= iv.Lo && v < iv.Hi {
			return record.StrArg(iv.Value)
		}
	}
	return arg
}
