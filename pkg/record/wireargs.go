/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package record

import "strings"

// FormatArgTail renders the space-prefixed argument tail shared by all
// three encodings: one leading space per argument, no separators
// otherwise needed since the leading space itself is the delimiter.
// The tail carries exactly one separator per argument, which is what
// lets the offline decoder recover arg_count by counting space-prefixed
// tokens, since none of the other wire fields carry it directly. No
// separator follows the last argument.
func FormatArgTail(args []*string) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(SanitizeArg(a))
	}
	return b.String()
}

// ParseArgTail is the inverse of FormatArgTail: given the raw bytes
// between the fixed record header and the trailing newline (with the
// newline already stripped), it recovers the argument list. An empty
// tail means zero arguments; any non-empty tail always begins with the
// delimiter space written by FormatArgTail.
func ParseArgTail(tail string) []*string {
	if tail == "" {
		return nil
	}
	parts := strings.Split(tail, " ")
	args := make([]*string, 0, len(parts)-1)
	for _, tok := range parts[1:] {
		args = append(args, parseArg(tok))
	}
	return args
}

func parseArg(tok string) *string {
	if tok == nullArgToken {
		return nil
	}
	v := tok
	return &v
}
