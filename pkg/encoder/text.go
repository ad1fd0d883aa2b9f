/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package encoder

import (
	"strconv"
	"strings"

	"github.com/nydus-snapshotter-labs/recorder/pkg/funcnames"
	"github.com/nydus-snapshotter-labs/recorder/pkg/record"
)

// TextEncoder emits mode 0: "tstart tend res func_name <args...>\n",
// decimal seconds, arguments space-sanitized (spec.md §4.4).
type TextEncoder struct {
	Sink Sink
}

func (e *TextEncoder) Encode(r *record.Record) error {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(r.TStart, 'f', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(r.TEnd, 'f', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(r.Res, 10))
	b.WriteByte(' ')
	b.WriteString(funcnames.DisplayName(r.FuncID))
	b.WriteString(record.FormatArgTail(r.Args))
	b.WriteByte('\n')
	return e.Sink.Append([]byte(b.String()))
}
