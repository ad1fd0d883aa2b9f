/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package writer

import (
	"github.com/nydus-snapshotter-labs/recorder/pkg/wire"
)

const timestampsFile = "recorder.ts"

// Timestamps is recorder.ts's contents: the run-wide wall-clock span,
// written once by rank 0 at finalize (spec.md §3 local-metadata start/
// end timestamp fields, generalized to the whole run so the filter
// tool has a single span to copy verbatim into `_filtered`).
type Timestamps struct {
	Start float64
	End   float64
}

func encodeTimestamps(t Timestamps) []byte {
	buf := make([]byte, 0, 16)
	buf = append(buf, wire.PutFloat64(t.Start)...)
	buf = append(buf, wire.PutFloat64(t.End)...)
	return buf
}

// DecodeTimestamps reverses encodeTimestamps.
func DecodeTimestamps(b []byte) Timestamps {
	return Timestamps{Start: wire.GetFloat64(b[0:8]), End: wire.GetFloat64(b[8:16])}
}
