/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package metrics

import "strconv"

// IncRecord is the Collect-style entry point pkg/writer calls once per
// encoded record.
func IncRecord(rank int) {
	RecordsEncoded.WithLabelValues(strconv.Itoa(rank)).Inc()
}

// IncFlush is the Collect-style entry point pkg/membuf calls every time
// its arena flushes.
func IncFlush(rank int) {
	BufferFlushes.WithLabelValues(strconv.Itoa(rank)).Inc()
}

// IncWindowHit records a windowed-encoder call that diffed against a
// prior window slot.
func IncWindowHit() {
	WindowHits.Inc()
}

// IncWindowMiss records a windowed-encoder call that fell back to a
// full record.
func IncWindowMiss() {
	WindowMisses.Inc()
}
