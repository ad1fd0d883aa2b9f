/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package metrics

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/common/expfmt"
)

// WriteSnapshotFile gathers Registry and appends one text-format
// snapshot, timestamped, to path. Called by pkg/writer at Finalize so
// a trace directory carries its own counters alongside recorder.mt.
func WriteSnapshotFile(path string) error {
	families, err := Registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open metrics snapshot file")
	}
	defer f.Close()

	if _, err := f.WriteString("# " + time.Now().UTC().Format(time.RFC3339) + "\n"); err != nil {
		return err
	}

	enc := expfmt.NewEncoder(f, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrap(err, "encode metric family")
		}
	}
	return nil
}
