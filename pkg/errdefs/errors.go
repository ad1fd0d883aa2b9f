/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package errdefs

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotInitialized is returned when Finalize is called before Init
	// (Append before Init drops the record without an error).
	ErrNotInitialized = errors.New("recorder not initialized")
	// ErrAlreadyFinalized is returned by a second Finalize call.
	ErrAlreadyFinalized = errors.New("recorder already finalized")
	// ErrResolveFailed names a failure of the real-call table to resolve
	// a primitive the tracer itself depends on. pkg/realcalls cannot
	// fail to resolve, so no function in this module returns it.
	ErrResolveFailed = errors.New("failed to resolve real call")
	// ErrRecordTooLarge names a record whose argument count exceeds the
	// wire format's limits. No encoder returns it: records are encoded
	// whatever their argument count.
	ErrRecordTooLarge = errors.New("record exceeds encodable argument count")
	// ErrUnknownCompressionMode names an out-of-range compression mode.
	// No function returns it: config.FromEnv falls back to the default
	// mode, and encoder.New treats any mode other than text or binary as
	// windowed.
	ErrUnknownCompressionMode = errors.New("unknown compression mode")
	// ErrMalformedTrace is returned by the offline reader on a corrupt trace directory.
	ErrMalformedTrace = errors.New("malformed trace")
	// ErrFilterFileUnreadable names an unopenable filter file. pkg/filter
	// does not return or log it: it reports its own warning string and
	// continues with an empty filter set.
	ErrFilterFileUnreadable = errors.New("filter file unreadable")
)

// IsNotInitialized returns true if err is, or wraps, ErrNotInitialized.
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}

// IsAlreadyFinalized returns true if err is, or wraps, ErrAlreadyFinalized.
func IsAlreadyFinalized(err error) bool {
	return errors.Is(err, ErrAlreadyFinalized)
}

// IsMalformedTrace returns true if err is, or wraps, ErrMalformedTrace.
func IsMalformedTrace(err error) bool {
	return errors.Is(err, ErrMalformedTrace)
}
