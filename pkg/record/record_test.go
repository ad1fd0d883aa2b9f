/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeArg(t *testing.T) {
	assert.Equal(t, "???", SanitizeArg(nil))
	assert.Equal(t, "", SanitizeArg(StrArg("")))
	assert.Equal(t, "___", SanitizeArg(StrArg("   ")))
	assert.Equal(t, "a_b_c", SanitizeArg(StrArg("a b c")))
	assert.Equal(t, "noop", SanitizeArg(StrArg("noop")))
}

func TestCloneIsDeep(t *testing.T) {
	r := &Record{Args: []*string{StrArg("x"), nil}}
	cp := r.Clone()
	*cp.Args[0] = "y"
	assert.Equal(t, "x", *r.Args[0])
	assert.Nil(t, cp.Args[1])
}
