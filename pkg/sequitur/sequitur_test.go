/*
 * Copyright (c) 2020. Ant Group. All rights reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package sequitur

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func flatten(g *Grammar) []int {
	var out []int
	for _, e := range g.Expand() {
		for i := int32(0); i < e.Repeat; i++ {
			out = append(out, e.TerminalID)
		}
	}
	return out
}

// checkInvariants walks every rule body and asserts digram uniqueness
// and rule utility hold (spec.md §4.8, §8).
func checkInvariants(t *testing.T, g *Grammar) {
	t.Helper()

	seen := make(map[digramKey]bool)
	for _, r := range g.rules {
		for s := r.guard.next; s != r.guard && s.next != r.guard; s = s.next {
			k := keyOf(s, s.next)
			assert.Falsef(t, seen[k], "duplicate digram %+v", k)
			seen[k] = true
		}
	}

	for id, r := range g.rules {
		if r == g.start {
			continue
		}
		refs := g.findReferences(id)
		assert.GreaterOrEqualf(t, len(refs), 2, "rule %d referenced fewer than twice", id)
	}
}

func TestExpandRoundTripsSimpleSequence(t *testing.T) {
	g := New()
	seq := []int{0, 1, 2, 0, 1, 2, 3}
	for _, id := range seq {
		g.AppendTerminal(id, 1)
	}
	assert.Equal(t, seq, flatten(g))
	checkInvariants(t, g)
}

func TestRepeatedDigramExtractsRule(t *testing.T) {
	g := New()
	for _, id := range []int{0, 1, 0, 1, 0, 1} {
		g.AppendTerminal(id, 1)
	}
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1}, flatten(g))
	checkInvariants(t, g)
	assert.Greater(t, len(g.rules), 1, "a repeated digram should have produced a new rule")
}

func TestNonRepeatingRunStaysExpandable(t *testing.T) {
	g := New()
	for _, id := range []int{5, 6, 7, 5, 6, 8} {
		g.AppendTerminal(id, 1)
	}
	assert.Equal(t, []int{5, 6, 7, 5, 6, 8}, flatten(g))
	checkInvariants(t, g)
}

func TestSerializeRoundTrip(t *testing.T) {
	g := New()
	for _, id := range []int{0, 1, 0, 1, 2, 3, 2, 3} {
		g.AppendTerminal(id, 1)
	}
	got := Deserialize(g.Serialize())
	assert.Equal(t, flatten(g), flatten(got))
}

func TestAppendTerminalWithRepeatCount(t *testing.T) {
	g := New()
	g.AppendTerminal(9, 4)
	g.AppendTerminal(10, 1)
	assert.Equal(t, []int{9, 9, 9, 9, 10}, flatten(g))
}

func TestProductionRulesNonEmpty(t *testing.T) {
	g := New()
	for _, id := range []int{0, 1, 0, 1} {
		g.AppendTerminal(id, 1)
	}
	lines := g.ProductionRules()
	assert.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "R0 ->")
}
