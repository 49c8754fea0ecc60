// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstant_AlwaysReturnsSameValue(t *testing.T) {
	c := NewConstant[int](42)
	var st NoState
	c.Update(0, []int{1, 2, 3}, &st)
	assert.Equal(t, 42, c.Extract(&st, 0, 2))
	assert.Equal(t, 42, c.Extract(&st, 5, 9))
}

func TestFirst_ReturnsEarliestBufferedValue(t *testing.T) {
	f := NewFirst(func(v int) int { return v * 10 })
	var st QueueState[int]
	f.Update(0, []int{1, 2, 3, 4}, &st)

	assert.Equal(t, 10, f.Extract(&st, 0, 1))
	// Remaining buffer starts at index 2.
	assert.Equal(t, 30, f.Extract(&st, 2, 3))
}

func TestFirst_PanicsWhenUnderbuffered(t *testing.T) {
	f := NewFirst(func(v int) int { return v })
	var st QueueState[int]
	f.Update(0, []int{1}, &st)
	assert.Panics(t, func() {
		f.Extract(&st, 0, 5)
	})
}

func TestLast_ReturnsLatestValueInRange(t *testing.T) {
	l := NewLast(func(v int) int { return v * 10 })
	var st QueueState[int]
	l.Update(0, []int{1, 2, 3, 4}, &st)

	assert.Equal(t, 20, l.Extract(&st, 0, 1))
	assert.Equal(t, 40, l.Extract(&st, 2, 3))
}

func TestLast_PanicsWhenUnderbuffered(t *testing.T) {
	l := NewLast(func(v int) int { return v })
	var st QueueState[int]
	l.Update(0, []int{1}, &st)
	assert.Panics(t, func() {
		l.Extract(&st, 0, 5)
	})
}

func TestFirst_FeedsAcrossMultipleUpdates(t *testing.T) {
	f := NewFirst(func(v int) int { return v })
	var st QueueState[int]
	f.Update(0, []int{1, 2}, &st)
	f.Update(2, []int{3, 4}, &st)

	require.Equal(t, 1, f.Extract(&st, 0, 0))
	assert.Equal(t, 2, f.Extract(&st, 1, 3))
}
