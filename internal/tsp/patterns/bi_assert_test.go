// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grimm.is/tsp/internal/tsp/pattern"
)

// TestBiAssert_ValueLessThanThreshold traces the reference scenario:
// Assert(Bi(Function(e => e.value), Constant(35), (a, b) => a < b)) over
// the single-batch stream of values [33, 34, 34, 36, 36, 34]. The
// expected output below was hand-derived from the Bi/EnqueueJoined
// rules, not guessed from intuition.
func TestBiAssert_ValueLessThanThreshold(t *testing.T) {
	values := []int{33, 34, 34, 36, 36, 34}

	fn := NewFunction(func(v int) int { return v })
	cn := NewConstant[int](pattern.Success(35))
	bi := NewBi[int](fn, cn, func(a, b int) bool { return a < b })
	as := NewAssert[int](bi)

	out := pattern.NewQueue[struct{}]()
	var st AssertState[BiState[NoState, int, NoState, int]]
	as.Apply(0, values, out, &st)

	items := out.Drain()
	require.Len(t, items, 3)
	assert.Equal(t, pattern.NewInterval(0, 2, pattern.Success(struct{}{})), items[0])
	assert.Equal(t, pattern.NewInterval(3, 4, pattern.Failure[struct{}]()), items[1])
	assert.Equal(t, pattern.NewInterval(5, 5, pattern.Success(struct{}{})), items[2])

	assert.Equal(t, pattern.Idx(0), as.Width())
}

func TestAssert_FalseAndFailureBothMapToFailure(t *testing.T) {
	fn := NewFunction(func(v bool) bool { return v })
	as := NewAssert[bool](fn)

	out := pattern.NewQueue[struct{}]()
	var st AssertState[NoState]
	as.Apply(0, []bool{true, false}, out, &st)

	items := out.Drain()
	require.Len(t, items, 2)
	assert.True(t, items[0].Verdict.IsSuccess())
	assert.False(t, items[1].Verdict.IsSuccess())

	// A Failure from the inner pattern maps to Failure as well.
	failing := NewAssert[bool](NewConstant[bool](pattern.Failure[bool]()))
	out = pattern.NewQueue[struct{}]()
	var fst AssertState[NoState]
	failing.Apply(0, []bool{true}, out, &fst)

	items = out.Drain()
	require.Len(t, items, 1)
	assert.False(t, items[0].Verdict.IsSuccess())
}

func TestBi_MisalignedIntervalsResolveByOverlap(t *testing.T) {
	left := NewFunction(func(v int) int { return v })
	right := NewConstant[int](pattern.Success(0))
	bi := NewBi[int](left, right, func(a, b int) int { return a + b })

	out := pattern.NewQueue[int]()
	var st BiState[NoState, int, NoState, int]
	bi.Apply(0, []int{1, 1, 2}, out, &st)

	items := out.Drain()
	require.NotEmpty(t, items)
	for _, iv := range items {
		assert.True(t, iv.Verdict.IsSuccess())
	}
	assert.Equal(t, pattern.Idx(0), bi.Width())
}
