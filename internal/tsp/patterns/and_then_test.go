// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grimm.is/tsp/internal/tsp/pattern"
)

// TestAndThen_SequencesAssertThenWindow is AndThen(assert, window) over
// the same six-value stream used elsewhere in this package, where:
//
//	assert's output: (0,2,Success), (3,4,Failure), (5,5,Success)
//	window(size=2) over the same assert: (1,2,Success), (3,4,Failure)
//
// second.Width() is 1 (window's width), so offset = 2. Walking the
// reference algorithm by hand (not guessed): first.Head() = (0,2,S)
// gives resultBegin=2, resultEnd=4. The inner loop against second's
// queue overlaps twice — once with (1,2,S) at [2,2] and once with
// (3,4,F) at [3,4] — before second's queue runs dry and Apply returns
// with first's queue still holding its (0,2,S) head unconsumed. So a
// single-batch Apply call emits exactly (2,2,Success) and (3,4,Failure).
func TestAndThen_SequencesAssertThenWindow(t *testing.T) {
	values := []int{33, 34, 34, 36, 36, 34}

	buildAssert := func() *Assert[int, BiState[NoState, int, NoState, int]] {
		fn := NewFunction(func(v int) int { return v })
		cn := NewConstant[int](pattern.Success(35))
		bi := NewBi[int](fn, cn, func(a, b int) bool { return a < b })
		return NewAssert[int](bi)
	}

	first := buildAssert()
	second := NewWindow[int](buildAssert(), 2)
	at := NewAndThen[int](first, second)

	out := pattern.NewQueue[struct{}]()
	var st AndThenState[AssertState[BiState[NoState, int, NoState, int]], WindowState[AssertState[BiState[NoState, int, NoState, int]]]]
	at.Apply(0, values, out, &st)

	items := out.Drain()
	require.Len(t, items, 2)
	assert.Equal(t, pattern.NewInterval(2, 2, pattern.Success(struct{}{})), items[0])
	assert.Equal(t, pattern.NewInterval(3, 4, pattern.Failure[struct{}]()), items[1])

	assert.Equal(t, pattern.Idx(1+0+1), at.Width())
}

func TestAndThen_Width(t *testing.T) {
	fn := NewFunction(func(bool) bool { return true })
	first := NewAssert[bool](fn)
	second := NewAssert[bool](fn)
	at := NewAndThen[bool](first, second)
	assert.Equal(t, pattern.Idx(1), at.Width())
}
