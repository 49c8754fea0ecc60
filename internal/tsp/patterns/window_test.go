// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grimm.is/tsp/internal/tsp/pattern"
)

// TestWindow_ConsecutiveRunOfTwo feeds Window(size=2) the same
// Assert(Bi(...)) stream used to exercise Bi/Assert, which classifies
// as (0,2,Success),(3,4,Failure),(5,5,Success). A run of 2 first
// becomes provable at index 1 (indices 0 and 1 both succeeded), so the
// first emitted interval is (1,2,Success) rather than (0,2,Success) —
// the single-element run at index 5 never reaches length 2 and is
// never classified.
func TestWindow_ConsecutiveRunOfTwo(t *testing.T) {
	values := []int{33, 34, 34, 36, 36, 34}

	fn := NewFunction(func(v int) int { return v })
	cn := NewConstant[int](pattern.Success(35))
	bi := NewBi[int](fn, cn, func(a, b int) bool { return a < b })
	as := NewAssert[int](bi)
	win := NewWindow[int](as, 2)

	out := pattern.NewQueue[struct{}]()
	var st WindowState[AssertState[BiState[NoState, int, NoState, int]]]
	win.Apply(0, values, out, &st)

	items := out.Drain()
	require.Len(t, items, 2)
	assert.Equal(t, pattern.NewInterval(1, 2, pattern.Success(struct{}{})), items[0])
	assert.Equal(t, pattern.NewInterval(3, 4, pattern.Failure[struct{}]()), items[1])

	assert.Equal(t, pattern.Idx(1), win.Width())
}

func TestWindow_LongerSuccessRunExtendsOneAtATime(t *testing.T) {
	// A leaf pattern succeeding on every event: a Window(size=3)
	// should first prove itself at index 2, then extend by one index
	// per subsequent success.
	fn := NewFunction(func(bool) struct{} { return struct{}{} })
	win := NewWindow[bool](fn, 3)

	out := pattern.NewQueue[struct{}]()
	var st WindowState[NoState]
	win.Apply(0, []bool{true, true, true, true, true}, out, &st)

	items := out.Drain()
	require.Len(t, items, 1)
	assert.Equal(t, pattern.NewInterval(2, 4, pattern.Success(struct{}{})), items[0])
}

func TestWindow_SizeZeroPanics(t *testing.T) {
	fn := NewFunction(func(bool) struct{} { return struct{}{} })
	assert.Panics(t, func() {
		NewWindow[bool](fn, 0)
	})
}

func TestWindow_WidthIsSizeMinusOnePlusInner(t *testing.T) {
	fn := NewFunction(func(bool) struct{} { return struct{}{} })
	win := NewWindow[bool](fn, 4)
	assert.Equal(t, pattern.Idx(3), win.Width())
}
