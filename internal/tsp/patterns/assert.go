// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package patterns

import "grimm.is/tsp/internal/tsp/pattern"

// AssertState buffers the inner bool-valued pattern's state and queue.
type AssertState[S any] struct {
	Inner      S
	InnerQueue pattern.Queue[bool]
}

// Assert projects a bool-valued verdict stream onto a Failure /
// Success(struct{}) stream: Success(true) becomes Success(struct{}{}),
// anything else (Success(false) or Failure) becomes Failure. Width
// equals the inner pattern's width.
type Assert[E any, S any] struct {
	Inner pattern.Pattern[E, S, bool]
}

// NewAssert builds an Assert pattern over a bool-valued sub-pattern.
func NewAssert[E any, S any](inner pattern.Pattern[E, S, bool]) *Assert[E, S] {
	return &Assert[E, S]{Inner: inner}
}

func (a *Assert[E, S]) Apply(startIdx pattern.Idx, events []E, out *pattern.Queue[struct{}], state *AssertState[S]) {
	a.Inner.Apply(startIdx, events, &state.InnerQueue, &state.Inner)

	for {
		iv, ok := state.InnerQueue.Dequeue()
		if !ok {
			return
		}
		var v pattern.Verdict[struct{}]
		if iv.Verdict.IsSuccess() && iv.Verdict.Value() {
			v = pattern.Success(struct{}{})
		} else {
			v = pattern.Failure[struct{}]()
		}
		out.EnqueueJoined(pattern.NewInterval(iv.Start, iv.End, v))
	}
}

func (a *Assert[E, S]) Width() pattern.Idx { return a.Inner.Width() }
