// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package patterns

import "grimm.is/tsp/internal/tsp/pattern"

// AndThenState threads the two sub-patterns' state and queues.
type AndThenState[S1 any, S2 any] struct {
	First       S1
	FirstQueue  pattern.Queue[struct{}]
	Second      S2
	SecondQueue pattern.Queue[struct{}]
}

// AndThen sequences two sub-patterns: the second's match must start
// exactly one event after the first's match ends, adjusted by the
// second's width. Width is 1 + first.Width() + second.Width().
type AndThen[E any, S1 any, S2 any] struct {
	First  pattern.Pattern[E, S1, struct{}]
	Second pattern.Pattern[E, S2, struct{}]
}

// NewAndThen builds an AndThen pattern sequencing first then second.
func NewAndThen[E any, S1 any, S2 any](
	first pattern.Pattern[E, S1, struct{}],
	second pattern.Pattern[E, S2, struct{}],
) *AndThen[E, S1, S2] {
	return &AndThen[E, S1, S2]{First: first, Second: second}
}

func combineBoth(a, b pattern.Verdict[struct{}]) pattern.Verdict[struct{}] {
	if a.IsSuccess() && b.IsSuccess() {
		return pattern.Success(struct{}{})
	}
	return pattern.Failure[struct{}]()
}

func (a *AndThen[E, S1, S2]) Apply(
	startIdx pattern.Idx,
	events []E,
	out *pattern.Queue[struct{}],
	state *AndThenState[S1, S2],
) {
	a.First.Apply(startIdx, events, &state.FirstQueue, &state.First)
	a.Second.Apply(startIdx, events, &state.SecondQueue, &state.Second)

	offset := a.Second.Width() + 1

	for {
		first, ok := state.FirstQueue.Head()
		if !ok {
			return
		}

		resultBegin := first.Start + offset
		resultEnd := first.End + offset

		// end tracks the last right endpoint emitted for this
		// first-interval; if none was emitted it falls back to
		// resultBegin.
		end := resultBegin

	inner:
		for {
			second, ok := state.SecondQueue.Head()
			if !ok {
				// Pending data needed before this first-interval can
				// resolve; nothing more to do this call.
				return
			}
			if second.Start > resultEnd {
				// No match for this first-interval yet.
				break inner
			}
			if second.End < resultBegin {
				state.SecondQueue.RewindTo(resultBegin)
				continue inner
			}

			start := resultBegin
			if second.Start > start {
				start = second.Start
			}
			end = resultEnd
			if second.End < end {
				end = second.End
			}

			out.EnqueueJoined(pattern.NewInterval(start, end, combineBoth(first.Verdict, second.Verdict)))
			state.SecondQueue.RewindTo(end + 1)
		}

		if end+1 < offset {
			panic("patterns: and_then invariant violated: negative-width decrement")
		}
		state.FirstQueue.RewindTo(end + 1 - offset)
	}
}

func (a *AndThen[E, S1, S2]) Width() pattern.Idx {
	return 1 + a.First.Width() + a.Second.Width()
}
