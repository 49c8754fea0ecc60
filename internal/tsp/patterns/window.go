// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package patterns

import "grimm.is/tsp/internal/tsp/pattern"

// WindowState tracks the inner pattern's state/queue, the last
// classified index, whether that classification was a success, and
// whether anything has been classified yet at all.
type WindowState[S any] struct {
	Inner       S
	InnerQueue  pattern.Queue[struct{}]
	LastEnd     pattern.Idx
	LastSuccess bool
	started     bool
}

// Window succeeds at index i iff its inner pattern has succeeded on
// every index in [i-size+1, i]: a consecutive run of at least `size`
// Success(struct{}{}) outcomes. Width is (size-1) + inner.Width().
type Window[E any, S any] struct {
	Inner pattern.Pattern[E, S, struct{}]
	Size  uint32
}

// NewWindow builds a Window pattern requiring size consecutive
// successes from inner. size must be positive.
func NewWindow[E any, S any](inner pattern.Pattern[E, S, struct{}], size uint32) *Window[E, S] {
	if size == 0 {
		panic("patterns: window size must be positive")
	}
	return &Window[E, S]{Inner: inner, Size: size}
}

func (w *Window[E, S]) Apply(startIdx pattern.Idx, events []E, out *pattern.Queue[struct{}], state *WindowState[S]) {
	w.Inner.Apply(startIdx, events, &state.InnerQueue, &state.Inner)

	for {
		iv, ok := state.InnerQueue.Dequeue()
		if !ok {
			return
		}

		// nextStart is the first index this pattern has not yet
		// classified: LastEnd+1 once something has been classified,
		// or this interval's own Start the very first time through
		// (there being no real predecessor index to add one to).
		var nextStart pattern.Idx
		if !state.started {
			nextStart = iv.Start
		} else {
			if state.LastEnd >= iv.End {
				panic("patterns: window invariant violated: last_end must be strictly less than the draining interval's end")
			}
			nextStart = state.LastEnd + 1
		}

		if !iv.Verdict.IsSuccess() {
			out.EnqueueJoined(pattern.NewInterval(nextStart, iv.End, pattern.Failure[struct{}]()))
			state.LastEnd = iv.End
			state.LastSuccess = false
			state.started = true
			continue
		}

		if state.started && state.LastSuccess {
			out.EnqueueJoined(pattern.NewInterval(nextStart, iv.End, pattern.Success(struct{}{})))
			state.LastEnd = iv.End
			continue
		}

		newStart := nextStart + pattern.Idx(w.Size) - 1
		if newStart <= iv.End {
			out.EnqueueJoined(pattern.NewInterval(newStart, iv.End, pattern.Success(struct{}{})))
			state.LastEnd = iv.End
			state.LastSuccess = true
		}
		// else: the success run is not yet long enough; LastEnd is
		// not advanced, and indices [nextStart, newStart-1] remain
		// undetermined rather than classified as Failure.
		state.started = true
	}
}

func (w *Window[E, S]) Width() pattern.Idx {
	return pattern.Idx(w.Size-1) + w.Inner.Width()
}
