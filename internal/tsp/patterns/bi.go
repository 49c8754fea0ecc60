// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package patterns

import "grimm.is/tsp/internal/tsp/pattern"

// BiState holds the per-child state and queue a Bi pattern threads
// through its two sub-patterns.
type BiState[S1 any, T1 comparable, S2 any, T2 comparable] struct {
	Left       S1
	Right      S2
	LeftQueue  pattern.Queue[T1]
	RightQueue pattern.Queue[T2]
}

// Bi aligns two sub-patterns' outputs by Start and combines their
// verdicts with a pure function. The combined verdict is Success iff
// both children are Success; otherwise it is Failure. Width is the
// max of the two children's widths.
type Bi[E any, S1 any, T1 comparable, S2 any, T2 comparable, T3 comparable] struct {
	Left    pattern.Pattern[E, S1, T1]
	Right   pattern.Pattern[E, S2, T2]
	Combine func(T1, T2) T3
}

// NewBi builds a Bi pattern from two sub-patterns and a combiner.
func NewBi[E any, S1 any, T1 comparable, S2 any, T2 comparable, T3 comparable](
	left pattern.Pattern[E, S1, T1],
	right pattern.Pattern[E, S2, T2],
	combine func(T1, T2) T3,
) *Bi[E, S1, T1, S2, T2, T3] {
	return &Bi[E, S1, T1, S2, T2, T3]{Left: left, Right: right, Combine: combine}
}

func (b *Bi[E, S1, T1, S2, T2, T3]) apply(l pattern.Verdict[T1], r pattern.Verdict[T2]) pattern.Verdict[T3] {
	if l.IsSuccess() && r.IsSuccess() {
		return pattern.Success(b.Combine(l.Value(), r.Value()))
	}
	return pattern.Failure[T3]()
}

func (b *Bi[E, S1, T1, S2, T2, T3]) Apply(
	startIdx pattern.Idx,
	events []E,
	out *pattern.Queue[T3],
	state *BiState[S1, T1, S2, T2],
) {
	b.Left.Apply(startIdx, events, &state.LeftQueue, &state.Left)
	b.Right.Apply(startIdx, events, &state.RightQueue, &state.Right)

	for {
		l, lok := state.LeftQueue.Head()
		r, rok := state.RightQueue.Head()
		if !lok || !rok {
			return
		}

		switch {
		case l.Start < r.Start:
			state.LeftQueue.RewindTo(r.Start)
			continue
		case l.Start > r.Start:
			state.RightQueue.RewindTo(l.Start)
			continue
		}

		end := l.End
		if r.End < end {
			end = r.End
		}
		out.EnqueueJoined(pattern.NewInterval(l.Start, end, b.apply(l.Verdict, r.Verdict)))

		if l.End == r.End {
			state.LeftQueue.Behead()
			state.RightQueue.Behead()
		} else {
			state.LeftQueue.RewindTo(end + 1)
			state.RightQueue.RewindTo(end + 1)
		}
	}
}

func (b *Bi[E, S1, T1, S2, T2, T3]) Width() pattern.Idx {
	lw, rw := b.Left.Width(), b.Right.Width()
	if lw > rw {
		return lw
	}
	return rw
}
