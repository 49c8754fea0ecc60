// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package patterns

import "grimm.is/tsp/internal/tsp/pattern"

// Function evaluates a pure function over every event and reports it
// as a Success verdict. Consecutive equal values coalesce into one
// interval via EnqueueJoined. Failures are never produced. Width is 0.
type Function[E any, T comparable] struct {
	Func func(E) T
}

// NewFunction builds a Function pattern evaluating f per event.
func NewFunction[E any, T comparable](f func(E) T) *Function[E, T] {
	return &Function[E, T]{Func: f}
}

func (f *Function[E, T]) Apply(startIdx pattern.Idx, events []E, out *pattern.Queue[T], _ *NoState) {
	for i, e := range events {
		idx := startIdx + pattern.Idx(i)
		out.EnqueueJoined(pattern.NewInterval(idx, idx, pattern.Success(f.Func(e))))
	}
}

func (f *Function[E, T]) Width() pattern.Idx { return 0 }
