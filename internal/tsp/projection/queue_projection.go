// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package projection

import "grimm.is/tsp/internal/tsp/pattern"

// QueueState buffers every mapped event value since the last Extract,
// plus the index of its first still-buffered element. Ported from the
// original implementation's QueueProjectionState.
type QueueState[T any] struct {
	queue    []T
	firstIdx pattern.Idx
}

// First buffers every mapped event and, on Extract(start, end),
// returns the value mapped from the event at index start, draining
// the buffer through end.
type First[E any, T any] struct {
	Func func(E) T
}

// NewFirst builds a First projection mapping events with f.
func NewFirst[E any, T any](f func(E) T) *First[E, T] {
	return &First[E, T]{Func: f}
}

func (p *First[E, T]) Update(_ pattern.Idx, events []E, state *QueueState[T]) {
	for _, e := range events {
		state.queue = append(state.queue, p.Func(e))
	}
}

func (p *First[E, T]) Extract(state *QueueState[T], start, end pattern.Idx) T {
	if uint64(len(state.queue)) <= end-state.firstIdx {
		panic("projection: First.Extract called before enough events were buffered")
	}
	state.queue = state.queue[start-state.firstIdx:]
	res := state.queue[0]
	state.queue = state.queue[end-start+1:]
	state.firstIdx = end + 1
	return res
}

// Last is like First but returns the value mapped from the event at
// index end.
type Last[E any, T any] struct {
	Func func(E) T
}

// NewLast builds a Last projection mapping events with f.
func NewLast[E any, T any](f func(E) T) *Last[E, T] {
	return &Last[E, T]{Func: f}
}

func (p *Last[E, T]) Update(_ pattern.Idx, events []E, state *QueueState[T]) {
	for _, e := range events {
		state.queue = append(state.queue, p.Func(e))
	}
}

func (p *Last[E, T]) Extract(state *QueueState[T], start, end pattern.Idx) T {
	if uint64(len(state.queue)) <= end-state.firstIdx {
		panic("projection: Last.Extract called before enough events were buffered")
	}
	res := state.queue[end-state.firstIdx]
	state.queue = state.queue[end-state.firstIdx+1:]
	state.firstIdx = end + 1
	return res
}
