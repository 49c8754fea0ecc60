// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package query drives a root pattern and a projection over a
// partitioned, batched event source.
package query

import (
	"math"

	"grimm.is/tsp/internal/tsp/partition"
	"grimm.is/tsp/internal/tsp/pattern"
	"grimm.is/tsp/internal/tsp/projection"
)

type keyState[PatS any, ProjS any, T comparable] struct {
	patState  PatS
	projState ProjS
	startIdx  pattern.Idx
	queue     pattern.Queue[T]
}

// Driver holds a root Pattern, a Projection, and a Partitioner, and
// maintains one (pattern_state, projection_state, start_idx,
// result_queue) quadruple per partition key. Construction and driving
// are a single type here: there is no separate "mapper" value a
// caller builds and holds onto before it starts pulling.
type Driver[E any, K comparable, PatS any, ProjS any, T comparable, R any] struct {
	pattern     pattern.Pattern[E, PatS, T]
	projection  projection.Projection[E, ProjS, R]
	partitioner partition.Partitioner[E, K]
	iter        *partition.Iterator[E, K]

	states       map[K]*keyState[PatS, ProjS, T]
	pendingKeys  []K
	chunksPulled int
}

// New builds a Driver pulling events from source, grouped into chunks
// of at most chunkMaxSize events per partition key, never holding more
// than totalSizeLimit buffered events in flight across all keys. Both
// sizes must be positive.
func New[E any, K comparable, PatS any, ProjS any, T comparable, R any](
	root pattern.Pattern[E, PatS, T],
	proj projection.Projection[E, ProjS, R],
	partitioner partition.Partitioner[E, K],
	source partition.Source[E],
	chunkMaxSize, totalSizeLimit int,
) (*Driver[E, K, PatS, ProjS, T, R], error) {
	iter, err := partition.New(source, partitioner, chunkMaxSize, totalSizeLimit)
	if err != nil {
		return nil, err
	}
	return &Driver[E, K, PatS, ProjS, T, R]{
		pattern:     root,
		projection:  proj,
		partitioner: partitioner,
		iter:        iter,
		states:      make(map[K]*keyState[PatS, ProjS, T]),
	}, nil
}

// NewSimpleDriver builds a Driver with no partition key at all: every
// event shares a single unit-keyed state, and chunkSize events are fed
// to the pattern tree on every pull. It is built on the same
// partitioned Driver with NoPartitioner and an effectively unbounded
// total size limit, since the two are observably equivalent once
// there is only one key.
func NewSimpleDriver[E any, PatS any, ProjS any, T comparable, R any](
	root pattern.Pattern[E, PatS, T],
	proj projection.Projection[E, ProjS, R],
	source partition.Source[E],
	chunkSize int,
) (*Driver[E, struct{}, PatS, ProjS, T, R], error) {
	return New[E, struct{}](root, proj, partition.NoPartitioner[E]{}, source, chunkSize, math.MaxInt)
}

// ChunksPulled reports how many chunks have been pulled from the
// partitioned iterator and fed to the pattern tree so far. Exposed so
// a caller can instrument it (e.g. a Prometheus counter) without this
// package importing a metrics library itself.
func (d *Driver[E, K, PatS, ProjS, T, R]) ChunksPulled() int {
	return d.chunksPulled
}

// PartitionCount reports how many partition keys currently have live
// pattern/projection state.
func (d *Driver[E, K, PatS, ProjS, T, R]) PartitionCount() int {
	return len(d.states)
}

func (d *Driver[E, K, PatS, ProjS, T, R]) stateFor(k K) *keyState[PatS, ProjS, T] {
	ks, ok := d.states[k]
	if !ok {
		ks = &keyState[PatS, ProjS, T]{}
		d.states[k] = ks
	}
	return ks
}

// Next returns the next projected value in non-decreasing start-index
// order within a partition, or (_, false) once the upstream source is
// exhausted and every result queue has drained.
func (d *Driver[E, K, PatS, ProjS, T, R]) Next() (R, bool) {
	for {
		if len(d.pendingKeys) > 0 {
			k := d.pendingKeys[0]
			ks := d.states[k]
			iv, ok := ks.queue.Dequeue()
			if !ok {
				// Defensive: a key should never sit in pendingKeys
				// with an empty queue, but don't loop forever if it
				// does.
				d.pendingKeys = d.pendingKeys[1:]
				continue
			}
			if ks.queue.Empty() {
				d.pendingKeys = d.pendingKeys[1:]
			}
			return d.projection.Extract(&ks.projState, iv.Start, iv.End), true
		}

		chunk, ok := d.iter.Next()
		if !ok {
			var zero R
			return zero, false
		}

		d.chunksPulled++
		ks := d.stateFor(chunk.Key)
		d.pattern.Apply(ks.startIdx, chunk.Events, &ks.queue, &ks.patState)
		d.projection.Update(ks.startIdx, chunk.Events, &ks.projState)
		ks.startIdx += pattern.Idx(len(chunk.Events))

		if !ks.queue.Empty() {
			d.pendingKeys = append(d.pendingKeys, chunk.Key)
		}
	}
}
