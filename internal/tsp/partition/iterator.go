// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package partition

import "fmt"

// Chunk is a partition key paired with a contiguous run of events
// sharing that key.
type Chunk[K comparable, E any] struct {
	Key    K
	Events []E
}

// Iterator regroups a flat upstream Source into Chunk items, bounded
// by a per-key chunkMaxSize and a global totalSizeLimit across all
// live keys.
//
// Emit priority per incoming event:
//  1. the event's buffer reaches chunkMaxSize -> emit that buffer.
//  2. otherwise, if the running total reaches totalSizeLimit -> emit
//     the buffer of the live key that comes first in key order
//     (prevents unbounded memory use for a long-tail key while another
//     key dominates the stream).
//
// On upstream exhaustion, remaining buffers are emitted in key order
// until none remain, then the iterator reports end-of-stream.
// Key order is the order in which keys' buffers were created; a key
// whose buffer was emitted on reaching chunkMaxSize keeps its earlier
// place in that order when it comes back, so key order is not always
// the order of each live buffer's first event. It is the iterator's
// deterministic tie-break, stable within a run though not otherwise
// significant.
type Iterator[E any, K comparable] struct {
	source         Source[E]
	partitioner    Partitioner[E, K]
	chunkMaxSize   int
	totalSizeLimit int

	order   []K
	buffers map[K][]E
	total   int
	done    bool
}

// New builds a partitioned batching iterator. chunkMaxSize and
// totalSizeLimit must both be positive.
func New[E any, K comparable](source Source[E], partitioner Partitioner[E, K], chunkMaxSize, totalSizeLimit int) (*Iterator[E, K], error) {
	if chunkMaxSize <= 0 {
		return nil, fmt.Errorf("partition: chunk_max_size must be positive, got %d", chunkMaxSize)
	}
	if totalSizeLimit <= 0 {
		return nil, fmt.Errorf("partition: total_size_limit must be positive, got %d", totalSizeLimit)
	}
	return &Iterator[E, K]{
		source:         source,
		partitioner:    partitioner,
		chunkMaxSize:   chunkMaxSize,
		totalSizeLimit: totalSizeLimit,
		buffers:        make(map[K][]E),
	}, nil
}

// Next pulls and returns the next chunk, or (_, false) at end-of-stream.
func (it *Iterator[E, K]) Next() (Chunk[K, E], bool) {
	if it.done {
		return Chunk[K, E]{}, false
	}

	for {
		e, ok := it.source.Next()
		if !ok {
			break
		}

		k := it.partitioner.PartitionKey(e)
		if _, exists := it.buffers[k]; !exists {
			it.order = append(it.order, k)
		}
		it.buffers[k] = append(it.buffers[k], e)
		it.total++

		if len(it.buffers[k]) >= it.chunkMaxSize {
			return it.emit(k), true
		}

		if it.total >= it.totalSizeLimit {
			return it.emit(it.oldestKey()), true
		}
	}

	if len(it.buffers) == 0 {
		it.done = true
		return Chunk[K, E]{}, false
	}
	return it.emit(it.oldestKey()), true
}

// oldestKey returns the first live key in key order, discarding the
// entries of keys it passes over that no longer have a buffer.
func (it *Iterator[E, K]) oldestKey() K {
	for len(it.order) > 0 {
		k := it.order[0]
		it.order = it.order[1:]
		if _, ok := it.buffers[k]; ok {
			return k
		}
	}
	panic("partition: illegal state, no live key to emit")
}

func (it *Iterator[E, K]) emit(k K) Chunk[K, E] {
	events := it.buffers[k]
	delete(it.buffers, k)
	it.total -= len(events)
	return Chunk[K, E]{Key: k, Events: events}
}
