// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterator_EmitsOnChunkMaxSize(t *testing.T) {
	src := NewSliceSource([]int{1, 1, 1, 2, 2})
	it, err := New[int, int](src, NewFunctionPartitioner(func(v int) int { return v }), 2, 100)
	require.NoError(t, err)

	chunk, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, 1, chunk.Key)
	assert.Equal(t, []int{1, 1}, chunk.Events)

	chunk, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, 2, chunk.Key)
	assert.Equal(t, []int{2, 2}, chunk.Events)

	// Remaining key-1 event (a single leftover 1) drains at EOS.
	chunk, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, 1, chunk.Key)
	assert.Equal(t, []int{1}, chunk.Events)

	_, ok = it.Next()
	assert.False(t, ok)
}

func TestIterator_EmitsOldestKeyOnTotalSizeLimit(t *testing.T) {
	// Key 1 arrives first and accumulates two events, key 2 arrives
	// next with one, tripping total_size_limit=3 on that third event —
	// the oldest live key (1) must be the one emitted.
	src := NewSliceSource([]int{1, 1, 2})
	it, err := New[int, int](src, NewFunctionPartitioner(func(v int) int { return v }), 10, 3)
	require.NoError(t, err)

	chunk, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, 1, chunk.Key)
	assert.Equal(t, []int{1, 1}, chunk.Events)
}

func TestIterator_DrainsRemainingBuffersAtEndOfStream(t *testing.T) {
	src := NewSliceSource([]int{1, 2, 1})
	it, err := New[int, int](src, NewFunctionPartitioner(func(v int) int { return v }), 10, 100)
	require.NoError(t, err)

	var chunks []Chunk[int, int]
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		chunks = append(chunks, c)
	}
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].Key)
	assert.Equal(t, []int{1, 1}, chunks[0].Events)
	assert.Equal(t, 2, chunks[1].Key)
	assert.Equal(t, []int{2}, chunks[1].Events)
}

func TestIterator_EmptySourceEndsImmediately(t *testing.T) {
	src := NewSliceSource([]int{})
	it, err := New[int, int](src, NewFunctionPartitioner(func(v int) int { return v }), 10, 100)
	require.NoError(t, err)

	_, ok := it.Next()
	assert.False(t, ok)
}

func TestNew_RejectsNonPositiveSizes(t *testing.T) {
	src := NewSliceSource([]int{1})
	fp := NewFunctionPartitioner(func(v int) int { return v })

	_, err := New[int, int](src, fp, 0, 100)
	assert.Error(t, err)

	_, err = New[int, int](src, fp, 10, 0)
	assert.Error(t, err)
}
