// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"fmt"
	"strconv"

	"grimm.is/tsp/internal/tsp/partition"
	"grimm.is/tsp/internal/tsp/pattern"
	"grimm.is/tsp/internal/tsp/patterns"
	"grimm.is/tsp/internal/tsp/query"
	"grimm.is/tsp/internal/tspevents"
)

// readingState is the state of one half (high or low) of the pattern:
// Function -> Bi(against a Constant threshold) -> Assert.
type readingState = patterns.AssertState[patterns.BiState[patterns.NoState, float64, patterns.NoState, float64]]

// readingPattern is the concrete type of one half (high or low) of the
// two-stage spike-then-recovery pattern this demo evaluates.
type readingPattern = patterns.Assert[tspevents.Row, patterns.BiState[patterns.NoState, float64, patterns.NoState, float64]]

// windowState wraps a readingPattern's state behind a consecutive-run
// requirement.
type windowState = patterns.WindowState[readingState]

// rootState is the AndThen of the high window and the low window: the
// pattern tree this binary evaluates end to end.
type rootState = patterns.AndThenState[windowState, windowState]

// buildReading builds the Function/Constant/Bi/Assert chain that
// classifies Success iff the named field's value compares to
// threshold as cmp dictates.
func buildReading(field string, threshold float64, cmp func(value, threshold float64) bool) *readingPattern {
	fn := patterns.NewFunction(func(r tspevents.Row) float64 {
		v, _ := strconv.ParseFloat(r.Get(field), 64)
		return v
	})
	cn := patterns.NewConstant[tspevents.Row](pattern.Success(threshold))
	bi := patterns.NewBi[tspevents.Row](fn, cn, cmp)
	return patterns.NewAssert[tspevents.Row](bi)
}

// buildRoot builds the full pattern tree: a run of at least windowSize
// readings above highThreshold, immediately followed (per AndThen's
// offset rule) by a run of at least windowSize readings at or below
// lowThreshold — a "spike then recovery" shape.
func buildRoot(field string, highThreshold, lowThreshold float64, windowSize uint32) *patterns.AndThen[tspevents.Row, windowState, windowState] {
	high := patterns.NewWindow[tspevents.Row](buildReading(field, highThreshold, func(v, t float64) bool { return v > t }), windowSize)
	low := patterns.NewWindow[tspevents.Row](buildReading(field, lowThreshold, func(v, t float64) bool { return v <= t }), windowSize)
	return patterns.NewAndThen[tspevents.Row](high, low)
}

// rowProjectionState buffers rows since the last Extract, mirroring
// projection.QueueState's discipline but additionally retaining each
// row's partition-key field: Extract has no way to learn the key the
// driver used, so the only place left to recover it is the per-key
// buffered events themselves.
type rowProjectionState struct {
	rows     []tspevents.Row
	firstIdx pattern.Idx
}

// ResultRow is what rowProjection.Extract returns for each emitted
// interval: the interval's bounds (Extract's own parameters, which
// Driver.Next() otherwise discards) plus the partition key and field
// reading recovered from the buffered events, since neither is
// otherwise visible past the projection layer.
type ResultRow struct {
	Start, End pattern.Idx
	Key        string
	Summary    string
}

// rowProjection extracts a human-readable summary of the matched
// interval: the partition key (if any) and the field's last reading
// in the interval. Grounded in projection.Last's buffer/drain shape
// (see internal/tsp/projection/queue_projection.go) but returns a
// small struct instead of a bare T, since the caller needs the
// interval bounds to persist a result row, not just the summary text.
type rowProjection struct {
	field, keyField string
}

func (p *rowProjection) Update(_ pattern.Idx, events []tspevents.Row, state *rowProjectionState) {
	state.rows = append(state.rows, events...)
}

func (p *rowProjection) Extract(state *rowProjectionState, start, end pattern.Idx) ResultRow {
	if pattern.Idx(len(state.rows)) <= end-state.firstIdx {
		panic("tsp-replay: projection extract called before enough events were buffered")
	}
	row := state.rows[end-state.firstIdx]
	state.rows = state.rows[end-state.firstIdx+1:]
	state.firstIdx = end + 1

	key := ""
	if p.keyField != "" {
		key = row.Get(p.keyField)
	}
	return ResultRow{
		Start:   start,
		End:     end,
		Key:     key,
		Summary: fmt.Sprintf("field=%s value=%s", p.field, row.Get(p.field)),
	}
}

// buildDriver wires the pattern tree above to a CSV source through
// the partitioned query driver. An empty keyField yields the constant
// "" key for every row, which is
// observably identical to NoPartitioner (every row shares one
// buffer/state) while keeping a single generic instantiation for both
// cases.
func buildDriver(field string, highThreshold, lowThreshold float64, windowSize uint32, source partition.Source[tspevents.Row], keyField string, chunkMaxSize, totalSizeLimit int) (*query.Driver[tspevents.Row, string, rootState, rowProjectionState, struct{}, ResultRow], error) {
	root := buildRoot(field, highThreshold, lowThreshold, windowSize)
	proj := &rowProjection{field: field, keyField: keyField}
	partitioner := partition.NewFunctionPartitioner(func(r tspevents.Row) string {
		if keyField == "" {
			return ""
		}
		return r.Get(keyField)
	})

	return query.New[tspevents.Row, string](root, proj, partitioner, source, chunkMaxSize, totalSizeLimit)
}
