// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tspmetrics exposes Prometheus counters and gauges tracking a
// running query: events pulled, chunks emitted, partition keys live,
// and results produced. Metrics are built directly against
// prometheus/client_golang and registered against a caller-supplied
// registry so a process can run more than one query without name
// collisions.
package tspmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/tsp/internal/tsp/partition"
)

// Registry holds every metric a Driver reports as it runs.
type Registry struct {
	EventsIngested  prometheus.Counter
	ChunksEmitted   prometheus.Counter
	ResultsProduced prometheus.Counter
	PartitionsLive  prometheus.Gauge
}

// NewRegistry builds a Registry and registers its metrics with reg.
// Callers typically pass prometheus.NewRegistry() so a process can run
// more than one query without metric name collisions.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		EventsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tsp",
			Name:      "events_ingested_total",
			Help:      "Total events pulled from the upstream source.",
		}),
		ChunksEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tsp",
			Name:      "chunks_emitted_total",
			Help:      "Total partition-key chunks handed to the pattern tree.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tsp",
			Name:      "results_produced_total",
			Help:      "Total projected results returned by the query driver.",
		}),
		PartitionsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tsp",
			Name:      "partitions_live",
			Help:      "Number of partition keys with in-flight pattern state.",
		}),
	}
	reg.MustRegister(r.EventsIngested, r.ChunksEmitted, r.ResultsProduced, r.PartitionsLive)
	return r
}

// CountingSource wraps a partition.Source, incrementing counter once
// for every event it yields. It lets a caller instrument EventsIngested
// without the core partition/query packages importing prometheus.
type CountingSource[E any] struct {
	inner   partition.Source[E]
	counter prometheus.Counter
}

// NewCountingSource wraps inner so every successful Next call increments
// counter.
func NewCountingSource[E any](inner partition.Source[E], counter prometheus.Counter) *CountingSource[E] {
	return &CountingSource[E]{inner: inner, counter: counter}
}

// Next implements partition.Source.
func (s *CountingSource[E]) Next() (E, bool) {
	e, ok := s.inner.Next()
	if ok {
		s.counter.Inc()
	}
	return e, ok
}
