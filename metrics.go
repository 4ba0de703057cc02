/*
Copyright 2023 Alexander Bartolomey (github@alexanderbartolomey.de)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package netflow

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Decoder-level Prometheus metrics, carried over from the teacher's
// metrics.go. These are package-level collectors meant to be registered
// once by the embedding application.
var (
	PacketsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netflow_decoder_decoded_packets_total",
		Help: "Total number of decoded packets",
	})
	ErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netflow_decoder_errors_total",
		Help: "Total number of decode errors",
	})
	DurationMicroseconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "netflow_decoder_duration_microseconds",
		Help:    "Duration of decoding a single packet, in microseconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
	DecodedSets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netflow_decoder_decoded_sets_total",
		Help: "Total number of decoded sets per kind",
	}, []string{"kind"})
	DecodedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netflow_decoder_decoded_records_total",
		Help: "Total number of decoded records per version",
	}, []string{"version"})
	DroppedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netflow_decoder_dropped_records_total",
		Help: "Total number of records dropped due to a decode error",
	}, []string{"version", "reason"})
)

// TemplateCacheSize is a per-scope cache occupancy gauge declared alongside
// the decoder-level counters. Nothing in this package sets it: the decoder
// and template caches do not update it, so it reports a cache's size only
// if the embedding application sets it itself.
var TemplateCacheSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "netflow_decoder_template_cache_size",
	Help: "Current number of templates held by a scope's cache",
}, []string{"scope", "protocol"})

// CacheMetrics are lock-free lifetime counters for a single TemplateCache.
// All fields are accessed via sync/atomic so a cache's Metrics() can be read
// concurrently with decoding, even though decoding itself is single
// threaded per cache instance.
type CacheMetrics struct {
	hits       atomic.Uint64
	misses     atomic.Uint64
	evictions  atomic.Uint64
	expiries   atomic.Uint64
	insertions atomic.Uint64
	collisions atomic.Uint64
}

func (m *CacheMetrics) recordHit()       { m.hits.Add(1) }
func (m *CacheMetrics) recordMiss()      { m.misses.Add(1) }
func (m *CacheMetrics) recordEviction()  { m.evictions.Add(1) }
func (m *CacheMetrics) recordExpiry()    { m.expiries.Add(1) }
func (m *CacheMetrics) recordInsertion() { m.insertions.Add(1) }
func (m *CacheMetrics) recordCollision() { m.collisions.Add(1) }

func (m *CacheMetrics) reset() {
	m.hits.Store(0)
	m.misses.Store(0)
	m.evictions.Store(0)
	m.expiries.Store(0)
	m.insertions.Store(0)
	m.collisions.Store(0)
}

// CacheMetricsSnapshot is a consistent-enough point-in-time read of a
// CacheMetrics; individual counters may be off by the handful of
// operations racing the snapshot, which is acceptable for monitoring.
type CacheMetricsSnapshot struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Expiries   uint64
	Insertions uint64
	Collisions uint64
}

func (m *CacheMetrics) Snapshot() CacheMetricsSnapshot {
	return CacheMetricsSnapshot{
		Hits:       m.hits.Load(),
		Misses:     m.misses.Load(),
		Evictions:  m.evictions.Load(),
		Expiries:   m.expiries.Load(),
		Insertions: m.insertions.Load(),
		Collisions: m.collisions.Load(),
	}
}

// HitRate returns hits / (hits + misses), or (0, false) when no lookups
// have been recorded yet, avoiding a 0/0 division.
func (s CacheMetricsSnapshot) HitRate() (float64, bool) {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0, false
	}
	return float64(s.Hits) / float64(total), true
}

// MissRate returns misses / (hits + misses), or (0, false) when no lookups
// have been recorded yet.
func (s CacheMetricsSnapshot) MissRate() (float64, bool) {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0, false
	}
	return float64(s.Misses) / float64(total), true
}
