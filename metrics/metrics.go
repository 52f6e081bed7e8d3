// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics declares and registers the Prometheus metrics emitted by
// the query execution core, per spec section 6: num_sentences,
// optimizer_latency_us, query_latency_us, num_slow_queries,
// slow_query_latency_us, num_query_errors, num_query_errors_leader_changes.
// Space-labeled variants of each are exposed via the *Space vector fields
// and are only incremented when config.Config.EnableSpaceLevelMetrics is
// true and the current space name is non-empty.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry wraps a prometheus.Registerer the way the teacher's
// txtimer/metrics.go does, panicking (via MustRegister) on a duplicate
// registration since that can only happen from a programming error.
type Registry struct {
	R prometheus.Registerer
}

// NewCounter registers and returns a new Counter.
func (m Registry) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	m.R.MustRegister(c)
	return c
}

// NewCounterVec registers and returns a new CounterVec.
func (m Registry) NewCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	m.R.MustRegister(c)
	return c
}

// NewHistogram registers and returns a new Histogram.
func (m Registry) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	m.R.MustRegister(h)
	return h
}

// NewHistogramVec registers and returns a new HistogramVec.
func (m Registry) NewHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	m.R.MustRegister(h)
	return h
}

// Graph holds the metrics this module emits. A single process-wide instance
// (Default) is populated in init(); service.Instance records through it.
type Graph struct {
	NumSentences               prometheus.Counter
	NumSentencesSpace          *prometheus.CounterVec
	OptimizerLatencyUs         prometheus.Histogram
	OptimizerLatencyUsSpace    *prometheus.HistogramVec
	QueryLatencyUs             prometheus.Histogram
	QueryLatencyUsSpace        *prometheus.HistogramVec
	NumSlowQueries             prometheus.Counter
	NumSlowQueriesSpace        *prometheus.CounterVec
	SlowQueryLatencyUs         prometheus.Histogram
	SlowQueryLatencyUsSpace    *prometheus.HistogramVec
	NumQueryErrors             prometheus.Counter
	NumQueryErrorsSpace        *prometheus.CounterVec
	NumQueryErrorsLeaderChange prometheus.Counter
}

// Default is the process-wide set of metrics, registered against
// prometheus.DefaultRegisterer.
var Default = New(prometheus.DefaultRegisterer)

// New constructs and registers a fresh Graph against r. Tests that don't
// want to pollute the default registry (and would otherwise collide on
// repeated registration) should call this with a prometheus.NewRegistry().
func New(r prometheus.Registerer) *Graph {
	mr := Registry{R: r}
	latencyBuckets := []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000}
	return &Graph{
		NumSentences: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "num_sentences",
			Help: "The number of sentences parsed, counting each sub-sentence of a SEQUENTIAL statement.",
		}),
		NumSentencesSpace: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "num_sentences_space",
			Help: "Like num_sentences, labeled by space.",
		}, []string{"space"}),
		OptimizerLatencyUs: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "optimizer_latency_us",
			Help: "Time spent in the optimize phase, in microseconds.", Buckets: latencyBuckets,
		}),
		OptimizerLatencyUsSpace: mr.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "optimizer_latency_us_space",
			Help: "Like optimizer_latency_us, labeled by space.", Buckets: latencyBuckets,
		}, []string{"space"}),
		QueryLatencyUs: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "query_latency_us",
			Help: "Total request latency, in microseconds.", Buckets: latencyBuckets,
		}),
		QueryLatencyUsSpace: mr.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "query_latency_us_space",
			Help: "Like query_latency_us, labeled by space.", Buckets: latencyBuckets,
		}, []string{"space"}),
		NumSlowQueries: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "num_slow_queries",
			Help: "The number of queries whose latency exceeded slow_query_threshold_us.",
		}),
		NumSlowQueriesSpace: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "num_slow_queries_space",
			Help: "Like num_slow_queries, labeled by space.",
		}, []string{"space"}),
		SlowQueryLatencyUs: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "slow_query_latency_us",
			Help: "Latency of slow queries only, in microseconds.", Buckets: latencyBuckets,
		}),
		SlowQueryLatencyUsSpace: mr.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "slow_query_latency_us_space",
			Help: "Like slow_query_latency_us, labeled by space.", Buckets: latencyBuckets,
		}, []string{"space"}),
		NumQueryErrors: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "num_query_errors",
			Help: "The number of queries that finished with a non-OK error code.",
		}),
		NumQueryErrorsSpace: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "num_query_errors_space",
			Help: "Like num_query_errors, labeled by space.",
		}, []string{"space"}),
		NumQueryErrorsLeaderChange: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "nebula", Subsystem: "graph", Name: "num_query_errors_leader_changes",
			Help: "The number of queries that failed because of a LeaderChanged error.",
		}),
	}
}
