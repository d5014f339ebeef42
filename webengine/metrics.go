// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webengine

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder is an ObservabilityRecorder backed by
// prometheus/client_golang. It tracks request counts by method/route/status,
// request duration, and worker-pool queue depth.
type PrometheusRecorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	poolSize prometheus.GaugeFunc

	pool *WorkerPool
}

// NewPrometheusRecorder registers its metrics with reg (prometheus.NewRegistry()
// or prometheus.DefaultRegisterer) and, if pool is non-nil, wires a gauge that
// samples pool.Len() on every scrape.
func NewPrometheusRecorder(reg prometheus.Registerer, pool *WorkerPool) *PrometheusRecorder {
	r := &PrometheusRecorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webengine",
			Name:      "requests_total",
			Help:      "Total requests processed, labeled by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "webengine",
			Name:      "request_duration_seconds",
			Help:      "Request handling latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		pool: pool,
	}
	reg.MustRegister(r.requests, r.duration)

	if pool != nil {
		r.poolSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "webengine",
			Name:      "pool_queue_depth",
			Help:      "Number of tasks currently queued in the worker pool.",
		}, func() float64 { return float64(pool.Len()) })
		reg.MustRegister(r.poolSize)
	}

	return r
}

type promState struct {
	method string
	start  time.Time
}

// OnRequestStart records the wall-clock start time; no context enrichment
// is needed for metrics alone.
func (r *PrometheusRecorder) OnRequestStart(ctx context.Context, req *Request) (context.Context, any) {
	return ctx, &promState{method: req.Method(), start: time.Now()}
}

// OnRequestEnd records the request count and duration against routePattern.
func (r *PrometheusRecorder) OnRequestEnd(_ context.Context, state any, resp *Response, routePattern string) {
	st, ok := state.(*promState)
	if !ok || st == nil {
		return
	}
	status := strconv.Itoa(resp.Status())
	r.requests.WithLabelValues(st.method, routePattern, status).Inc()
	r.duration.WithLabelValues(st.method, routePattern).Observe(time.Since(st.start).Seconds())
}
