/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var _ Recorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder implements Recorder on top of Prometheus vectors.
type PrometheusRecorder struct {
	postings       *prometheus.CounterVec
	postingLatency *prometheus.HistogramVec
	registrations  *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
}

func NewPrometheusRecorder(namespace string) *PrometheusRecorder {
	return &PrometheusRecorder{
		postings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "postings_total",
				Help:      "Total number of ledger postings by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		postingLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "posting_duration_seconds",
				Help:      "Ledger posting latency including retries",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
			},
			[]string{"type"},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total number of user registrations by outcome",
			},
			[]string{"outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Register registers all metrics with the given Prometheus registry.
func (pr *PrometheusRecorder) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pr.postings,
		pr.postingLatency,
		pr.registrations,
		pr.httpRequests,
		pr.httpLatency,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (pr *PrometheusRecorder) RecordPosting(txType string, outcome string, duration time.Duration) {
	pr.postings.WithLabelValues(txType, outcome).Inc()
	pr.postingLatency.WithLabelValues(txType).Observe(duration.Seconds())
}

func (pr *PrometheusRecorder) RecordRegistration(outcome string) {
	pr.registrations.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	pr.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	pr.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}
