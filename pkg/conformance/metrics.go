/*
Copyright 2026 Nscale.

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

package conformance

import (
	"github.com/prometheus/client_golang/prometheus"
)

const outcomePass = "pass"

// Metrics record case outcomes so repeated runs can be graphed and alerted on.
type Metrics struct {
	Cases           *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the metrics with the given registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		Cases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ad_conformance_cases_total",
				Help: "Number of conformance cases run, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ad_conformance_request_duration_seconds",
				Help:    "Round trip time of conformance requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	registerer.MustRegister(m.Cases, m.RequestDuration)

	return m
}

// observe records a result, a nil receiver records nothing.
func (m *Metrics) observe(result *Result) {
	if m == nil {
		return
	}

	outcome := outcomePass
	if result.Failure != nil {
		outcome = string(result.Failure.Kind)
	}

	operation := string(result.Case.Operation)

	m.Cases.WithLabelValues(operation, outcome).Inc()

	if result.Duration > 0 {
		m.RequestDuration.WithLabelValues(operation).Observe(result.Duration.Seconds())
	}
}
