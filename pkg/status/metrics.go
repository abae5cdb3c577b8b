// Copyright 2026 walteh LLC
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

package status

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/walteh/certsync/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// 📈 Metrics exposes the last run in the node-exporter textfile format
type Metrics struct {
	registry  *prometheus.Registry
	records   *prometheus.GaugeVec
	timestamp prometheus.Gauge
	duration  prometheus.Gauge
	success   prometheus.Gauge
}

// NewMetrics registers the run gauges on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "certsync_records",
			Help: "Records handled by the last run, by outcome",
		}, []string{"outcome"}),
		timestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "certsync_last_run_timestamp_seconds",
			Help: "Unix time the last run started",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "certsync_last_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "certsync_last_run_success",
			Help: "1 when the last run got past session bootstrap",
		}),
	}
	m.registry.MustRegister(m.records, m.timestamp, m.duration, m.success)
	return m
}

// Observe sets every gauge from the summary.
func (m *Metrics) Observe(s *Summary) {
	m.records.WithLabelValues(operation.OutcomeUploaded.String()).Set(float64(s.Stats.Uploaded))
	m.records.WithLabelValues(operation.OutcomeSkipped.String()).Set(float64(s.Stats.Skipped))
	m.records.WithLabelValues(operation.OutcomeError.String()).Set(float64(s.Stats.Errors))
	m.records.WithLabelValues(operation.OutcomePending.String()).Set(float64(s.Stats.Pending))
	m.timestamp.Set(float64(s.Started.Unix()))
	m.duration.Set(s.Duration.Seconds())
	if s.Success() {
		m.success.Set(1)
	} else {
		m.success.Set(0)
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// 💾 WriteTextfile atomically writes the gauges to path
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
