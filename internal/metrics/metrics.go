/*
 * Metrics - OpenMetrics implementation.
 *
 * Copyright 2026 Marco Confalonieri.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics instance
var metrics *OpenMetrics

type OpenMetrics struct {
	registry *prometheus.Registry

	successfulApiCallsTotal *prometheus.CounterVec
	failedApiCallsTotal     *prometheus.CounterVec
	apiDelayHist            *prometheus.HistogramVec

	blocklistEnabled      prometheus.Gauge
	blocklistTogglesTotal *prometheus.CounterVec
}

// GetOpenMetricsInstance returns the current OpenMetrics instance or creates a
// new one if required.
func GetOpenMetricsInstance() *OpenMetrics {
	if metrics == nil {
		reg := prometheus.NewRegistry()
		metrics = &OpenMetrics{
			registry: reg,
			successfulApiCallsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "successful_api_calls_total",
					Help: "The number of successful OPNsense API calls",
				},
				[]string{"action"},
			),
			failedApiCallsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "failed_api_calls_total",
					Help: "The number of OPNsense API calls that returned an error",
				},
				[]string{"action"},
			),
			apiDelayHist: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "api_delay_hist",
					Help:    "Histogram of the delay in milliseconds when calling the OPNsense API",
					Buckets: []float64{10, 100, 250, 500, 1000, 1500, 2000},
				},
				[]string{"action"},
			),
			blocklistEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "blocklist_enabled",
				Help: "1 if the Unbound DNS blocklist was last seen enabled, 0 otherwise",
			}),
			blocklistTogglesTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "blocklist_toggles_total",
					Help: "The number of blocklist toggle attempts by outcome",
				},
				[]string{"state"},
			),
		}
		reg.MustRegister(metrics.successfulApiCallsTotal)
		reg.MustRegister(metrics.failedApiCallsTotal)
		reg.MustRegister(metrics.apiDelayHist)
		reg.MustRegister(metrics.blocklistEnabled)
		reg.MustRegister(metrics.blocklistTogglesTotal)
	}
	return metrics
}

// getLabels builds the label map.
func getLabels(action string) prometheus.Labels {
	return prometheus.Labels{"action": action}
}

func (m OpenMetrics) GetRegistry() *prometheus.Registry {
	return m.registry
}

// IncSuccessfulApiCallsTotal increments the successful_api_calls_total counter.
func (m *OpenMetrics) IncSuccessfulApiCallsTotal(action string) {
	m.successfulApiCallsTotal.With(getLabels(action)).Inc()
}

// IncFailedApiCallsTotal increments the failed_api_calls_total counter.
func (m *OpenMetrics) IncFailedApiCallsTotal(action string) {
	m.failedApiCallsTotal.With(getLabels(action)).Inc()
}

// AddApiDelayHist records a call delay in milliseconds.
func (m *OpenMetrics) AddApiDelayHist(action string, delay int64) {
	m.apiDelayHist.With(getLabels(action)).Observe(float64(delay))
}

// SetBlocklistEnabled sets the blocklist_enabled gauge.
func (m *OpenMetrics) SetBlocklistEnabled(enabled bool) {
	v := 0.0
	if enabled {
		v = 1.0
	}
	m.blocklistEnabled.Set(v)
}

// IncBlocklistTogglesTotal increments the blocklist_toggles_total counter.
func (m *OpenMetrics) IncBlocklistTogglesTotal(state string) {
	m.blocklistTogglesTotal.With(prometheus.Labels{"state": state}).Inc()
}
