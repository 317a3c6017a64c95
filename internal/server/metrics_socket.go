/*
 * Metrics socket - health probes and Prometheus metrics.
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
package server

import (
	"errors"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// MetricsSocket represents the socket that serves the metrics, as well as
// the liveness and readiness probes.
type MetricsSocket struct {
	status   *Status
	gatherer prometheus.Gatherer
}

// NewMetricsSocket initializes a new MetricsSocket instance.
func NewMetricsSocket(status *Status, gatherer prometheus.Gatherer) *MetricsSocket {
	return &MetricsSocket{
		status:   status,
		gatherer: gatherer,
	}
}

// probe writes 200/OK when check passes and 503/Service Unavailable
// otherwise.
func probe(name string, check func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := http.StatusOK
		if !check() {
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		if _, err := w.Write([]byte(http.StatusText(code))); err != nil {
			log.Warnf("Could not answer to a %s probe: %s", name, err.Error())
		}
	}
}

// Handler returns the routes served by the socket.
func (s *MetricsSocket) Handler() http.Handler {
	ready := probe("readiness", s.status.IsReady)

	mux := http.NewServeMux()
	mux.HandleFunc("/", ready)
	mux.HandleFunc("/ready", ready)
	mux.HandleFunc("/health", probe("liveness", s.status.IsHealthy))
	mux.HandleFunc("/healthz", probe("healthz", s.status.IsLive))
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start starts the socket and signals startedChan once it is listening.
func (s *MetricsSocket) Start(startedChan chan struct{}, options SocketOptions) {
	address := options.GetMetricsAddress()

	srv := &http.Server{
		Addr:         address,
		Handler:      s.Handler(),
		ReadTimeout:  options.GetReadTimeout(),
		WriteTimeout: options.GetWriteTimeout(),
	}

	l, err := net.Listen("tcp", address)
	if err != nil {
		log.Fatal(err)
	}

	if startedChan != nil {
		startedChan <- struct{}{}
	}

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
