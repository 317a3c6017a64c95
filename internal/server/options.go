/*
 * Options - health and metrics socket options.
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
	"fmt"
	"time"

	"github.com/caarlos0/env/v8"
)

// SocketOptions contains the options of the health and metrics socket, read
// from environment variables.
type SocketOptions struct {
	// Metrics, readiness and liveness host
	MetricsHost string `env:"METRICS_HOST" envDefault:"0.0.0.0"`
	// Metrics, readiness and liveness port
	MetricsPort uint16 `env:"METRICS_PORT" envDefault:"8080"`
	// Read timeout in milliseconds
	ReadTimeout int `env:"METRICS_READ_TIMEOUT" envDefault:"60000"`
	// Write timeout in milliseconds
	WriteTimeout int `env:"METRICS_WRITE_TIMEOUT" envDefault:"60000"`
}

// NewSocketOptions reads the socket options from the environment.
func NewSocketOptions() (*SocketOptions, error) {
	opts := &SocketOptions{}
	if err := env.Parse(opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// GetMetricsAddress returns the socket address as "host:port".
func (o SocketOptions) GetMetricsAddress() string {
	return fmt.Sprintf("%s:%d", o.MetricsHost, o.MetricsPort)
}

// GetReadTimeout returns the read timeout.
func (o SocketOptions) GetReadTimeout() time.Duration {
	return time.Duration(o.ReadTimeout) * time.Millisecond
}

// GetWriteTimeout returns the write timeout.
func (o SocketOptions) GetWriteTimeout() time.Duration {
	return time.Duration(o.WriteTimeout) * time.Millisecond
}
