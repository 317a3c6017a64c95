/*
 * Configuration - OPNsense appliance configuration
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
package opnsense

import (
	"time"

	"github.com/caarlos0/env/v8"
)

// Configuration contains the connection parameters for a single appliance.
type Configuration struct {
	// Appliance base URL, e.g. https://192.168.1.1
	Host string `env:"OPNSENSE_HOST,notEmpty"`
	// API key, sent as the basic auth user name
	APIKey string `env:"OPNSENSE_API_KEY,notEmpty"`
	// API secret, sent as the basic auth password
	APISecret string `env:"OPNSENSE_API_SECRET,notEmpty"`
	// Verify the appliance TLS certificate
	VerifySSL bool `env:"OPNSENSE_VERIFY_SSL" envDefault:"true"`
	// Request timeout in milliseconds
	Timeout int `env:"OPNSENSE_TIMEOUT" envDefault:"30000"`
}

// NewConfiguration creates a new configuration object.
func NewConfiguration() (*Configuration, error) {
	cfg := &Configuration{}

	// Populate with values from environment.
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetTimeout returns the request timeout. A zero or negative value disables
// the timeout.
func (c Configuration) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 0
	}
	return time.Duration(c.Timeout) * time.Millisecond
}
