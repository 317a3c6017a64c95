/*
 * Configuration - web server configuration
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
package configuration

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v8"
	log "github.com/sirupsen/logrus"
)

// Config struct for configuration environmental variables
type Config struct {
	ServerHost string `env:"SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8888"`
	// Read timeout in milliseconds
	ReadTimeout int `env:"READ_TIMEOUT" envDefault:"5000"`
	// Write timeout in milliseconds, must cover two appliance calls
	WriteTimeout int `env:"WRITE_TIMEOUT" envDefault:"70000"`
}

// Init sets up configuration by reading set environmental variables
func Init() Config {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Error reading configuration from environment: %v", err)
	}
	return cfg
}

// GetAddress returns the listen address as "host:port".
func (c Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// GetReadTimeout returns the read timeout.
func (c Config) GetReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Millisecond
}

// GetWriteTimeout returns the write timeout.
func (c Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Millisecond
}
