/*
 * Logging - logrus setup
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
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v8"
	log "github.com/sirupsen/logrus"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// Config contains the logging options.
type Config struct {
	// Log level: trace, debug, info, warn, error, fatal, panic
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Log format: text or json
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Init reads the logging options from the environment and configures the
// standard logger to write to out.
func Init(out io.Writer) error {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("reading logging configuration failed: %w", err)
	}
	return Configure(cfg, out)
}

// Configure applies cfg to the standard logger.
func Configure(cfg Config, out io.Writer) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var formatter log.Formatter
	switch strings.ToLower(cfg.Format) {
	case formatText, "":
		formatter = &log.TextFormatter{FullTimestamp: true}
	case formatJSON:
		formatter = &log.JSONFormatter{}
	default:
		return fmt.Errorf("unsupported log format: '%s'", cfg.Format)
	}

	log.SetLevel(level)
	log.SetFormatter(formatter)
	log.SetOutput(out)
	return nil
}
