/*
 * Blocklist - OPNsense API initialization
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
package blocklist

import (
	"fmt"

	"opnsense-blocklist/internal/opnsense"

	log "github.com/sirupsen/logrus"
)

// Init reads the appliance configuration from the environment and creates
// the API used by the handlers.
func Init() (*opnsense.API, *opnsense.Configuration, error) {
	config, err := opnsense.NewConfiguration()
	if err != nil {
		return nil, nil, fmt.Errorf("reading opnsense configuration failed: %w", err)
	}
	createMsg := fmt.Sprintf("Creating OPNsense client for %s", config.Host)
	if !config.VerifySSL {
		createMsg += " without TLS verification"
	}
	if timeout := config.GetTimeout(); timeout > 0 {
		createMsg += fmt.Sprintf(", timeout %s", timeout)
	} else {
		createMsg += ", no timeout"
	}
	log.Info(createMsg)
	client := opnsense.NewClient(config)
	return opnsense.NewAPI(client), config, nil
}
