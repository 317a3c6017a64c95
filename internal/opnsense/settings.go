/*
 * Settings - Unbound settings payloads
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

import "fmt"

const (
	// wireEnabled and wireDisabled are the appliance encodings of a boolean.
	wireEnabled  = "1"
	wireDisabled = "0"

	resultKey   = "result"
	resultSaved = "saved"
)

// unboundSettings is the payload of the settings/set call.
type unboundSettings struct {
	Unbound unboundSection `json:"unbound"`
}

type unboundSection struct {
	DNSBL dnsblSettings `json:"dnsbl"`
}

type dnsblSettings struct {
	Enabled string `json:"enabled"`
}

// toWire converts a boolean to its appliance encoding.
func toWire(enabled bool) string {
	if enabled {
		return wireEnabled
	}
	return wireDisabled
}

// fromWire is true only for the appliance encoding of true.
func fromWire(v string) bool {
	return v == wireEnabled
}

// newDNSBLSettings builds the payload that enables or disables the blocklist.
func newDNSBLSettings(enable bool) unboundSettings {
	return unboundSettings{
		Unbound: unboundSection{
			DNSBL: dnsblSettings{Enabled: toWire(enable)},
		},
	}
}

// dnsblEnabled reads unbound.dnsbl.enabled from a settings/get response.
// Missing or malformed nesting reads as disabled.
func dnsblEnabled(r Response) bool {
	return fromWire(r.String("unbound", "dnsbl", "enabled"))
}

// Saved tells if a settings/set response acknowledged the change.
func (r Response) Saved() bool {
	return r.String(resultKey) == resultSaved
}

// SaveError returns the reason why a toggle did not take effect, or nil when
// the settings were saved.
func (r Result) SaveError() error {
	if !r.OK() {
		return r.Error()
	}
	if !r.Body.Saved() {
		if msg := r.Body.String("message"); msg != "" {
			return fmt.Errorf("blocklist settings not saved: %s", msg)
		}
		return fmt.Errorf("blocklist settings not saved: result '%s'", r.Body.String(resultKey))
	}
	return nil
}
