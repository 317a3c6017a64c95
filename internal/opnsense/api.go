/*
 * API - Unbound blocklist and DHCP operations
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
	"context"
	"time"

	"opnsense-blocklist/internal/metrics"

	log "github.com/sirupsen/logrus"
)

const (
	pathSearchLease        = "/dhcpv4/leases/searchLease"
	pathUnboundSettingsGet = "/unbound/settings/get"
	pathUnboundSettingsSet = "/unbound/settings/set"
	pathUnboundReconfigure = "/unbound/service/reconfigure"
)

const (
	actGetDHCPLeases      = "get_dhcp_leases"
	actGetUnboundSettings = "get_unbound_settings"
	actSetUnboundSettings = "set_unbound_settings"
	actReconfigureUnbound = "reconfigure_unbound"
)

// Values of the state label of blocklist_toggles_total.
const (
	toggleStateEnabled      = "enabled"
	toggleStateDisabled     = "disabled"
	toggleStateNotSaved     = "not_saved"
	toggleStateNotApplied   = "not_applied"
	toggleStateRequestError = "error"
)

// API exposes the appliance operations on top of a Requester.
type API struct {
	client Requester
}

// NewAPI creates a new API instance.
func NewAPI(client Requester) *API {
	return &API{client: client}
}

// GetDHCPLeases returns the DHCPv4 lease list as sent by the appliance.
func (a *API) GetDHCPLeases(ctx context.Context) Result {
	return a.call(actGetDHCPLeases, func() Result {
		return a.client.Get(ctx, pathSearchLease)
	})
}

// GetBlocklistStatus tells if the Unbound DNS blocklist is enabled. Missing
// or malformed settings read as disabled; a failed call is returned as an
// error together with false.
func (a *API) GetBlocklistStatus(ctx context.Context) (bool, error) {
	res := a.call(actGetUnboundSettings, func() Result {
		return a.client.Get(ctx, pathUnboundSettingsGet)
	})
	if !res.OK() {
		return false, res.Err
	}
	enabled := dnsblEnabled(res.Body)
	metrics.GetOpenMetricsInstance().SetBlocklistEnabled(enabled)
	return enabled, nil
}

// ToggleUnboundBlocklist saves the blocklist setting and, only when the
// appliance answers "saved", reconfigures Unbound to apply it. The settings
// result is returned unless the reconfiguration fails, in which case its
// failed result is returned instead.
//
// A saved but unapplied change therefore reads as a failure, not as the
// "saved" settings response.
func (a *API) ToggleUnboundBlocklist(ctx context.Context, enable bool) Result {
	m := metrics.GetOpenMetricsInstance()
	payload := newDNSBLSettings(enable)

	res := a.call(actSetUnboundSettings, func() Result {
		return a.client.Post(ctx, pathUnboundSettingsSet, payload)
	})
	if !res.OK() {
		m.IncBlocklistTogglesTotal(toggleStateRequestError)
		return res
	}
	if !res.Body.Saved() {
		log.WithField("response", res.Body).Warn("Blocklist settings were not saved, skipping reconfigure")
		m.IncBlocklistTogglesTotal(toggleStateNotSaved)
		return res
	}

	applied := a.ReconfigureUnbound(ctx)
	if !applied.OK() {
		m.IncBlocklistTogglesTotal(toggleStateNotApplied)
		return applied
	}

	state := toggleStateDisabled
	if enable {
		state = toggleStateEnabled
	}
	m.IncBlocklistTogglesTotal(state)
	m.SetBlocklistEnabled(enable)
	return res
}

// ReconfigureUnbound applies the saved Unbound settings to the running
// service.
func (a *API) ReconfigureUnbound(ctx context.Context) Result {
	return a.call(actReconfigureUnbound, func() Result {
		return a.client.Post(ctx, pathUnboundReconfigure, nil)
	})
}

// call runs a single appliance call and records its metrics.
func (a *API) call(action string, fn func() Result) Result {
	m := metrics.GetOpenMetricsInstance()
	start := time.Now()
	res := fn()
	if !res.OK() {
		m.IncFailedApiCallsTotal(action)
		return res
	}
	delay := time.Since(start)
	m.IncSuccessfulApiCallsTotal(action)
	m.AddApiDelayHist(action, delay.Milliseconds())
	return res
}
