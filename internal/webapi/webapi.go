/*
 * WebAPI - HTTP handlers for the blocklist toggle
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
package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"opnsense-blocklist/internal/opnsense"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

const (
	AppName = "OPNsense Manager"

	StatusPath  = "/status"
	EnablePath  = "/enable"
	DisablePath = "/disable"
	LeasesPath  = "/leases"
	IndexPath   = "/"
	healthPath  = "/health"

	statusSuccess = "success"
	statusError   = "error"

	contentTypeHeader     = "Content-Type"
	contentTypeJSON       = "application/json"
	logFieldRequestPath   = "requestPath"
	logFieldRequestMethod = "requestMethod"
	logFieldRequestID     = "requestID"
	logFieldError         = "error"
)

// Blocklist is the set of appliance operations used by the handlers.
type Blocklist interface {
	GetBlocklistStatus(ctx context.Context) (bool, error)
	ToggleUnboundBlocklist(ctx context.Context, enable bool) opnsense.Result
	GetDHCPLeases(ctx context.Context) opnsense.Result
}

// Envelope is the body of every answer.
type Envelope struct {
	Status  string            `json:"status"`
	Enabled *bool             `json:"enabled,omitempty"`
	Message string            `json:"message,omitempty"`
	Leases  opnsense.Response `json:"leases,omitempty"`
	App     string            `json:"app,omitempty"`
	Host    string            `json:"host,omitempty"`
}

// WebAPI serves the status, enable and disable endpoints.
type WebAPI struct {
	blocklist Blocklist
	host      string
}

// New creates a new instance of the WebAPI. host is only reported by the
// index endpoint.
func New(blocklist Blocklist, host string) *WebAPI {
	return &WebAPI{blocklist: blocklist, host: host}
}

// Health answers 200 on the health path without reaching the handlers.
func Health(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthPath {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Recover turns a panic in a handler into a 500 error envelope.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("%v", rec)
				requestLog(r).WithField(logFieldError, err).Error("recovered from panic")
				writeError(w, r, err)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Index reports the application name and the managed appliance.
func (a *WebAPI) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, Envelope{
		Status: statusSuccess,
		App:    AppName,
		Host:   a.host,
	})
}

// Status reports whether the blocklist is enabled.
func (a *WebAPI) Status(w http.ResponseWriter, r *http.Request) {
	requestLog(r).Debug("requesting blocklist status")
	enabled, err := a.blocklist.GetBlocklistStatus(r.Context())
	if err != nil {
		requestLog(r).WithField(logFieldError, err).Error("error getting blocklist status")
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, Envelope{Status: statusSuccess, Enabled: &enabled})
}

// Enable turns the blocklist on.
func (a *WebAPI) Enable(w http.ResponseWriter, r *http.Request) {
	a.toggle(w, r, true)
}

// Disable turns the blocklist off.
func (a *WebAPI) Disable(w http.ResponseWriter, r *http.Request) {
	a.toggle(w, r, false)
}

func (a *WebAPI) toggle(w http.ResponseWriter, r *http.Request, enable bool) {
	requestLog(r).Debugf("requesting blocklist toggle, enable: %t", enable)
	res := a.blocklist.ToggleUnboundBlocklist(r.Context(), enable)
	if err := res.SaveError(); err != nil {
		requestLog(r).WithField(logFieldError, err).Error("error toggling blocklist")
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, Envelope{Status: statusSuccess})
}

// Leases returns the DHCPv4 leases of the appliance.
func (a *WebAPI) Leases(w http.ResponseWriter, r *http.Request) {
	requestLog(r).Debug("requesting DHCP leases")
	res := a.blocklist.GetDHCPLeases(r.Context())
	if !res.OK() {
		requestLog(r).WithField(logFieldError, res.Err).Error("error getting DHCP leases")
		writeError(w, r, res.Err)
		return
	}
	writeJSON(w, r, http.StatusOK, Envelope{Status: statusSuccess, Leases: res.Body})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, r, http.StatusInternalServerError, Envelope{Status: statusError, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body Envelope) {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		requestLog(r).WithField(logFieldError, err).Error("error encoding response")
	}
}

func requestLog(r *http.Request) *log.Entry {
	fields := log.Fields{logFieldRequestMethod: r.Method, logFieldRequestPath: r.URL.Path}
	if id := middleware.GetReqID(r.Context()); id != "" {
		fields[logFieldRequestID] = id
	}
	return log.WithFields(fields)
}
