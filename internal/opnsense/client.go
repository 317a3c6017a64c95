/*
 * Client - authenticated calls towards the OPNsense API
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
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	apiPath           = "/api"
	contentTypeHeader = "Content-Type"
	acceptHeader      = "Accept"
	contentTypeJSON   = "application/json"
	// maxBodySize caps how much of a response body is read.
	maxBodySize = 10 << 20
)

//go:generate mockgen -source=client.go -destination=mock_requester_test.go -package=opnsense

// Requester performs authenticated calls to the appliance.
type Requester interface {
	// Get sends a GET request to the endpoint.
	Get(ctx context.Context, endpoint string) Result
	// Post sends a POST request with a JSON payload to the endpoint.
	Post(ctx context.Context, endpoint string, payload any) Result
}

// Client is the HTTP client of a single appliance.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

var _ Requester = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the appliance described by config.
func NewClient(config *Configuration, opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !config.VerifySSL {
		log.Warnf("TLS certificate verification is disabled for %s", config.Host)
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	c := &Client{
		baseURL:   strings.TrimRight(config.Host, "/") + apiPath,
		apiKey:    config.APIKey,
		apiSecret: config.APISecret,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   config.GetTimeout(),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API base URL, "<host>/api".
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get sends a GET request to the endpoint.
func (c *Client) Get(ctx context.Context, endpoint string) Result {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

// Post sends a POST request to the endpoint. A nil payload is sent as an
// empty JSON object.
func (c *Client) Post(ctx context.Context, endpoint string, payload any) Result {
	if isNilPayload(payload) {
		payload = struct{}{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return c.fail(&APIError{
			Kind:   DecodeError,
			Method: http.MethodPost,
			URL:    c.url(endpoint),
			Err:    err,
		})
	}
	return c.do(ctx, http.MethodPost, endpoint, raw)
}

// isNilPayload also catches nil maps, which would otherwise be sent as null.
func isNilPayload(payload any) bool {
	switch p := payload.(type) {
	case nil:
		return true
	case Response:
		return p == nil
	case map[string]any:
		return p == nil
	case map[string]string:
		return p == nil
	default:
		return false
	}
}

// url builds the full URL for an endpoint.
func (c *Client) url(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// do performs the request and normalizes every failure into an APIError.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) Result {
	url := c.url(endpoint)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return c.fail(&APIError{Kind: NetworkError, Method: method, URL: url, Err: err})
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set(acceptHeader, contentTypeJSON)
	if body != nil {
		req.Header.Set(contentTypeHeader, contentTypeJSON)
		log.Debugf("%s %s: request body: %s", method, url, string(body))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(&APIError{Kind: NetworkError, Method: method, URL: url, Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return c.fail(&APIError{Kind: NetworkError, Method: method, URL: url, StatusCode: resp.StatusCode, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := HTTPStatusError
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			kind = AuthError
		}
		return c.fail(&APIError{Kind: kind, Method: method, URL: url, StatusCode: resp.StatusCode, Body: raw})
	}

	var decoded Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return c.fail(&APIError{Kind: DecodeError, Method: method, URL: url, StatusCode: resp.StatusCode, Body: raw, Err: err})
	}
	if decoded == nil {
		decoded = Response{}
	}
	log.Debugf("%s %s: %d", method, url, resp.StatusCode)
	return success(decoded)
}

// fail logs the error and wraps it into a Result.
func (c *Client) fail(err *APIError) Result {
	log.WithFields(log.Fields{
		"method": err.Method,
		"url":    err.URL,
		"kind":   string(err.Kind),
	}).Errorf("Error in %s request to %s: %s", err.Method, err.URL, err.Error())
	return failure(err)
}
