/*
 * Client - unit tests
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
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	testKey    = "test-key"
	testSecret = "test-secret"
)

// testConfig returns a configuration pointing at the given host.
func testConfig(host string) *Configuration {
	return &Configuration{
		Host:      host,
		APIKey:    testKey,
		APISecret: testSecret,
		VerifySSL: true,
		Timeout:   5000,
	}
}

// recordedRequest holds what the test server received.
type recordedRequest struct {
	method      string
	path        string
	user        string
	password    string
	authOK      bool
	contentType string
	accept      string
	body        string
}

// newRecordingServer starts a server that records the last request and
// answers with the given status and body.
func newRecordingServer(t *testing.T, status int, body string) (*httptest.Server, *recordedRequest) {
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.user, rec.password, rec.authOK = r.BasicAuth()
		rec.contentType = r.Header.Get("Content-Type")
		rec.accept = r.Header.Get("Accept")
		raw, _ := io.ReadAll(r.Body)
		rec.body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func Test_NewClient_baseURL(t *testing.T) {
	type testCase struct {
		name     string
		host     string
		expected string
	}

	run := func(t *testing.T, tc testCase) {
		c := NewClient(testConfig(tc.host))
		assert.Equal(t, tc.expected, c.BaseURL())
	}

	testCases := []testCase{
		{
			name:     "no trailing slash",
			host:     "https://192.168.1.1",
			expected: "https://192.168.1.1/api",
		},
		{
			name:     "trailing slash",
			host:     "https://192.168.1.1/",
			expected: "https://192.168.1.1/api",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run(t, tc)
		})
	}
}

func Test_Client_Get(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{"unbound":{"dnsbl":{"enabled":"1"}}}`)
	c := NewClient(testConfig(srv.URL))

	res := c.Get(context.Background(), "/unbound/settings/get")

	assert.True(t, res.OK())
	assert.Nil(t, res.Error())
	assert.Equal(t, Response{
		"unbound": map[string]any{
			"dnsbl": map[string]any{"enabled": "1"},
		},
	}, res.Body)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/unbound/settings/get", rec.path)
	assert.True(t, rec.authOK)
	assert.Equal(t, testKey, rec.user)
	assert.Equal(t, testSecret, rec.password)
	assert.Equal(t, "application/json", rec.accept)
	assert.Empty(t, rec.body)
}

func Test_Client_Get_endpointWithoutSlash(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{}`)
	c := NewClient(testConfig(srv.URL))

	res := c.Get(context.Background(), "dhcpv4/leases/searchLease")

	assert.True(t, res.OK())
	assert.Equal(t, "/api/dhcpv4/leases/searchLease", rec.path)
}

func Test_Client_Post(t *testing.T) {
	type testCase struct {
		name         string
		payload      any
		expectedBody string
	}

	run := func(t *testing.T, tc testCase) {
		srv, rec := newRecordingServer(t, http.StatusOK, `{"result":"saved"}`)
		c := NewClient(testConfig(srv.URL))

		res := c.Post(context.Background(), "/unbound/settings/set", tc.payload)

		assert.True(t, res.OK())
		assert.Equal(t, Response{"result": "saved"}, res.Body)
		assert.Equal(t, http.MethodPost, rec.method)
		assert.Equal(t, "/api/unbound/settings/set", rec.path)
		assert.Equal(t, "application/json", rec.contentType)
		assert.True(t, rec.authOK)
		assert.JSONEq(t, tc.expectedBody, rec.body)
	}

	testCases := []testCase{
		{
			name:         "nil payload is an empty object",
			payload:      nil,
			expectedBody: `{}`,
		},
		{
			name:         "settings payload",
			payload:      newDNSBLSettings(true),
			expectedBody: `{"unbound":{"dnsbl":{"enabled":"1"}}}`,
		},
		{
			name:         "nil map payload is an empty object",
			payload:      map[string]any(nil),
			expectedBody: `{}`,
		},
		{
			name:         "nil response payload is an empty object",
			payload:      Response(nil),
			expectedBody: `{}`,
		},
		{
			name:         "nil string map payload is an empty object",
			payload:      map[string]string(nil),
			expectedBody: `{}`,
		},
		{
			name:         "empty map payload",
			payload:      map[string]any{},
			expectedBody: `{}`,
		},
		{
			name:         "map payload",
			payload:      map[string]string{"key": "value"},
			expectedBody: `{"key":"value"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run(t, tc)
		})
	}
}

func Test_Client_statusErrors(t *testing.T) {
	type testCase struct {
		name         string
		status       int
		body         string
		expectedKind ErrorKind
	}

	run := func(t *testing.T, tc testCase) {
		srv, _ := newRecordingServer(t, tc.status, tc.body)
		c := NewClient(testConfig(srv.URL))

		for _, res := range []Result{
			c.Get(context.Background(), "/unbound/settings/get"),
			c.Post(context.Background(), "/unbound/settings/set", nil),
		} {
			assert.False(t, res.OK())
			if assert.NotNil(t, res.Err) {
				assert.Equal(t, tc.expectedKind, res.Err.Kind)
				assert.Equal(t, tc.status, res.Err.StatusCode)
				assert.Equal(t, tc.body, string(res.Err.Body))
			}
			assert.Nil(t, res.Body)
			msg, ok := res.Map()["error"].(string)
			assert.True(t, ok)
			assert.NotEmpty(t, msg)
		}
	}

	testCases := []testCase{
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"status":401,"message":"Authentication Failed"}`,
			expectedKind: AuthError,
		},
		{
			name:         "forbidden",
			status:       http.StatusForbidden,
			body:         `{"status":403,"message":"Forbidden"}`,
			expectedKind: AuthError,
		},
		{
			name:         "not found",
			status:       http.StatusNotFound,
			body:         `{"errorMessage":"Endpoint not found"}`,
			expectedKind: HTTPStatusError,
		},
		{
			name:         "internal server error",
			status:       http.StatusInternalServerError,
			body:         `oops`,
			expectedKind: HTTPStatusError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run(t, tc)
		})
	}
}

func Test_Client_decodeError(t *testing.T) {
	type testCase struct {
		name string
		body string
	}

	run := func(t *testing.T, tc testCase) {
		srv, _ := newRecordingServer(t, http.StatusOK, tc.body)
		c := NewClient(testConfig(srv.URL))

		res := c.Get(context.Background(), "/unbound/settings/get")

		assert.False(t, res.OK())
		if assert.NotNil(t, res.Err) {
			assert.Equal(t, DecodeError, res.Err.Kind)
			assert.Equal(t, http.StatusOK, res.Err.StatusCode)
		}
	}

	testCases := []testCase{
		{
			name: "not json",
			body: "<html></html>",
		},
		{
			name: "json array",
			body: `[1, 2, 3]`,
		},
		{
			name: "empty body",
			body: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run(t, tc)
		})
	}
}

func Test_Client_networkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	c := NewClient(testConfig(url))

	for _, res := range []Result{
		c.Get(context.Background(), "/unbound/settings/get"),
		c.Post(context.Background(), "/unbound/settings/set", nil),
		c.Post(context.Background(), "/unbound/service/reconfigure", nil),
	} {
		assert.False(t, res.OK())
		if assert.NotNil(t, res.Err) {
			assert.Equal(t, NetworkError, res.Err.Kind)
			assert.Zero(t, res.Err.StatusCode)
			assert.NotNil(t, errors.Unwrap(res.Err))
		}
		msg, ok := res.Map()["error"].(string)
		assert.True(t, ok)
		assert.NotEmpty(t, msg)
	}
}

func Test_Client_timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	config := testConfig(srv.URL)
	config.Timeout = 50
	c := NewClient(config)

	start := time.Now()
	res := c.Get(context.Background(), "/unbound/settings/get")

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, res.OK())
	if assert.NotNil(t, res.Err) {
		assert.Equal(t, NetworkError, res.Err.Kind)
	}
}

func Test_Client_cancelledContext(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK, `{}`)
	c := NewClient(testConfig(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Post(ctx, "/unbound/service/reconfigure", nil)

	assert.False(t, res.OK())
	if assert.NotNil(t, res.Err) {
		assert.Equal(t, NetworkError, res.Err.Kind)
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
}

func Test_Client_tls(t *testing.T) {
	type testCase struct {
		name       string
		verifySSL  bool
		expectedOK bool
	}

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"saved"}`))
	}))
	t.Cleanup(srv.Close)

	run := func(t *testing.T, tc testCase) {
		config := testConfig(srv.URL)
		config.VerifySSL = tc.verifySSL
		c := NewClient(config)

		res := c.Get(context.Background(), "/unbound/settings/get")

		assert.Equal(t, tc.expectedOK, res.OK())
		if !tc.expectedOK && assert.NotNil(t, res.Err) {
			assert.Equal(t, NetworkError, res.Err.Kind)
		}
	}

	testCases := []testCase{
		{
			name:       "self-signed certificate rejected",
			verifySSL:  true,
			expectedOK: false,
		},
		{
			name:       "verification disabled",
			verifySSL:  false,
			expectedOK: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run(t, tc)
		})
	}
}

func Test_WithHTTPClient(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(testConfig(srv.URL), WithHTTPClient(srv.Client()))
	res := c.Get(context.Background(), "/unbound/settings/get")

	assert.True(t, res.OK())
	assert.Equal(t, Response{}, res.Body)
}
