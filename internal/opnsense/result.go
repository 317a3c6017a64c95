/*
 * Result - outcome of a single API call
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
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed API call.
type ErrorKind string

const (
	// NetworkError is a transport failure: connection refused, DNS or TLS
	// failure, timeout.
	NetworkError ErrorKind = "network"
	// AuthError is a 401 or 403 answer from the appliance.
	AuthError ErrorKind = "auth"
	// HTTPStatusError is any other non-2xx answer.
	HTTPStatusError ErrorKind = "http_status"
	// DecodeError is a 2xx answer whose body is not a JSON object.
	DecodeError ErrorKind = "decode"
)

// legacyErrorKey is the key of the error mapping returned by Result.Map.
const legacyErrorKey = "error"

// APIError describes a failed call to the appliance.
type APIError struct {
	Kind       ErrorKind
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case AuthError, HTTPStatusError:
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	default:
		if e.Err == nil {
			return fmt.Sprintf("%s %s: %s error", e.Method, e.URL, e.Kind)
		}
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Response is a JSON object returned by the appliance.
type Response map[string]any

// Lookup walks nested objects following keys. It returns false as soon as a
// key is missing or an intermediate value is not an object.
func (r Response) Lookup(keys ...string) (any, bool) {
	var current any = map[string]any(r)
	for _, k := range keys {
		obj, ok := asObject(current)
		if !ok {
			return nil, false
		}
		current, ok = obj[k]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// String returns the string found at the nested keys, or "" when there is
// none.
func (r Response) String(keys ...string) string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case Response:
		return obj, true
	default:
		return nil, false
	}
}

// Result is the outcome of an API call: either a decoded body or an error.
type Result struct {
	Body Response
	Err  *APIError
}

// OK is true when the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Error returns the failure as an error, or nil.
func (r Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// Map returns the body on success and {"error": <message>} on failure.
func (r Result) Map() Response {
	if r.Err != nil {
		return Response{legacyErrorKey: r.Err.Error()}
	}
	if r.Body == nil {
		return Response{}
	}
	return r.Body
}

func success(body Response) Result {
	return Result{Body: body}
}

func failure(err *APIError) Result {
	return Result{Err: err}
}
