// Copyright 2026 The Twinroute Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
)

// Response lets a handler control the HTTP response verbatim instead of
// the default JSON serialization.
type Response struct {
	Status int         // defaults to 200 when zero
	Header http.Header // optional extra headers
	Body   []byte
}

// ErrorStatus is implemented by errors that know which HTTP status they
// map to. Errors without it shape to 500.
type ErrorStatus interface {
	HTTPStatus() int
}

// ErrorDetails is implemented by errors carrying structured detail for the
// response body.
type ErrorDetails interface {
	Details() any
}

// ErrorCode is implemented by errors carrying a stable machine-readable
// code.
type ErrorCode interface {
	Code() string
}

// writeError shapes a handler error into a JSON response:
// {"error": message, "code": ..., "details": ...}.
func (d *Dispatcher) writeError(w http.ResponseWriter, err error) int {
	status := http.StatusInternalServerError
	var statused ErrorStatus
	if errors.As(err, &statused) {
		status = statused.HTTPStatus()
	}

	body := map[string]any{
		"error": err.Error(),
	}
	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		body["details"] = detailed.Details()
	}
	var coded ErrorCode
	if errors.As(err, &coded) {
		body["code"] = coded.Code()
	}

	return writeJSON(w, status, body)
}

// writeRaw writes a handler-produced Response unchanged.
func writeRaw(w http.ResponseWriter, resp *Response) int {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(resp.Body)
	return status
}

// writeJSON serializes v with the shared JSON codec.
func writeJSON(w http.ResponseWriter, status int, v any) int {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
	return status
}
