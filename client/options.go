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

package client

import "net/http"

// Option configures a Client.
type Option func(*config)

type config struct {
	httpc        *http.Client
	headers      map[string]string
	errorHandler func(*http.Response) error
}

// WithHTTPClient sets the underlying HTTP client. Default:
// http.DefaultClient. Timeouts and retries belong to this client, not to
// the request builder.
func WithHTTPClient(httpc *http.Client) Option {
	return func(cfg *config) {
		cfg.httpc = httpc
	}
}

// WithDefaultHeaders sets headers applied to every call. Per-call headers
// overlay them; a per-call header with an empty value removes the default.
//
// Example:
//
//	client.New(table, baseURL,
//	    client.WithDefaultHeaders(map[string]string{
//	        "authorization": "Bearer " + token,
//	    }),
//	)
func WithDefaultHeaders(headers map[string]string) Option {
	return func(cfg *config) {
		cfg.headers = headers
	}
}

// WithErrorHandler sets the handler [Client.CallJSON] delegates to when
// the response status indicates failure, instead of decoding the body.
// The handler owns the response body.
//
// Example:
//
//	client.New(table, baseURL,
//	    client.WithErrorHandler(func(resp *http.Response) error {
//	        return fmt.Errorf("api error: %s", resp.Status)
//	    }),
//	)
func WithErrorHandler(fn func(*http.Response) error) Option {
	return func(cfg *config) {
		cfg.errorHandler = fn
	}
}
