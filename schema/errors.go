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

package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema is a sentinel error for schema validation failures.
// Use errors.Is(err, ErrSchema) to check whether an error came from
// schema validation.
var ErrSchema = errors.New("schema")

// Stable issue codes. Codes are part of the public contract: callers
// may branch on them programmatically.
const (
	CodeInvalidType = "invalid_type"
	CodeRequired    = "required"
	CodeTooSmall    = "too_small"
	CodeTooBig      = "too_big"
	CodePattern     = "pattern"
	CodeNotInteger  = "not_integer"
	CodeUnknownKey  = "unknown_key"
)

// Issue represents a single validation failure at a specific location
// in the value. Multiple Issue values are collected in an [Error].
//
// Example:
//
//	issue := Issue{
//	    Path:    "items.2.title",
//	    Code:    CodeRequired,
//	    Message: "is required",
//	}
type Issue struct {
	Path    string         `json:"path"`           // Dotted path into the value (e.g., "items.2.title"); empty at the root
	Code    string         `json:"code"`           // Stable code (e.g., "invalid_type", "required")
	Message string         `json:"message"`        // Human-readable message
	Meta    map[string]any `json:"meta,omitempty"` // Additional metadata (expected type, limit, etc.)
}

// Error returns a formatted message as "path: message" or just "message"
// when the path is empty.
func (i Issue) Error() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Unwrap returns [ErrSchema] for errors.Is compatibility.
func (i Issue) Unwrap() error {
	return ErrSchema
}

// Error collects the validation issues produced by one Parse or SafeParse
// call. Error implements error and unwraps to [ErrSchema].
//
// Example:
//
//	var serr *schema.Error
//	if errors.As(err, &serr) {
//	    for _, issue := range serr.Issues {
//	        fmt.Printf("%s: %s\n", issue.Path, issue.Message)
//	    }
//	}
type Error struct {
	Issues []Issue `json:"issues"`
}

// Error returns a formatted message covering every collected issue.
func (e *Error) Error() string {
	switch len(e.Issues) {
	case 0:
		return "schema validation failed"
	case 1:
		return e.Issues[0].Error()
	}

	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.Error())
	}
	return fmt.Sprintf("schema validation failed: %s", strings.Join(msgs, "; "))
}

// Unwrap returns [ErrSchema] for errors.Is compatibility.
func (e *Error) Unwrap() error {
	return ErrSchema
}

// HTTPStatus reports the status a validation failure maps to when it
// reaches an HTTP boundary.
func (e *Error) HTTPStatus() int {
	return 400
}

// Details exposes the issue list for response formatters.
func (e *Error) Details() any {
	return e.Issues
}

// add appends an issue, prefixing its path with the given segment.
func (e *Error) add(path string, issue Issue) {
	issue.Path = joinPath(path, issue.Path)
	e.Issues = append(e.Issues, issue)
}

// merge folds another error's issues in under the given path segment.
func (e *Error) merge(path string, other *Error) {
	for _, issue := range other.Issues {
		e.add(path, issue)
	}
}

func joinPath(prefix, rest string) string {
	switch {
	case prefix == "":
		return rest
	case rest == "":
		return prefix
	default:
		return prefix + "." + rest
	}
}

// issuef builds a single-issue *Error rooted at the current value.
func issuef(code, format string, args ...any) *Error {
	return &Error{Issues: []Issue{{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}}}
}
