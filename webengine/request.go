// Copyright 2025 The Rivaas Authors
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

package webengine

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// HeaderField is a single (name, value) header entry. Requests and
// responses both use ordered slices of HeaderField rather than a map so
// that repeated header names (e.g. multiple Set-Cookie values) survive
// intact; name comparisons throughout this package are case-insensitive.
type HeaderField struct {
	Name  string
	Value string
}

// TransportRequest is the read-only view a transport hands to NewRequest.
// The transport owns the concrete type; Request takes ownership of the
// data it exposes by copying it out once at construction (the Go analogue
// of the source's move-construction from an owned transport message).
type TransportRequest interface {
	Method() string
	URI() string
	Version() string
	Body() []byte
	Headers() []HeaderField
}

// Request is a read-mostly wrapper over a transport-owned HTTP request,
// plus the mutable state a route/middleware pipeline needs: captured path
// parameters (set by each route whose pattern matches the path, see
// Route.Match) and a free-form scratch map.
//
// A *Request is handed to exactly one worker for the lifetime of the
// request; do not copy it (it embeds a mutex) and do not share it across
// goroutines beyond the single worker processing it. Moving ownership
// between the transport thread and a worker is just handing over the
// pointer - there is nothing to "move" at the language level once
// NewRequest has copied the transport's data out.
type Request struct {
	id      string
	method  string
	uri     string
	path    string
	version string
	body    []byte
	headers []HeaderField

	paramsMu sync.Mutex
	params   []PathParam

	// scratch is intentionally unlocked: it is single-writer by
	// convention, mutated only by the worker goroutine that owns this
	// Request, per spec.md §4.2.
	scratch map[string]string
}

// NewRequest constructs a Request by copying every field out of tr. The id
// is a fresh UUID used purely for log/trace correlation (SPEC_FULL.md §3);
// it never appears on the wire.
func NewRequest(tr TransportRequest) *Request {
	uriStr := tr.URI()
	path, _ := SplitPathAndQuery(uriStr)

	headers := make([]HeaderField, len(tr.Headers()))
	copy(headers, tr.Headers())

	return &Request{
		id:      uuid.NewString(),
		method:  strings.ToUpper(tr.Method()),
		uri:     uriStr,
		path:    NormalizePath(path),
		version: tr.Version(),
		body:    append([]byte(nil), tr.Body()...),
		headers: headers,
		scratch: make(map[string]string),
	}
}

// ID returns the per-request correlation id assigned at construction.
func (r *Request) ID() string { return r.id }

// Method returns the (upper-cased) HTTP method.
func (r *Request) Method() string { return r.method }

// URI returns the full request URI, including any query string.
func (r *Request) URI() string { return r.uri }

// Path returns the request path with the query string stripped and
// normalized (see NormalizePath).
func (r *Request) Path() string { return r.path }

// Version returns the protocol version string (e.g. "HTTP/1.1") as
// supplied by the transport.
func (r *Request) Version() string { return r.version }

// Body returns the request body bytes. The slice is owned by the Request
// and must not be mutated by callers.
func (r *Request) Body() []byte { return r.body }

// Headers returns all header fields in original order.
func (r *Request) Headers() []HeaderField {
	out := make([]HeaderField, len(r.headers))
	copy(out, r.headers)
	return out
}

// HeaderValues returns every value for name, matched case-insensitively,
// in original order.
func (r *Request) HeaderValues(name string) []string {
	var values []string
	for _, h := range r.headers {
		if strings.EqualFold(h.Name, name) {
			values = append(values, h.Value)
		}
	}
	return values
}

// Header returns the first value for name (case-insensitive), or "" if
// absent.
func (r *Request) Header(name string) string {
	for _, h := range r.headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// ContentType returns the Content-Type header value.
func (r *Request) ContentType() string { return r.Header("Content-Type") }

// Cookie returns the raw Cookie header value.
func (r *Request) Cookie() string { return r.Header("Cookie") }

// Authorization returns the Authorization header value.
func (r *Request) Authorization() string { return r.Header("Authorization") }

// Connection returns the Connection header value.
func (r *Request) Connection() string { return r.Header("Connection") }

// KeepAlive reports true iff any Connection header value compares equal,
// case-insensitively, to "keep-alive".
func (r *Request) KeepAlive() bool {
	for _, v := range r.HeaderValues("Connection") {
		if strings.EqualFold(strings.TrimSpace(v), "keep-alive") {
			return true
		}
	}
	return false
}

// setPathParams stores params on the request under paramsMu, replacing any
// earlier value. Route.Match calls it for every route whose pattern matches
// the path, including routes whose method does not match, so during a
// router scan a later path-matching route overwrites what an earlier one
// stored; the params left on the request are those of the last route that
// matched the path.
func (r *Request) setPathParams(params []PathParam) {
	r.paramsMu.Lock()
	r.params = params
	r.paramsMu.Unlock()
}

// PathParams returns the captured path parameters in declaration order.
func (r *Request) PathParams() []PathParam {
	r.paramsMu.Lock()
	defer r.paramsMu.Unlock()
	out := make([]PathParam, len(r.params))
	copy(out, r.params)
	return out
}

// PathParam returns the value of the named path parameter, or ("", false)
// if it was not captured.
func (r *Request) PathParam(name string) (string, bool) {
	r.paramsMu.Lock()
	defer r.paramsMu.Unlock()
	for _, p := range r.params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// SetParam stores a value in the per-request scratch map. Not safe for
// concurrent writers; by convention only the worker goroutine owning this
// Request calls it.
func (r *Request) SetParam(key, value string) {
	r.scratch[key] = value
}

// GetParam retrieves a value from the scratch map.
func (r *Request) GetParam(key string) (string, bool) {
	v, ok := r.scratch[key]
	return v, ok
}

// GetParams returns a copy of the entire scratch map.
func (r *Request) GetParams() map[string]string {
	out := make(map[string]string, len(r.scratch))
	for k, v := range r.scratch {
		out[k] = v
	}
	return out
}

// RemoveParam deletes a key from the scratch map.
func (r *Request) RemoveParam(key string) {
	delete(r.scratch, key)
}

// ClearParams empties the scratch map.
func (r *Request) ClearParams() {
	clear(r.scratch)
}
